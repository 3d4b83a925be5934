package executor

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Simulated keyboard input. These helpers drive the real input focus, so
// every caller must go through an automation-class handler; the registry
// serializes those.

// sendKeysEscape quotes characters that SendKeys treats as control syntax.
func sendKeysEscape(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch r {
		case '+', '^', '%', '~', '(', ')', '{', '}', '[', ']':
			b.WriteRune('{')
			b.WriteRune(r)
			b.WriteRune('}')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// typeText types the given text wherever the cursor is focused.
func typeText(ctx context.Context, text string) error {
	switch runtime.GOOS {
	case "windows":
		script := fmt.Sprintf(`Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.SendKeys]::SendWait(%s)`, psQuote(sendKeysEscape(text)))
		return exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", script).Run()
	case "darwin":
		script := fmt.Sprintf(`tell application "System Events" to keystroke %s`, appleQuote(text))
		return exec.CommandContext(ctx, "osascript", "-e", script).Run()
	default:
		return exec.CommandContext(ctx, "xdotool", "type", "--delay", "50", text).Run()
	}
}

// pressKey presses a single key or a "+"-joined combination like "ctrl+s".
func pressKey(ctx context.Context, key string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return fmt.Errorf("no key given")
	}
	switch runtime.GOOS {
	case "windows":
		script := fmt.Sprintf(`Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.SendKeys]::SendWait(%s)`, psQuote(toSendKeys(key)))
		return exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", script).Run()
	default:
		// xdotool accepts combos in the same ctrl+s form.
		return exec.CommandContext(ctx, "xdotool", "key", key).Run()
	}
}

// toSendKeys converts a "ctrl+alt+x" style combo to SendKeys syntax ("^%x").
func toSendKeys(key string) string {
	parts := strings.Split(key, "+")
	var b strings.Builder
	var final string
	for _, p := range parts {
		switch p {
		case "ctrl", "control":
			b.WriteString("^")
		case "alt":
			b.WriteString("%")
		case "shift":
			b.WriteString("+")
		default:
			final = p
		}
	}
	switch final {
	case "enter", "return":
		b.WriteString("{ENTER}")
	case "tab":
		b.WriteString("{TAB}")
	case "escape", "esc":
		b.WriteString("{ESC}")
	case "backspace":
		b.WriteString("{BACKSPACE}")
	case "delete", "del":
		b.WriteString("{DELETE}")
	case "up", "down", "left", "right", "home", "end", "f4":
		b.WriteString("{" + strings.ToUpper(final) + "}")
	default:
		b.WriteString(final)
	}
	return b.String()
}

// psQuote wraps a string as a single-quoted PowerShell literal.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// appleQuote wraps a string as a double-quoted AppleScript literal.
func appleQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
