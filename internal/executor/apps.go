package executor

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// appAliases maps spoken app names to the launch command or URI scheme.
// Unmapped names are launched as-is, so "open whatever" still works when the
// binary is on PATH.
var appAliases = map[string]string{
	"notepad":            "notepad",
	"notes":              "notepad",
	"calculator":         "calc",
	"paint":              "mspaint",
	"word":               "winword",
	"excel":              "excel",
	"powerpoint":         "powerpnt",
	"outlook":            "outlook",
	"file explorer":      "explorer",
	"explorer":           "explorer",
	"cmd":                "cmd",
	"command prompt":     "cmd",
	"terminal":           "wt",
	"powershell":         "powershell",
	"task manager":       "taskmgr",
	"settings":           "ms-settings:",
	"control panel":      "control",
	"spotify":            "spotify",
	"discord":            "discord",
	"slack":              "slack",
	"teams":              "msteams",
	"zoom":               "zoom",
	"vscode":             "code",
	"visual studio code": "code",
	"vs code":            "code",
	"chrome":             "chrome",
	"firefox":            "firefox",
	"edge":               "msedge",
	"brave":              "brave",
	"whatsapp":           "whatsapp:",
	"telegram":           "telegram",
	"camera":             "microsoft.windows.camera:",
	"photos":             "ms-photos:",
	"calendar":           "outlookcal:",
	"mail":               "outlookmail:",
	"maps":               "bingmaps:",
	"store":              "ms-windows-store:",
	"clock":              "ms-clock:",
	"weather":            "bingweather:",
}

// resolveApp returns the launch target for a spoken app name.
func resolveApp(name string) string {
	if target, ok := appAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return target
	}
	return name
}

// isURI reports whether the target is a URI scheme rather than a binary.
func isURI(target string) bool {
	return strings.HasSuffix(target, ":") || strings.Contains(target, "://")
}

// launch starts an application or opens a URI with the platform opener. The
// child is detached and not bound to the command context so it outlives the
// request.
func launch(ctx context.Context, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/C", "start", "", target)
	case "darwin":
		if isURI(target) {
			cmd = exec.Command("open", target)
		} else {
			cmd = exec.Command("open", "-a", target)
		}
	default:
		if isURI(target) {
			cmd = exec.Command("xdg-open", target)
		} else {
			cmd = exec.Command(target)
		}
	}
	detachProcess(cmd)
	return cmd.Start()
}

// openURL opens a URL in the default browser.
func openURL(ctx context.Context, url string) error {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("refusing to open non-http URL %q", url)
	}
	return launch(ctx, url)
}
