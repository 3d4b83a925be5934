package executor

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/middleware"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/utils"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/whatsapp"
)

// Deps carries the collaborators the built-in executors need.
type Deps struct {
	Log      *utils.Logger
	Sender   *whatsapp.Sender
	DiskPath string
}

// NewDefaultRegistry builds the closed command set the bridge supports. The
// set is fixed at startup; anything else is an unknown-command error at
// dispatch time.
func NewDefaultRegistry(deps Deps) *Registry {
	r := NewRegistry()

	r.RegisterFunc("open_app", ClassPlain, func(ctx context.Context, params map[string]any) (string, error) {
		app := StringParam(params, "app")
		if app == "" {
			return "", fmt.Errorf("missing app name")
		}
		if err := launch(ctx, resolveApp(app)); err != nil {
			return "", fmt.Errorf("failed to open %s: %w", app, err)
		}
		return "Opened " + app, nil
	})

	r.RegisterFunc("open_url", ClassPlain, func(ctx context.Context, params map[string]any) (string, error) {
		u := StringParam(params, "url")
		if err := openURL(ctx, u); err != nil {
			return "", err
		}
		return "Opened " + u, nil
	})

	r.RegisterFunc("open_maps", ClassPlain, func(ctx context.Context, params map[string]any) (string, error) {
		query := StringParam(params, "query")
		target := "https://www.google.com/maps"
		if query != "" {
			target = "https://www.google.com/maps/search/" + url.QueryEscape(query)
		}
		if err := openURL(ctx, target); err != nil {
			return "", err
		}
		if query == "" {
			return "Opened Maps", nil
		}
		return "Opened Maps for " + query, nil
	})

	r.RegisterFunc("play_youtube", ClassPlain, func(ctx context.Context, params map[string]any) (string, error) {
		query := StringParam(params, "query")
		if query == "" {
			return "", fmt.Errorf("missing search query")
		}
		target := "https://www.youtube.com/results?search_query=" + url.QueryEscape(query)
		if err := openURL(ctx, target); err != nil {
			return "", err
		}
		return "Playing YouTube results for " + query, nil
	})

	r.RegisterFunc("open_notes", ClassAutomation, func(ctx context.Context, params map[string]any) (string, error) {
		if err := launch(ctx, resolveApp("notepad")); err != nil {
			return "", fmt.Errorf("failed to open notes: %w", err)
		}
		content := middleware.SanitizeText(StringParam(params, "content"))
		if content == "" {
			return "Opened notes", nil
		}
		// Give the editor a moment to take focus before typing into it.
		select {
		case <-time.After(1500 * time.Millisecond):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		if err := typeText(ctx, content); err != nil {
			return "", fmt.Errorf("opened notes but typing failed: %w", err)
		}
		return "Opened notes with content", nil
	})

	r.RegisterFunc("type_text", ClassAutomation, func(ctx context.Context, params map[string]any) (string, error) {
		text := middleware.SanitizeText(StringParam(params, "text"))
		if text == "" {
			return "", fmt.Errorf("missing text")
		}
		if err := typeText(ctx, text); err != nil {
			return "", fmt.Errorf("typing failed: %w", err)
		}
		return "Text typed", nil
	})

	r.RegisterFunc("press_key", ClassAutomation, func(ctx context.Context, params map[string]any) (string, error) {
		key := StringParam(params, "key")
		if err := pressKey(ctx, key); err != nil {
			return "", fmt.Errorf("key press failed: %w", err)
		}
		return "Pressed " + key, nil
	})

	r.RegisterFunc("screenshot", ClassPlain, func(ctx context.Context, params map[string]any) (string, error) {
		path, err := takeScreenshot(ctx)
		if err != nil {
			return "", fmt.Errorf("screenshot failed: %w", err)
		}
		return "Screenshot saved to " + path, nil
	})

	r.RegisterFunc("set_volume", ClassPlain, func(ctx context.Context, params map[string]any) (string, error) {
		level := IntParam(params, "level", 50)
		if level < 0 {
			level = 0
		}
		if level > 100 {
			level = 100
		}
		if err := setVolume(ctx, level); err != nil {
			return "", fmt.Errorf("volume change failed: %w", err)
		}
		return fmt.Sprintf("Volume set to %d%%", level), nil
	})

	r.RegisterFunc("lock_pc", ClassPlain, func(ctx context.Context, params map[string]any) (string, error) {
		if err := lockScreen(); err != nil {
			return "", fmt.Errorf("lock failed: %w", err)
		}
		return "PC locked", nil
	})

	r.RegisterFunc("shutdown", ClassPlain, func(ctx context.Context, params map[string]any) (string, error) {
		delay := IntParam(params, "delay", 60)
		if err := scheduleShutdown(ctx, delay); err != nil {
			return "", fmt.Errorf("shutdown scheduling failed: %w", err)
		}
		return fmt.Sprintf("Shutdown scheduled in %d seconds", delay), nil
	})

	r.RegisterFunc("cancel_shutdown", ClassPlain, func(ctx context.Context, params map[string]any) (string, error) {
		if err := cancelShutdown(ctx); err != nil {
			return "", fmt.Errorf("shutdown cancel failed: %w", err)
		}
		return "Shutdown cancelled", nil
	})

	r.RegisterFunc("system_info", ClassPlain, func(ctx context.Context, params map[string]any) (string, error) {
		return systemInfoReport(ctx, deps.DiskPath)
	})

	if deps.Sender != nil {
		r.RegisterFunc("send_whatsapp", ClassAutomation, func(ctx context.Context, params map[string]any) (string, error) {
			phone := StringParam(params, "phone")
			message := StringParam(params, "message")
			if phone == "" || message == "" {
				return "", fmt.Errorf("missing phone or message")
			}
			tier, err := deps.Sender.Send(ctx, phone, message)
			if err != nil {
				return "", fmt.Errorf("message to %s not delivered: %w", phone, err)
			}
			return fmt.Sprintf("Message sent to %s via %s", phone, tier), nil
		})

		r.RegisterFunc("send_whatsapp_contact", ClassAutomation, func(ctx context.Context, params map[string]any) (string, error) {
			contact := StringParam(params, "contact")
			message := StringParam(params, "message")
			if contact == "" || message == "" {
				return "", fmt.Errorf("missing contact or message")
			}
			tier, err := deps.Sender.Send(ctx, contact, message)
			if err != nil {
				return "", fmt.Errorf("message to %s not delivered: %w", contact, err)
			}
			return fmt.Sprintf("Message sent to %s via %s", contact, tier), nil
		})
	}

	return r
}

func takeScreenshot(ctx context.Context) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	path := filepath.Join(home, "Pictures", fmt.Sprintf("screenshot_%s.png", time.Now().Format("20060102_150405")))
	_ = os.MkdirAll(filepath.Dir(path), 0o755)

	switch runtime.GOOS {
	case "windows":
		script := fmt.Sprintf(`Add-Type -AssemblyName System.Windows.Forms
$screen = [System.Windows.Forms.Screen]::PrimaryScreen.Bounds
$bitmap = New-Object System.Drawing.Bitmap($screen.Width, $screen.Height)
$graphics = [System.Drawing.Graphics]::FromImage($bitmap)
$graphics.CopyFromScreen($screen.Location, [System.Drawing.Point]::Empty, $screen.Size)
$bitmap.Save(%s)`, psQuote(path))
		if err := exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", script).Run(); err != nil {
			return "", err
		}
	case "darwin":
		if err := exec.CommandContext(ctx, "screencapture", "-x", path).Run(); err != nil {
			return "", err
		}
	default:
		if err := exec.CommandContext(ctx, "scrot", path).Run(); err != nil {
			return "", err
		}
	}
	return path, nil
}

func setVolume(ctx context.Context, level int) error {
	switch runtime.GOOS {
	case "windows":
		// Step the volume down to zero, then up to the target. Each key press
		// moves the mixer by 2%.
		script := fmt.Sprintf(`$obj = New-Object -ComObject WScript.Shell
1..50 | ForEach-Object { $obj.SendKeys([char]174) }
1..%d | ForEach-Object { $obj.SendKeys([char]175) }`, level/2)
		return exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", script).Run()
	case "darwin":
		return exec.CommandContext(ctx, "osascript", "-e", fmt.Sprintf("set volume output volume %d", level)).Run()
	default:
		return exec.CommandContext(ctx, "amixer", "set", "Master", strconv.Itoa(level)+"%").Run()
	}
}

func scheduleShutdown(ctx context.Context, delaySeconds int) error {
	if delaySeconds < 0 {
		delaySeconds = 0
	}
	switch runtime.GOOS {
	case "windows":
		return exec.CommandContext(ctx, "shutdown", "/s", "/t", strconv.Itoa(delaySeconds)).Run()
	case "darwin":
		return exec.CommandContext(ctx, "sudo", "shutdown", "-h", "+"+strconv.Itoa(delaySeconds/60)).Run()
	default:
		return exec.CommandContext(ctx, "shutdown", "-h", "+"+strconv.Itoa(delaySeconds/60)).Run()
	}
}

func cancelShutdown(ctx context.Context) error {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "shutdown", "/a").Run()
	}
	return exec.CommandContext(ctx, "shutdown", "-c").Run()
}
