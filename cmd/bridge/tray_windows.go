//go:build windows

package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"net/http"
	"os/exec"
	"path/filepath"

	ico "github.com/Kodeworks/golang-image-ico"
	"github.com/getlantern/systray"

	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/version"
)

// startTray runs a minimal Windows tray icon so a headless bridge is still
// visible and stoppable without the task manager.
func startTray(app *App, srv *http.Server, done chan struct{}) {
	onReady := func() {
		if icon := trayIcon(); len(icon) > 0 {
			systray.SetIcon(icon)
		}
		systray.SetTitle("VYAAS Bridge")
		systray.SetTooltip(fmt.Sprintf("VYAAS Bridge %s", version.String()))

		mLogs := systray.AddMenuItem("Open Log", "Open the bridge log file")
		systray.AddSeparator()
		mQuit := systray.AddMenuItem("Quit", "Stop the bridge")

		go func() {
			for {
				select {
				case <-mLogs.ClickedCh:
					app.log.Write("Tray: Open Log")
					_ = openLog(app)
				case <-mQuit.ClickedCh:
					app.log.Write("Tray: Quit")
					systray.Quit()
				}
			}
		}()
	}

	onExit := func() {
		close(done)
	}

	systray.Run(onReady, onExit)
}

// trayIcon renders a flat 16x16 icon at runtime. systray on Windows wants
// .ico bytes and the bridge ships no image assets.
func trayIcon() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	fill := color.RGBA{R: 0x2b, G: 0x6c, B: 0xb0, A: 0xff}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := ico.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

func openLog(app *App) error {
	f := app.log.File()
	if f == nil {
		return nil
	}
	cmd := exec.Command("explorer", filepath.Dir(f.Name()))
	return cmd.Start()
}
