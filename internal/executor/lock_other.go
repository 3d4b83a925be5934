//go:build !windows

package executor

import (
	"os/exec"
	"runtime"
)

// lockScreen locks the session using the platform's session manager.
func lockScreen() error {
	if runtime.GOOS == "darwin" {
		return exec.Command("pmset", "displaysleepnow").Run()
	}
	return exec.Command("loginctl", "lock-session").Run()
}
