//go:build !windows

package executor

import (
	"os/exec"
	"syscall"
)

// detachProcess places a launched application into its own process group
// (Unix only) so it does not receive signals sent to the bridge. On Windows
// this is handled in detach_windows.go.
func detachProcess(cmd *exec.Cmd) {
	if cmd == nil {
		return
	}
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
		return
	}
	cmd.SysProcAttr.Setpgid = true
}
