//go:build windows

package executor

import (
	"os/exec"
	"syscall"
)

// detachProcess puts a launched application into its own process group so a
// Ctrl signal aimed at the bridge never reaches it. Windows has no Setpgid;
// CREATE_NEW_PROCESS_GROUP is the closest equivalent.
func detachProcess(cmd *exec.Cmd) {
	if cmd == nil {
		return
	}
	const createNewProcessGroup = 0x00000200
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: createNewProcessGroup}
		return
	}
	cmd.SysProcAttr.CreationFlags |= createNewProcessGroup
}
