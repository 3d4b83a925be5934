//go:build windows

package executor

import "golang.org/x/sys/windows"

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	lockWorkStation = user32.NewProc("LockWorkStation")
)

// lockScreen locks the workstation via user32. The call returns immediately;
// a zero return value means the request was rejected.
func lockScreen() error {
	ret, _, err := lockWorkStation.Call()
	if ret == 0 {
		return err
	}
	return nil
}
