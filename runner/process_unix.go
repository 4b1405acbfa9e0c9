//go:build unix

package runner

import (
	"errors"
	"os/exec"
	"syscall"
)

// isolateProcessGroup starts cmd in its own process group so a timeout kills
// every process the test binary spawned, not only the direct child.
func isolateProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}

// killedByAlarm reports whether the process was terminated by SIGALRM,
// which fixtures raise through alarm() to cut off runaway functions.
func killedByAlarm(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	return ok && status.Signaled() && status.Signal() == syscall.SIGALRM
}
