//go:build unix

package runner

import (
	"os/exec"
	"syscall"
)

// ownProcessGroup starts cmd in a new process group so that cancelling kills
// the processes the run file put in the background too.
func ownProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
