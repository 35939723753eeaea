//go:build unix

package shell

import (
	"os/exec"
	"syscall"
)

// killGroup runs the process in its own group and kills the whole group on
// cancellation, so children of sh cannot hold the output pipes open.
func killGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
