//go:build unix

package ping

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// configureCommand places ping in its own process group so cancellation kills
// it along with anything it spawned.
func configureCommand(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
}
