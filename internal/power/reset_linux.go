//go:build linux

package power

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Reboot restarts the board. Requires CAP_SYS_BOOT.
type Reboot struct{}

// Reset flushes filesystems and reboots.
func (Reboot) Reset() error {
	unix.Sync()
	if err := unix.Reboot(unix.LINUX_REBOOT_CMD_RESTART); err != nil {
		return fmt.Errorf("reboot: %w", err)
	}
	return nil
}

// Reexec replaces the running process with a fresh copy of its executable.
type Reexec struct{}

// Reset execs the current binary with the original arguments and environment.
func (Reexec) Reset() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	if err := unix.Exec(exe, os.Args, os.Environ()); err != nil {
		return fmt.Errorf("exec %s: %w", exe, err)
	}
	return nil
}
