//go:build !windows

package process

import "syscall"

// stopTree signals the process group first; Chrome children share it.
// Falls back to the single process when it leads no group.
func stopTree(pid int) {
	if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil {
		_ = syscall.Kill(pid, syscall.SIGKILL)
	}
}
