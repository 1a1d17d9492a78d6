//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// stopTree uses taskkill: /F forces, /T includes child processes.
func stopTree(pid int) {
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run() // #nosec G204 -- pid is numeric
}
