// Package process stops the headless browser launched for PDF export,
// including the renderer and GPU helpers it forks.
package process

// StopTree force-kills pid and its descendants. Non-positive pids are ignored
// so a browser that never started cannot take down the caller's own group.
func StopTree(pid int) {
	if pid <= 0 {
		return
	}
	stopTree(pid)
}
