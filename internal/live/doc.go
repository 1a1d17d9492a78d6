// Package live keeps one display surface in sync with an edited document.
//
// A Controller owns at most one Session. The session moves through
//
//	Closed --Open--> Open --Dispose--> Closed
//
// Opening while open reuses the surface and re-renders for the new
// document. Source changes are debounced: every event restarts the timer and
// only the last text of a burst is rendered, then pushed to the surface as an
// incremental message. Theme and mode changes re-render immediately.
//
// Entry points and timer callbacks are serialized by one mutex, so callbacks
// never interleave. A generation counter turns superseded or post-disposal
// timer callbacks into no-ops.
package live
