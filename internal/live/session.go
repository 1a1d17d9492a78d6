package live

import (
	"github.com/alnah/go-mdslides"
)

// State is the controller state.
type State int

// Controller states.
const (
	StateClosed State = iota // no session
	StateOpen                // session active on a surface
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// SessionState is the lifecycle of one session. Disposed is terminal.
type SessionState int

// Session lifecycle states.
const (
	SessionActive SessionState = iota + 1
	SessionDisposed
)

func (s SessionState) String() string {
	switch s {
	case SessionActive:
		return "active"
	case SessionDisposed:
		return "disposed"
	default:
		return "uninitialized"
	}
}

// Session is the record of the displayed document.
type Session struct {
	DocID   string           // identity of the displayed document
	Text    string           // last source snapshot received
	Result  *mdslides.Result // most recent successful render, nil before the first
	State   SessionState
	Pending bool // a debounced render is scheduled

	timer Timer
}

// stopTimer cancels the pending debounced render, if any.
func (s *Session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.Pending = false
}

// dispose moves the session to its terminal state.
func (s *Session) dispose() {
	s.stopTimer()
	s.State = SessionDisposed
}

// snapshot returns a copy safe to hand out of the controller lock.
func (s *Session) snapshot() Session {
	cp := *s
	cp.timer = nil
	return cp
}
