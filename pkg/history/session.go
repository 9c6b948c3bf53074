package history

import (
	"time"

	"github.com/aretw0/pagecraft/pkg/hot"
)

// DefaultWindow is how long a session keeps absorbing edits after the
// last one.
const DefaultWindow = time.Second

// Clock returns the current time.
type Clock func() time.Time

// Session is one undo step. While active, further logs replace its data
// instead of opening a new step.
type Session struct {
	cursor  int
	title   string
	data    hot.Value
	active  bool
	lastLog time.Time
	window  time.Duration
	clock   Clock
}

func newSession(cursor int, title string, data hot.Value, window time.Duration, clock Clock) *Session {
	return &Session{
		cursor:  cursor,
		title:   title,
		data:    data,
		window:  window,
		clock:   clock,
		active:  true,
		lastLog: clock(),
	}
}

// Log stores data and restarts the window.
func (s *Session) Log(data hot.Value) {
	if !s.IsActive() {
		return
	}
	s.data = data
	s.lastLog = s.clock()
}

// IsActive reports whether the session still absorbs edits.
func (s *Session) IsActive() bool {
	if !s.active {
		return false
	}
	if s.clock().Sub(s.lastLog) >= s.window {
		s.active = false
	}
	return s.active
}

// End closes the session.
func (s *Session) End() { s.active = false }

func (s *Session) Cursor() int     { return s.cursor }
func (s *Session) Title() string   { return s.title }
func (s *Session) Data() hot.Value { return s.data }
