// Package history records editor snapshots as undo steps. Edits that
// arrive within a short window of each other are folded into one step.
package history

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/event"
	"github.com/aretw0/pagecraft/pkg/hot"
)

// State bits reported by State.
const (
	Undoable = 1 << iota
	Redoable
	Modified
)

// Logger produces the next snapshot from the current one.
type Logger func(prev hot.Value) hot.Value

// Redoer applies a snapshot to the editor.
type Redoer func(data hot.Value) error

// Record is a read-only view of one step.
type Record struct {
	Cursor int
	Title  string
	Data   hot.Value
}

// History is an ordered list of sessions and a cursor into it.
type History struct {
	records []*Session
	session *Session
	point   int

	logger Logger
	redoer Redoer
	window time.Duration
	clock  Clock
	log    *slog.Logger

	stateChange event.Emitter[int]
	cursor      event.Emitter[hot.Value]
}

// Option configures a History.
type Option func(*History)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(h *History) { h.clock = c }
}

// WithWindow sets the coalescing window.
func WithWindow(d time.Duration) Option {
	return func(h *History) { h.window = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *History) { h.log = l }
}

// New opens a history whose first step, "Open", holds logger's initial
// snapshot. The first step is closed right away and is the save point.
func New(logger Logger, redoer Redoer, opts ...Option) *History {
	h := &History{
		logger: logger,
		redoer: redoer,
		window: DefaultWindow,
		clock:  time.Now,
		log:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.session = newSession(0, "Open", logger(hot.Value{}), h.window, h.clock)
	h.session.End()
	h.records = []*Session{h.session}
	return h
}

// Log takes a snapshot. Nothing happens when it equals the current one.
// An active session absorbs it and keeps its title; otherwise a new step
// titled title replaces any redo branch.
func (h *History) Log(title string) {
	prev := h.session.Data()
	next := h.logger(prev)
	if hot.Equal(next.Data(), prev.Data()) {
		return
	}

	if h.session.IsActive() {
		h.session.Log(next)
		h.log.Debug("history session amended", "cursor", h.session.Cursor(), "title", h.session.Title())
	} else {
		h.session.End()
		cursor := h.session.Cursor() + 1
		h.session = newSession(cursor, title, next, h.window, h.clock)
		h.records = append(h.records[:cursor], h.session)
		h.log.Debug("history session opened", "cursor", cursor, "title", title)
	}
	h.stateChange.Emit(h.State())
}

// Go moves to the step at cursor, clamped to the recorded range, and
// replays its snapshot. If the redoer fails the cursor stays put.
func (h *History) Go(cursor int) {
	h.session.End()
	cursor = max(0, min(cursor, len(h.records)-1))
	if cursor == h.session.Cursor() {
		return
	}
	target := h.records[cursor]
	if err := h.redo(target.Data()); err != nil {
		h.log.Error("history redo failed", "cursor", cursor, "error", err)
		return
	}
	h.session = target
	h.cursor.Emit(target.Data())
	h.stateChange.Emit(h.State())
}

func (h *History) redo(data hot.Value) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("redoer panicked: %v", r)
		}
	}()
	return h.redoer(data)
}

// Back undoes one step.
func (h *History) Back() { h.Go(h.session.Cursor() - 1) }

// Forward redoes one step.
func (h *History) Forward() { h.Go(h.session.Cursor() + 1) }

// SavePoint marks the current step as saved.
func (h *History) SavePoint() {
	h.session.End()
	h.point = h.session.Cursor()
	h.stateChange.Emit(h.State())
}

// IsModified reports whether the cursor left the save point.
func (h *History) IsModified() bool { return h.point != h.session.Cursor() }

// State returns the Undoable, Redoable and Modified bits.
func (h *History) State() int {
	state := Undoable | Redoable | Modified
	cursor := h.session.Cursor()
	if cursor <= 0 {
		state &^= Undoable
	}
	if cursor >= len(h.records)-1 {
		state &^= Redoable
	}
	if h.point == cursor {
		state &^= Modified
	}
	return state
}

// Cursor returns the index of the current step.
func (h *History) Cursor() int { return h.session.Cursor() }

// HotData returns the snapshot of the current step.
func (h *History) HotData() hot.Value { return h.session.Data() }

// Records lists every step.
func (h *History) Records() []Record {
	out := make([]Record, len(h.records))
	for i, s := range h.records {
		out[i] = Record{Cursor: s.Cursor(), Title: s.Title(), Data: s.Data()}
	}
	return out
}

// OnStateChange subscribes to state changes.
func (h *History) OnStateChange(fn func(state int)) event.Dispose {
	return h.stateChange.Subscribe(fn)
}

// OnCursor subscribes to cursor moves; the listener gets the replayed
// snapshot.
func (h *History) OnCursor(fn func(data hot.Value)) event.Dispose {
	return h.cursor.Subscribe(fn)
}

// Destroy drops every step and listener.
func (h *History) Destroy() {
	h.stateChange.Clear()
	h.cursor.Clear()
	h.records = []*Session{h.session}
}
