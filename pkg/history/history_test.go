package history

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pagecraft/pkg/hot"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// doc is a tiny editor: a counter whose value is snapshotted.
type doc struct {
	value   int
	applied []int
	fail    bool
}

func (d *doc) logger(hot.Value) hot.Value {
	return hot.Snapshot(map[string]any{"value": d.value})
}

func (d *doc) redoer(v hot.Value) error {
	if d.fail {
		return errors.New("cannot apply")
	}
	m, _ := hot.AsMap(v)
	d.value = m.Get("value").(int)
	d.applied = append(d.applied, d.value)
	return nil
}

func newHistory(d *doc, clock *fakeClock) *History {
	return New(d.logger, d.redoer, WithClock(clock.Now))
}

func TestNew_OpensSavedSession(t *testing.T) {
	d := &doc{}
	h := newHistory(d, &fakeClock{now: time.Unix(0, 0)})

	records := h.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "Open", records[0].Title)
	assert.Equal(t, 0, h.Cursor())
	assert.False(t, h.IsModified())
	assert.Equal(t, 0, h.State())
}

func TestLog_CoalescesWithinWindow(t *testing.T) {
	d := &doc{}
	clock := &fakeClock{now: time.Unix(0, 0)}
	h := newHistory(d, clock)

	d.value = 1
	h.Log("first")
	clock.Advance(500 * time.Millisecond)
	d.value = 2
	h.Log("second")

	records := h.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "first", records[1].Title)
	m, _ := hot.AsMap(records[1].Data)
	assert.Equal(t, 2, m.Get("value"))
}

func TestLog_NewSessionAfterWindow(t *testing.T) {
	d := &doc{}
	clock := &fakeClock{now: time.Unix(0, 0)}
	h := newHistory(d, clock)

	d.value = 1
	h.Log("first")
	clock.Advance(DefaultWindow)
	d.value = 2
	h.Log("second")

	assert.Len(t, h.Records(), 3)
	assert.Equal(t, 2, h.Cursor())
	assert.Equal(t, Undoable|Modified, h.State())
}

func TestLog_IgnoresUnchangedSnapshot(t *testing.T) {
	d := &doc{}
	clock := &fakeClock{now: time.Unix(0, 0)}
	h := newHistory(d, clock)

	states := 0
	h.OnStateChange(func(int) { states++ })
	h.Log("noop")
	assert.Len(t, h.Records(), 1)
	assert.Zero(t, states)
}

func TestBackForward(t *testing.T) {
	d := &doc{}
	clock := &fakeClock{now: time.Unix(0, 0)}
	h := newHistory(d, clock)

	for i := 1; i <= 2; i++ {
		d.value = i
		h.Log("step")
		clock.Advance(2 * DefaultWindow)
	}
	require.Equal(t, 2, h.Cursor())

	var replayed []hot.Value
	h.OnCursor(func(v hot.Value) { replayed = append(replayed, v) })

	h.Back()
	assert.Equal(t, 1, h.Cursor())
	assert.Equal(t, 1, d.value)
	assert.Equal(t, Undoable|Redoable|Modified, h.State())

	h.Back()
	h.Back()
	assert.Equal(t, 0, h.Cursor())
	assert.Equal(t, []int{1, 0}, d.applied)
	assert.Len(t, replayed, 2)

	h.Forward()
	assert.Equal(t, 1, d.value)
}

func TestLog_TruncatesRedoBranch(t *testing.T) {
	d := &doc{}
	clock := &fakeClock{now: time.Unix(0, 0)}
	h := newHistory(d, clock)

	for i := 1; i <= 3; i++ {
		d.value = i
		h.Log("step")
		clock.Advance(2 * DefaultWindow)
	}
	h.Go(1)
	d.value = 10
	h.Log("branch")

	records := h.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "branch", records[2].Title)
	assert.Zero(t, h.State()&Redoable)
}

func TestGo_RedoerFailureKeepsCursor(t *testing.T) {
	d := &doc{}
	clock := &fakeClock{now: time.Unix(0, 0)}
	h := newHistory(d, clock)
	d.value = 1
	h.Log("step")

	d.fail = true
	h.Back()
	assert.Equal(t, 1, h.Cursor())

	d.fail = false
	h2 := New(d.logger, func(hot.Value) error { panic("boom") }, WithClock(clock.Now))
	d.value = 5
	clock.Advance(2 * DefaultWindow)
	h2.Log("step")
	h2.Back()
	assert.Equal(t, 1, h2.Cursor())
}

func TestSavePoint(t *testing.T) {
	d := &doc{}
	clock := &fakeClock{now: time.Unix(0, 0)}
	h := newHistory(d, clock)
	d.value = 1
	h.Log("step")
	assert.True(t, h.IsModified())

	h.SavePoint()
	assert.False(t, h.IsModified())
	assert.Equal(t, Undoable, h.State())

	// The saved session is closed, the next edit opens a new step.
	d.value = 2
	h.Log("after save")
	assert.Len(t, h.Records(), 3)
}

func TestNew_KeepsOpeningSnapshot(t *testing.T) {
	d := &doc{value: 7}
	clock := &fakeClock{now: time.Unix(0, 0)}
	h := newHistory(d, clock)

	records := h.Records()
	require.Len(t, records, 1)
	require.False(t, records[0].Data.IsZero())
	m, _ := hot.AsMap(records[0].Data)
	assert.Equal(t, 7, m.Get("value"))

	d.value = 8
	h.Log("a")
	records = h.Records()
	require.Len(t, records, 2)
	require.False(t, records[1].Data.IsZero())
	m, _ = hot.AsMap(records[1].Data)
	assert.Equal(t, 8, m.Get("value"))

	h.Back()
	assert.Equal(t, 0, h.Cursor())
	assert.Equal(t, 7, d.value)
}

func TestSession_ActiveUntilWindowElapses(t *testing.T) {
	clock := &fakeClock{now: time.Unix(100, 0)}
	s := newSession(1, "edit", hot.Snapshot(map[string]any{"value": 1}), time.Second, clock.Now)

	assert.True(t, s.IsActive())
	assert.False(t, s.Data().IsZero())

	clock.Advance(999 * time.Millisecond)
	s.Log(hot.Snapshot(map[string]any{"value": 2}))
	clock.Advance(999 * time.Millisecond)
	assert.True(t, s.IsActive(), "each log restarts the window")

	clock.Advance(time.Second)
	assert.False(t, s.IsActive())
	m, _ := hot.AsMap(s.Data())
	assert.Equal(t, 2, m.Get("value"))
}
