package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/pagecraft/pkg/dragengine"
	"github.com/aretw0/pagecraft/pkg/event"
	"github.com/aretw0/pagecraft/pkg/hot"
	"github.com/aretw0/pagecraft/pkg/node"
	"github.com/aretw0/pagecraft/pkg/page"
	"github.com/aretw0/pagecraft/pkg/persistence/middleware"
	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/aretw0/pagecraft/pkg/schema"
)

// Drag outcomes.
const (
	OutcomeDrop   = "drop"
	OutcomeCopy   = "copy"
	OutcomeCancel = "cancel"
)

// Hooks are optional callbacks fired next to the metrics.
type Hooks struct {
	OnDragEnd     func(outcome string, e dragengine.EndEvent)
	OnHistoryMove func(pageID string, from, to int)
	OnStoreOp     func(ctx context.Context, op string, err error)
}

// Metrics holds the collectors.
type Metrics struct {
	DragGestures  *prometheus.CounterVec
	HistorySteps  *prometheus.GaugeVec
	HistoryMoves  *prometheus.CounterVec
	NodesCreated  *prometheus.CounterVec
	NodesDestroy  *prometheus.CounterVec
	StoreDuration *prometheus.HistogramVec
	StoreErrors   *prometheus.CounterVec

	hooks Hooks
}

// Option configures Metrics.
type Option func(*Metrics)

// WithHooks sets the callbacks.
func WithHooks(h Hooks) Option {
	return func(m *Metrics) { m.hooks = h }
}

// NewMetrics builds the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer, opts ...Option) *Metrics {
	m := &Metrics{
		DragGestures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pagecraft_drag_gestures_total",
			Help: "Finished drag gestures by outcome.",
		}, []string{"outcome"}),
		HistorySteps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pagecraft_history_steps",
			Help: "Recorded undo steps per page.",
		}, []string{"page"}),
		HistoryMoves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pagecraft_history_moves_total",
			Help: "Undo and redo moves per page.",
		}, []string{"page", "direction"}),
		NodesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pagecraft_nodes_created_total",
			Help: "Nodes created by component.",
		}, []string{"component"}),
		NodesDestroy: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pagecraft_nodes_destroyed_total",
			Help: "Nodes destroyed by component.",
		}, []string{"component"}),
		StoreDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pagecraft_store_operation_duration_seconds",
			Help:    "Duration of page store operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pagecraft_store_errors_total",
			Help: "Failed page store operations.",
		}, []string{"op"}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if reg != nil {
		reg.MustRegister(m.DragGestures, m.HistorySteps, m.HistoryMoves,
			m.NodesCreated, m.NodesDestroy, m.StoreDuration, m.StoreErrors)
	}
	return m
}

// AttachEngine counts finished gestures.
func (m *Metrics) AttachEngine(e *dragengine.Engine) event.Dispose {
	return e.OnDragEnd(func(ev dragengine.EndEvent) {
		outcome := OutcomeDrop
		switch {
		case ev.Location == nil:
			outcome = OutcomeCancel
		case ev.Copy:
			outcome = OutcomeCopy
		}
		m.DragGestures.WithLabelValues(outcome).Inc()
		if m.hooks.OnDragEnd != nil {
			m.hooks.OnDragEnd(outcome, ev)
		}
	})
}

// AttachPage follows the node lifecycle and history of p.
func (m *Metrics) AttachPage(p *page.Page) event.Dispose {
	var g event.Group
	id := p.ID()
	h := p.History()
	last := h.Cursor()
	m.HistorySteps.WithLabelValues(id).Set(float64(len(h.Records())))

	g.Add(
		p.OnNodeCreate(func(n *node.Node) {
			m.NodesCreated.WithLabelValues(n.ComponentName()).Inc()
		}),
		p.OnNodeDestroy(func(n *node.Node) {
			m.NodesDestroy.WithLabelValues(n.ComponentName()).Inc()
		}),
		h.OnStateChange(func(int) {
			m.HistorySteps.WithLabelValues(id).Set(float64(len(h.Records())))
		}),
		h.OnCursor(func(hot.Value) {
			to := h.Cursor()
			direction := "redo"
			if to < last {
				direction = "undo"
			}
			m.HistoryMoves.WithLabelValues(id, direction).Inc()
			if m.hooks.OnHistoryMove != nil {
				m.hooks.OnHistoryMove(id, last, to)
			}
			last = to
		}),
	)
	// Log moves the cursor without a replay.
	g.Add(h.OnStateChange(func(int) { last = h.Cursor() }))
	return g.Dispose
}

// Middleware times every store call.
func (m *Metrics) Middleware() middleware.Middleware {
	return func(next ports.PageStore) ports.PageStore {
		return &instrumentedStore{next: next, m: m}
	}
}

type instrumentedStore struct {
	next ports.PageStore
	m    *Metrics
}

func (s *instrumentedStore) observe(ctx context.Context, op string, start time.Time, err error) {
	s.m.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		s.m.StoreErrors.WithLabelValues(op).Inc()
	}
	if s.m.hooks.OnStoreOp != nil {
		s.m.hooks.OnStoreOp(ctx, op, err)
	}
}

func (s *instrumentedStore) Save(ctx context.Context, p *schema.PageData) (err error) {
	defer func(start time.Time) { s.observe(ctx, "save", start, err) }(time.Now())
	return s.next.Save(ctx, p)
}

func (s *instrumentedStore) Load(ctx context.Context, id string) (p *schema.PageData, err error) {
	defer func(start time.Time) { s.observe(ctx, "load", start, err) }(time.Now())
	return s.next.Load(ctx, id)
}

func (s *instrumentedStore) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { s.observe(ctx, "delete", start, err) }(time.Now())
	return s.next.Delete(ctx, id)
}

func (s *instrumentedStore) List(ctx context.Context) (ids []string, err error) {
	defer func(start time.Time) { s.observe(ctx, "list", start, err) }(time.Now())
	return s.next.List(ctx)
}
