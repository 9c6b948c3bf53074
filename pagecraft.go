package pagecraft

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/adapters/memory"
	"github.com/aretw0/pagecraft/pkg/dragengine"
	"github.com/aretw0/pagecraft/pkg/event"
	"github.com/aretw0/pagecraft/pkg/exchange"
	"github.com/aretw0/pagecraft/pkg/history"
	"github.com/aretw0/pagecraft/pkg/observability"
	"github.com/aretw0/pagecraft/pkg/page"
	"github.com/aretw0/pagecraft/pkg/persistence/middleware"
	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/aretw0/pagecraft/pkg/prototype"
	"github.com/aretw0/pagecraft/pkg/schema"
)

// ErrClosed is returned by operations on a closed Editor.
var ErrClosed = errors.New("editor is closed")

// Editor owns the prototype registry, the interaction exchange, the drag
// engine and the open pages of one editing session. Its methods are safe
// for concurrent use; the objects they return are not, and remote callers
// go through Do.
type Editor struct {
	mu sync.Mutex

	registry *prototype.Registry
	exchange *exchange.Exchange
	engine   *dragengine.Engine
	pages    *page.Pages
	store    ports.PageStore
	backend  ports.PageStore
	metrics  *observability.Metrics

	middlewares []middleware.Middleware
	protos      []prototype.Prototype
	historyOpts []history.Option
	logger      *slog.Logger
	attached    event.Group
	pageHooks   map[*page.Page]event.Dispose
	closed      bool
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithLogger sets the structured logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithStore sets where pages are loaded from and saved to. The default is
// an in-memory store.
func WithStore(s ports.PageStore) Option {
	return func(e *Editor) {
		e.store = s
	}
}

// WithStoreMiddleware wraps the store, first middleware outermost.
func WithStoreMiddleware(mws ...middleware.Middleware) Option {
	return func(e *Editor) {
		e.middlewares = append(e.middlewares, mws...)
	}
}

// WithRegistry shares an existing prototype registry.
func WithRegistry(r *prototype.Registry) Option {
	return func(e *Editor) {
		e.registry = r
	}
}

// WithPrototypes registers prototypes at construction.
func WithPrototypes(protos ...prototype.Prototype) Option {
	return func(e *Editor) {
		e.protos = append(e.protos, protos...)
	}
}

// WithHistoryWindow sets how long a burst of edits keeps folding into one
// undo step.
func WithHistoryWindow(d time.Duration) Option {
	return func(e *Editor) {
		e.historyOpts = append(e.historyOpts, history.WithWindow(d))
	}
}

// WithClock replaces the history clock.
func WithClock(c history.Clock) Option {
	return func(e *Editor) {
		e.historyOpts = append(e.historyOpts, history.WithClock(c))
	}
}

// WithMetrics reports drags, node churn, history moves and store calls.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Editor) {
		e.metrics = m
	}
}

// New builds an Editor with no open pages.
func New(opts ...Option) (*Editor, error) {
	e := &Editor{pageHooks: make(map[*page.Page]event.Dispose)}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.registry == nil {
		e.registry = prototype.NewRegistry(prototype.WithLogger(e.logger))
	}
	e.registry.Register(e.protos...)
	if e.store == nil {
		e.store = memory.NewStore()
	}
	if e.metrics != nil {
		e.middlewares = append(e.middlewares, e.metrics.Middleware())
	}
	e.backend = e.store
	e.store = middleware.Chain(e.store, e.middlewares...)

	e.exchange = exchange.New(exchange.WithLogger(e.logger))
	e.engine = dragengine.New(dragengine.WithLogger(e.logger))
	e.pages = page.NewPages(
		page.WithExchange(e.exchange),
		page.WithPagesLogger(e.logger),
		page.WithPageOptions(
			page.WithRegistry(e.registry),
			page.WithHistory(e.historyOpts...),
		),
	)

	e.attached.Add(
		e.engine.AddSensor(e.pages),
		e.exchange.Attach(e.engine),
		e.pages.OnPagesChange(e.trackPages),
	)
	if e.metrics != nil {
		e.attached.Add(e.metrics.AttachEngine(e.engine))
	}
	return e, nil
}

// trackPages attaches metrics to new pages and drops hooks of removed ones.
func (e *Editor) trackPages(pages []*page.Page) {
	if e.metrics == nil {
		return
	}
	live := make(map[*page.Page]bool, len(pages))
	for _, p := range pages {
		live[p] = true
		if _, ok := e.pageHooks[p]; !ok {
			e.pageHooks[p] = e.metrics.AttachPage(p)
		}
	}
	for p, dispose := range e.pageHooks {
		if !live[p] {
			dispose()
			delete(e.pageHooks, p)
		}
	}
}

func (e *Editor) Registry() *prototype.Registry { return e.registry }
func (e *Editor) Exchange() *exchange.Exchange   { return e.exchange }
func (e *Editor) Engine() *dragengine.Engine     { return e.engine }
func (e *Editor) Pages() *page.Pages             { return e.pages }
func (e *Editor) Store() ports.PageStore         { return e.store }
func (e *Editor) Logger() *slog.Logger           { return e.logger }

// Do runs fn while holding the editor lock.
func (e *Editor) Do(fn func(*Editor) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	return fn(e)
}

// LoadPrototypes fetches prototype bundles concurrently and registers them.
func (e *Editor) LoadPrototypes(ctx context.Context, loader prototype.Loader, bundles ...string) error {
	return e.registry.Load(ctx, loader, bundles...)
}

// Open returns the page with the given id, loading it from the store when
// it is not open yet.
func (e *Editor) Open(ctx context.Context, id string) (*page.Page, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}
	if p, err := e.pages.PageByID(id); err == nil {
		return p, nil
	}

	data, err := e.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to open page %s: %w", id, err)
	}
	p := e.pages.AddPage(data)
	e.logger.Info("page opened", "page", p.ID(), "nodes", countNodes(data))
	return p, nil
}

// Create opens a new page built from data without touching the store.
// An existing page with the same id is returned unchanged.
func (e *Editor) Create(data *schema.PageData) (*page.Page, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}
	if data.ID != "" {
		if p, err := e.pages.PageByID(data.ID); err == nil {
			return p, nil
		}
	}
	return e.pages.AddPage(data), nil
}

// Save writes an open page to the store and marks its history as saved.
func (e *Editor) Save(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	return e.save(ctx, id)
}

func (e *Editor) save(ctx context.Context, id string) error {
	p, err := e.pages.PageByID(id)
	if err != nil {
		return err
	}
	if err := e.store.Save(ctx, p.ToData()); err != nil {
		e.logger.Error("page save failed", "page", id, "error", err)
		return fmt.Errorf("failed to save page %s: %w", id, err)
	}
	p.History().SavePoint()
	e.logger.Debug("page saved", "page", id)
	return nil
}

// SaveAll saves every page with unsaved changes.
func (e *Editor) SaveAll(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	var errs []error
	for _, p := range e.pages.Pages() {
		if !p.History().IsModified() {
			continue
		}
		if err := e.save(ctx, p.ID()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ClosePage removes an open page without saving it.
func (e *Editor) ClosePage(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	p, err := e.pages.PageByID(id)
	if err != nil {
		return err
	}
	e.pages.RemovePage(p)
	return nil
}

// Delete closes the page if open and removes it from the store.
func (e *Editor) Delete(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if p, err := e.pages.PageByID(id); err == nil {
		e.pages.RemovePage(p)
	}
	return e.store.Delete(ctx, id)
}

// List returns the ids of every stored page.
func (e *Editor) List(ctx context.Context) ([]string, error) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	return e.store.List(ctx)
}

// Validate checks the props of every node of an open page against the
// types its prototype declares.
func (e *Editor) Validate(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	p, err := e.pages.PageByID(id)
	if err != nil {
		return err
	}
	return ValidatePage(p.ToData(), e.registry)
}

// ValidatePage checks data against the prop types declared in r.
func ValidatePage(data *schema.PageData, r *prototype.Registry) error {
	return schema.ValidateTree(data.Root(), r.Resolver())
}

// Close destroys every page and detaches the drag engine. Unsaved changes
// are lost.
func (e *Editor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.attached.Dispose()
	for p, dispose := range e.pageHooks {
		dispose()
		delete(e.pageHooks, p)
	}
	e.pages.Destroy()
	if c, ok := e.backend.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func countNodes(data *schema.PageData) int {
	n := 0
	data.Root().Walk(func(*schema.ComponentSchema, int) bool {
		n++
		return true
	})
	return n
}
