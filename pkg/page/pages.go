package page

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/event"
	"github.com/aretw0/pagecraft/pkg/geom"
	"github.com/aretw0/pagecraft/pkg/location"
	"github.com/aretw0/pagecraft/pkg/node"
	"github.com/aretw0/pagecraft/pkg/schema"
)

// Pages is the ordered page collection of an editor. It forwards the
// drop sensor calls to the current page.
type Pages struct {
	pages       []*Page
	current     *Page
	pageOpts    []Option
	interaction node.Interaction
	log         *slog.Logger

	pagesChange   event.Emitter[[]*Page]
	currentChange event.Emitter[*Page]
}

// PagesOption configures Pages.
type PagesOption func(*Pages)

// WithPageOptions applies opts to every page the collection creates.
func WithPageOptions(opts ...Option) PagesOption {
	return func(ps *Pages) { ps.pageOpts = append(ps.pageOpts, opts...) }
}

// WithExchange purges x whenever the current page changes. Pages built by
// the collection report to x.
func WithExchange(x node.Interaction) PagesOption {
	return func(ps *Pages) {
		ps.interaction = x
		ps.pageOpts = append(ps.pageOpts, WithInteraction(x))
	}
}

// WithPagesLogger sets the logger.
func WithPagesLogger(l *slog.Logger) PagesOption {
	return func(ps *Pages) {
		if l != nil {
			ps.log = l
			ps.pageOpts = append(ps.pageOpts, WithLogger(l))
		}
	}
}

// NewPages returns an empty collection.
func NewPages(opts ...PagesOption) *Pages {
	ps := &Pages{log: logging.NewNop()}
	for _, opt := range opts {
		opt(ps)
	}
	return ps
}

// SetPages replaces the collection and makes the first page current.
func (ps *Pages) SetPages(data []*schema.PageData) {
	for _, p := range ps.pages {
		p.Destroy()
	}
	ps.pages = make([]*Page, 0, len(data))
	ps.current = nil
	for _, d := range data {
		ps.pages = append(ps.pages, New(d, ps.pageOpts...))
	}
	ps.log.Debug("pages loaded", "count", len(ps.pages))
	ps.pagesChange.Emit(ps.Pages())
	ps.SetCurrentPage(ps.Page(0))
}

// AddPage appends a page built from data. It becomes current when no page
// is.
func (ps *Pages) AddPage(data *schema.PageData) *Page {
	p := New(data, ps.pageOpts...)
	ps.pages = append(ps.pages, p)
	ps.pagesChange.Emit(ps.Pages())
	if ps.current == nil {
		ps.SetCurrentPage(p)
	}
	return p
}

// Page returns the page at index i, or nil.
func (ps *Pages) Page(i int) *Page {
	if i < 0 || i >= len(ps.pages) {
		return nil
	}
	return ps.pages[i]
}

// FindPage returns the first page fn accepts.
func (ps *Pages) FindPage(fn func(*Page) bool) *Page {
	for _, p := range ps.pages {
		if fn(p) {
			return p
		}
	}
	return nil
}

// PageByID returns the page with the given id.
func (ps *Pages) PageByID(id string) (*Page, error) {
	if p := ps.FindPage(func(p *Page) bool { return p.ID() == id }); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrPageNotFound, id)
}

// Pages returns the pages in order.
func (ps *Pages) Pages() []*Page { return slices.Clone(ps.pages) }

// Len returns the number of pages.
func (ps *Pages) Len() int { return len(ps.pages) }

// RemovePage destroys p and drops it. When p was current the first page
// takes over.
func (ps *Pages) RemovePage(p *Page) {
	if i := slices.Index(ps.pages, p); i >= 0 {
		p.Destroy()
		ps.pages = slices.Delete(ps.pages, i, i+1)
		if ps.current == p {
			ps.current = nil
			ps.SetCurrentPage(ps.Page(0))
		}
	}
	ps.pagesChange.Emit(ps.Pages())
}

// InsertPage moves p to index.
func (ps *Pages) InsertPage(p *Page, index int) {
	i := slices.Index(ps.pages, p)
	if i < 0 {
		return
	}
	ps.pages = slices.Delete(ps.pages, i, i+1)
	if index > i {
		index--
	}
	index = max(0, min(index, len(ps.pages)))
	ps.pages = slices.Insert(ps.pages, index, p)
	ps.pagesChange.Emit(ps.Pages())
}

// SortPages replaces the order of the pages.
func (ps *Pages) SortPages(pages []*Page) {
	ps.pages = slices.Clone(pages)
	ps.pagesChange.Emit(ps.Pages())
}

// SetCurrentPage switches the visible page. Interaction roles are cleared
// because they point into the page being left. Pages outside the
// collection are treated as nil.
func (ps *Pages) SetCurrentPage(p *Page) {
	if p == ps.current {
		return
	}
	if ps.interaction != nil {
		ps.interaction.Purge(nil)
	}
	if ps.current != nil {
		ps.current.SetVisible(false)
	}
	if p != nil && !slices.Contains(ps.pages, p) {
		p = nil
	}
	ps.current = p
	if p != nil {
		p.SetVisible(true)
	}
	ps.currentChange.Emit(p)
}

// CurrentPage returns the visible page, or nil.
func (ps *Pages) CurrentPage() *Page { return ps.current }

// ToData exports every page.
func (ps *Pages) ToData() []*schema.PageData {
	out := make([]*schema.PageData, len(ps.pages))
	for i, p := range ps.pages {
		out[i] = p.ToData()
	}
	return out
}

// Destroy destroys every page.
func (ps *Pages) Destroy() {
	for _, p := range ps.pages {
		p.Destroy()
	}
	ps.pages = nil
	ps.current = nil
	ps.pagesChange.Clear()
	ps.currentChange.Clear()
}

func (ps *Pages) OnPagesChange(fn func([]*Page)) event.Dispose {
	return ps.pagesChange.Subscribe(fn)
}

func (ps *Pages) OnCurrentPageChange(fn func(*Page)) event.Dispose {
	return ps.currentChange.Subscribe(fn)
}

// Sensor implementation delegating to the current page.

func (ps *Pages) IsEnabled() bool {
	return ps.current != nil && ps.current.IsEnabled()
}

func (ps *Pages) IsEnter(p geom.Point) bool {
	return ps.current != nil && ps.current.IsEnter(p)
}

func (ps *Pages) IsInRange(p geom.Point) bool {
	return ps.current != nil && ps.current.IsInRange(p)
}

func (ps *Pages) Orient(d node.Dragment, p geom.Point) *location.Location {
	if ps.current == nil {
		return nil
	}
	return ps.current.Orient(d, p)
}

func (ps *Pages) Deactivate() {
	if ps.current != nil {
		ps.current.Deactivate()
	}
}
