package prop

import "github.com/aretw0/pagecraft/pkg/event"

// Group lays fields out together. It carries no data of its own.
type Group struct {
	cfg      Config
	items    []Item
	expanded bool

	expandChange event.Emitter[bool]
}

func newGroup(cfg Config, items []Item) *Group {
	if cfg.Display == "" {
		cfg.Display = DisplayTab
	}
	return &Group{cfg: cfg, items: items, expanded: !cfg.Collapsed}
}

func (g *Group) Name() string    { return g.cfg.Name }
func (g *Group) Config() Config  { return g.cfg }
func (g *Group) Display() string { return g.cfg.Display }
func (g *Group) IsIgnore() bool  { return true }
func (g *Group) Items() []Item   { return g.items }

func (g *Group) Title() string {
	if g.cfg.Title != "" {
		return g.cfg.Title
	}
	return g.cfg.Name
}

// IsHidden reports whether the group shows nothing.
func (g *Group) IsHidden() bool {
	if g.cfg.Display == DisplayNone || g.cfg.Disabled {
		return true
	}
	return len(visible(g.items)) == 0
}

func (g *Group) IsExpanded() bool { return g.expanded }

func (g *Group) ToggleExpand() {
	g.expanded = !g.expanded
	g.expandChange.Emit(g.expanded)
}

func (g *Group) OnExpandChange(fn func(expanded bool)) event.Dispose {
	return g.expandChange.Subscribe(fn)
}

func (g *Group) Destroy() {
	g.expandChange.Clear()
}

// Tab is a top-level page of groups and fields.
type Tab struct {
	cfg   Config
	items []Item
}

func (t *Tab) Name() string   { return t.cfg.Name }
func (t *Tab) Config() Config { return t.cfg }
func (t *Tab) IsIgnore() bool { return true }
func (t *Tab) Items() []Item  { return t.items }
func (t *Tab) Destroy()       {}

func (t *Tab) Title() string {
	if t.cfg.Title != "" {
		return t.cfg.Title
	}
	return t.cfg.Name
}

func (t *Tab) IsHidden() bool {
	return len(visible(t.items)) == 0
}

func visible(items []Item) []Item {
	var out []Item
	for _, it := range items {
		if !it.IsHidden() {
			out = append(out, it)
		}
	}
	return out
}
