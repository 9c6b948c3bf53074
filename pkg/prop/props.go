package prop

import (
	"maps"
	"strings"

	"github.com/aretw0/pagecraft/pkg/event"
	"github.com/aretw0/pagecraft/pkg/hot"
)

// Keys of the hot data of a bag.
const (
	HotExtraProps = "extraProps"
	HotProps      = "hotProps"
)

// Props is the bag of items of one node.
type Props struct {
	owner Owner
	items []Item
	real  []Field
	index map[string]Field
	extra map[string]any
	hot   hot.Map

	chain        []Field
	disableChain bool
	syncVisited  map[Field]bool

	propsChange event.Signal
}

// New builds a bag from its declarations. Data is either live props as
// found in a component schema, or a snapshot produced by HotData. Keys
// without a declaration are kept as extra props.
func New(owner Owner, configs []Config, data hot.Value) *Props {
	p := &Props{
		owner: owner,
		index: make(map[string]Field),
		extra: make(map[string]any),
	}
	for _, cfg := range configs {
		p.items = append(p.items, p.build(cfg))
	}

	switch {
	case data.IsSnapshot():
		m, _ := hot.AsMap(data.Data())
		p.load(m)
	case !data.IsZero():
		live, _ := hot.AsMap(data.Data())
		for k, v := range live.All() {
			if f, ok := p.index[k]; ok {
				seedField(f, v)
				continue
			}
			p.extra[k] = hot.Thaw(v)
		}
	}
	p.hot = p.compute()
	return p
}

func (p *Props) build(cfg Config) Item {
	switch cfg.Type {
	case TypeGroup:
		items := make([]Item, 0, len(cfg.Items))
		for _, sub := range cfg.Items {
			items = append(items, p.build(sub))
		}
		return newGroup(cfg, items)
	case TypeTab:
		items := make([]Item, 0, len(cfg.Items))
		for _, sub := range cfg.Items {
			items = append(items, p.build(sub))
		}
		return &Tab{cfg: cfg, items: items}
	}
	f := newField(cfg)
	p.register(f)
	return f
}

func (p *Props) register(f Field) {
	f.attach(p, nil)
	p.real = append(p.real, f)
	p.index[f.Name()] = f
}

// Items returns the top-level items, groups and tabs included.
func (p *Props) Items() []Item { return p.items }

// VisibleItems returns the top-level items that are not hidden.
func (p *Props) VisibleItems() []Item { return visible(p.items) }

// RealItems returns every data-bearing top-level field, including the
// ones declared inside groups and tabs.
func (p *Props) RealItems() []Field { return p.real }

// Prop resolves a dotted path. With createNew, an unknown top-level name
// becomes a new leaf that takes over the matching extra prop.
func (p *Props) Prop(path string, createNew bool) Field {
	head, rest, _ := strings.Cut(path, ".")
	f, ok := p.index[head]
	if !ok {
		if !createNew || rest != "" || head == "" {
			return nil
		}
		np := NewProp(Config{Name: head})
		if v, had := p.extra[head]; had {
			np.value = v
			np.hotValue = hot.Freeze(v)
			delete(p.extra, head)
		}
		p.register(np)
		p.items = append(p.items, np)
		return np
	}
	return f.Prop(rest)
}

// PropValue returns the value at path, or nil.
func (p *Props) PropValue(path string) any {
	if f := p.Prop(path, false); f != nil {
		return f.Value()
	}
	return nil
}

// SetPropValue sets the value at path, creating a top-level prop if needed.
func (p *Props) SetPropValue(path string, v any) bool {
	f := p.Prop(path, true)
	if f == nil {
		return false
	}
	f.SetValue(v)
	return true
}

// ExtraProp returns an undeclared prop.
func (p *Props) ExtraProp(name string) (any, bool) {
	v, ok := p.extra[name]
	return v, ok
}

// SetExtraProp stores an undeclared prop. A nil value deletes it.
func (p *Props) SetExtraProp(name string, v any) {
	if v == nil {
		delete(p.extra, name)
	} else {
		p.extra[name] = v
	}
	if p.modify(name) {
		event.Fire(&p.propsChange)
	}
}

// HotData returns {extraProps, hotProps}.
func (p *Props) HotData() hot.Map { return p.hot }

func (p *Props) compute() hot.Map {
	props := make(map[string]any, len(p.real))
	for _, f := range p.real {
		props[f.Name()] = f.HotValue()
	}
	return hot.NewMap(map[string]any{
		HotExtraProps: maps.Clone(p.extra),
		HotProps:      props,
	})
}

// modify folds field hot values into the bag and reports a counted change
// to the owner.
func (p *Props) modify(name string) bool {
	next := p.compute()
	if next.Equal(p.hot) {
		return false
	}
	p.hot = next
	if p.owner != nil {
		if name == "" {
			p.owner.AddRecord("Modify props")
		} else {
			p.owner.AddRecord("Modify prop :" + name)
		}
	}
	return true
}

// SetHotData replays a snapshot. Set chains are disabled while replaying
// so mutators cannot start new edits.
func (p *Props) SetHotData(data hot.Map) {
	p.disableChain = true
	defer func() { p.disableChain = false }()

	p.load(data)
	p.hot = p.compute()
	event.Fire(&p.propsChange)
}

func (p *Props) load(data hot.Map) {
	extra, _ := data.Map(HotExtraProps)
	p.extra = extra.ToLive()
	if p.extra == nil {
		p.extra = make(map[string]any)
	}
	props, _ := data.Map(HotProps)
	for _, f := range p.real {
		f.SetHotData(props.Get(f.Name()), true)
	}
}

// ToData returns the live props: extra props plus every field that is
// not ignored and not unset.
func (p *Props) ToData() map[string]any {
	out := make(map[string]any, len(p.extra)+len(p.real))
	for k, v := range p.extra {
		out[k] = hot.Thaw(hot.Freeze(v))
	}
	for _, f := range p.real {
		if f.IsIgnore() {
			continue
		}
		if v := f.ToData(); v != nil {
			out[f.Name()] = v
		}
	}
	return out
}

// ToProps returns the values as seen through accessors.
func (p *Props) ToProps() map[string]any {
	out := maps.Clone(p.extra)
	if out == nil {
		out = make(map[string]any)
	}
	for _, f := range p.real {
		out[f.Name()] = f.Value()
	}
	return out
}

// OnPropsChange subscribes to changes of any prop.
func (p *Props) OnPropsChange(fn func()) event.Dispose {
	return p.propsChange.Subscribe(func(struct{}) { fn() })
}

func (p *Props) Destroy() {
	for _, it := range p.items {
		it.Destroy()
	}
	p.propsChange.Clear()
	p.owner = nil
}

// enterChain guards re-entrant sets. The first field of a chain starts it
// and the returned release ends it; a field already on the chain, or any
// field while the chain is disabled, is refused.
func (p *Props) enterChain(f Field) (func(), bool) {
	if p.disableChain {
		return nil, false
	}
	for _, c := range p.chain {
		if c == f {
			return nil, false
		}
	}
	start := len(p.chain) == 0
	p.chain = append(p.chain, f)
	if !start {
		return func() {}, true
	}
	return func() { p.chain = nil }, true
}

// syncPass lets every other field react to a change of origin. Nested
// passes share the visited set; the outermost one emits props change.
func (p *Props) syncPass(origin Field) {
	outer := p.syncVisited == nil
	if outer {
		p.syncVisited = make(map[Field]bool)
		defer func() {
			p.syncVisited = nil
			event.Fire(&p.propsChange)
		}()
	}
	p.syncVisited[origin] = true
	for _, f := range p.real {
		if p.syncVisited[f] {
			continue
		}
		p.syncVisited[f] = true
		f.Sync()
	}
}
