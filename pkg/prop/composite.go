package prop

import (
	"strings"

	"github.com/aretw0/pagecraft/pkg/event"
	"github.com/aretw0/pagecraft/pkg/hot"
)

// Composite is a field whose value is a map assembled from sub-fields.
type Composite struct {
	cfg    Config
	bag    *Props
	parent *Composite

	items []Field
	index map[string]Field

	hotValue any
	loopLock bool

	useVariable bool
	variable    string

	valueChange event.Emitter[any]
}

// NewComposite creates a detached composite from its declaration. Nested
// groups are flattened into the composite.
func NewComposite(cfg Config) *Composite {
	c := &Composite{cfg: cfg, index: make(map[string]Field)}
	for _, sub := range flatten(cfg.Items) {
		f := newField(sub)
		f.attach(nil, c)
		c.items = append(c.items, f)
		c.index[sub.Name] = f
	}
	if seed := initialValue(cfg); seed != nil {
		c.seed(seed)
	}
	c.hotValue = hot.Freeze(c.mix())
	return c
}

// seed loads live data over the declared defaults. Sub-fields missing from
// v keep their defaults.
func (c *Composite) seed(v any) {
	if env, ok := parseEnvelope(v, "maps"); ok && c.cfg.SupportVariable {
		c.useVariable = true
		c.variable = env.variable
		v = env.inner
	}
	values, _ := hot.AsMap(v)
	for _, f := range c.items {
		if values.Has(f.Name()) {
			seedField(f, values.Get(f.Name()))
		}
	}
	c.hotValue = hot.Freeze(c.mix())
}

func seedField(f Field, v any) {
	if c, ok := f.(*Composite); ok {
		c.seed(v)
		return
	}
	f.SetHotData(hot.Freeze(v), true)
}

func newField(cfg Config) Field {
	if cfg.Type == TypeComposite {
		return NewComposite(cfg)
	}
	return NewProp(cfg)
}

func flatten(cfgs []Config) []Config {
	var out []Config
	for _, c := range cfgs {
		if c.Type == TypeGroup || c.Type == TypeTab {
			out = append(out, flatten(c.Items)...)
			continue
		}
		out = append(out, c)
	}
	return out
}

func (c *Composite) attach(bag *Props, parent *Composite) {
	c.bag = bag
	c.parent = parent
	for _, f := range c.items {
		f.attach(bag, c)
	}
}

func (c *Composite) Name() string   { return c.cfg.Name }
func (c *Composite) Config() Config { return c.cfg }

func (c *Composite) Title() string {
	if c.cfg.Title != "" {
		return c.cfg.Title
	}
	return c.cfg.Name
}

func (c *Composite) IsHidden() bool   { return c.cfg.Hidden || c.cfg.Display == DisplayNone }
func (c *Composite) IsDisabled() bool { return c.cfg.Disabled }
func (c *Composite) IsIgnore() bool   { return c.cfg.Ignore }

// Items returns the direct sub-fields.
func (c *Composite) Items() []Field { return c.items }

// Value assembles the sub-values and applies the accessor.
func (c *Composite) Value() any {
	m := make(map[string]any, len(c.items))
	for _, f := range c.items {
		if v := f.Value(); v != nil {
			m[f.Name()] = v
		}
	}
	if c.cfg.Accessor != nil {
		return c.cfg.Accessor(m)
	}
	return m
}

func (c *Composite) HotValue() any { return c.hotValue }
func (c *Composite) MixValue() any { return c.mix() }

func (c *Composite) mix() any {
	m := make(map[string]any, len(c.items))
	for _, f := range c.items {
		if v := f.HotValue(); v != nil {
			m[f.Name()] = v
		}
	}
	if c.useVariable {
		return wrapVariable(c.variable, "maps", m)
	}
	return m
}

// SetValue sets every sub-field named in v. The sub-field changes are
// folded into a single change of the composite.
func (c *Composite) SetValue(v any) {
	release, ok := c.enterChain()
	if !ok {
		return
	}
	defer release()

	values, _ := hot.AsMap(v)
	c.loopLock = true
	func() {
		defer func() { c.loopLock = false }()
		for _, f := range c.items {
			if !values.Has(f.Name()) {
				continue
			}
			f.SetValue(hot.Thaw(values.Get(f.Name())))
		}
	}()

	if c.Modify() {
		if c.cfg.Mutator != nil {
			c.cfg.Mutator(c.Value(), c.hotValue)
		}
		c.valueChange.Emit(c.Value())
		if c.bag != nil && !c.parentLocked() {
			c.bag.syncPass(c)
		}
	}
}

func (c *Composite) SetHotValue(v any) {
	c.SetValue(v)
}

func (c *Composite) parentLocked() bool {
	for p := c.parent; p != nil; p = p.parent {
		if p.loopLock {
			return true
		}
	}
	return false
}

func (c *Composite) enterChain() (func(), bool) {
	if c.bag == nil {
		return func() {}, true
	}
	return c.bag.enterChain(c)
}

// Modify refreshes the hot value from the sub-fields. It is suppressed
// while a SetValue on this composite is in progress.
func (c *Composite) Modify() bool {
	return c.modify("")
}

func (c *Composite) modify(path string) bool {
	if c.loopLock {
		return false
	}
	next := hot.Freeze(c.mix())
	if hot.Equal(next, c.hotValue) {
		return false
	}
	c.hotValue = next
	name := c.cfg.Name
	if path != "" {
		name += "." + path
	}
	switch {
	case c.parent != nil:
		c.parent.modifyChild(name)
	case c.bag != nil:
		c.bag.modify(name)
	}
	return true
}

func (c *Composite) modifyChild(path string) {
	c.modify(path)
}

// SetHotData restores every sub-field from frozen data.
func (c *Composite) SetHotData(v any, disableMutator bool) {
	if env, ok := parseEnvelope(v, "maps"); ok && c.cfg.SupportVariable {
		c.useVariable = true
		c.variable = env.variable
		v = env.inner
	} else {
		c.useVariable = false
	}
	values, _ := hot.AsMap(v)
	for _, f := range c.items {
		f.SetHotData(values.Get(f.Name()), true)
	}
	c.hotValue = hot.Freeze(c.mix())
	if !disableMutator && c.cfg.Mutator != nil {
		c.cfg.Mutator(c.Value(), c.hotValue)
	}
}

// ToData returns the live encoding, skipping ignored and unset fields.
func (c *Composite) ToData() any {
	m := make(map[string]any, len(c.items))
	for _, f := range c.items {
		if f.IsIgnore() {
			continue
		}
		if v := f.ToData(); v != nil {
			m[f.Name()] = v
		}
	}
	if c.useVariable {
		return wrapVariable(c.variable, "maps", m)
	}
	return m
}

func (c *Composite) Sync() {
	if c.cfg.Sync != nil {
		c.cfg.Sync(c)
	}
	for _, f := range c.items {
		f.Sync()
	}
}

// Prop resolves a dotted path relative to this composite.
func (c *Composite) Prop(path string) Field {
	if path == "" {
		return c
	}
	head, rest, _ := strings.Cut(path, ".")
	f, ok := c.index[head]
	if !ok {
		return nil
	}
	return f.Prop(rest)
}

func (c *Composite) IsUseVariable() bool   { return c.useVariable }
func (c *Composite) VariableValue() string { return c.variable }

// SetUseVariable switches variable binding; sub-field values are kept.
func (c *Composite) SetUseVariable(on bool) {
	if on && !c.cfg.SupportVariable {
		return
	}
	c.useVariable = on
	c.Modify()
}

func (c *Composite) SetVariableValue(name string) {
	c.variable = name
	c.Modify()
}

func (c *Composite) OnValueChange(fn func(v any)) event.Dispose {
	return c.valueChange.Subscribe(fn)
}

func (c *Composite) Destroy() {
	for _, f := range c.items {
		f.Destroy()
	}
	c.valueChange.Clear()
	c.bag = nil
	c.parent = nil
}
