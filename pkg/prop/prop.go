package prop

import (
	"github.com/aretw0/pagecraft/pkg/event"
	"github.com/aretw0/pagecraft/pkg/hot"
)

// Prop is a leaf field holding a single value.
type Prop struct {
	cfg    Config
	bag    *Props
	parent *Composite

	value    any
	hotValue any

	useVariable bool
	variable    string

	valueChange event.Emitter[any]
}

// NewProp creates a detached leaf. Bags attach it on registration.
func NewProp(cfg Config) *Prop {
	p := &Prop{cfg: cfg}
	p.value = initialValue(cfg)
	p.hotValue = hot.Freeze(p.mix())
	return p
}

func initialValue(cfg Config) any {
	if cfg.InitialValue != nil {
		return hot.Thaw(hot.Freeze(cfg.InitialValue))
	}
	if cfg.DefaultValue != nil {
		return hot.Thaw(hot.Freeze(cfg.DefaultValue))
	}
	return nil
}

func (p *Prop) attach(bag *Props, parent *Composite) {
	p.bag = bag
	p.parent = parent
}

func (p *Prop) Name() string   { return p.cfg.Name }
func (p *Prop) Config() Config { return p.cfg }

func (p *Prop) Title() string {
	if p.cfg.Title != "" {
		return p.cfg.Title
	}
	return p.cfg.Name
}

func (p *Prop) IsHidden() bool   { return p.cfg.Hidden || p.cfg.Display == DisplayNone }
func (p *Prop) IsDisabled() bool { return p.cfg.Disabled }
func (p *Prop) IsIgnore() bool   { return p.cfg.Ignore }

// Value returns the stored value passed through the accessor.
func (p *Prop) Value() any {
	if p.cfg.Accessor != nil {
		return p.cfg.Accessor(p.value)
	}
	return p.value
}

// HotValue returns the frozen encoding of the prop.
func (p *Prop) HotValue() any { return p.hotValue }

// MixValue returns the live encoding, wrapped when bound to a variable.
func (p *Prop) MixValue() any { return p.mix() }

func (p *Prop) mix() any {
	if p.useVariable {
		return wrapVariable(p.variable, "value", p.value)
	}
	return p.value
}

// SetValue stores v. A counted change runs the mutator, notifies value
// listeners and starts a sync pass over the siblings.
func (p *Prop) SetValue(v any) {
	release, ok := p.enterChain()
	if !ok {
		return
	}
	defer release()

	p.value = v
	if p.Modify() {
		p.changed()
	}
}

func (p *Prop) SetHotValue(v any) {
	p.SetValue(hot.Thaw(v))
}

func (p *Prop) changed() {
	if p.cfg.Mutator != nil {
		p.cfg.Mutator(p.value, p.hotValue)
	}
	p.valueChange.Emit(p.Value())
	if p.bag != nil && !p.parentLocked() {
		p.bag.syncPass(p)
	}
}

func (p *Prop) parentLocked() bool {
	for c := p.parent; c != nil; c = c.parent {
		if c.loopLock {
			return true
		}
	}
	return false
}

func (p *Prop) enterChain() (func(), bool) {
	if p.bag == nil {
		return func() {}, true
	}
	return p.bag.enterChain(p)
}

// Modify refreshes the hot value and reports whether it changed.
func (p *Prop) Modify() bool {
	next := hot.Freeze(p.mix())
	if hot.Equal(next, p.hotValue) {
		return false
	}
	p.hotValue = next
	switch {
	case p.parent != nil:
		p.parent.modifyChild(p.cfg.Name)
	case p.bag != nil:
		p.bag.modify(p.cfg.Name)
	}
	return true
}

// SetHotData restores the prop from frozen data without recording.
func (p *Prop) SetHotData(v any, disableMutator bool) {
	if env, ok := parseEnvelope(v, "value"); ok && p.cfg.SupportVariable {
		p.useVariable = true
		p.variable = env.variable
		v = env.inner
	} else {
		p.useVariable = false
	}
	p.value = hot.Thaw(v)
	p.hotValue = hot.Freeze(p.mix())
	if !disableMutator && p.cfg.Mutator != nil {
		p.cfg.Mutator(p.value, p.hotValue)
	}
}

// ToData returns a fresh live copy of the encoding.
func (p *Prop) ToData() any {
	return hot.Thaw(hot.Freeze(p.mix()))
}

func (p *Prop) Sync() {
	if p.cfg.Sync != nil {
		p.cfg.Sync(p)
	}
}

func (p *Prop) Prop(path string) Field {
	if path == "" {
		return p
	}
	return nil
}

func (p *Prop) IsUseVariable() bool   { return p.useVariable }
func (p *Prop) VariableValue() string { return p.variable }

// SetUseVariable switches variable binding; the plain value is kept.
func (p *Prop) SetUseVariable(on bool) {
	if on && !p.cfg.SupportVariable {
		return
	}
	p.useVariable = on
	p.Modify()
}

func (p *Prop) SetVariableValue(name string) {
	p.variable = name
	p.Modify()
}

func (p *Prop) OnValueChange(fn func(v any)) event.Dispose {
	return p.valueChange.Subscribe(fn)
}

func (p *Prop) Destroy() {
	p.valueChange.Clear()
	p.bag = nil
	p.parent = nil
}
