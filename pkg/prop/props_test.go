package prop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pagecraft/pkg/hot"
)

type recorder struct {
	titles []string
}

func (r *recorder) AddRecord(title string) { r.titles = append(r.titles, title) }

func buttonConfigs() []Config {
	return []Config{
		{Name: "label", DefaultValue: "Click", SupportVariable: true},
		{Name: "size", DefaultValue: 2},
		{Name: "style", Type: TypeComposite, Items: []Config{
			{Name: "color", DefaultValue: "red"},
			{Name: "margin", Type: TypeComposite, Items: []Config{
				{Name: "top", DefaultValue: 0},
			}},
		}},
		{Name: "advanced", Type: TypeGroup, Items: []Config{
			{Name: "testId"},
			{Name: "secret", Hidden: true},
		}},
	}
}

func TestProps_SetValueThenValue(t *testing.T) {
	rec := &recorder{}
	p := New(rec, buttonConfigs(), hot.Value{})

	p.SetPropValue("label", "Go")
	assert.Equal(t, "Go", p.PropValue("label"))
	assert.Equal(t, []string{"Modify prop :label"}, rec.titles)

	// Setting the same value is not a change.
	p.SetPropValue("label", "Go")
	assert.Len(t, rec.titles, 1)
}

func TestProps_LiveDataAndExtraProps(t *testing.T) {
	p := New(nil, buttonConfigs(), hot.Live(map[string]any{
		"label":   "Send",
		"style":   map[string]any{"color": "blue"},
		"onClick": "handler",
	}))

	assert.Equal(t, "Send", p.PropValue("label"))
	assert.Equal(t, "blue", p.PropValue("style.color"))
	assert.Equal(t, 0, p.PropValue("style.margin.top"))

	extra, ok := p.ExtraProp("onClick")
	require.True(t, ok)
	assert.Equal(t, "handler", extra)

	data := p.ToData()
	assert.Equal(t, "handler", data["onClick"])
	assert.Equal(t, map[string]any{"color": "blue", "margin": map[string]any{"top": 0}}, data["style"])
	assert.NotContains(t, data, "advanced")
	assert.NotContains(t, data, "testId")
}

func TestProps_CompositeSetIsOneRecord(t *testing.T) {
	rec := &recorder{}
	p := New(rec, buttonConfigs(), hot.Value{})

	p.SetPropValue("style", map[string]any{"color": "green", "margin": map[string]any{"top": 8}})
	assert.Equal(t, []string{"Modify prop :style"}, rec.titles)
	assert.Equal(t, 8, p.PropValue("style.margin.top"))

	p.SetPropValue("style.margin.top", 4)
	assert.Equal(t, "Modify prop :style.margin.top", rec.titles[len(rec.titles)-1])
}

func TestProps_VariableBinding(t *testing.T) {
	rec := &recorder{}
	p := New(rec, buttonConfigs(), hot.Value{})
	label := p.Prop("label", false)
	require.NotNil(t, label)

	label.SetUseVariable(true)
	label.SetVariableValue("state.title")
	assert.Equal(t, map[string]any{"type": "variable", "variable": "state.title", "value": "Click"}, label.ToData())

	label.SetUseVariable(false)
	assert.Equal(t, "Click", label.ToData())

	size := p.Prop("size", false)
	size.SetUseVariable(true)
	assert.False(t, size.IsUseVariable())
}

func TestProps_SnapshotRoundTrip(t *testing.T) {
	p := New(nil, buttonConfigs(), hot.Live(map[string]any{"extra": 1}))
	p.SetPropValue("label", "One")
	snap := p.HotData()

	p.SetPropValue("label", "Two")
	p.SetPropValue("style.color", "black")
	p.SetExtraProp("extra", nil)

	p.SetHotData(snap)
	assert.Equal(t, "One", p.PropValue("label"))
	assert.Equal(t, "red", p.PropValue("style.color"))
	v, ok := p.ExtraProp("extra")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.True(t, p.HotData().Equal(snap))

	restored := New(nil, buttonConfigs(), hot.Snapshot(snap))
	assert.True(t, restored.HotData().Equal(snap))
}

func TestProps_SyncPass(t *testing.T) {
	cfgs := []Config{
		{Name: "width"},
		{Name: "ratio", DefaultValue: 2},
		{Name: "height", Sync: nil},
	}
	var p *Props
	cfgs[2].Sync = func(f Field) {
		w, _ := p.PropValue("width").(int)
		r, _ := p.PropValue("ratio").(int)
		f.SetValue(w * r)
	}
	p = New(nil, cfgs, hot.Value{})

	changes := 0
	p.OnPropsChange(func() { changes++ })

	p.SetPropValue("width", 10)
	assert.Equal(t, 20, p.PropValue("height"))
	assert.Equal(t, 1, changes)
}

func TestProps_ChainStopsReentrantSet(t *testing.T) {
	calls := 0
	var p *Props
	cfgs := []Config{{Name: "a", Mutator: func(value, _ any) {
		calls++
		p.SetPropValue("a", "loop")
	}}}
	p = New(nil, cfgs, hot.Value{})

	p.SetPropValue("a", "x")
	assert.Equal(t, 1, calls)
	assert.Equal(t, "x", p.PropValue("a"))
}

func TestProps_AccessorAndMutator(t *testing.T) {
	var seen []any
	cfgs := []Config{{
		Name:     "title",
		Accessor: func(v any) any { s, _ := v.(string); return "[" + s + "]" },
		Mutator:  func(v, _ any) { seen = append(seen, v) },
	}}
	p := New(nil, cfgs, hot.Value{})
	p.SetPropValue("title", "hi")

	assert.Equal(t, "[hi]", p.PropValue("title"))
	assert.Equal(t, "hi", p.ToData()["title"])
	assert.Equal(t, []any{"hi"}, seen)
}

func TestProps_CreateNew(t *testing.T) {
	p := New(nil, nil, hot.Live(map[string]any{"free": "text"}))
	assert.Nil(t, p.Prop("free", false))

	f := p.Prop("free", true)
	require.NotNil(t, f)
	assert.Equal(t, "text", f.Value())
	_, stillExtra := p.ExtraProp("free")
	assert.False(t, stillExtra)
	assert.Nil(t, p.Prop("a.b", true))
}

func TestGroup_VisibilityAndExpand(t *testing.T) {
	p := New(nil, []Config{
		{Name: "hiddenGroup", Type: TypeGroup, Items: []Config{{Name: "x", Hidden: true}}},
		{Name: "shown", Type: TypeGroup, Collapsed: true, Items: []Config{{Name: "y"}}},
		{Name: "main", Type: TypeTab, Items: []Config{{Name: "z", Display: DisplayNone}}},
	}, hot.Value{})

	require.Len(t, p.Items(), 3)
	assert.Len(t, p.RealItems(), 3)
	visibleNames := []string{}
	for _, it := range p.VisibleItems() {
		visibleNames = append(visibleNames, it.Name())
	}
	assert.Equal(t, []string{"shown"}, visibleNames)

	g := p.Items()[1].(*Group)
	assert.False(t, g.IsExpanded())
	var got bool
	g.OnExpandChange(func(e bool) { got = e })
	g.ToggleExpand()
	assert.True(t, got)
	assert.Equal(t, DisplayTab, g.Display())
}
