package pagecraft_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pagecraft"
	"github.com/aretw0/pagecraft/pkg/adapters/memory"
	"github.com/aretw0/pagecraft/pkg/dragengine"
	"github.com/aretw0/pagecraft/pkg/geom"
	"github.com/aretw0/pagecraft/pkg/node"
	"github.com/aretw0/pagecraft/pkg/observability"
	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/aretw0/pagecraft/pkg/prop"
	"github.com/aretw0/pagecraft/pkg/prototype"
	"github.com/aretw0/pagecraft/pkg/schema"
)

func prototypes() []prototype.Prototype {
	return []prototype.Prototype{
		prototype.Declare(prototype.Definition{ComponentName: "Page", Container: true}),
		prototype.Declare(prototype.Definition{
			ComponentName: "Text",
			Props:         []prop.Config{{Name: "content", ValueType: "string"}},
		}),
	}
}

func homeData() *schema.PageData {
	return &schema.PageData{
		ID: "home",
		ComponentsTree: []*schema.ComponentSchema{{
			ID:            "root",
			ComponentName: "Page",
			Children: []*schema.ComponentSchema{
				{ID: "a", ComponentName: "Text", Props: map[string]any{"content": "A"}},
				{ID: "b", ComponentName: "Text", Props: map[string]any{"content": "B"}},
			},
		}},
		Params: map[string]any{},
	}
}

func newEditor(t *testing.T, opts ...pagecraft.Option) (*pagecraft.Editor, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Save(context.Background(), homeData()))

	now := time.Unix(0, 0)
	opts = append([]pagecraft.Option{
		pagecraft.WithPrototypes(prototypes()...),
		pagecraft.WithStore(store),
		pagecraft.WithClock(func() time.Time { return now }),
	}, opts...)
	ed, err := pagecraft.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ed.Close() })
	return ed, store
}

func childIDs(n *node.Node) []string {
	out := []string{}
	for _, c := range n.Children() {
		out = append(out, c.ID())
	}
	return out
}

func TestEditor_OpenEditSave(t *testing.T) {
	ed, store := newEditor(t)
	ctx := context.Background()

	p, err := ed.Open(ctx, "home")
	require.NoError(t, err)
	assert.Same(t, p, ed.Pages().CurrentPage())

	again, err := ed.Open(ctx, "home")
	require.NoError(t, err)
	assert.Same(t, p, again, "an open page is not loaded twice")

	p.Node("a").SetPropValue("content", "Hello")
	assert.True(t, p.History().IsModified())

	require.NoError(t, ed.Save(ctx, "home"))
	assert.False(t, p.History().IsModified())

	saved, err := store.Load(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, "Hello", saved.Root().Children[0].Props["content"])
}

func TestEditor_OpenMissing(t *testing.T) {
	ed, _ := newEditor(t)
	_, err := ed.Open(context.Background(), "nope")
	assert.ErrorIs(t, err, ports.ErrPageNotFound)
}

func TestEditor_SaveAllSkipsUnmodified(t *testing.T) {
	var saves int
	m := observability.NewMetrics(nil, observability.WithHooks(observability.Hooks{
		OnStoreOp: func(_ context.Context, op string, _ error) {
			if op == "save" {
				saves++
			}
		},
	}))
	ed, _ := newEditor(t, pagecraft.WithMetrics(m))
	ctx := context.Background()

	p, err := ed.Open(ctx, "home")
	require.NoError(t, err)
	_, err = ed.Create(&schema.PageData{ID: "draft", ComponentsTree: []*schema.ComponentSchema{{ComponentName: "Page"}}})
	require.NoError(t, err)

	require.NoError(t, ed.SaveAll(ctx))
	assert.Equal(t, 0, saves)

	require.NoError(t, p.Node("b").Remove())
	require.NoError(t, ed.SaveAll(ctx))
	assert.Equal(t, 1, saves)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodesDestroy.WithLabelValues("Text")))
}

func TestEditor_DragThroughEngine(t *testing.T) {
	ed, _ := newEditor(t)
	p, err := ed.Open(context.Background(), "home")
	require.NoError(t, err)
	p.Mount(&node.Layout{Rects: map[string]geom.Rect{
		"a": geom.XYWH(0, 0, 800, 100),
		"b": geom.XYWH(0, 100, 800, 100),
	}}, geom.XYWH(0, 0, 800, 600))

	g := ed.Engine().Boost(p.Node("a"), dragengine.At(400, 50))
	g.Move(dragengine.At(400, 190))
	g.Up()

	assert.Equal(t, []string{"b", "a"}, childIDs(p.Root()))
	assert.Same(t, p.Node("a"), ed.Exchange().Selected())

	p.History().Back()
	assert.Equal(t, []string{"a", "b"}, childIDs(p.Root()))
}

func TestEditor_Validate(t *testing.T) {
	ed, _ := newEditor(t)
	p, err := ed.Open(context.Background(), "home")
	require.NoError(t, err)

	require.NoError(t, ed.Validate("home"))

	p.Node("a").SetPropValue("content", 42)
	err = ed.Validate("home")
	require.Error(t, err)
	var agg *schema.AggregateError
	require.ErrorAs(t, err, &agg)
	assert.Len(t, agg.Errors, 1)
}

func TestEditor_DeleteAndList(t *testing.T) {
	ed, _ := newEditor(t)
	ctx := context.Background()

	_, err := ed.Open(ctx, "home")
	require.NoError(t, err)

	ids, err := ed.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"home"}, ids)

	require.NoError(t, ed.Delete(ctx, "home"))
	assert.Equal(t, 0, ed.Pages().Len())
	ids, err = ed.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestEditor_Closed(t *testing.T) {
	ed, _ := newEditor(t)
	require.NoError(t, ed.Close())
	require.NoError(t, ed.Close())

	_, err := ed.Open(context.Background(), "home")
	assert.ErrorIs(t, err, pagecraft.ErrClosed)
	assert.ErrorIs(t, ed.Do(func(*pagecraft.Editor) error { return nil }), pagecraft.ErrClosed)
	_, err = ed.List(context.Background())
	assert.ErrorIs(t, err, pagecraft.ErrClosed)
	assert.ErrorIs(t, ed.Validate("home"), pagecraft.ErrClosed)
	assert.ErrorIs(t, ed.Delete(context.Background(), "home"), pagecraft.ErrClosed)
}
