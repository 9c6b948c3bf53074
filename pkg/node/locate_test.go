package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pagecraft/pkg/geom"
	"github.com/aretw0/pagecraft/pkg/location"
	"github.com/aretw0/pagecraft/pkg/schema"
)

func rowPage(t *testing.T, ids ...string) (*testOwner, *Node) {
	t.Helper()
	o := newTestOwner()
	data := &schema.ComponentSchema{ID: "root", ComponentName: "Page"}
	for i, id := range ids {
		data.Children = append(data.Children, &schema.ComponentSchema{ID: id, ComponentName: "Text"})
		o.layout.Rects[id] = geom.XYWH(float64(i*100), 0, 100, 50)
	}
	o.bounds = geom.XYWH(0, 0, 1000, 600)
	o.layout.Displays["root"] = location.ParseDisplay("flex", "row")
	return o, NewRoot(o, data)
}

func TestLocate_EndToEndInsert(t *testing.T) {
	o, root := rowPage(t, "A", "B")
	c := ComponentDragment{Proto: o.protos["Text"]}

	loc := root.Locate(c, geom.Pt(90, 25))
	require.NotNil(t, loc)
	assert.Same(t, root, ContainerOf(loc))
	ins := loc.Insertion()
	assert.Same(t, root.FindNode("A"), NearOf(ins))
	assert.True(t, ins.IsNearAfter())
	assert.Equal(t, 1, ins.Index())

	inserted := ContainerOf(loc).Insert(c, ins)
	require.NotNil(t, inserted)
	ids := []string{}
	for _, n := range root.Children() {
		ids = append(ids, n.ID())
	}
	assert.Equal(t, []string{"A", inserted.ID(), "B"}, ids)
	assert.Equal(t, []string{"Insert node"}, o.records)
}

func TestLocate_RowBetweenSiblings(t *testing.T) {
	o, root := rowPage(t, "c0", "c1", "c2")
	d := ComponentDragment{Proto: o.protos["Text"]}

	loc := root.Locate(d, geom.Pt(205, 25))
	require.NotNil(t, loc)
	ins := loc.Insertion()
	assert.Equal(t, 2, ins.Index())
	assert.False(t, ins.IsNearAfter())
	assert.True(t, ins.IsVertical())
}

func TestLocate_EdgeWhenBelowChildren(t *testing.T) {
	o, root := rowPage(t, "c0", "c1")
	d := ComponentDragment{Proto: o.protos["Text"]}

	loc := root.Locate(d, geom.Pt(150, 590))
	require.NotNil(t, loc)
	ins := loc.Insertion()
	assert.True(t, ins.IsNearEdge())
	assert.True(t, ins.IsNearAfter())
	assert.Equal(t, 2, ins.Index())
	assert.False(t, ins.IsVertical())
}

func TestLocate_EmptyContainerUsesEdge(t *testing.T) {
	o := newTestOwner()
	o.bounds = geom.XYWH(0, 0, 100, 100)
	root := NewRoot(o, nil)

	loc := root.Locate(ComponentDragment{Proto: o.protos["Text"]}, geom.Pt(50, 10))
	require.NotNil(t, loc)
	assert.True(t, loc.Insertion().IsNearEdge())
	assert.Equal(t, 0, loc.Insertion().Index())
}

func TestLocate_RecursesIntoContainers(t *testing.T) {
	o := newTestOwner()
	o.bounds = geom.XYWH(0, 0, 400, 400)
	root := NewRoot(o, &schema.ComponentSchema{Children: []*schema.ComponentSchema{
		{ID: "box", ComponentName: "Box", Children: []*schema.ComponentSchema{
			{ID: "inner", ComponentName: "Text"},
		}},
	}})
	o.layout.Rects["box"] = geom.XYWH(0, 0, 200, 200)
	o.layout.Rects["inner"] = geom.XYWH(10, 10, 100, 20)

	text := ComponentDragment{Proto: o.protos["Text"]}
	loc := root.Locate(text, geom.Pt(50, 100))
	require.NotNil(t, loc)
	assert.Same(t, root.FindNode("box"), ContainerOf(loc))

	// A dragged container is never a target for itself.
	box := root.FindNode("box")
	loc = root.Locate(box, geom.Pt(50, 100))
	require.NotNil(t, loc)
	assert.Same(t, root, ContainerOf(loc))
}

func TestLocate_ModalDragmentGoesToRoot(t *testing.T) {
	o, root := rowPage(t, "A")
	dialog := ComponentDragment{Proto: o.protos["Dialog"]}

	loc := root.Locate(dialog, geom.Pt(50, 25))
	require.NotNil(t, loc)
	assert.Same(t, root, ContainerOf(loc))
	assert.True(t, loc.Insertion().IsNearEdge())
	assert.Equal(t, 0, loc.Insertion().Index())

	assert.Nil(t, root.FindNode("A").Locate(dialog, geom.Pt(50, 25)))
}

func TestLocate_InvisibleOrUnmeasured(t *testing.T) {
	o := newTestOwner()
	root := NewRoot(o, nil)
	assert.Nil(t, root.Locate(ComponentDragment{Proto: o.protos["Text"]}, geom.Pt(1, 1)))
}
