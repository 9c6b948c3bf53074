package geom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/pagecraft/pkg/geom"
)

func TestRect_Distance(t *testing.T) {
	r := geom.XYWH(0, 0, 100, 50)

	tests := []struct {
		name string
		p    geom.Point
		want float64
	}{
		{"inside", geom.Pt(10, 10), 0},
		{"on the border", geom.Pt(100, 50), 0},
		{"right of", geom.Pt(110, 20), 10},
		{"below", geom.Pt(50, 80), 30},
		{"diagonal", geom.Pt(103, 54), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, r.Distance(tt.p), 1e-9)
		})
	}
}

func TestRect_Shape(t *testing.T) {
	r := geom.XYWH(10, 20, 30, 40)
	assert.Equal(t, 30.0, r.Width())
	assert.Equal(t, 40.0, r.Height())
	assert.False(t, r.Empty())
	assert.True(t, geom.XYWH(0, 0, 0, 10).Empty())

	assert.True(t, r.Contains(geom.Pt(10, 20)))
	assert.False(t, r.Contains(geom.Pt(9, 20)))
}

func TestRect_EdgeDistance(t *testing.T) {
	r := geom.XYWH(0, 0, 100, 100)

	d, bottom := r.EdgeDistance(geom.Pt(50, 10))
	assert.Equal(t, 10.0, d)
	assert.False(t, bottom)

	d, bottom = r.EdgeDistance(geom.Pt(50, 95))
	assert.Equal(t, 5.0, d)
	assert.True(t, bottom)
}
