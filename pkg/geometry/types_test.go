package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectIntersect(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(5, 5, 20, 20)

	got := a.Intersect(b)
	assert.Equal(t, NewRect(5, 5, 10, 10), got)

	c := NewRect(20, 20, 30, 30)
	assert.True(t, a.Intersect(c).Empty())
}

func TestRectContainsRect(t *testing.T) {
	outer := NewRect(0, 0, 100, 100)

	assert.True(t, outer.ContainsRect(NewRect(10, 10, 90, 90)))
	assert.True(t, outer.ContainsRect(outer))
	assert.False(t, outer.ContainsRect(NewRect(-1, 10, 90, 90)))
	assert.False(t, outer.ContainsRect(NewRect(10, 10, 101, 90)))
}

func TestRectInset(t *testing.T) {
	r := NewRect(0, 0, 10, 10)

	assert.Equal(t, NewRect(2, 2, 8, 8), r.Inset(2))
	assert.Equal(t, NewRect(-2, -2, 12, 12), r.Inset(-2))
	assert.True(t, r.Inset(6).Empty())
}

func TestRectClamp(t *testing.T) {
	bounds := NewRect(0, 0, 64, 64)

	got := NewRect(-10, 5, 70, 30).Clamp(bounds)
	assert.Equal(t, NewRect(0, 5, 64, 30), got)

	// A rect entirely outside collapses to an empty rect on the edge.
	got = NewRect(100, 100, 120, 120).Clamp(bounds)
	assert.True(t, got.Empty())
}

func TestRectFromSize(t *testing.T) {
	r := RectFromSize(3, 4, 10, 20)
	assert.Equal(t, 10.0, r.Width())
	assert.Equal(t, 20.0, r.Height())
	assert.Equal(t, Point2D{X: 8, Y: 14}, r.Center())
}

func TestRectIntToImageRect(t *testing.T) {
	r := NewRectInt(1, 2, 9, 12)
	ir := r.ToImageRect()
	assert.Equal(t, 8, ir.Dx())
	assert.Equal(t, 10, ir.Dy())
	assert.Equal(t, 8, r.Width())
	assert.Equal(t, 10, r.Height())
}
