package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectContains(t *testing.T) {
	r := Rect{1, 2, 3, 2}
	assert.True(t, r.Contains(Point{1, 2}))
	assert.True(t, r.Contains(Point{3, 3}))
	assert.False(t, r.Contains(Point{4, 3}))
	assert.False(t, r.Contains(Point{1, 4}))
	assert.False(t, r.Contains(Point{0, 2}))
	assert.False(t, Rect{}.Contains(Point{}))
}

func TestClampRect(t *testing.T) {
	assert.Equal(t, Rect{0, 0, 2, 3}, clampRect(Rect{-2, -1, 4, 4}, 5, 3))
	assert.Equal(t, Rect{1, 1, 2, 2}, clampRect(Rect{3, 3, -2, -2}, 5, 5))
	assert.True(t, clampRect(Rect{6, 0, 2, 2}, 5, 5).Empty())
}
