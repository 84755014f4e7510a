package universe

// Point is a cell position, X is the column and Y the row.
type Point struct {
	X, Y int
}

// Rect is an area of cells with its top-left corner at (X, Y).
type Rect struct {
	X, Y int
	W, H int
}

func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Canon returns an equivalent rectangle with non-negative width and height.
func (r Rect) Canon() Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X < r.X+r.W && p.Y < r.Y+r.H
}

//clampRect converts any rectangle into one within [0,width) x [0,height).
//Rectangles outside the area end up with a zero width or height.
func clampRect(r Rect, width, height int) Rect {
	r = r.Canon()
	clamp := func(v, hi int) int { return min(max(v, 0), hi) }
	left, top := clamp(r.X, width), clamp(r.Y, height)
	right, bottom := clamp(r.X+r.W, width), clamp(r.Y+r.H, height)
	return Rect{X: left, Y: top, W: right - left, H: bottom - top}
}
