package universe

import "log"

// Simulate computes the next generation of the whole board.
func (b *Board) Simulate(toroidal bool) bool {
	return b.SimulateRect(b.Bounds(), toroidal, false)
}

/*
	SimulateRect computes the next generation of the cells inside rect (clamped to the board).
	With toroidal set the edges of rect wrap around to the opposite edge of rect,
	otherwise neighbors outside of rect are not counted.
	The call is a no-op, returning false, when the clamped rect is smaller than 3x3
	or when the max speed does not allow another generation yet.

	The cells are visited in this order, so that only the edges need bounds handling:
		2 2 2 2 2
		3 1 1 1 3
		3 1 1 1 3
		2 2 2 2 2
*/
func (b *Board) SimulateRect(rect Rect, toroidal, partial bool) bool {
	r := clampRect(rect, b.Width(), b.Height())
	if r.W < 3 || r.H < 3 {
		return false
	}
	now := b.now()
	if !b.unlimited() && now.Sub(b.lastSim) < b.minInterval {
		return false
	}
	b.lastSim = now

	b.write = 1 - b.read
	b.changed = false
	src, dst := b.grid[b.read], b.grid[b.write]
	//cells outside of rect keep their state in the new generation
	if partial || r.W < src.Width() || r.H < src.Height() {
		dst.CopyFrom(src)
	}

	right, bottom := r.X+r.W, r.Y+r.H
	//1) the interior
	for y := r.Y + 1; y < bottom-1; y++ {
		for x := r.X + 1; x < right-1; x++ {
			b.determineState(x, y, b.countCellsFast(x, y))
		}
	}
	//2) top and bottom rows, corners included
	for y := r.Y; y < bottom; y += r.H - 1 {
		for x := r.X; x < right; x++ {
			b.determineState(x, y, b.countCellsEdge(x, y, r, toroidal))
		}
	}
	//3) left and right columns
	for x := r.X; x < right; x += r.W - 1 {
		for y := r.Y + 1; y < bottom-1; y++ {
			b.determineState(x, y, b.countCellsEdge(x, y, r, toroidal))
		}
	}
	b.read = b.write

	if partial && b.autoPartialShots {
		b.autoScreenshot(r)
	} else if !partial && b.autoShots {
		b.autoScreenshot(b.Bounds())
	}
	return true
}

func (b *Board) autoScreenshot(r Rect) {
	if err := b.SaveRectToImageFile(r, ""); err != nil {
		log.Printf("auto screenshot: %v", err)
	}
}

//determineState writes the next state of (x, y) based on its live neighbor count.
//Surviving cells age by one, up to maxState.
func (b *Board) determineState(x, y, count int) {
	cur := b.grid[b.read].At(x, y)
	next := Cell(0)
	if b.rules.Get(cur != 0, count) {
		next = Cell(min(int(cur)+1, int(b.maxState)))
	}
	b.changed = b.changed || next != cur
	b.grid[b.write].Set(x, y, next)
}

//countCellsFast counts the live neighbors of (x, y) without any bounds handling.
//(x, y) must not be on the edge of the board.
func (b *Board) countCellsFast(x, y int) int {
	g := b.grid[b.read]
	count := 0
	for ny := y - 1; ny <= y+1; ny++ {
		for nx := x - 1; nx <= x+1; nx++ {
			if (nx != x || ny != y) && g.At(nx, ny) != 0 {
				count++
			}
		}
	}
	return count
}

func (b *Board) countCellsEdge(x, y int, r Rect, toroidal bool) int {
	if toroidal {
		return b.countCellsToroidal(x, y, r)
	}
	return b.countCellsNormal(x, y, r)
}

//countCellsNormal counts the live neighbors of (x, y) that lie inside r.
func (b *Board) countCellsNormal(x, y int, r Rect) int {
	g := b.grid[b.read]
	count := 0
	for ny := max(y-1, r.Y); ny <= min(y+1, r.Y+r.H-1); ny++ {
		for nx := max(x-1, r.X); nx <= min(x+1, r.X+r.W-1); nx++ {
			if (nx != x || ny != y) && g.At(nx, ny) != 0 {
				count++
			}
		}
	}
	return count
}

//countCellsToroidal counts the live neighbors of (x, y), wrapping around the edges of r.
func (b *Board) countCellsToroidal(x, y int, r Rect) int {
	g := b.grid[b.read]
	right, bottom := r.X+r.W-1, r.Y+r.H-1
	rangeX := [3]int{x - 1, x, x + 1}
	rangeY := [3]int{y - 1, y, y + 1}
	if x == r.X {
		rangeX[0] = right
	} else if x == right {
		rangeX[2] = r.X
	}
	if y == r.Y {
		rangeY[0] = bottom
	} else if y == bottom {
		rangeY[2] = r.Y
	}
	count := 0
	for _, ny := range rangeY {
		for _, nx := range rangeX {
			if (nx != x || ny != y) && g.At(nx, ny) != 0 {
				count++
			}
		}
	}
	return count
}
