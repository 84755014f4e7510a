package universe

import (
	"fmt"
	"image"
	"log"
	"math"
	"math/rand/v2"
	"time"

	"cellsim/src/matrix"
	"cellsim/src/palette"
	"cellsim/src/rules"
	"cellsim/src/screenshot"
)

// Cell is the state of a single cell: 0 is dead, 1..MaxState are ages of a live cell.
type Cell = uint8

const (
	// DefaultRules is used when an empty rule string is set.
	DefaultRules = rules.Default
	// UnlimitedSpeed is the max speed at (or close to) which simulations are not rate limited.
	UnlimitedSpeed = 60.0
	// DefaultScreenshotFormat names the auto-saved screenshots.
	DefaultScreenshotFormat = "screenshots/board %n.png"
)

/*
	Board simulates cellular automata on a finite grid.
	It handles simulating, editing (paint/copy/paste), saving and loading, and supports custom rule sets.

	Two grid buffers are kept: cells are always read from grid[read] and written to grid[write].
	Both indexes are equal except while a generation is being computed, so edits
	made between generations are visible to the next one.
	A Board is not safe for concurrent use, see Universe for a driver that owns one on a goroutine.
*/
type Board struct {
	rules    *rules.RuleSet
	grid     [2]*matrix.Matrix[Cell]
	read     int
	write    int
	toroidal bool
	changed  bool

	colors   palette.Palette
	maxState Cell

	playing     bool
	maxSpeed    float64
	minInterval time.Duration
	lastSim     time.Time
	now         func() time.Time

	shots            *screenshot.Generator
	autoShots        bool
	autoPartialShots bool

	paintingLine bool
	lastLinePos  Point
	clipboard    *matrix.Matrix[Cell]
}

// NewBoard creates an empty board using the default rules and palette.
func NewBoard(width, height int) *Board {
	b := &Board{
		rules:     rules.New(),
		grid:      [2]*matrix.Matrix[Cell]{matrix.New[Cell](width, height), matrix.New[Cell](width, height)},
		now:       time.Now,
		shots:     screenshot.NewGenerator(DefaultScreenshotFormat),
		clipboard: matrix.New[Cell](0, 0),
	}
	b.SetColors(palette.Default())
	b.SetMaxSpeed(UnlimitedSpeed)
	b.SetRules("")
	return b
}

//Resize resizes the board, the overlapping region is kept when preserve is set
func (b *Board) Resize(width, height int, preserve bool) {
	if width == b.Width() && height == b.Height() {
		return
	}
	for _, g := range b.grid {
		if !preserve {
			g.Clear()
		}
		g.Resize(width, height, preserve)
	}
}

func (b *Board) Width() int  { return b.grid[b.read].Width() }
func (b *Board) Height() int { return b.grid[b.read].Height() }

// Bounds returns the rectangle covering the whole board.
func (b *Board) Bounds() Rect {
	return Rect{W: b.Width(), H: b.Height()}
}

//SetRules sets the rules from a rule string, see rules.RuleSet.SetFromString.
//An empty string installs DefaultRules. The number of ignored characters is returned.
func (b *Board) SetRules(ruleString string) int {
	if ruleString == "" {
		ruleString = DefaultRules
	}
	return b.rules.SetFromString(ruleString)
}

// Rules returns the rules in the canonical B/S form.
func (b *Board) Rules() string {
	return b.rules.String()
}

// SetToroidal selects the edge handling used by Update.
func (b *Board) SetToroidal(toroidal bool) { b.toroidal = toroidal }
func (b *Board) Toroidal() bool            { return b.toroidal }

//SetMaxSpeed limits the number of generations per second.
//0, or anything close to UnlimitedSpeed, removes the limit.
func (b *Board) SetMaxSpeed(speed float64) {
	if speed <= 0 {
		speed = UnlimitedSpeed
	}
	b.maxSpeed = speed
	b.minInterval = time.Duration(float64(time.Second) / speed)
}

func (b *Board) MaxSpeed() float64 { return b.maxSpeed }

// NextSimulation returns how long the max speed still holds back the next generation.
func (b *Board) NextSimulation() time.Duration {
	if b.unlimited() || b.lastSim.IsZero() {
		return 0
	}
	return max(b.minInterval-b.now().Sub(b.lastSim), 0)
}

func (b *Board) unlimited() bool {
	return b.maxSpeed >= UnlimitedSpeed-2
}

// Play toggles the playing state and returns the new one.
func (b *Board) Play() bool {
	b.playing = !b.playing
	return b.playing
}

func (b *Board) SetPlaying(playing bool) { b.playing = playing }
func (b *Board) IsPlaying() bool         { return b.playing }

// Update simulates the whole board once if it is playing.
func (b *Board) Update() bool {
	if !b.playing {
		return false
	}
	return b.Simulate(b.toroidal)
}

//SetColors sets the palette, which also defines MaxState (one less than the number of colors).
//Palettes with less than two colors are replaced with the default one.
func (b *Board) SetColors(p palette.Palette) {
	if len(p) < 2 {
		p = palette.Default()
	}
	b.colors = p
	b.maxState = p.MaxState()
}

func (b *Board) Colors() palette.Palette { return b.colors }

func (b *Board) ReverseColors() {
	b.colors = b.colors.Reversed()
}

// SetMaxState changes the largest state of a live cell independently of the palette.
func (b *Board) SetMaxState(state Cell) {
	b.maxState = max(state, 1)
}

func (b *Board) MaxState() Cell { return b.maxState }

// Cell returns the state of the cell at pos, ok is false when pos is out of bounds.
func (b *Board) Cell(pos Point) (state Cell, ok bool) {
	return b.grid[b.read].Get(pos.X, pos.Y)
}

// Changed reports whether the last generation changed the state of any cell.
func (b *Board) Changed() bool {
	return b.changed
}

// LiveCells counts the cells with a non-zero state.
func (b *Board) LiveCells() int {
	n := 0
	for _, c := range b.grid[b.read].Cells() {
		if c != 0 {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of the current generation.
func (b *Board) Snapshot() *matrix.Matrix[Cell] {
	return b.grid[b.read].Clone()
}

func (b *Board) inBounds(pos Point) bool {
	return b.Bounds().Contains(pos)
}

func (b *Board) setCell(pos Point, state Cell) {
	b.grid[b.write].Set(pos.X, pos.Y, state)
}

//PaintCell sets the state of a single cell, positions out of bounds are ignored
func (b *Board) PaintCell(pos Point, state Cell) {
	if b.inBounds(pos) {
		b.setCell(pos, state)
	}
}

//PaintLine paints every cell on the line between start and end.
//It steps along x when the slope is within [-1, 1], otherwise along y.
func (b *Board) PaintLine(start, end Point, state Cell) {
	dx := end.X - start.X
	dy := end.Y - start.Y
	if dx == 0 && dy == 0 {
		b.PaintCell(start, state)
		return
	}
	if abs(dy) <= abs(dx) {
		slope := float64(dy) / float64(dx)
		for x := min(start.X, end.X); x <= max(start.X, end.X); x++ {
			y := start.Y + int(math.Round(slope*float64(x-start.X)))
			b.PaintCell(Point{x, y}, state)
		}
		return
	}
	slope := float64(dx) / float64(dy)
	for y := min(start.Y, end.Y); y <= max(start.Y, end.Y); y++ {
		x := start.X + int(math.Round(slope*float64(y-start.Y)))
		b.PaintCell(Point{x, y}, state)
	}
}

//PaintLineTo continues the line being painted up to pos, which suits drag-to-paint input.
//The first call after FinishLine only paints pos.
func (b *Board) PaintLineTo(pos Point, state Cell) {
	if b.paintingLine {
		b.PaintLine(b.lastLinePos, pos, state)
	} else {
		b.PaintCell(pos, state)
		b.paintingLine = true
	}
	b.lastLinePos = pos
}

// FinishLine ends the line being painted, so that a new one can be started.
func (b *Board) FinishLine() {
	b.paintingLine = false
}

// PaintBlock sets every cell of rect (clamped to the board) to state.
func (b *Board) PaintBlock(rect Rect, state Cell) {
	r := clampRect(rect, b.Width(), b.Height())
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			b.setCell(Point{x, y}, state)
		}
	}
}

//CopyBlock stores the cells of rect (clamped to the board) into the clipboard.
//Cell states are copied as they are, not only alive/dead.
func (b *Board) CopyBlock(rect Rect) {
	r := clampRect(rect, b.Width(), b.Height())
	if r.Empty() {
		return
	}
	b.clipboard.Resize(r.W, r.H, false)
	src := b.grid[b.read]
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			b.clipboard.Set(x, y, src.At(r.X+x, r.Y+y))
		}
	}
}

//PasteBlock writes the clipboard with its top-left corner at pos.
//States are clamped to MaxState since the palette may have changed since the copy,
//and cells falling outside of the board are dropped.
func (b *Board) PasteBlock(pos Point) {
	for y := 0; y < b.clipboard.Height(); y++ {
		for x := 0; x < b.clipboard.Width(); x++ {
			b.PaintCell(Point{pos.X + x, pos.Y + y}, min(b.clipboard.At(x, y), b.maxState))
		}
	}
}

// Clipboard returns the size of the copied block.
func (b *Board) Clipboard() (width, height int) {
	return b.clipboard.Width(), b.clipboard.Height()
}

// Settle paints state at every [x, y] coordinate, shifted by offset.
func (b *Board) Settle(coords [][]int, offset Point, state Cell) {
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		b.PaintCell(Point{offset.X + c[0], offset.Y + c[1]}, state)
	}
}

// Clear kills every cell.
func (b *Board) Clear() {
	b.grid[b.write].Fill(0)
}

//AddRandom sets width*height/8 randomly chosen cells alive.
//A nil source is replaced by one seeded from the clock.
func (b *Board) AddRandom(r *rand.Rand) {
	w, h := b.Width(), b.Height()
	if w == 0 || h == 0 {
		return
	}
	if r == nil {
		r = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	for i := 0; i < w*h/8; i++ {
		b.PaintCell(Point{r.IntN(w), r.IntN(h)}, 1)
	}
}

// SaveToFile writes the current generation in the bit-packed board format.
func (b *Board) SaveToFile(filename string) error {
	log.Printf("saveToFile(%s)", filename)
	return b.grid[b.read].SaveToFile(filename)
}

// LoadFromFile replaces the board (size included) with the content of filename.
// The board is unchanged when an error is returned.
func (b *Board) LoadFromFile(filename string) error {
	log.Printf("loadFromFile(%s)", filename)
	if err := b.grid[b.write].LoadFromFile(filename); err != nil {
		return err
	}
	b.grid[1-b.write].CopyFrom(b.grid[b.write])
	log.Printf("loaded board %dx%d", b.Width(), b.Height())
	return nil
}

// Image renders rect (clamped to the board) of the current generation with the palette.
func (b *Board) Image(rect Rect) *image.RGBA {
	r := clampRect(rect, b.Width(), b.Height())
	img := image.NewRGBA(image.Rect(0, 0, r.W, r.H))
	src := b.grid[b.read]
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			img.SetRGBA(x, y, b.colors.Color(min(src.At(r.X+x, r.Y+y), b.maxState)))
		}
	}
	return img
}

//SetupScreenshots sets the filename format of generated screenshots ("%n" is the sequence number)
//and whether one is saved after every full (save) or partial (savePartial) simulation.
func (b *Board) SetupScreenshots(format string, save, savePartial bool) {
	if format == "" {
		format = DefaultScreenshotFormat
	}
	b.shots.SetFormat(format)
	b.autoShots = save
	b.autoPartialShots = savePartial
}

// SaveToImageFile saves the whole board as an image, an empty filename picks the next generated one.
func (b *Board) SaveToImageFile(filename string) error {
	return b.SaveRectToImageFile(b.Bounds(), filename)
}

// SaveRectToImageFile saves a part of the board as an image, see SaveToImageFile.
func (b *Board) SaveRectToImageFile(rect Rect, filename string) error {
	if filename == "" {
		filename = b.shots.Next()
	}
	if err := screenshot.Save(b.Image(rect), filename); err != nil {
		return fmt.Errorf("save board image: %w", err)
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
