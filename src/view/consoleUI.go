package view

import (
	"bytes"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"

	"cellsim/src/palette"
	"cellsim/src/universe"
)

type keyBindings struct {
	key      interface{}
	name     string
	descr    string
	handler  func(v *gocui.View) error
	viewName string
}

//UIOptions configures the editor commands which need something besides the universe
type UIOptions struct {
	BoardFile string                     //file used by the save/load commands
	Presets   map[string]palette.Palette //palettes cycled by the preset command
}

//ConsoleUI is the interactive terminal editor
type ConsoleUI struct {
	u *universe.Universe
	g *gocui.Gui
	k []keyBindings

	deadFiller string
	liveRune   string

	boardFile   string
	presetNames []string
	presets     map[string]palette.Palette
	preset      int

	mu      sync.Mutex
	last    universe.Snapshot
	message string
	mark    universe.Point
}

var (
	runningStateDescr = map[universe.RunningState]string{
		universe.RunningStateManual:   aurora.Colorize("waiting", aurora.BlueFg).String(),
		universe.RunningStateStep:     "do the step",
		universe.RunningStateRun:      aurora.Colorize("running", aurora.CyanFg).String(),
		universe.RunningStateFinished: aurora.Colorize("finished", aurora.RedFg).String(),
	}
)

func NewViewTerminal(o UIOptions) *ConsoleUI {

	var err error
	t := ConsoleUI{
		deadFiller: "░",
		liveRune:   "█",
		boardFile:  o.BoardFile,
		presets:    o.Presets,
	}
	for name := range o.Presets {
		t.presetNames = append(t.presetNames, name)
	}
	sort.Strings(t.presetNames)

	t.g, err = gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		log.Panicln(err)
	}

	t.g.Mouse = true
	t.k = []keyBindings{
		{gocui.KeyCtrlC, "^C", "Exit", t.cmdQuit, ""},
		{'n', "N", "Next step", t.cmdNextRound, ""},
		{'r', "R", "Run", t.cmdRun, ""},
		{'s', "S", "Stop", t.cmdStop, ""},
		{'c', "C", "Clear", t.cmdClear, ""},
		{'w', "W", "Random", t.cmdSettleWithRandom, ""},
		{'t', "T", "Toroidal", t.cmdToggleToroidal, ""},
		{gocui.KeySpace, "SPACE", "Invert cell", t.cmdInverse, ""},
		{'m', "M", "Mark", t.cmdMark, ""},
		{'y', "Y", "Copy mark..cursor", t.cmdCopy, ""},
		{'p', "P", "Paste", t.cmdPaste, ""},
		{'k', "K", "Save", t.cmdSave, ""},
		{'l', "L", "Load", t.cmdLoad, ""},
		{'i', "I", "Screenshot", t.cmdScreenshot, ""},
		{'x', "X", "Reverse colors", t.cmdReverseColors, ""},
		{'o', "O", "Next colors", t.cmdNextPreset, ""},
		{gocui.MouseLeft, "MOUSE", "Paint", t.cmdPaint, "battlefield"},
		{gocui.MouseRight, "RMOUSE", "Erase", t.cmdErase, "battlefield"},
		{gocui.MouseRelease, "", "", t.cmdMouseRelease, "battlefield"},
	}
	t.g.SetManagerFunc(t.layout)

	t.initKeyBindings(t.k)

	return &t
}

func (t *ConsoleUI) initKeyBindings(k []keyBindings) {
	for _, kb := range k {
		h := kb.handler
		if err := t.g.SetKeybinding(kb.viewName, kb.key, gocui.ModNone, func(gui *gocui.Gui, view *gocui.View) error { return h(view) }); err != nil {
			log.Panicln(err)
		}
	}
}

func (t *ConsoleUI) Register(u *universe.Universe) {
	t.u = u
	//get the first snapshot
	t.u.Do(func(*universe.Board) {})
}

func (t *ConsoleUI) Start() {
	if err := t.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		log.Panicln(err)
	}
	t.g.Close()
}

func (t *ConsoleUI) Refresh(s universe.Snapshot) {
	t.mu.Lock()
	t.last = s
	t.mu.Unlock()
	t.g.Update(func(g *gocui.Gui) error {
		t.renderField()
		t.renderConfiguration()
		t.renderStatus()
		return nil
	})
}

func (t *ConsoleUI) snapshot() universe.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

func (t *ConsoleUI) setMessage(format string, args ...interface{}) {
	t.mu.Lock()
	t.message = fmt.Sprintf(format, args...)
	t.mu.Unlock()
	t.g.Update(func(g *gocui.Gui) error {
		t.renderStatus()
		return nil
	})
}

//renderField must be called from the gui goroutine
func (t *ConsoleUI) renderField() {
	v, e := t.g.View("battlefield")
	if e != nil {
		return
	}
	s := t.snapshot()
	if s.Cells == nil {
		return
	}
	//the entire field is redrawing at once now
	v.Clear()

	crop := false
	maxW, maxH := v.Size()
	w, h := s.Cells.Width(), s.Cells.Height()
	if w > maxW || h > maxH {
		crop = true
	}

	var b bytes.Buffer
	for y := 0; y < h; y++ {
		//discard the data outside the view area
		if y >= maxH {
			break
		}
		//line feed char
		if y != 0 {
			b.WriteByte(10)
		}
		if crop && y == (maxH-1) {
			b.WriteString(aurora.Red("The field size is larger than the viewing area").BgBlack().String())
			break
		}
		for x := 0; x < w && x < maxW; x++ {
			if c := s.Cells.At(x, y); c != 0 {
				b.WriteString(s.Colors.Colorize(c, t.liveRune).String())
			} else {
				b.WriteString(t.deadFiller)
			}
		}
	}
	_, _ = fmt.Fprint(v, b.String())
}

func (t *ConsoleUI) renderStatus() {
	v, e := t.g.View("status")
	if e != nil {
		return
	}
	s := t.snapshot()
	t.mu.Lock()
	msg := t.message
	t.mu.Unlock()
	v.Clear()
	_, _ = fmt.Fprintln(v, t.renderProp("Step", "%v", s.IterationNum))
	_, _ = fmt.Fprintln(v, t.renderProp("Live Cells", "%v", s.LiveCells))
	_, _ = fmt.Fprintln(v, t.renderProp("Evaluation time", "%v", s.IterationTime.Round(time.Microsecond)))
	_, _ = fmt.Fprintln(v, t.renderProp("Mode", "%v", runningStateDescr[s.RunningMode]))
	_, _ = fmt.Fprintln(v, t.renderProp("Rules", "%v", s.Rules))
	_, _ = fmt.Fprintln(v, t.renderProp("Toroidal", "%v", s.Toroidal))
	if msg != "" {
		_, _ = fmt.Fprintln(v, " "+msg)
	}
}

func (t *ConsoleUI) renderConfiguration() {
	v, e := t.g.View("configuration")
	if e != nil || t.u == nil {
		return
	}
	c := t.u.Options()
	s := t.snapshot()
	v.Clear()
	if s.Cells != nil {
		_, _ = fmt.Fprintln(v, t.renderProp("Dimension", "%v x %v", s.Cells.Width(), s.Cells.Height()))
	}
	_, _ = fmt.Fprintln(v, t.renderProp("Interval", "%v", c.Interval))
	_, _ = fmt.Fprintln(v, t.renderProp("Iterations", "%v steps", c.MaxSteps))
	_, _ = fmt.Fprintln(v, t.renderProp("Colors", "%v", len(s.Colors)))
}

func (t *ConsoleUI) renderProp(name string, valueformat string, values ...interface{}) string {
	return fmt.Sprintf(" "+aurora.Colorize(name, aurora.GreenFg).String()+": "+valueformat, values...)
}

func (t *ConsoleUI) layout(g *gocui.Gui) error {

	maxX, maxY := g.Size()
	leftColumnWidth := 28
	minWindowHeight := 20

	if maxY < minWindowHeight {
		if _, err := t.headerLayout(g, maxY, "Terminal height too small"); err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
		}
		_ = g.DeleteView("configuration")
		_ = g.DeleteView("status")
		_ = g.DeleteView("battlefield")
		return nil
	}
	if _, err := t.headerLayout(g, 3, "Cellular automaton editor"); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
	}

	if v, err := g.SetView("configuration", 0, 3, leftColumnWidth, 3+(maxY-5-3)/2); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Configuration"
		v.Frame = true
		t.renderConfiguration()
	}

	if v, err := g.SetView("status", 0, 3+(maxY-5-3)/2+1, leftColumnWidth, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Status"
		v.Frame = true
		t.renderStatus()
	}

	if v, err := g.SetView("battlefield", leftColumnWidth+1, 3, maxX-1, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Board"
		v.Frame = true
	}
	t.renderField()

	if v, err := g.SetView("help", -1, maxY-5, maxX, maxY-1); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = false
		v.Wrap = true
		b := bytes.Buffer{}
		b.WriteString("KEYBINDINGS: ")
		first := true
		for _, k := range t.k {
			if k.name == "" {
				continue
			}
			if !first {
				b.WriteString(", ")
			}
			first = false
			b.WriteString(aurora.Green(k.name).String())
			b.WriteString(": ")
			b.WriteString(k.descr)
		}
		_, _ = fmt.Fprintln(v, b.String())
	}

	return nil
}

func (t *ConsoleUI) headerLayout(g *gocui.Gui, height int, text string) (v *gocui.View, err error) {
	maxX, _ := g.Size()
	if v, err = g.SetView("header", -1, -1, maxX+1, height); err != nil {
		if err == gocui.ErrUnknownView && v != nil {
			v.Frame = false
			v.BgColor = gocui.ColorCyan
			v.FgColor = gocui.ColorBlack
		}
	}
	if v != nil {
		v.Clear()
		if maxX < len(text) {
			panic(fmt.Sprintf("Terminal width is too small: %v", maxX))
		}
		_, _ = fmt.Fprintln(v, strings.Repeat("\n", height/2+1)+strings.Repeat(" ", (maxX-len(text))/2)+text)
	}
	return
}

//cursor is the board position under the cursor of the battlefield view
func (t *ConsoleUI) cursor() universe.Point {
	v, err := t.g.View("battlefield")
	if err != nil {
		return universe.Point{}
	}
	cx, cy := v.Cursor()
	ox, oy := v.Origin()
	return universe.Point{X: cx + ox, Y: cy + oy}
}

func (t *ConsoleUI) cmdQuit(_ *gocui.View) error {
	return gocui.ErrQuit
}

func (t *ConsoleUI) cmdNextRound(_ *gocui.View) error {
	t.u.Step()
	return nil
}

func (t *ConsoleUI) cmdRun(_ *gocui.View) error {
	t.u.Run()
	return nil
}

func (t *ConsoleUI) cmdStop(_ *gocui.View) error {
	t.u.Stop()
	return nil
}

func (t *ConsoleUI) cmdClear(_ *gocui.View) error {
	t.u.Clear()
	return nil
}

func (t *ConsoleUI) cmdSettleWithRandom(_ *gocui.View) error {
	t.u.SettleWithRandomData(nil)
	return nil
}

func (t *ConsoleUI) cmdToggleToroidal(_ *gocui.View) error {
	t.u.Do(func(b *universe.Board) {
		b.SetToroidal(!b.Toroidal())
	})
	return nil
}

func (t *ConsoleUI) cmdInverse(_ *gocui.View) error {
	p := t.cursor()
	t.u.InverseCell(p.X, p.Y)
	return nil
}

func (t *ConsoleUI) cmdMark(_ *gocui.View) error {
	p := t.cursor()
	t.mu.Lock()
	t.mark = p
	t.mu.Unlock()
	t.setMessage("mark at %v,%v", p.X, p.Y)
	return nil
}

//cmdCopy copies the block between the mark and the cursor, both included
func (t *ConsoleUI) cmdCopy(_ *gocui.View) error {
	p := t.cursor()
	t.mu.Lock()
	m := t.mark
	t.mu.Unlock()
	r := universe.Rect{X: m.X, Y: m.Y, W: p.X - m.X, H: p.Y - m.Y}.Canon()
	r.W++
	r.H++
	var w, h int
	t.u.Do(func(b *universe.Board) {
		b.CopyBlock(r)
		w, h = b.Clipboard()
	})
	t.setMessage("copied %vx%v", w, h)
	return nil
}

func (t *ConsoleUI) cmdPaste(_ *gocui.View) error {
	p := t.cursor()
	t.u.Do(func(b *universe.Board) {
		b.PasteBlock(p)
	})
	return nil
}

func (t *ConsoleUI) cmdSave(_ *gocui.View) error {
	var err error
	t.u.Do(func(b *universe.Board) {
		err = b.SaveToFile(t.boardFile)
	})
	if err != nil {
		t.setMessage("%v", aurora.Red(err))
	} else {
		t.setMessage("saved %s", t.boardFile)
	}
	return nil
}

func (t *ConsoleUI) cmdLoad(_ *gocui.View) error {
	var err error
	t.u.Do(func(b *universe.Board) {
		err = b.LoadFromFile(t.boardFile)
	})
	if err != nil {
		t.setMessage("%v", aurora.Red(err))
	} else {
		t.setMessage("loaded %s", t.boardFile)
	}
	return nil
}

func (t *ConsoleUI) cmdScreenshot(_ *gocui.View) error {
	var err error
	t.u.Do(func(b *universe.Board) {
		err = b.SaveToImageFile("")
	})
	if err != nil {
		t.setMessage("%v", aurora.Red(err))
	} else {
		t.setMessage("screenshot saved")
	}
	return nil
}

func (t *ConsoleUI) cmdReverseColors(_ *gocui.View) error {
	t.u.Do(func(b *universe.Board) {
		b.ReverseColors()
	})
	return nil
}

func (t *ConsoleUI) cmdNextPreset(_ *gocui.View) error {
	if len(t.presetNames) == 0 {
		return nil
	}
	t.preset = (t.preset + 1) % len(t.presetNames)
	name := t.presetNames[t.preset]
	p := t.presets[name]
	t.u.Do(func(b *universe.Board) {
		b.SetColors(p)
	})
	t.setMessage("colors: %s", name)
	return nil
}

func (t *ConsoleUI) cmdPaint(v *gocui.View) error {
	return t.paint(v, 1)
}

func (t *ConsoleUI) cmdErase(v *gocui.View) error {
	return t.paint(v, 0)
}

//paint continues the line painted since the mouse button went down
func (t *ConsoleUI) paint(v *gocui.View, state universe.Cell) error {
	cx, cy := v.Cursor()
	ox, oy := v.Origin()
	t.u.Do(func(b *universe.Board) {
		b.PaintLineTo(universe.Point{X: cx + ox, Y: cy + oy}, state)
	})
	return nil
}

func (t *ConsoleUI) cmdMouseRelease(_ *gocui.View) error {
	t.u.Do(func(b *universe.Board) {
		b.FinishLine()
	})
	return nil
}
