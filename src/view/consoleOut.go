package view

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/logrusorgru/aurora"

	"cellsim/src/universe"
)

//ProgressEvery is the number of generations between two progress lines
const ProgressEvery = 10

//ConsoleOut is the headless viewer, it prints the configuration and the progress of a run
type ConsoleOut struct {
	u         *universe.Universe
	w         io.Writer
	au        aurora.Aurora
	startTime time.Time
}

//NewConsoleOut creates the viewer printing colored output to stdout
func NewConsoleOut() *ConsoleOut {
	return NewConsoleOutTo(os.Stdout, true)
}

//NewConsoleOutTo creates the viewer printing to w, colors adds the terminal escape sequences
func NewConsoleOutTo(w io.Writer, colors bool) *ConsoleOut {
	return &ConsoleOut{w: w, au: aurora.NewAurora(colors)}
}

func (c *ConsoleOut) Refresh(s universe.Snapshot) {
	switch s.RunningMode {
	case universe.RunningStateFinished:
		totalTime := time.Since(c.startTime).Round(time.Millisecond)
		resultData := map[string]interface{}{
			"Last iteration": s.IterationNum,
			"Total time":     totalTime,
			"Live cells":     s.LiveCells,
		}
		fmt.Fprintln(c.w, c.au.Red("\nFinished:"))
		c.printHashData(resultData)
	case universe.RunningStateRun:
		if s.IterationNum%ProgressEvery == 0 {
			fmt.Fprintf(c.w, "  Iterations done: %v, live cells: %v\n", c.au.Cyan(s.IterationNum), s.LiveCells)
		}
	}
}

func (c *ConsoleOut) Register(u *universe.Universe) {
	c.u = u
	o := c.u.Options()
	var w, h int
	c.u.Do(func(b *universe.Board) {
		w, h = b.Width(), b.Height()
	})
	st := c.u.Status()
	fmt.Fprintln(c.w, c.au.Green("Running configuration:"))
	fmt.Fprintf(c.w, "  Dimension: %v x %v\n", w, h)
	fmt.Fprintf(c.w, "  Rules: %v\n", st.Rules)
	fmt.Fprintf(c.w, "  Toroidal: %v\n", st.Toroidal)
	fmt.Fprintf(c.w, "  Interval: %v\n", o.Interval)
	fmt.Fprintf(c.w, "  Max iterations: %v steps\n", o.MaxSteps)
	c.printHashData(o.Advanced)
}

func (c *ConsoleOut) Start() {
	c.startTime = time.Now()
	fmt.Fprintln(c.w, c.au.Green("\nSimulation started..."))
}

func (c *ConsoleOut) printHashData(d map[string]interface{}) {
	propNames := make([]string, 0, len(d))
	for k := range d {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		fmt.Fprintf(c.w, "  %s: %v\n", propName, d[propName])
	}
}
