package universe

import (
	"time"

	"cellsim/src/matrix"
	"cellsim/src/palette"
)

//Options represents the Universe's configurable options
type Options struct {
	Width    int
	Height   int
	Rules    string
	Toroidal bool
	Interval time.Duration //pause between two ticks of the run loop
	MaxSpeed float64       //generations per second, 0 is unlimited
	MaxSteps int           //0 runs forever
	Colors   palette.Palette
	Advanced map[string]interface{} //advanced options (front-end specific)
}

//Status represents the status of the Universe at concrete moment
type Status struct {
	IterationNum  int
	RunningMode   RunningState
	LiveCells     int
	IterationTime time.Duration
	Rules         string
	Toroidal      bool
}

//Snapshot is a copy of the board handed to viewers, safe to keep after Refresh returns
type Snapshot struct {
	Status
	Cells  *matrix.Matrix[Cell]
	Colors palette.Palette
}

//Viewer is the interface to any Viewer - the object who can display simulation data or control the engine
type Viewer interface {
	//Refresh is called from the universe goroutine, it must not call Universe.Do
	Refresh(s Snapshot)
	Register(u *Universe)
	Start()
}

//The universe running status at the concrete moment
type RunningState int

//default options
const (
	DefSimulationInterval = time.Millisecond * 100
	DefMaxSteps           = 1000
	DefWidth              = 40
	DefHeight             = 15
)

const (
	RunningStateManual   RunningState = 0x0
	RunningStateStep     RunningState = 0x1
	RunningStateRun      RunningState = 0x2
	RunningStateFinished RunningState = 0x3
)

func (s RunningState) String() string {
	switch s {
	case RunningStateManual:
		return "waiting"
	case RunningStateStep:
		return "step"
	case RunningStateRun:
		return "running"
	case RunningStateFinished:
		return "finished"
	}
	return "unknown"
}

var DefaultUniverseOptions = Options{
	Width:    DefWidth,
	Height:   DefHeight,
	Rules:    DefaultRules,
	Interval: DefSimulationInterval,
	MaxSteps: DefMaxSteps,
}
