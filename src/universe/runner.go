package universe

import (
	"math/rand/v2"
	"sort"
	"sync"
	"time"
)

//Universe drives a Board from its own goroutine (the main loop).
//Every command is queued to the main loop and executed there one by one, so the Board,
//which is not safe for concurrent use, only ever sees a single thread of execution.
//Commands return immediately unless documented otherwise.
type Universe struct {
	options Options
	board   *Board
	state   struct {
		Status
		sync.Mutex
	}
	stateCh   chan Status
	views     []Viewer
	templates map[string]Template
	controlCh chan func()
	closeCh   chan bool
	doneCh    chan struct{}
	closeOnce sync.Once
	stopRun   chan struct{} //closed to stop the run goroutine, only touched by the main loop
}

//New creates a Board from the options and starts the Universe's main loop
//stateCh receives the Status on every running state change, it may be nil
func New(o *Options, stateCh chan Status) *Universe {
	if o == nil {
		o = &DefaultUniverseOptions
	}
	b := NewBoard(o.Width, o.Height)
	b.SetRules(o.Rules)
	b.SetToroidal(o.Toroidal)
	b.SetMaxSpeed(o.MaxSpeed)
	if len(o.Colors) > 0 {
		b.SetColors(o.Colors)
	}
	return NewWithBoard(b, o, stateCh)
}

//NewWithBoard starts a Universe driving an existing board, the board must not be used directly afterwards
func NewWithBoard(b *Board, o *Options, stateCh chan Status) *Universe {
	if o == nil {
		o = &DefaultUniverseOptions
	}
	u := &Universe{
		options:   *o,
		board:     b,
		stateCh:   stateCh,
		templates: map[string]Template{},
		controlCh: make(chan func(), 1),
		closeCh:   make(chan bool, 1),
		doneCh:    make(chan struct{}),
	}
	u.options.Width = b.Width()
	u.options.Height = b.Height()
	u.options.Advanced = map[string]interface{}{}
	for k, v := range o.Advanced {
		u.options.Advanced[k] = v
	}
	for _, t := range BuiltinTemplates() {
		u.templates[t.Name] = t
	}
	u.syncStatus()
	go u.mainLoop()
	return u
}

//AddTemplate adds the seeding template to the internal storage
//the universe can be populated with this template by call SettleTemplate
func (u *Universe) AddTemplate(tmpl Template) {
	u.exec(func() {
		u.templates[tmpl.Name] = tmpl
	})
}

//Templates returns the known templates sorted by name
func (u *Universe) Templates() []Template {
	var list []Template
	u.exec(func() {
		for _, t := range u.templates {
			list = append(list, t)
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

//SettleTemplate populates the universe with the seeding template, shifted by offset
//it waits for the command and reports whether the template exists
func (u *Universe) SettleTemplate(name string, offset Point) bool {
	found := false
	u.Do(func(b *Board) {
		var tmpl Template
		if tmpl, found = u.templates[name]; found {
			b.Settle(tmpl.Coordinates, offset, 1)
		}
	})
	return found
}

//Settle settles the universe with live cells
//vc - array of x,y coordinates
func (u *Universe) Settle(vc [][]int) {
	u.Do(func(b *Board) {
		b.Settle(vc, Point{}, 1)
	})
}

//SettleWithRandomData clears the universe and populates it with random data
//r may be nil to use a clock seeded source
func (u *Universe) SettleWithRandomData(r *rand.Rand) {
	u.post(u.clear)
	u.Do(func(b *Board) {
		b.AddRandom(r)
	})
}

//InverseCell inverses the cell state at point x, y
func (u *Universe) InverseCell(x int, y int) {
	u.Do(func(b *Board) {
		p := Point{x, y}
		if c, ok := b.Cell(p); ok {
			if c != 0 {
				b.PaintCell(p, 0)
			} else {
				b.PaintCell(p, 1)
			}
		}
	})
}

//Do executes fn on the main loop with the board and waits for it to finish
//registered viewers are refreshed afterwards; it must not be called from Viewer.Refresh
func (u *Universe) Do(fn func(b *Board)) {
	u.exec(func() {
		fn(u.board)
		u.syncStatus()
		u.refreshView()
	})
}

//post queues fn to the main loop without waiting, it's dropped once the universe is closed
func (u *Universe) post(fn func()) {
	select {
	case u.controlCh <- fn:
	case <-u.doneCh:
	}
}

//exec runs fn on the main loop and waits, it's a no-op once the universe is closed
func (u *Universe) exec(fn func()) {
	ack := make(chan struct{})
	select {
	case u.controlCh <- func() {
		defer close(ack)
		fn()
	}:
	case <-u.doneCh:
		return
	}
	//the main loop may exit with fn still queued
	select {
	case <-ack:
	case <-u.doneCh:
	}
}

//RegisterViewer registers the viewer - the universe will call the viewer when the state is changed
func (u *Universe) RegisterViewer(v Viewer) {
	u.exec(func() {
		u.views = append(u.views, v)
	})
	v.Register(u)
}

//StateCh returns the channel with the universe's status updates
func (u *Universe) StateCh() chan Status {
	return u.stateCh
}

//Status returns current universe status represented by Status struct
func (u *Universe) Status() Status {
	u.state.Lock()
	defer u.state.Unlock()
	return u.state.Status
}

//Options returns the universe configuration represented by Options struct
func (u *Universe) Options() Options {
	return u.options
}

//Run starts the universe simulation, returns immediately
func (u *Universe) Run() {
	u.post(u.run)
}

//Stop stops the universe simulation, returns immediately
//the Status struct will be written the stateCh on finish
func (u *Universe) Stop() {
	u.post(u.stop)
}

//Step do one simulation step, returns immediately
//the Status struct will be written to the stateCh on start and on finish
func (u *Universe) Step() {
	u.post(u.step)
}

//Clear clears the universe (kill all cells and reset all counters), returns immediately
//the Status struct will be written to the stateCh on finish
func (u *Universe) Clear() {
	u.post(u.clear)
}

//Close stops the main loop and waits for it to exit
func (u *Universe) Close() {
	u.closeOnce.Do(func() {
		u.closeCh <- true
	})
	<-u.doneCh
}

//mainLoop - the main cycle, should start as a goroutine
//waits for command and executes
func (u *Universe) mainLoop() {
	var c = false
	for !c {
		select {
		case cmd := <-u.controlCh:
			cmd()
		case c = <-u.closeCh:
		}
	}
	u.halt()
	close(u.doneCh)
}

//syncStatus copies the board properties to the status
func (u *Universe) syncStatus() {
	u.state.Lock()
	u.state.LiveCells = u.board.LiveCells()
	u.state.Rules = u.board.Rules()
	u.state.Toroidal = u.board.Toroidal()
	u.state.Unlock()
}

//switchRunningState switch the state of the universe to RunningState
//also writes the new state to the stateCh to signal upper control software
func (u *Universe) switchRunningState(to RunningState) {
	u.state.Lock()
	u.state.RunningMode = to
	st := u.state.Status
	u.state.Unlock()
	if u.stateCh != nil {
		u.stateCh <- st
	}
}

//run starts the universe simulation
//simulation will stop on Stop() calling or when the boundary conditions are reached
func (u *Universe) run() {
	if u.stopRun != nil {
		return
	}
	stop := make(chan struct{})
	u.stopRun = stop
	u.board.SetPlaying(true)
	u.switchRunningState(RunningStateRun)
	go func() {
		for {
			ack := make(chan struct{})
			var wait time.Duration
			select {
			case <-stop:
				return
			case <-u.doneCh:
				return
			case u.controlCh <- func() {
				defer close(ack)
				wait = u.tick()
			}:
			}
			select {
			case <-ack:
			case <-u.doneCh:
				return
			}
			wait = max(wait, u.options.Interval)
			if wait > 0 {
				select {
				case <-stop:
					return
				case <-u.doneCh:
					return
				case <-time.After(wait):
				}
			}
		}
	}()
}

//halt stops the run goroutine without publishing the state
func (u *Universe) halt() {
	if u.stopRun != nil {
		close(u.stopRun)
		u.stopRun = nil
	}
	u.board.SetPlaying(false)
}

//stop stops the universe running cycle
func (u *Universe) stop() {
	if u.stopRun != nil {
		u.halt()
		u.switchRunningState(RunningStateManual)
	}
}

//tick is one cycle of the run goroutine, the board decides whether its max speed allows a generation
//it returns how long the max speed holds back the next generation
func (u *Universe) tick() time.Duration {
	if u.stopRun == nil {
		return 0
	}
	start := time.Now()
	if u.board.Update() {
		u.generationDone(start, RunningStateRun)
	}
	return u.board.NextSimulation()
}

//step does the new one generation for the entire universe
func (u *Universe) step() {
	rm := u.state.RunningMode
	u.switchRunningState(RunningStateStep)
	start := time.Now()
	if !u.board.Simulate(u.board.Toroidal()) {
		u.switchRunningState(rm)
		return
	}
	u.generationDone(start, rm)
}

//generationDone updates the counters after a generation and finishes the universe
//when every cell is dead, nothing has changed or MaxSteps is reached
func (u *Universe) generationDone(start time.Time, rm RunningState) {
	u.state.Lock()
	u.state.IterationNum++
	u.state.IterationTime = time.Since(start)
	u.state.Unlock()
	u.syncStatus()

	st := u.Status()
	if st.LiveCells == 0 || !u.board.Changed() || (u.options.MaxSteps != 0 && st.IterationNum >= u.options.MaxSteps) {
		u.halt()
		u.switchRunningState(RunningStateFinished)
	} else {
		u.switchRunningState(rm)
	}
	u.refreshView()
}

//clear clears the universe data, reset all counters
func (u *Universe) clear() {
	u.halt()
	u.board.Clear()
	u.state.Lock()
	u.state.IterationNum = 0
	u.state.IterationTime = 0
	u.state.Unlock()
	u.syncStatus()
	u.switchRunningState(RunningStateManual)
	u.refreshView()
}

//refreshView calls Refresh event for all registered views
func (u *Universe) refreshView() {
	if len(u.views) == 0 {
		return
	}
	s := Snapshot{
		Status: u.Status(),
		Cells:  u.board.Snapshot(),
		Colors: u.board.Colors(),
	}
	for _, v := range u.views {
		v.Refresh(s)
	}
}
