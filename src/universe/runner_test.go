package universe

import (
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUniverse(t *testing.T, setup func(o *Options)) (*Universe, chan Status) {
	t.Helper()
	o := DefaultUniverseOptions
	o.Width = 10
	o.Height = 10
	o.Interval = 0
	if setup != nil {
		setup(&o)
	}
	stateCh := make(chan Status, 100)
	u := New(&o, stateCh)
	t.Cleanup(u.Close)
	return u, stateCh
}

//waitFor reads the state channel until the universe reports the running state
func waitFor(t *testing.T, stateCh chan Status, rs RunningState) Status {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case st := <-stateCh:
			if st.RunningMode == rs {
				return st
			}
		case <-timeout:
			require.FailNow(t, "timeout", "waiting for the %v state", rs)
		}
	}
}

func TestUniverseOptions(t *testing.T) {
	u, _ := newTestUniverse(t, func(o *Options) {
		o.Rules = "B36/S23"
		o.Toroidal = true
		o.Advanced = map[string]interface{}{"key": 1}
	})
	st := u.Status()
	assert.Equal(t, "B36/S23", st.Rules)
	assert.True(t, st.Toroidal)
	assert.Equal(t, RunningStateManual, st.RunningMode)
	assert.Equal(t, 1, u.Options().Advanced["key"])
	assert.Equal(t, 10, u.Options().Width)
}

func TestUniverseStep(t *testing.T) {
	u, stateCh := newTestUniverse(t, nil)
	assert.True(t, u.SettleTemplate("blinker", Point{3, 3}))
	assert.False(t, u.SettleTemplate("missing", Point{}))

	u.Step()
	st := <-stateCh
	assert.Equal(t, RunningStateStep, st.RunningMode)
	st = waitFor(t, stateCh, RunningStateManual)
	assert.Equal(t, 1, st.IterationNum)
	assert.Equal(t, 3, st.LiveCells)

	var live map[Point]Cell
	u.Do(func(b *Board) { live = liveCells(b) })
	assert.Equal(t, pointsOf([][]int{{3, 4}, {4, 4}, {5, 4}}, Point{}), live)
}

func TestUniverseRunStopsAtMaxSteps(t *testing.T) {
	u, stateCh := newTestUniverse(t, func(o *Options) { o.MaxSteps = 5 })
	u.SettleTemplate("blinker", Point{3, 3})

	u.Run()
	st := waitFor(t, stateCh, RunningStateFinished)
	assert.Equal(t, 5, st.IterationNum)
	assert.Equal(t, 3, st.LiveCells)

	var playing bool
	u.Do(func(b *Board) { playing = b.IsPlaying() })
	assert.False(t, playing)
}

func TestUniverseRunStopsWhenDead(t *testing.T) {
	u, stateCh := newTestUniverse(t, nil)
	u.InverseCell(5, 5)
	assert.Equal(t, 1, u.Status().LiveCells)

	u.Run()
	st := waitFor(t, stateCh, RunningStateFinished)
	assert.Equal(t, 1, st.IterationNum)
	assert.Zero(t, st.LiveCells)
}

func TestUniverseRunStopsWhenStable(t *testing.T) {
	u, stateCh := newTestUniverse(t, nil)
	u.SettleTemplate("block", Point{3, 3})

	u.Run()
	st := waitFor(t, stateCh, RunningStateFinished)
	assert.Equal(t, 1, st.IterationNum)
	assert.Equal(t, 4, st.LiveCells)
}

func TestUniverseStop(t *testing.T) {
	u, stateCh := newTestUniverse(t, func(o *Options) {
		o.MaxSteps = 0
		o.Interval = time.Millisecond
	})
	u.SettleTemplate("blinker", Point{3, 3})

	u.Run()
	waitFor(t, stateCh, RunningStateRun)
	u.Stop()
	st := waitFor(t, stateCh, RunningStateManual)
	assert.Equal(t, 3, st.LiveCells)
}

func TestUniverseClear(t *testing.T) {
	u, stateCh := newTestUniverse(t, nil)
	u.Settle([][]int{{1, 1}, {2, 2}, {3, 3}})
	u.Step()
	waitFor(t, stateCh, RunningStateManual)

	u.Clear()
	st := waitFor(t, stateCh, RunningStateManual)
	assert.Zero(t, st.LiveCells)
	assert.Zero(t, st.IterationNum)
}

func TestUniverseTemplates(t *testing.T) {
	u, _ := newTestUniverse(t, nil)
	u.AddTemplate(Template{Name: "aaa", Coordinates: [][]int{{0, 0}}})

	list := u.Templates()
	require.NotEmpty(t, list)
	assert.Equal(t, "aaa", list[0].Name)

	assert.True(t, u.SettleTemplate("aaa", Point{9, 9}))
	assert.Equal(t, 1, u.Status().LiveCells)
}

func TestUniverseRandomData(t *testing.T) {
	u, stateCh := newTestUniverse(t, nil)
	u.SettleWithRandomData(nil)
	waitFor(t, stateCh, RunningStateManual)
	assert.Greater(t, u.Status().LiveCells, 0)
}

type recordingViewer struct {
	sync.Mutex
	registered *Universe
	snapshots  []Snapshot
}

func (v *recordingViewer) Refresh(s Snapshot) {
	v.Lock()
	defer v.Unlock()
	v.snapshots = append(v.snapshots, s)
}

func (v *recordingViewer) Register(u *Universe) { v.registered = u }
func (v *recordingViewer) Start()               {}

func TestUniverseRefreshesViewers(t *testing.T) {
	u, _ := newTestUniverse(t, nil)
	v := &recordingViewer{}
	u.RegisterViewer(v)
	assert.Same(t, u, v.registered)

	u.Do(func(b *Board) { b.PaintCell(Point{2, 3}, 1) })

	v.Lock()
	defer v.Unlock()
	require.Len(t, v.snapshots, 1)
	s := v.snapshots[0]
	assert.Equal(t, 1, s.LiveCells)
	assert.Equal(t, uint8(1), s.Cells.At(2, 3))
	assert.Len(t, s.Colors, 2)
}

func TestUniverseWithoutStateChannel(t *testing.T) {
	o := DefaultUniverseOptions
	o.Width, o.Height = 6, 6
	u := New(&o, nil)
	defer u.Close()
	u.SettleTemplate("blinker", Point{2, 2})
	u.Step()
	// Do is queued after the step, so the step is done when it returns
	u.Do(func(*Board) {})
	assert.Equal(t, 1, u.Status().IterationNum)
}

func TestUniverseClose(t *testing.T) {
	o := DefaultUniverseOptions
	u := New(&o, nil)
	u.Close()
	u.Close()

	//commands are dropped once closed
	u.Step()
	u.Run()
	called := false
	u.Do(func(*Board) { called = true })
	assert.False(t, called)
}

func TestUniverseRunHonorsMaxSpeed(t *testing.T) {
	u, stateCh := newTestUniverse(t, func(o *Options) {
		o.MaxSpeed = 20
		o.MaxSteps = 3
	})
	u.SettleTemplate("blinker", Point{3, 3})

	start := time.Now()
	u.Run()
	st := waitFor(t, stateCh, RunningStateFinished)
	assert.Equal(t, 3, st.IterationNum)
	//the 2nd and the 3rd generation wait for 50ms each
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestUniverseCloseWhileRunning(t *testing.T) {
	before := runtime.NumGoroutine()
	for i := 0; i < 50; i++ {
		o := DefaultUniverseOptions
		o.Width, o.Height = 10, 10
		o.Interval = 0
		o.MaxSteps = 0
		u := New(&o, nil)
		u.SettleTemplate("blinker", Point{3, 3})
		u.Run()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for j := 0; j < 100; j++ {
				u.Do(func(*Board) {})
			}
		}()
		u.Close()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			require.FailNow(t, "Do is blocked after Close")
		}
	}
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 5*time.Second, 10*time.Millisecond)
}
