// Package stopwatch implements the lap timer state machine and its derived statistics.
package stopwatch

import (
	"time"

	"github.com/verte-zerg/lapwatch/internal/clock"
)

// DefaultTickInterval is how often a running engine refreshes its elapsed times.
const DefaultTickInterval = 10 * time.Millisecond

// State is the coarse engine state.
type State int

const (
	// Idle means the engine was never started or was reset.
	Idle State = iota
	// Running means the clock is advancing.
	Running
	// Paused means the clock is stopped with time on it.
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Listener receives a snapshot after every state change.
type Listener func(Snapshot)

type subscription struct {
	id int
	fn Listener
}

// Engine is a stopwatch with lap recording. It is not safe for concurrent use:
// actions, ticks and listeners all run on the goroutine that owns it.
type Engine struct {
	clock    clock.Clock
	sched    Scheduler
	interval time.Duration

	running     bool
	total       time.Duration
	currentLap  time.Duration
	accumulated time.Duration
	lapStart    time.Duration
	runStart    time.Time
	laps        []Lap

	ticker     Handle
	generation uint64

	listeners []subscription
	nextSubID int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithScheduler sets the tick scheduler.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) {
		e.sched = s
	}
}

// WithTickInterval sets the refresh cadence. Non-positive values are ignored.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// New returns an Idle engine. Without options it reads the system clock and
// ticks only when a ManualScheduler is fired.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:    clock.System{},
		interval: DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sched == nil {
		e.sched = NewManualScheduler()
	}
	return e
}

// StartStop starts a stopped engine or pauses a running one.
func (e *Engine) StartStop() {
	if e.running {
		e.pause()
	} else {
		e.start()
	}
	e.notify()
}

// Lap closes the current lap. It does nothing before the first start.
func (e *Engine) Lap() {
	if e.running {
		e.sample()
	}
	if !e.running && e.total == 0 {
		return
	}
	e.recordLap()
	e.notify()
}

// CompleteLap stops the clock and records the open lap segment, if any.
func (e *Engine) CompleteLap() {
	if e.running {
		e.sample()
	}
	if e.total == 0 {
		return
	}
	if e.running {
		e.pause()
	}
	if e.currentLap > 0 {
		e.recordLap()
	}
	e.notify()
}

// Reset stops the clock and clears all times and laps.
func (e *Engine) Reset() {
	e.stopTicker()
	e.running = false
	e.total = 0
	e.currentLap = 0
	e.accumulated = 0
	e.lapStart = 0
	e.runStart = time.Time{}
	e.laps = nil
	e.notify()
}

// Close releases the tick and drops all listeners.
func (e *Engine) Close() {
	e.stopTicker()
	e.listeners = nil
}

// Subscribe registers l and returns a function that removes it.
func (e *Engine) Subscribe(l Listener) (cancel func()) {
	e.nextSubID++
	id := e.nextSubID
	e.listeners = append(e.listeners, subscription{id: id, fn: l})
	return func() {
		for i, sub := range e.listeners {
			if sub.id == id {
				e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// State reports Idle, Running or Paused.
func (e *Engine) State() State {
	switch {
	case e.running:
		return Running
	case e.total > 0:
		return Paused
	default:
		return Idle
	}
}

// IsRunning reports whether the clock is advancing.
func (e *Engine) IsRunning() bool { return e.running }

// TotalElapsed returns the elapsed time as of the last tick or action.
func (e *Engine) TotalElapsed() time.Duration { return e.total }

// CurrentLap returns the time since the last lap boundary.
func (e *Engine) CurrentLap() time.Duration { return e.currentLap }

// Laps returns a copy of the recorded laps, newest first.
func (e *Engine) Laps() []Lap {
	return copyLaps(e.laps)
}

// Snapshot returns an immutable copy of the observable state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Running:    e.running,
		Total:      e.total,
		CurrentLap: e.currentLap,
		Laps:       copyLaps(e.laps),
	}
}

// GenerateCSV renders the lap table and summary as CSV.
func (e *Engine) GenerateCSV() string {
	return e.Snapshot().CSV()
}

// AverageLap forwards to Snapshot.AverageLap.
func (e *Engine) AverageLap() (time.Duration, bool) { return averageLap(e.laps) }

// OverallAverage forwards to Snapshot.OverallAverage.
func (e *Engine) OverallAverage() (time.Duration, bool) {
	return overallAverage(e.laps, e.currentLap)
}

// FastestLapIndex forwards to Snapshot.FastestLapIndex.
func (e *Engine) FastestLapIndex() (int, bool) { return extremeLapIndex(e.laps, less) }

// SlowestLapIndex forwards to Snapshot.SlowestLapIndex.
func (e *Engine) SlowestLapIndex() (int, bool) { return extremeLapIndex(e.laps, greater) }

func (e *Engine) start() {
	e.runStart = e.clock.Now()
	e.running = true
	e.generation++
	gen := e.generation
	e.ticker = e.sched.Schedule(e.interval, func() {
		e.tick(gen)
	})
}

// pause cancels the tick before touching any field.
func (e *Engine) pause() {
	e.stopTicker()
	e.sample()
	e.accumulated = e.total
	e.running = false
}

func (e *Engine) stopTicker() {
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
	}
	e.generation++
}

func (e *Engine) tick(gen uint64) {
	if gen != e.generation || !e.running {
		return
	}
	e.sample()
	e.notify()
}

func (e *Engine) sample() {
	total := e.accumulated + e.clock.Now().Sub(e.runStart)
	if total < e.total {
		total = e.total
	}
	e.total = total
	e.currentLap = total - e.lapStart
	if e.currentLap < 0 {
		e.currentLap = 0
	}
}

func (e *Engine) recordLap() {
	lap := Lap{
		Number:     len(e.laps) + 1,
		Duration:   e.currentLap,
		Cumulative: e.total,
	}
	e.laps = append([]Lap{lap}, e.laps...)
	e.lapStart = e.total
	e.currentLap = 0
}

func (e *Engine) notify() {
	if len(e.listeners) == 0 {
		return
	}
	snap := e.Snapshot()
	subs := make([]subscription, len(e.listeners))
	copy(subs, e.listeners)
	for _, sub := range subs {
		sub.fn(snap)
	}
}

func copyLaps(laps []Lap) []Lap {
	if len(laps) == 0 {
		return nil
	}
	out := make([]Lap, len(laps))
	copy(out, laps)
	return out
}
