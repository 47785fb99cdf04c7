package stopwatch

import "time"

// Scheduler runs fn every interval until the returned Handle is stopped.
// Implementations must invoke fn on the goroutine that drives the Engine.
type Scheduler interface {
	Schedule(interval time.Duration, fn func()) Handle
}

// Handle cancels a scheduled task.
type Handle interface {
	Stop()
}

// ManualScheduler fires tasks only when Fire is called. It suits hosts that
// pump their own loop and tests that need exact tick placement.
type ManualScheduler struct {
	nextID int
	order  []int
	tasks  map[int]func()
}

// NewManualScheduler returns an empty ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{tasks: map[int]func(){}}
}

// Schedule registers fn. The interval is ignored; every Fire is one tick.
func (s *ManualScheduler) Schedule(_ time.Duration, fn func()) Handle {
	s.nextID++
	id := s.nextID
	s.tasks[id] = fn
	s.order = append(s.order, id)
	return manualHandle{s: s, id: id}
}

// Fire runs every active task once, in scheduling order.
func (s *ManualScheduler) Fire() {
	ids := make([]int, len(s.order))
	copy(ids, s.order)
	for _, id := range ids {
		// A task may stop another one mid-round.
		if fn, ok := s.tasks[id]; ok {
			fn()
		}
	}
}

// Active reports how many tasks are scheduled.
func (s *ManualScheduler) Active() int {
	return len(s.tasks)
}

func (s *ManualScheduler) stop(id int) {
	if _, ok := s.tasks[id]; !ok {
		return
	}
	delete(s.tasks, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

type manualHandle struct {
	s  *ManualScheduler
	id int
}

func (h manualHandle) Stop() {
	h.s.stop(h.id)
}
