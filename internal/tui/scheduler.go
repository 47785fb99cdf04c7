package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/lapwatch/internal/stopwatch"
)

type tickMsg struct {
	id int
}

type loopTask struct {
	interval time.Duration
	fn       func()
}

// loopScheduler drives engine ticks through the Bubble Tea event loop, so a
// tick only ever runs inside Update.
type loopScheduler struct {
	nextID  int
	tasks   map[int]loopTask
	pending []tea.Cmd
}

func newLoopScheduler() *loopScheduler {
	return &loopScheduler{tasks: map[int]loopTask{}}
}

// Schedule implements stopwatch.Scheduler. The first tick is queued until
// the model drains it with cmds.
func (s *loopScheduler) Schedule(interval time.Duration, fn func()) stopwatch.Handle {
	s.nextID++
	id := s.nextID
	s.tasks[id] = loopTask{interval: interval, fn: fn}
	s.pending = append(s.pending, tickCmd(id, interval))
	return loopHandle{s: s, id: id}
}

// cmds returns the queued tick commands and clears the queue.
func (s *loopScheduler) cmds() tea.Cmd {
	if len(s.pending) == 0 {
		return nil
	}
	pending := s.pending
	s.pending = nil
	return tea.Batch(pending...)
}

// fire runs the task behind msg and re-arms it. Ticks of stopped tasks are
// dropped.
func (s *loopScheduler) fire(msg tickMsg) tea.Cmd {
	task, ok := s.tasks[msg.id]
	if !ok {
		return nil
	}
	task.fn()
	if _, ok := s.tasks[msg.id]; !ok {
		return nil
	}
	return tickCmd(msg.id, task.interval)
}

func (s *loopScheduler) active() int {
	return len(s.tasks)
}

func tickCmd(id int, interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return tickMsg{id: id}
	})
}

type loopHandle struct {
	s  *loopScheduler
	id int
}

func (h loopHandle) Stop() {
	delete(h.s.tasks, h.id)
}
