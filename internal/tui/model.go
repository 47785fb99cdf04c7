// Package tui provides the Bubble Tea stopwatch interface.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/verte-zerg/lapwatch/internal/clock"
	"github.com/verte-zerg/lapwatch/internal/logging"
	"github.com/verte-zerg/lapwatch/internal/share"
	"github.com/verte-zerg/lapwatch/internal/stopwatch"
)

const exportTimeout = 10 * time.Second

// Options configures the stopwatch UI. Zero values fall back to defaults.
type Options struct {
	TickInterval time.Duration
	Target       share.Target
	Logger       *log.Logger
	Clock        clock.Clock
}

type exportedMsg struct {
	desc string
	laps int
	err  error
}

// Model implements the Bubble Tea stopwatch UI.
type Model struct {
	engine      *stopwatch.Engine
	sched       *loopScheduler
	unsubscribe func()
	snap        stopwatch.Snapshot
	rowsFor     int

	clock  clock.Clock
	target share.Target
	logger *log.Logger

	keys    keyMap
	help    help.Model
	lapList table.Model

	status    string
	statusErr bool
	exporting bool

	width  int
	height int
}

// NewModel constructs a stopwatch UI around a fresh engine.
func NewModel(opts Options) *Model {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	m := &Model{
		sched:   newLoopScheduler(),
		clock:   opts.Clock,
		target:  opts.Target,
		logger:  opts.Logger,
		keys:    newKeyMap(),
		help:    help.New(),
		lapList: newLapTable(),
	}
	m.engine = stopwatch.New(
		stopwatch.WithClock(opts.Clock),
		stopwatch.WithScheduler(m.sched),
		stopwatch.WithTickInterval(opts.TickInterval),
	)
	m.unsubscribe = m.engine.Subscribe(m.onChange)
	m.onChange(m.engine.Snapshot())
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resizeLapTable()
		return m, nil
	case tickMsg:
		return m, tea.Batch(m.sched.fire(msg), m.sched.cmds())
	case exportedMsg:
		m.finishExport(msg)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.shutdown()
		return m, tea.Quit
	case key.Matches(msg, m.keys.StartStop):
		m.engine.StartStop()
		m.logger.Debug("start/stop", "state", m.snap.State(), "total", m.snap.FormattedTotal())
	case key.Matches(msg, m.keys.Lap):
		m.engine.Lap()
	case key.Matches(msg, m.keys.Reset):
		m.engine.Reset()
		m.status = ""
		m.statusErr = false
		m.logger.Debug("reset")
	case key.Matches(msg, m.keys.Done):
		m.engine.CompleteLap()
		m.logger.Debug("lap completed", "laps", len(m.snap.Laps), "total", m.snap.FormattedTotal())
	case key.Matches(msg, m.keys.Export):
		return m, m.export()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	default:
		var cmd tea.Cmd
		m.lapList, cmd = m.lapList.Update(msg)
		return m, cmd
	}
	return m, m.sched.cmds()
}

// onChange mirrors engine state into the view. Table rows are rebuilt only
// when the lap list changes, not on every tick.
func (m *Model) onChange(snap stopwatch.Snapshot) {
	m.snap = snap
	m.keys.sync(snap)
	if len(snap.Laps) == m.rowsFor {
		return
	}
	if len(snap.Laps) > m.rowsFor && len(snap.Laps) > 0 {
		lap := snap.Laps[0]
		m.logger.Debug("lap recorded", "number", lap.Number, "duration", lap.FormattedDuration())
	}
	m.rowsFor = len(snap.Laps)
	m.lapList.SetRows(lapRows(snap))
	m.lapList.GotoTop()
}

func (m *Model) export() tea.Cmd {
	if m.exporting {
		return nil
	}
	if m.target == nil {
		m.setStatus("no share target configured", true)
		return nil
	}
	m.exporting = true
	m.setStatus("exporting...", false)
	exp := share.NewExport(m.engine.Snapshot(), m.clock.Now())
	target := m.target
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()
		desc, err := target.Share(ctx, exp)
		return exportedMsg{desc: desc, laps: len(exp.Snapshot.Laps), err: err}
	}
}

func (m *Model) finishExport(msg exportedMsg) {
	m.exporting = false
	if msg.err != nil {
		m.logger.Error("export failed", "laps", msg.laps, "err", msg.err)
		status := fmt.Sprintf("export failed: %v", msg.err)
		if msg.desc != "" {
			status = msg.desc + "; " + status
		}
		m.setStatus(status, true)
		return
	}
	m.logger.Info("exported laps", "laps", msg.laps, "result", msg.desc)
	m.setStatus(msg.desc, false)
}

func (m *Model) setStatus(status string, isErr bool) {
	m.status = status
	m.statusErr = isErr
}

func (m *Model) shutdown() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.engine.Close()
}

func lapRows(snap stopwatch.Snapshot) []table.Row {
	fastest, hasFastest := snap.FastestLapIndex()
	slowest, hasSlowest := snap.SlowestLapIndex()
	return lo.Map(snap.Laps, func(lap stopwatch.Lap, i int) table.Row {
		mark := ""
		switch {
		case hasFastest && i == fastest:
			mark = "fastest"
		case hasSlowest && i == slowest:
			mark = "slowest"
		}
		return table.Row{
			fmt.Sprintf("Lap %d", lap.Number),
			lap.FormattedDuration(),
			lap.FormattedCumulative(),
			mark,
		}
	})
}
