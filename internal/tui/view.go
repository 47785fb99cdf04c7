package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

const (
	emptyHint       = "Press Start to begin timing"
	minTableHeight  = 3
	maxTableHeight  = 20
	chromeHeight    = 14
	buttonHorizPad  = 2
	lapColumnWidth  = 8
	timeColumnWidth = 10
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	timerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true).Padding(1, 0)
	runningStyle = timerStyle.Foreground(lipgloss.Color("#34C759"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	buttonStyle  = lipgloss.NewStyle().
			Padding(0, buttonHorizPad).
			Border(lipgloss.RoundedBorder(), true)
	neutralButton  = buttonStyle.Foreground(lipgloss.Color("#F0F0F0")).BorderForeground(lipgloss.Color("#8E8E93"))
	startButton    = buttonStyle.Foreground(lipgloss.Color("#34C759")).BorderForeground(lipgloss.Color("#34C759"))
	stopButton     = buttonStyle.Foreground(lipgloss.Color("#FF3B30")).BorderForeground(lipgloss.Color("#FF3B30"))
	doneButton     = buttonStyle.Foreground(lipgloss.Color("#007AFF")).BorderForeground(lipgloss.Color("#007AFF"))
	disabledButton = buttonStyle.Foreground(lipgloss.Color("#4A4A4A")).BorderForeground(lipgloss.Color("#4A4A4A"))
)

// View implements tea.Model.
func (m *Model) View() string {
	sections := []string{
		titleStyle.Render("Stopwatch"),
		m.renderTimer(),
		m.renderCurrentLap(),
		m.renderStats(),
		m.renderButtons(),
		m.renderLaps(),
		m.renderStatus(),
		m.help.View(m.keys),
	}
	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderTimer() string {
	if m.snap.Running {
		return runningStyle.Render(m.snap.FormattedTotal())
	}
	return timerStyle.Render(m.snap.FormattedTotal())
}

func (m *Model) renderCurrentLap() string {
	if m.snap.Total <= 0 {
		return ""
	}
	return labelStyle.Render(fmt.Sprintf("Lap %d: %s", len(m.snap.Laps)+1, m.snap.FormattedCurrentLap()))
}

func (m *Model) renderStats() string {
	avg, ok := m.snap.FormattedAverageLap()
	if !ok {
		return ""
	}
	items := []string{statItem("Avg Lap", avg)}
	if overall, ok := m.snap.FormattedOverallAverage(); ok && m.snap.CurrentLap > 0 {
		items = append(items, statItem("Overall", overall))
	}
	return strings.Join(items, "   ")
}

func statItem(label, value string) string {
	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func (m *Model) renderButtons() string {
	var left string
	switch {
	case m.snap.Running:
		left = neutralButton.Render("Lap")
	case m.snap.Total > 0:
		left = neutralButton.Render("Reset")
	default:
		left = disabledButton.Render("Lap")
	}
	middle := startButton.Render("Start")
	if m.snap.Running {
		middle = stopButton.Render("Stop")
	}
	right := doneButton.Render("Done")
	if m.snap.Total <= 0 {
		right = disabledButton.Render("Done")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", middle, "  ", right)
}

func (m *Model) renderLaps() string {
	if len(m.snap.Laps) == 0 {
		if m.snap.Total <= 0 {
			return labelStyle.Render(emptyHint)
		}
		return ""
	}
	return m.lapList.View()
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return errorStyle.Render(m.status)
	}
	return statusStyle.Render(m.status)
}

func newLapTable() table.Model {
	columns := []table.Column{
		{Title: "Lap", Width: lapColumnWidth},
		{Title: "Lap Time", Width: timeColumnWidth},
		{Title: "Cumulative", Width: timeColumnWidth + 2},
		{Title: "", Width: lapColumnWidth},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(minTableHeight),
		table.WithFocused(true),
	)
	t.SetStyles(lapTableStyles())
	return t
}

func lapTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) resizeLapTable() {
	height := m.height - chromeHeight
	if height < minTableHeight {
		height = minTableHeight
	}
	if height > maxTableHeight {
		height = maxTableHeight
	}
	m.lapList.SetHeight(height)
}
