package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/verte-zerg/lapwatch/internal/stopwatch"
)

type keyMap struct {
	StartStop key.Binding
	Lap       key.Binding
	Reset     key.Binding
	Done      key.Binding
	Export    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		StartStop: key.NewBinding(
			key.WithKeys(" ", "s"),
			key.WithHelp("space", "start"),
		),
		Lap: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "lap"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Done: key.NewBinding(
			key.WithKeys("d", "enter"),
			key.WithHelp("d", "done"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.StartStop, k.Lap, k.Done, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.StartStop, k.Lap, k.Reset, k.Done},
		{k.Export, k.Help, k.Quit},
	}
}

// sync enables the bindings that do something in the snapshot's state.
func (k *keyMap) sync(snap stopwatch.Snapshot) {
	hasTime := snap.Total > 0
	if snap.Running {
		k.StartStop.SetHelp("space", "stop")
	} else {
		k.StartStop.SetHelp("space", "start")
	}
	k.Lap.SetEnabled(snap.Running || hasTime)
	k.Reset.SetEnabled(hasTime || len(snap.Laps) > 0)
	k.Done.SetEnabled(hasTime)
	k.Export.SetEnabled(len(snap.Laps) > 0)
}
