// Package tui implements an optional Bubble Tea dashboard sink (spec §6
// --tui) consuming the Event Bus and rendering a live request/match/error
// summary plus a scrolling match feed.
//
// Grounded on the 0x6d61-pentecter TUI's channel-to-tea.Msg bridge
// (AgentEventCmd, reading the next value off a channel and returning it
// as a tea.Msg so Bubble Tea's runtime re-invokes Cmd for the next one)
// and its Model/Update/View split.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NutekSecurity/dirnutek/internal/events"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	matchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// eventMsg wraps a bus event as a tea.Msg.
type eventMsg events.Event

// busClosedMsg signals the event channel has closed (scan done).
type busClosedMsg struct{}

// waitForEvent reads the next event off bus and turns it into a tea.Msg,
// or reports busClosedMsg once the channel is drained and closed.
func waitForEvent(bus *events.Bus) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-bus.Events()
		if !ok {
			return busClosedMsg{}
		}
		return eventMsg(ev)
	}
}

// Model is the root Bubble Tea model for the scan dashboard.
type Model struct {
	bus     *events.Bus
	control *events.Control

	totalWords int
	requests   int
	matches    int
	errors     int
	finished   bool
	stopped    bool

	feed     viewport.Model
	lines    []string
	width    int
	height   int
}

// New creates a dashboard Model bound to bus for display and control for
// sending the Stop signal on 'q'/ctrl+c.
func New(bus *events.Bus, control *events.Control) Model {
	vp := viewport.New(80, 20)
	return Model{bus: bus, control: control, feed: vp}
}

// Init starts the event pump.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.bus)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.feed.Width = msg.Width
		m.feed.Height = msg.Height - 4
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.control.Stop()
			return m, nil
		}
		return m, nil

	case eventMsg:
		m.apply(events.Event(msg))
		return m, waitForEvent(m.bus)

	case busClosedMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) apply(ev events.Event) {
	switch ev.Kind {
	case events.ScanStarted:
		m.totalWords = ev.TotalWords
	case events.RequestCompleted:
		m.requests++
	case events.FoundURL:
		m.matches++
		m.lines = append(m.lines, matchStyle.Render(ev.Line))
		m.feed.SetContent(strings.Join(m.lines, "\n"))
		m.feed.GotoBottom()
	case events.ErrorOccurred:
		m.errors++
		m.lines = append(m.lines, errStyle.Render("[!] "+ev.Message))
		m.feed.SetContent(strings.Join(m.lines, "\n"))
	case events.Warning:
		m.lines = append(m.lines, errStyle.Render("[!] "+ev.Message))
		m.feed.SetContent(strings.Join(m.lines, "\n"))
	case events.ScanFinished:
		m.finished = true
	case events.ScanStopped:
		m.stopped = true
	}
}

func (m Model) View() string {
	status := "running"
	if m.stopped {
		status = "stopped"
	} else if m.finished {
		status = "finished"
	}

	header := headerStyle.Render(fmt.Sprintf("dirnutek — %s", status))
	stats := statStyle.Render(fmt.Sprintf("words=%d requests=%d matches=%d errors=%d", m.totalWords, m.requests, m.matches, m.errors))

	return fmt.Sprintf("%s\n%s\n\n%s\n\n(q to stop)\n", header, stats, m.feed.View())
}

// Run starts the dashboard program and blocks until it quits on
// busClosedMsg. Pressing q/ctrl+c broadcasts Stop; the dashboard keeps
// running until the event channel then closes.
func Run(bus *events.Bus, control *events.Control) error {
	p := tea.NewProgram(New(bus, control))
	_, err := p.Run()
	return err
}
