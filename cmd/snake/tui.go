package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/brensch/snekgrid/game"
	"github.com/brensch/snekgrid/loop"
	"github.com/brensch/snekgrid/render"
	"github.com/brensch/snekgrid/rules"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

var keyDirections = map[string]game.Direction{
	"up": game.Up, "w": game.Up, "k": game.Up,
	"down": game.Down, "s": game.Down, "j": game.Down,
	"left": game.Left, "a": game.Left, "h": game.Left,
	"right": game.Right, "d": game.Right, "l": game.Right,
}

type TickMsg time.Time

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// model is the Bubble Tea program for a local game. The driver is only ever
// touched from Update.
type model struct {
	driver    *loop.Driver
	screen    *render.Screen
	autopilot bool
}

func newModel(d *loop.Driver, screen *render.Screen, autopilot bool) model {
	return model{driver: d, screen: screen, autopilot: autopilot}
}

func (m model) Init() tea.Cmd {
	if m.autopilot {
		m.driver.Start(time.Now())
	}
	return tickCmd(m.driver.Interval())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.driver.TogglePause(time.Now())
			return m, nil
		}
		if dir, ok := keyDirections[key]; ok {
			m.driver.Move(dir)
			m.driver.Start(time.Now())
		}
	case TickMsg:
		if m.autopilot && m.driver.Running() && !m.driver.Paused() {
			m.driver.Move(rules.Autopilot(m.driver.Engine()))
		}
		m.driver.Advance(time.Time(msg))
		if m.driver.Over() {
			return m, nil
		}
		return m, tickCmd(m.driver.Interval())
	}
	return m, nil
}

func (m model) View() string {
	var sb strings.Builder
	sb.WriteString(m.screen.String())
	sb.WriteString("\n\n")

	e := m.driver.Engine()
	sb.WriteString(statusStyle.Render(fmt.Sprintf("score %d  length %d  turn %d  speed %s",
		m.driver.Eaten(), e.Len(), e.Turn(), m.driver.Interval())))
	sb.WriteString("\n")

	switch {
	case m.driver.Over():
		sb.WriteString(bannerStyle.Render("game over") + "  press q to quit")
	case !m.driver.Running():
		sb.WriteString("press space or an arrow key to start")
	case m.driver.Paused():
		sb.WriteString(bannerStyle.Render("paused") + "  space to resume")
	default:
		sb.WriteString("arrows/wasd/hjkl steer, space pauses, q quits")
	}
	sb.WriteString("\n")
	return sb.String()
}
