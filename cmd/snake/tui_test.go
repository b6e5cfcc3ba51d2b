package main

import (
	"strings"
	"testing"
	"time"

	"github.com/brensch/snekgrid/game"
	"github.com/brensch/snekgrid/loop"
	"github.com/brensch/snekgrid/render"
	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel(t *testing.T) model {
	t.Helper()
	e, err := game.New(game.WithSize(9, 9), game.WithFruitFunc(game.FruitFromList()))
	if err != nil {
		t.Fatalf("game.New: %v", err)
	}
	screen := &render.Screen{}
	d, err := loop.New(e, render.NewText(), screen)
	if err != nil {
		t.Fatalf("loop.New: %v", err)
	}
	return newModel(d, screen, false)
}

func TestModel_ArrowStartsAndSteers(t *testing.T) {
	m := newTestModel(t)
	if !strings.Contains(m.View(), "to start") {
		t.Fatalf("view before start:\n%s", m.View())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if !m.driver.Running() {
		t.Fatalf("arrow key should start the game")
	}
	if dir, ok := m.driver.Pending(); !ok || dir != game.Up {
		t.Fatalf("pending=%v,%v want=Up", dir, ok)
	}

	m.Update(TickMsg(time.Now().Add(time.Second)))
	if head := m.driver.Engine().Head(); head != (game.Point{X: 4, Y: 3}) {
		t.Fatalf("head=%v want=(4,3)", head)
	}
}

func TestModel_PauseAndQuit(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !m.driver.Paused() || !strings.Contains(m.View(), "paused") {
		t.Fatalf("expected paused view:\n%s", m.View())
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q should return tea.Quit")
	}
}
