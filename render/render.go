// Package render turns engine output into something a player can see.
//
// A Renderer receives the full board once, returns whatever private state it
// needs, and is then fed the per-tick changes. Renderers never talk to the
// engine directly, so they can be swapped or stacked freely.
package render

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/brensch/snekgrid/game"
)

// TileInfo is one cell of the initial board handed to a renderer.
type TileInfo struct {
	Position game.Point
	Tile     game.Tile
}

// Renderer is the capability the game loop draws through.
//
// InitialRender draws the full board onto surface and returns opaque state
// that is passed back to every RenderChanges call.
type Renderer interface {
	Name() string
	InitialRender(board [][]TileInfo, surface io.Writer) (any, error)
	RenderChanges(state any, changes []game.Change, eating bool) error
}

// ErrState is returned when a renderer is handed state it did not create.
var ErrState = errors.New("render: unexpected renderer state")

func stateError(name string, state any) error {
	return fmt.Errorf("%w: %s renderer got %T", ErrState, name, state)
}

// Layout pairs every tile of board with its position.
func Layout(board [][]game.Tile) [][]TileInfo {
	out := make([][]TileInfo, len(board))
	for y, row := range board {
		out[y] = make([]TileInfo, len(row))
		for x, t := range row {
			out[y][x] = TileInfo{Position: game.Point{X: x, Y: y}, Tile: t}
		}
	}
	return out
}

func boardSize(board [][]TileInfo) (rows, columns int, err error) {
	if len(board) == 0 || len(board[0]) == 0 {
		return 0, 0, errors.New("render: empty board")
	}
	return len(board), len(board[0]), nil
}

// Multi fans one board out to several renderers. Its state holds one entry
// per renderer.
func Multi(rs ...Renderer) Renderer {
	return multi(rs)
}

type multi []Renderer

func (m multi) Name() string { return "multi" }

func (m multi) InitialRender(board [][]TileInfo, surface io.Writer) (any, error) {
	states := make([]any, len(m))
	for i, r := range m {
		s, err := r.InitialRender(board, surface)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.Name(), err)
		}
		states[i] = s
	}
	return states, nil
}

func (m multi) RenderChanges(state any, changes []game.Change, eating bool) error {
	states, ok := state.([]any)
	if !ok || len(states) != len(m) {
		return stateError(m.Name(), state)
	}
	var errs []error
	for i, r := range m {
		if err := r.RenderChanges(states[i], changes, eating); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Screen is a surface that keeps only the most recent frame. Each Write
// replaces the previous contents. Safe for concurrent use.
type Screen struct {
	mu    sync.RWMutex
	frame []byte
}

func (s *Screen) Write(p []byte) (int, error) {
	s.mu.Lock()
	s.frame = append(s.frame[:0], p...)
	s.mu.Unlock()
	return len(p), nil
}

func (s *Screen) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return string(s.frame)
}
