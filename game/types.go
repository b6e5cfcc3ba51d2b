// Package game implements the grid simulation engine for a single-player
// snake game.
//
// The engine owns the bordered board, the snake body, the fruit and the
// current heading. Callers drive it one Tick at a time and apply the returned
// changes to whatever renders the board. Nothing in here blocks or does I/O,
// so a game is fully reproducible given the same inputs and fruit producer.
package game

import (
	"fmt"
	"strings"
)

// Point is a board coordinate.
// (0,0) is the top-left corner; Y grows downwards with the row index.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p moved by (dx, dy).
func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Tile is the value occupying a single board cell.
type Tile uint8

const (
	Empty Tile = iota
	Wall
	Snake
	Fruit
)

func (t Tile) String() string {
	switch t {
	case Empty:
		return "empty"
	case Wall:
		return "wall"
	case Snake:
		return "snake"
	case Fruit:
		return "fruit"
	default:
		return fmt.Sprintf("tile(%d)", uint8(t))
	}
}

// Movement is the axis a Direction moves along.
type Movement uint8

const (
	Vertical Movement = iota
	Horizontal
)

// Direction is the heading of the snake.
type Direction uint8

const (
	Up Direction = iota + 1
	Left
	Down
	Right
)

// Directions lists every valid heading in a stable order.
var Directions = []Direction{Up, Down, Left, Right}

// Axis reports the movement axis of d. Anything that is not Up or Down is
// treated as horizontal.
func (d Direction) Axis() Movement {
	if d == Up || d == Down {
		return Vertical
	}
	return Horizontal
}

// Delta is the one-cell step taken when moving in d.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// Valid reports whether d is one of the four headings.
func (d Direction) Valid() bool {
	return d >= Up && d <= Right
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Left:
		return "left"
	case Down:
		return "down"
	case Right:
		return "right"
	default:
		return "none"
	}
}

// ParseDirection maps a direction name ("up", "Left", ...) to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Change is a single cell delta produced by a tick.
type Change struct {
	Position Point `json:"position"`
	Tile     Tile  `json:"tile"`
}

// TickResult is what one call to Engine.Tick reports.
//
// GameOver is true when the snake crashed on this tick, or already had.
// Eating is true when a fruit was eaten this tick.
// Changes is the minimal set of cells a renderer needs to update; it is
// never the full board.
type TickResult struct {
	GameOver bool     `json:"game_over"`
	Eating   bool     `json:"eating"`
	Changes  []Change `json:"changes"`
}
