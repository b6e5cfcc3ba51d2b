// Package rules answers move-safety questions about a running engine and
// provides a simple autopilot for headless play.
package rules

import (
	"github.com/brensch/snekgrid/game"
)

// Accepted reports whether the engine would take d as its next heading:
// either it is the current heading, or it turns onto the other axis.
func Accepted(e *game.Engine, d game.Direction) bool {
	if !d.Valid() {
		return false
	}
	cur := e.Direction()
	return d == cur || d.Axis() != cur.Axis()
}

// IsSafe reports whether moving one cell in d keeps the game alive.
// The tail counts as solid, matching the engine's collision check.
func IsSafe(e *game.Engine, d game.Direction) bool {
	dx, dy := d.Delta()
	switch e.Tile(e.Head().Add(dx, dy)) {
	case game.Wall, game.Snake:
		return false
	}
	return true
}

// SafeDirections returns the headings, in game.Directions order, that the
// engine would accept and that do not end the game on the next tick.
func SafeDirections(e *game.Engine) []game.Direction {
	if e.Over() {
		return nil
	}
	moves := make([]game.Direction, 0, 3)
	for _, d := range game.Directions {
		if Accepted(e, d) && IsSafe(e, d) {
			moves = append(moves, d)
		}
	}
	return moves
}

// Autopilot picks the safe heading that gets closest to the fruit.
// The current heading wins ties; with no safe heading the current one is
// returned unchanged.
func Autopilot(e *game.Engine) game.Direction {
	cur := e.Direction()
	moves := SafeDirections(e)
	if len(moves) == 0 {
		return cur
	}

	fruit, hasFruit := e.Fruit()
	if !hasFruit {
		for _, d := range moves {
			if d == cur {
				return cur
			}
		}
		return moves[0]
	}

	best := game.Direction(0)
	bestDist := 0
	for _, d := range moves {
		dx, dy := d.Delta()
		dist := manhattan(e.Head().Add(dx, dy), fruit)
		if best == 0 || dist < bestDist || (dist == bestDist && d == cur) {
			best = d
			bestDist = dist
		}
	}
	return best
}

func manhattan(a, b game.Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
