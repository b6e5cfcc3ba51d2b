// food.go implements fruit placement producers.

package game

import (
	"math/rand"
)

// FruitFunc produces candidate fruit positions. The engine keeps asking
// until it gets an open interior cell, up to a fixed number of attempts.
// Returning false means the producer has run out, and the board is left
// without fruit.
type FruitFunc func() (Point, bool)

// RandomFruit returns a producer that picks uniformly over the interior of a
// rows x columns board, i.e. [1, columns-2] x [1, rows-2].
func RandomFruit(rng *rand.Rand, rows, columns int) FruitFunc {
	return func() (Point, bool) {
		return Point{
			X: 1 + rng.Intn(columns-2),
			Y: 1 + rng.Intn(rows-2),
		}, true
	}
}

// FruitFromList yields the given points in order and then reports that it
// is exhausted. Useful for tests and for replaying a recorded game.
func FruitFromList(points ...Point) FruitFunc {
	next := 0
	return func() (Point, bool) {
		if next >= len(points) {
			return Point{}, false
		}
		p := points[next]
		next++
		return p, true
	}
}
