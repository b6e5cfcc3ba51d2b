package game

import (
	"math"
	"math/rand"
	"time"
)

const (
	// DefaultSize is used for rows and columns when no size option is given.
	DefaultSize = 21
	// MinSize is the smallest accepted number of rows or columns.
	MinSize = 5
	// MaxSize is the largest accepted number of rows or columns.
	MaxSize = 1024

	// maxFruitAttempts bounds how often the producer is asked for a free
	// cell before the board is left without fruit.
	maxFruitAttempts = 1 << 20
)

type options struct {
	rows      float64
	columns   float64
	nextFruit FruitFunc
	rng       *rand.Rand
}

// Option configures New.
type Option func(*options)

// WithSize sets the board dimensions.
func WithSize(rows, columns int) Option {
	return func(o *options) {
		o.rows = float64(rows)
		o.columns = float64(columns)
	}
}

// WithSizeFloat sets the board dimensions from values that may not be whole
// numbers, e.g. sizes decoded from configuration. New rejects fractions.
func WithSizeFloat(rows, columns float64) Option {
	return func(o *options) {
		o.rows = rows
		o.columns = columns
	}
}

// WithFruitFunc replaces the default random fruit producer.
func WithFruitFunc(fn FruitFunc) Option {
	return func(o *options) {
		o.nextFruit = fn
	}
}

// WithRand sets the source used by the default fruit producer.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithSeed seeds the default fruit producer, making games reproducible.
func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

// Engine is the grid simulation. It is not safe for concurrent use; the
// caller owns it and drives it from a single goroutine.
type Engine struct {
	rows    int
	columns int

	// board holds only Wall and Empty. Row-major: board[y][x].
	board [][]Tile
	// occupied mirrors body for O(1) lookup, indexed y*columns+x.
	occupied []bool

	body      []Point
	fruit     Point
	hasFruit  bool
	direction Direction
	over      bool
	turn      int

	nextFruitFn FruitFunc
}

// New builds an engine with a bordered board, a one-segment snake at the
// centre heading right, and the first fruit placed.
func New(opts ...Option) (*Engine, error) {
	o := options{rows: DefaultSize, columns: DefaultSize}
	for _, opt := range opts {
		opt(&o)
	}

	if o.rows < MinSize || o.columns < MinSize {
		return nil, &InvalidSizeError{Rows: o.rows, Columns: o.columns, Reason: SizeTooSmall}
	}
	if !whole(o.rows) || !whole(o.columns) {
		return nil, &InvalidSizeError{Rows: o.rows, Columns: o.columns, Reason: SizeFractional}
	}
	if o.rows > MaxSize || o.columns > MaxSize {
		return nil, &InvalidSizeError{Rows: o.rows, Columns: o.columns, Reason: SizeTooLarge}
	}

	e := &Engine{
		rows:      int(o.rows),
		columns:   int(o.columns),
		direction: Right,
	}
	e.board = newBoard(e.rows, e.columns)
	e.occupied = make([]bool, e.rows*e.columns)

	e.nextFruitFn = o.nextFruit
	if e.nextFruitFn == nil {
		rng := o.rng
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		e.nextFruitFn = RandomFruit(rng, e.rows, e.columns)
	}

	// (n-1)/2 rounded half up is n/2 for whole n.
	start := Point{X: e.columns / 2, Y: e.rows / 2}
	e.body = []Point{start}
	e.occupied[e.index(start)] = true

	e.fruit, e.hasFruit = e.nextFruit()
	return e, nil
}

func whole(v float64) bool {
	return !math.IsInf(v, 0) && v == math.Trunc(v)
}

func newBoard(rows, columns int) [][]Tile {
	board := make([][]Tile, rows)
	for y := range board {
		row := make([]Tile, columns)
		if y == 0 || y == rows-1 {
			for x := range row {
				row[x] = Wall
			}
		} else {
			row[0] = Wall
			row[columns-1] = Wall
		}
		board[y] = row
	}
	return board
}

func (e *Engine) Rows() int    { return e.rows }
func (e *Engine) Columns() int { return e.columns }

// Head is the first body segment.
func (e *Engine) Head() Point { return e.body[0] }

// Len is the number of body segments.
func (e *Engine) Len() int { return len(e.body) }

// Body returns a copy of the snake, head first.
func (e *Engine) Body() []Point {
	out := make([]Point, len(e.body))
	copy(out, e.body)
	return out
}

// Fruit returns the current fruit position, if there is one.
func (e *Engine) Fruit() (Point, bool) { return e.fruit, e.hasFruit }

func (e *Engine) Direction() Direction { return e.direction }

// Over reports whether the game has ended.
func (e *Engine) Over() bool { return e.over }

// Turn counts the ticks that moved the snake.
func (e *Engine) Turn() int { return e.turn }

func (e *Engine) inBounds(p Point) bool {
	return p.X >= 0 && p.X < e.columns && p.Y >= 0 && p.Y < e.rows
}

func (e *Engine) index(p Point) int { return p.Y*e.columns + p.X }

// Tile returns the value at p. Positions outside the board are Wall.
// Within the board the snake is drawn over the fruit, which is drawn over
// the static board.
func (e *Engine) Tile(p Point) Tile {
	if !e.inBounds(p) {
		return Wall
	}
	if e.occupied[e.index(p)] {
		return Snake
	}
	if e.hasFruit && e.fruit == p {
		return Fruit
	}
	return e.board[p.Y][p.X]
}

// Board materialises the full grid for the current state. It allocates a
// new grid on every call; prefer the changes returned by Tick per frame.
func (e *Engine) Board() [][]Tile {
	out := make([][]Tile, e.rows)
	for y := range out {
		out[y] = make([]Tile, e.columns)
		copy(out[y], e.board[y])
	}
	if e.hasFruit {
		out[e.fruit.Y][e.fruit.X] = Fruit
	}
	for _, p := range e.body {
		out[p.Y][p.X] = Snake
	}
	return out
}

// SetDirection changes the heading, but only onto the other axis: turning
// back on yourself is ignored, as is anything after the game is over.
func (e *Engine) SetDirection(d Direction) {
	if e.over || !d.Valid() {
		return
	}
	if d.Axis() != e.direction.Axis() {
		e.direction = d
	}
}

// nextFruit asks the producer for a position until it returns an open cell.
// Snake and wall cells are both rejected. A producer that keeps offering
// taken cells gives up after maxFruitAttempts and leaves no fruit.
func (e *Engine) nextFruit() (Point, bool) {
	if len(e.body) >= (e.rows-2)*(e.columns-2) {
		return Point{}, false
	}
	for range maxFruitAttempts {
		p, ok := e.nextFruitFn()
		if !ok {
			return Point{}, false
		}
		if !e.inBounds(p) || e.board[p.Y][p.X] == Wall || e.occupied[e.index(p)] {
			continue
		}
		return p, true
	}
	return Point{}, false
}

// Tick advances the snake one cell along its heading.
//
// A crash into a wall or the body ends the game without moving the snake;
// once over, every further tick reports GameOver and changes nothing.
func (e *Engine) Tick() TickResult {
	if e.over {
		return TickResult{GameOver: true, Changes: []Change{}}
	}

	dx, dy := e.direction.Delta()
	head := e.body[0].Add(dx, dy)
	tile := e.Tile(head)

	res := TickResult{
		Eating:   tile == Fruit,
		GameOver: tile == Wall || tile == Snake,
	}

	switch {
	case res.GameOver:
		e.over = true
		res.Changes = []Change{}
	case res.Eating:
		res.Changes = e.grow(head)
		e.turn++
	default:
		res.Changes = e.move(head)
		e.turn++
	}
	return res
}

func (e *Engine) grow(head Point) []Change {
	e.body = append(e.body, Point{})
	copy(e.body[1:], e.body)
	e.body[0] = head
	e.occupied[e.index(head)] = true

	e.fruit, e.hasFruit = e.nextFruit()

	changes := make([]Change, 0, 2)
	if e.hasFruit {
		changes = append(changes, Change{Position: e.fruit, Tile: Fruit})
	}
	return append(changes, Change{Position: head, Tile: Snake})
}

func (e *Engine) move(head Point) []Change {
	tail := e.body[len(e.body)-1]
	copy(e.body[1:], e.body[:len(e.body)-1])
	e.body[0] = head

	e.occupied[e.index(tail)] = false
	e.occupied[e.index(head)] = true

	return []Change{
		{Position: tail, Tile: Empty},
		{Position: head, Tile: Snake},
	}
}
