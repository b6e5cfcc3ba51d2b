// Package store records games to parquet and reads them back.
package store

import (
	"github.com/brensch/snekgrid/game"
)

// SchemaVersion is stored in every recording's key/value metadata.
const SchemaVersion = "snake_turn_v1"

// TurnRow is the state of a game after one turn.
//
// Turn 0 is the initial board. Every successful tick adds a row; a final
// row with GameOver set records the move that crashed. Direction is the
// heading the tick was played with, using game.Direction values.
type TurnRow struct {
	GameID  string `parquet:"game_id,dict"`
	Turn    int32  `parquet:"turn"`
	Rows    int32  `parquet:"rows"`
	Columns int32  `parquet:"columns"`

	Direction int32 `parquet:"direction"`
	Eating    bool  `parquet:"eating"`
	GameOver  bool  `parquet:"game_over"`

	HeadX int32   `parquet:"head_x"`
	HeadY int32   `parquet:"head_y"`
	BodyX []int32 `parquet:"body_x"`
	BodyY []int32 `parquet:"body_y"`

	HasFruit bool  `parquet:"has_fruit"`
	FruitX   int32 `parquet:"fruit_x"`
	FruitY   int32 `parquet:"fruit_y"`

	ChangeX    []int32 `parquet:"change_x"`
	ChangeY    []int32 `parquet:"change_y"`
	ChangeTile []int32 `parquet:"change_tile"`

	RecordedAtMs int64 `parquet:"recorded_at_ms"`
}

// Head returns the recorded head position.
func (r TurnRow) Head() game.Point {
	return game.Point{X: int(r.HeadX), Y: int(r.HeadY)}
}

// Body returns the recorded body, head first.
func (r TurnRow) Body() []game.Point {
	out := make([]game.Point, len(r.BodyX))
	for i := range r.BodyX {
		out[i] = game.Point{X: int(r.BodyX[i]), Y: int(r.BodyY[i])}
	}
	return out
}

// Fruit returns the fruit on the board after this turn.
func (r TurnRow) Fruit() (game.Point, bool) {
	return game.Point{X: int(r.FruitX), Y: int(r.FruitY)}, r.HasFruit
}

// Changes returns the recorded tile changes.
func (r TurnRow) Changes() []game.Change {
	out := make([]game.Change, len(r.ChangeX))
	for i := range r.ChangeX {
		out[i] = game.Change{
			Position: game.Point{X: int(r.ChangeX[i]), Y: int(r.ChangeY[i])},
			Tile:     game.Tile(r.ChangeTile[i]),
		}
	}
	return out
}

func snapshot(gameID string, e *game.Engine, dir game.Direction, res game.TickResult, turn int) TurnRow {
	row := TurnRow{
		GameID:    gameID,
		Turn:      int32(turn),
		Rows:      int32(e.Rows()),
		Columns:   int32(e.Columns()),
		Direction: int32(dir),
		Eating:    res.Eating,
		GameOver:  res.GameOver,
	}
	head := e.Head()
	row.HeadX, row.HeadY = int32(head.X), int32(head.Y)
	body := e.Body()
	row.BodyX = make([]int32, len(body))
	row.BodyY = make([]int32, len(body))
	for i, p := range body {
		row.BodyX[i], row.BodyY[i] = int32(p.X), int32(p.Y)
	}
	if f, ok := e.Fruit(); ok {
		row.HasFruit = true
		row.FruitX, row.FruitY = int32(f.X), int32(f.Y)
	}
	row.ChangeX = make([]int32, len(res.Changes))
	row.ChangeY = make([]int32, len(res.Changes))
	row.ChangeTile = make([]int32, len(res.Changes))
	for i, c := range res.Changes {
		row.ChangeX[i], row.ChangeY[i] = int32(c.Position.X), int32(c.Position.Y)
		row.ChangeTile[i] = int32(c.Tile)
	}
	return row
}

// FruitSequence returns every fruit that was placed during the game, in
// order: the initial fruit, then the replacement after each meal.
func FruitSequence(rows []TurnRow) []game.Point {
	var out []game.Point
	for i, r := range rows {
		if i > 0 && !r.Eating {
			continue
		}
		if f, ok := r.Fruit(); ok {
			out = append(out, f)
		}
	}
	return out
}

// Directions returns the heading played on each tick after turn 0.
func Directions(rows []TurnRow) []game.Direction {
	if len(rows) < 2 {
		return nil
	}
	out := make([]game.Direction, 0, len(rows)-1)
	for _, r := range rows[1:] {
		out = append(out, game.Direction(r.Direction))
	}
	return out
}
