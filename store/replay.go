package store

import (
	"errors"
	"fmt"

	"github.com/brensch/snekgrid/game"
)

// ErrDiverged is returned when re-simulating a recording does not reproduce it.
var ErrDiverged = errors.New("store: replay diverged from recording")

// Replay rebuilds a recorded game from its fruit sequence and headings and
// checks every turn against the recording. fn, if non-nil, is called with
// each row and the engine after that row was replayed.
func Replay(rows []TurnRow, fn func(TurnRow, *game.Engine)) (*game.Engine, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty recording")
	}
	first := rows[0]
	e, err := game.New(
		game.WithSize(int(first.Rows), int(first.Columns)),
		game.WithFruitFunc(game.FruitFromList(FruitSequence(rows)...)),
	)
	if err != nil {
		return nil, fmt.Errorf("rebuild engine: %w", err)
	}
	if err := compare(first, e, game.TickResult{}); err != nil {
		return e, err
	}
	if fn != nil {
		fn(first, e)
	}

	for _, row := range rows[1:] {
		e.SetDirection(game.Direction(row.Direction))
		res := e.Tick()
		if err := compare(row, e, res); err != nil {
			return e, err
		}
		if fn != nil {
			fn(row, e)
		}
	}
	return e, nil
}

func compare(row TurnRow, e *game.Engine, res game.TickResult) error {
	if res.GameOver != row.GameOver || res.Eating != row.Eating {
		return fmt.Errorf("%w: turn %d game_over=%v eating=%v want game_over=%v eating=%v",
			ErrDiverged, row.Turn, res.GameOver, res.Eating, row.GameOver, row.Eating)
	}
	if e.Head() != row.Head() || e.Len() != len(row.BodyX) {
		return fmt.Errorf("%w: turn %d head=%v len=%d want head=%v len=%d",
			ErrDiverged, row.Turn, e.Head(), e.Len(), row.Head(), len(row.BodyX))
	}
	got, gotOK := e.Fruit()
	want, wantOK := row.Fruit()
	if gotOK != wantOK || (gotOK && got != want) {
		return fmt.Errorf("%w: turn %d fruit=%v want=%v", ErrDiverged, row.Turn, got, want)
	}
	return nil
}
