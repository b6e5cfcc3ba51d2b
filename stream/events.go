// Package stream lets spectators follow a game over websockets.
//
// The Hub is a render.Renderer: the game loop draws into it like any other
// renderer and it fans the board and per-tick changes out to every
// connected client. Watch is the matching client, which replays the stream
// into a local renderer.
package stream

import (
	"encoding/json"
	"fmt"

	"github.com/brensch/snekgrid/game"
)

// Event types on the wire.
const (
	EventBoard    = "board"
	EventTick     = "tick"
	EventGameOver = "game_over"
)

// Event is one websocket message.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// BoardData carries a full board, sent on join and on a new game.
type BoardData struct {
	Rows    int           `json:"rows"`
	Columns int           `json:"columns"`
	Turn    int           `json:"turn"`
	Tiles   [][]game.Tile `json:"tiles"`
}

// TickData carries the changes of one tick.
type TickData struct {
	Turn    int           `json:"turn"`
	Eating  bool          `json:"eating"`
	Changes []game.Change `json:"changes"`
}

// GameOverData reports the final turn.
type GameOverData struct {
	Turn int `json:"turn"`
}

func encodeEvent(typ string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", typ, err)
	}
	return json.Marshal(Event{Type: typ, Data: raw})
}
