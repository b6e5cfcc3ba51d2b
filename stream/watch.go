package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/brensch/snekgrid/render"
	"github.com/gorilla/websocket"
)

// WatchConfig tunes the spectator client.
type WatchConfig struct {
	HandshakeTimeout time.Duration
	// ReadTimeout bounds the silence between frames, pings included.
	// Zero waits forever.
	ReadTimeout time.Duration
	Logger      *slog.Logger
}

// ErrNoBoard is returned when a tick arrives before any board.
var ErrNoBoard = errors.New("stream: tick before board")

// Watch connects to a hub at url and replays its events into r, drawing on
// surface. It returns nil once the game is over or the server closes the
// connection normally.
func Watch(ctx context.Context, url string, r render.Renderer, surface io.Writer, cfg WatchConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}
	if dialer.HandshakeTimeout == 0 {
		dialer.HandshakeTimeout = 10 * time.Second
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	extend := func() {
		if cfg.ReadTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
		}
	}
	conn.SetPingHandler(func(data string) error {
		extend()
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
	})

	var state any
	for {
		extend()
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}

		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			logger.Warn("skipping malformed event", "err", err)
			continue
		}
		switch ev.Type {
		case EventBoard:
			var b BoardData
			if err := json.Unmarshal(ev.Data, &b); err != nil {
				return fmt.Errorf("decode board: %w", err)
			}
			state, err = r.InitialRender(render.Layout(b.Tiles), surface)
			if err != nil {
				return fmt.Errorf("initial render: %w", err)
			}
			logger.Debug("board received", "rows", b.Rows, "columns", b.Columns, "turn", b.Turn)
		case EventTick:
			if state == nil {
				return ErrNoBoard
			}
			var t TickData
			if err := json.Unmarshal(ev.Data, &t); err != nil {
				return fmt.Errorf("decode tick: %w", err)
			}
			if err := r.RenderChanges(state, t.Changes, t.Eating); err != nil {
				return fmt.Errorf("render turn %d: %w", t.Turn, err)
			}
		case EventGameOver:
			var g GameOverData
			_ = json.Unmarshal(ev.Data, &g)
			logger.Info("game over", "turn", g.Turn)
			return nil
		default:
			logger.Debug("ignoring event", "type", ev.Type)
		}
	}
}
