package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/brensch/snekgrid/game"
	"github.com/brensch/snekgrid/render"
	"github.com/gorilla/websocket"
)

// mirror is the hub's copy of the board, used to bring new clients up to
// date. It is only touched by Hub.Run.
type mirror struct {
	tiles [][]game.Tile
	turn  int
	over  bool
}

// update is a mirror mutation plus the event announcing it.
type update struct {
	apply func(*mirror)
	typ   string
	data  func(*mirror) any
}

// Hub tracks spectators and broadcasts game events to them.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	register   chan *client
	unregister chan *client
	updates    chan update
	done       chan struct{}

	clients map[*client]struct{}
	board   mirror
}

// NewHub returns a hub; call Run to start it.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Spectating is read-only; allow any origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		register:   make(chan *client),
		unregister: make(chan *client),
		updates:    make(chan update, 64),
		done:       make(chan struct{}),
		clients:    make(map[*client]struct{}),
	}
}

// Run owns the client set and the board mirror until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			close(c.send)
			delete(h.clients, c)
		}
		h.logger.Info("stream hub stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.logger.Info("spectator connected", "remote", c.remote, "spectators", len(h.clients))
			h.greet(c)
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.logger.Info("spectator disconnected", "remote", c.remote, "spectators", len(h.clients))
			}
		case u := <-h.updates:
			if u.apply != nil {
				u.apply(&h.board)
			}
			payload, err := encodeEvent(u.typ, u.data(&h.board))
			if err != nil {
				h.logger.Error("encode event", "type", u.typ, "err", err)
				continue
			}
			for c := range h.clients {
				h.deliver(c, payload)
			}
		}
	}
}

// greet sends the current board, and the end of game if it already ended.
func (h *Hub) greet(c *client) {
	if h.board.tiles == nil {
		return
	}
	payload, err := encodeEvent(EventBoard, boardData(&h.board))
	if err != nil {
		h.logger.Error("encode board", "err", err)
		return
	}
	h.deliver(c, payload)
	if h.board.over {
		if payload, err := encodeEvent(EventGameOver, GameOverData{Turn: h.board.turn}); err == nil {
			h.deliver(c, payload)
		}
	}
}

// deliver drops clients that cannot keep up.
func (h *Hub) deliver(c *client, payload []byte) {
	select {
	case c.send <- payload:
	default:
		delete(h.clients, c)
		close(c.send)
		h.logger.Warn("dropping slow spectator", "remote", c.remote)
	}
}

func (h *Hub) publish(u update) {
	select {
	case h.updates <- u:
	case <-h.done:
	}
}

func boardData(m *mirror) BoardData {
	d := BoardData{Turn: m.turn, Tiles: m.tiles, Rows: len(m.tiles)}
	if d.Rows > 0 {
		d.Columns = len(m.tiles[0])
	}
	return d
}

// ServeHTTP upgrades the request and streams events to it until either side
// closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	c := newClient(h, conn, r.RemoteAddr)
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go c.writePump()
	c.readPump()
}

func (h *Hub) Name() string { return "stream" }

// InitialRender starts a new game for every spectator. surface is unused.
func (h *Hub) InitialRender(board [][]render.TileInfo, _ io.Writer) (any, error) {
	if len(board) == 0 || len(board[0]) == 0 {
		return nil, errors.New("stream: empty board")
	}
	tiles := make([][]game.Tile, len(board))
	for y, row := range board {
		tiles[y] = make([]game.Tile, len(row))
		for x, info := range row {
			tiles[y][x] = info.Tile
		}
	}
	h.publish(update{
		apply: func(m *mirror) { *m = mirror{tiles: tiles} },
		typ:   EventBoard,
		data:  func(m *mirror) any { return boardData(m) },
	})
	return h, nil
}

// RenderChanges forwards one tick to every spectator.
func (h *Hub) RenderChanges(state any, changes []game.Change, eating bool) error {
	if state != h {
		return fmt.Errorf("%w: stream renderer got %T", render.ErrState, state)
	}
	cs := append([]game.Change(nil), changes...)
	h.publish(update{
		apply: func(m *mirror) {
			for _, c := range cs {
				p := c.Position
				if p.Y >= 0 && p.Y < len(m.tiles) && p.X >= 0 && p.X < len(m.tiles[p.Y]) {
					m.tiles[p.Y][p.X] = c.Tile
				}
			}
			m.turn++
		},
		typ:  EventTick,
		data: func(m *mirror) any { return TickData{Turn: m.turn, Eating: eating, Changes: cs} },
	})
	return nil
}

// GameOver tells every spectator the game has ended.
func (h *Hub) GameOver() {
	h.publish(update{
		apply: func(m *mirror) { m.over = true },
		typ:   EventGameOver,
		data:  func(m *mirror) any { return GameOverData{Turn: m.turn} },
	})
}
