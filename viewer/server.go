// Package viewer serves recorded games over HTTP as JSON.
package viewer

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/brensch/snekgrid/game"
	"github.com/brensch/snekgrid/store"
)

// Server exposes the recordings in one directory.
type Server struct {
	dir    string
	index  *store.Index
	logger *slog.Logger
}

// NewServer returns a server for dir. index may be nil.
func NewServer(dir string, index *store.Index, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{dir: dir, index: index, logger: logger}
}

// RegisterRoutes sets up the API routes on mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/games", s.handleGames)
	mux.HandleFunc("/api/games/", s.handleGame)
}

// GameListing is a recording summary plus whether the index knows it.
type GameListing struct {
	store.GameSummary
	Indexed   bool       `json:"indexed"`
	IndexedAt *time.Time `json:"indexed_at,omitempty"`
}

// TurnView is the JSON form of one recorded turn.
type TurnView struct {
	Turn      int          `json:"turn"`
	Direction string       `json:"direction"`
	Eating    bool         `json:"eating"`
	GameOver  bool         `json:"game_over"`
	Body      []game.Point `json:"body"`
	Fruit     *game.Point  `json:"fruit,omitempty"`
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	withCORS(w)
	if r.Method == http.MethodOptions {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	games, err := store.ListGames(s.dir)
	if err != nil {
		s.logger.Error("list games", "dir", s.dir, "err", err)
		http.Error(w, "failed to list games", http.StatusInternalServerError)
		return
	}
	if limit := parseIntQuery(r, "limit", 0); limit > 0 && limit < len(games) {
		games = games[:limit]
	}
	out := make([]GameListing, len(games))
	for i, g := range games {
		out[i] = GameListing{GameSummary: g}
		if s.index == nil {
			continue
		}
		if at, ok := s.index.IndexedAt(g.GameID); ok {
			out[i].Indexed = true
			if !at.IsZero() {
				out[i].IndexedAt = &at
			}
		}
	}
	writeJSON(w, out)
}

// handleGame serves /api/games/{id} (every turn) and /api/games/{id}/board
// (the board after ?turn=N, replayed from the recording, as text).
func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	withCORS(w)
	if r.Method == http.MethodOptions {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/games/"), "/")
	id, sub, _ := strings.Cut(rest, "/")
	if sub != "" && sub != "board" {
		http.NotFound(w, r)
		return
	}

	path, err := store.GamePath(s.dir, id)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "failed to find game", http.StatusInternalServerError)
		return
	}
	rows, err := store.ReadGame(path)
	if err != nil {
		s.logger.Error("read game", "path", path, "err", err)
		http.Error(w, "failed to read game", http.StatusInternalServerError)
		return
	}

	if sub == "board" {
		s.writeBoard(w, r, rows)
		return
	}
	turns := make([]TurnView, len(rows))
	for i, row := range rows {
		turns[i] = TurnView{
			Turn:      int(row.Turn),
			Direction: game.Direction(row.Direction).String(),
			Eating:    row.Eating,
			GameOver:  row.GameOver,
			Body:      row.Body(),
		}
		if f, ok := row.Fruit(); ok {
			turns[i].Fruit = &f
		}
	}
	writeJSON(w, turns)
}

func (s *Server) writeBoard(w http.ResponseWriter, r *http.Request, rows []store.TurnRow) {
	turn := parseIntQuery(r, "turn", -1)
	var board string
	_, err := store.Replay(rows, func(row store.TurnRow, e *game.Engine) {
		if turn < 0 || int(row.Turn) <= turn {
			board = game.FormatBoard(e.Board())
		}
	})
	if err != nil {
		s.logger.Warn("replay diverged", "game_id", rows[0].GameID, "err", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(board))
}
