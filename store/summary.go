package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// GameSummary describes one recording in a directory.
type GameSummary struct {
	GameID     string    `json:"game_id"`
	FileName   string    `json:"file_name"`
	Rows       int       `json:"rows"`
	Columns    int       `json:"columns"`
	Turns      int       `json:"turns"`
	Length     int       `json:"length"`
	GameOver   bool      `json:"game_over"`
	RecordedAt time.Time `json:"recorded_at"`
}

func recordingName(gameID string) string {
	return fmt.Sprintf("game_%s.parquet", gameID)
}

// ListGames summarises every recording in dir, newest first. Unreadable
// files are skipped and a missing directory is empty.
func ListGames(dir string) ([]GameSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []GameSummary{}, nil
		}
		return nil, err
	}

	games := make([]GameSummary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".parquet") {
			continue
		}
		rows, err := ReadGame(filepath.Join(dir, entry.Name()))
		if err != nil || len(rows) == 0 {
			continue
		}
		first, last := rows[0], rows[len(rows)-1]
		games = append(games, GameSummary{
			GameID:     first.GameID,
			FileName:   entry.Name(),
			Rows:       int(first.Rows),
			Columns:    int(first.Columns),
			Turns:      int(last.Turn),
			Length:     len(last.BodyX),
			GameOver:   last.GameOver,
			RecordedAt: time.UnixMilli(first.RecordedAtMs).UTC(),
		})
	}
	sort.Slice(games, func(i, j int) bool {
		return games[i].RecordedAt.After(games[j].RecordedAt)
	})
	return games, nil
}

// GamePath returns the recording of gameID in dir, or os.ErrNotExist.
func GamePath(dir, gameID string) (string, error) {
	if gameID == "" || strings.ContainsAny(gameID, `/\`) {
		return "", os.ErrNotExist
	}
	path := filepath.Join(dir, recordingName(gameID))
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}
