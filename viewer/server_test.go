package viewer

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/brensch/snekgrid/game"
	"github.com/brensch/snekgrid/store"
)

// recordGame plays right from the centre of a 7x7 board into the wall.
func recordGame(t *testing.T, dir, id string) {
	t.Helper()
	e, err := game.New(game.WithSize(7, 7), game.WithFruitFunc(game.FruitFromList(game.Point{X: 4, Y: 3})))
	if err != nil {
		t.Fatalf("game.New: %v", err)
	}
	rec, err := store.NewRecorder(dir, id)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	if err := rec.Start(e); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for !e.Over() {
		res := e.Tick()
		if err := rec.Record(e, e.Direction(), res); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if _, _, err := rec.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	recordGame(t, dir, "g1")
	idx, err := store.OpenIndex(filepath.Join(dir, "index.log"))
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	if err := idx.Add("g1"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	mux := http.NewServeMux()
	NewServer(dir, idx, nil).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestGames_List(t *testing.T) {
	srv := newTestServer(t)
	resp, body := get(t, srv.URL+"/api/games")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	var games []GameListing
	if err := json.Unmarshal([]byte(body), &games); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Move to (4,3) eating, then (5,3), then the wall.
	if len(games) != 1 || games[0].GameID != "g1" || !games[0].Indexed || !games[0].GameOver ||
		games[0].Turns != 3 || games[0].Length != 2 {
		t.Fatalf("games=%+v", games)
	}
	if games[0].IndexedAt == nil || games[0].IndexedAt.IsZero() {
		t.Fatalf("indexed_at missing: %s", body)
	}
}

func TestGame_Turns(t *testing.T) {
	srv := newTestServer(t)
	_, body := get(t, srv.URL+"/api/games/g1")
	var turns []TurnView
	if err := json.Unmarshal([]byte(body), &turns); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	if len(turns) != 4 {
		t.Fatalf("turns=%d want=4", len(turns))
	}
	if turns[0].Fruit == nil || *turns[0].Fruit != (game.Point{X: 4, Y: 3}) {
		t.Fatalf("initial fruit=%v", turns[0].Fruit)
	}
	if !turns[1].Eating || turns[1].Fruit != nil || turns[1].Direction != "right" {
		t.Fatalf("turn 1=%+v", turns[1])
	}
	if !turns[3].GameOver {
		t.Fatalf("last turn=%+v", turns[3])
	}
}

func TestGame_Board(t *testing.T) {
	srv := newTestServer(t)
	_, body := get(t, srv.URL+"/api/games/g1/board?turn=0")
	want := game.FormatBoard(mustParse(t, `
		WWWWWWW
		W     W
		W     W
		W  SF W
		W     W
		W     W
		WWWWWWW`))
	if body != want {
		t.Fatalf("board:\n%s\nwant:\n%s", body, want)
	}
}

func mustParse(t *testing.T, s string) [][]game.Tile {
	t.Helper()
	b, err := game.ParseBoard(s)
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	return b
}

func TestGame_NotFound(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/api/games/missing", "/api/games/g1/nope", "/api/games/..%2Fx"} {
		resp, _ := get(t, srv.URL+path)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s status=%d want=404", path, resp.StatusCode)
		}
	}
	resp, err := http.Post(srv.URL+"/api/games", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("POST status=%d", resp.StatusCode)
	}
}
