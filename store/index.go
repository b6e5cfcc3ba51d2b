package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// IndexEntry is one recorded game in the index.
type IndexEntry struct {
	GameID string
	// IndexedAt is zero for lines without a readable timestamp.
	IndexedAt time.Time
}

// Index lists recorded games, one "<game id>\t<unix ms>" line per game.
// The file is only appended to and every Add is synced. Unreadable
// timestamps, such as a line torn by a crash, load with a zero time.
type Index struct {
	mu      sync.RWMutex
	file    *os.File
	entries map[string]IndexEntry
	order   []string
	now     func() time.Time
}

func OpenIndex(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("index path is required")
	}
	x := &Index{entries: make(map[string]IndexEntry), now: time.Now}
	if err := x.load(path); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	x.file = file
	return x, nil
}

func (x *Index) load(path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read index: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		entry, ok := parseIndexLine(scanner.Text())
		if ok {
			x.insert(entry)
		}
	}
	return scanner.Err()
}

func parseIndexLine(line string) (IndexEntry, bool) {
	id, stamp, _ := strings.Cut(strings.TrimSpace(line), "\t")
	id = strings.TrimSpace(id)
	if id == "" {
		return IndexEntry{}, false
	}
	entry := IndexEntry{GameID: id}
	if ms, err := strconv.ParseInt(strings.TrimSpace(stamp), 10, 64); err == nil && ms > 0 {
		entry.IndexedAt = time.UnixMilli(ms).UTC()
	}
	return entry, true
}

// insert keeps the first entry seen for an id.
func (x *Index) insert(e IndexEntry) bool {
	if _, ok := x.entries[e.GameID]; ok {
		return false
	}
	x.entries[e.GameID] = e
	x.order = append(x.order, e.GameID)
	return true
}

func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.file == nil {
		return nil
	}
	err := x.file.Close()
	x.file = nil
	return err
}

func (x *Index) Has(gameID string) bool {
	_, ok := x.IndexedAt(gameID)
	return ok
}

// IndexedAt reports when gameID was added.
func (x *Index) IndexedAt(gameID string) (time.Time, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	e, ok := x.entries[gameID]
	return e.IndexedAt, ok
}

func (x *Index) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// IDs returns the recorded ids in the order they were added. If sorted is
// set they are returned lexically instead.
func (x *Index) IDs(sorted bool) []string {
	x.mu.RLock()
	out := append([]string(nil), x.order...)
	x.mu.RUnlock()
	if sorted {
		sort.Strings(out)
	}
	return out
}

// Entries returns every entry in the order it was added.
func (x *Index) Entries() []IndexEntry {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]IndexEntry, len(x.order))
	for i, id := range x.order {
		out[i] = x.entries[id]
	}
	return out
}

// Add records gameID with the current time; ids already present are ignored.
func (x *Index) Add(gameID string) error {
	if gameID == "" || strings.ContainsAny(gameID, "\t\r\n") {
		return fmt.Errorf("invalid game id %q", gameID)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.entries[gameID]; ok {
		return nil
	}
	if x.file == nil {
		return fmt.Errorf("index is closed")
	}
	entry := IndexEntry{GameID: gameID, IndexedAt: x.now().UTC().Truncate(time.Millisecond)}
	line := gameID + "\t" + strconv.FormatInt(entry.IndexedAt.UnixMilli(), 10) + "\n"
	if _, err := x.file.WriteString(line); err != nil {
		return fmt.Errorf("append index: %w", err)
	}
	if err := x.file.Sync(); err != nil {
		return fmt.Errorf("sync index: %w", err)
	}
	x.insert(entry)
	return nil
}
