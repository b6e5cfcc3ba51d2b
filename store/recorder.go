package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/brensch/snekgrid/game"
	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// Recorder streams the turns of one game into a parquet file. The file is
// written under outDir/tmp and only moved into outDir by Finalize, so
// readers never see a partial recording.
type Recorder struct {
	gameID  string
	tmpPath string
	outPath string

	file   *os.File
	writer *parquet.GenericWriter[TurnRow]

	rows int
	turn int
	now  func() time.Time
}

// NewRecorder opens a recording for a new game. An empty gameID gets a
// random one.
func NewRecorder(outDir, gameID string) (*Recorder, error) {
	if outDir == "" {
		return nil, fmt.Errorf("outDir is required")
	}
	if gameID == "" {
		gameID = uuid.NewString()
	}

	absOut, err := filepath.Abs(outDir)
	if err != nil {
		absOut = outDir
	}
	tmpDir := filepath.Join(absOut, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create tmp dir: %w", err)
	}

	name := recordingName(gameID)
	tmpPath := filepath.Join(tmpDir, name)
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open tmp parquet: %w", err)
	}

	w := parquet.NewGenericWriter[TurnRow](
		f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
	)
	w.SetKeyValueMetadata("schema", SchemaVersion)
	w.SetKeyValueMetadata("game_id", gameID)

	return &Recorder{
		gameID:  gameID,
		tmpPath: tmpPath,
		outPath: filepath.Join(absOut, name),
		file:    f,
		writer:  w,
		now:     time.Now,
	}, nil
}

func (r *Recorder) GameID() string  { return r.gameID }
func (r *Recorder) OutPath() string { return r.outPath }
func (r *Recorder) Rows() int       { return r.rows }

// Start records the initial board as turn 0.
func (r *Recorder) Start(e *game.Engine) error {
	return r.write(snapshot(r.gameID, e, e.Direction(), game.TickResult{}, 0))
}

// Record appends the outcome of one tick played with dir. A tick that ended
// the game is written once; later calls with a game-over result are ignored.
func (r *Recorder) Record(e *game.Engine, dir game.Direction, res game.TickResult) error {
	if res.GameOver {
		if r.turn > e.Turn() {
			return nil
		}
		return r.write(snapshot(r.gameID, e, dir, res, e.Turn()+1))
	}
	return r.write(snapshot(r.gameID, e, dir, res, e.Turn()))
}

func (r *Recorder) write(row TurnRow) error {
	if r.writer == nil {
		return fmt.Errorf("recorder is closed")
	}
	row.RecordedAtMs = r.now().UnixMilli()
	if _, err := r.writer.Write([]TurnRow{row}); err != nil {
		return fmt.Errorf("write turn %d: %w", row.Turn, err)
	}
	r.rows++
	r.turn = int(row.Turn)
	return nil
}

// Finalize closes the writer and moves the recording into place. If no rows
// were written the file is discarded and outPath is empty.
func (r *Recorder) Finalize() (outPath string, rows int, err error) {
	if r.writer == nil && r.file == nil {
		return "", 0, nil
	}
	rows = r.rows

	var closeErr, fileErr error
	if r.writer != nil {
		closeErr = r.writer.Close()
		r.writer = nil
	}
	if r.file != nil {
		_ = r.file.Sync()
		fileErr = r.file.Close()
		r.file = nil
	}
	if closeErr != nil {
		return "", 0, fmt.Errorf("close parquet writer: %w", closeErr)
	}
	if fileErr != nil {
		return "", 0, fmt.Errorf("close parquet file: %w", fileErr)
	}

	if rows == 0 {
		_ = os.Remove(r.tmpPath)
		return "", 0, nil
	}
	if err := os.Rename(r.tmpPath, r.outPath); err != nil {
		return "", 0, fmt.Errorf("rename parquet: %w", err)
	}
	return r.outPath, rows, nil
}

// ErrSchema is returned for parquet files that are not game recordings.
var ErrSchema = errors.New("store: not a game recording")

// ReadGame loads every row of a recording in turn order.
func ReadGame(path string) ([]TurnRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	if schema, _ := pf.Lookup("schema"); schema != SchemaVersion {
		return nil, fmt.Errorf("%w: schema %q", ErrSchema, schema)
	}

	reader := parquet.NewGenericReader[TurnRow](pf)
	defer reader.Close()

	rows := make([]TurnRow, reader.NumRows())
	read := 0
	for read < len(rows) {
		n, err := reader.Read(rows[read:])
		read += n
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read rows: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return rows[:read], nil
}
