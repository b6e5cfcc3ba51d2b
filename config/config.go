// Package config parses the snake command line. Every flag falls back to a
// SNAKE_* environment variable, then to its default.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/brensch/snekgrid/game"
	"github.com/brensch/snekgrid/logging"
	"github.com/brensch/snekgrid/loop"
)

// Renderer names accepted by -renderer.
const (
	RendererText = "text"
	RendererHTML = "html"
)

type Config struct {
	Rows    float64
	Columns float64
	Seed    int64

	Renderer  string
	Autopilot bool
	Headless  bool

	ServeAddr string
	WatchURL  string

	RecordDir string
	IndexPath string

	LogFile  string
	LogLevel slog.Level

	Speed loop.Settings
}

// GameOptions returns the engine options for this configuration.
func (c Config) GameOptions() []game.Option {
	return []game.Option{
		game.WithSizeFloat(c.Rows, c.Columns),
		game.WithSeed(c.Seed),
	}
}

// Load parses args (without the program name). getenv is usually os.Getenv.
func Load(args []string, getenv func(string) string, output io.Writer) (Config, error) {
	env := envLookup(getenv)
	fs := flag.NewFlagSet("snake", flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}

	var c Config
	var level string
	fs.Float64Var(&c.Rows, "rows", env.float("SNAKE_ROWS", game.DefaultSize), "Board rows, walls included")
	fs.Float64Var(&c.Columns, "columns", env.float("SNAKE_COLUMNS", game.DefaultSize), "Board columns, walls included")
	fs.Int64Var(&c.Seed, "seed", env.int64("SNAKE_SEED", 0), "Fruit placement seed (0 picks one from the clock)")
	fs.StringVar(&c.Renderer, "renderer", env.str("SNAKE_RENDERER", RendererText), "Renderer: text or html")
	fs.BoolVar(&c.Autopilot, "autopilot", env.bool("SNAKE_AUTOPILOT", false), "Steer towards the fruit automatically")
	fs.BoolVar(&c.Headless, "headless", env.bool("SNAKE_HEADLESS", false), "Run without the terminal UI (implies -autopilot)")
	fs.StringVar(&c.ServeAddr, "serve", env.str("SNAKE_SERVE", ""), "Serve spectators over websocket on this address, e.g. :8080")
	fs.StringVar(&c.WatchURL, "watch", env.str("SNAKE_WATCH", ""), "Watch a game served at this websocket URL instead of playing")
	fs.StringVar(&c.RecordDir, "record-dir", env.str("SNAKE_RECORD_DIR", ""), "Write a parquet recording of each game here")
	fs.StringVar(&c.IndexPath, "index", env.str("SNAKE_INDEX", ""), "Append-only log of recorded game ids (default <record-dir>/index.log)")
	fs.StringVar(&c.LogFile, "log-file", env.str("SNAKE_LOG_FILE", ""), "Write logs to this file (default snake.log in TUI mode, stderr otherwise)")
	fs.StringVar(&level, "log-level", env.str("SNAKE_LOG_LEVEL", "info"), "Log level: debug, info, warn or error")
	fs.DurationVar(&c.Speed.StartInterval, "speed-start", env.duration("SNAKE_SPEED_START", loop.DefaultSettings.StartInterval), "Initial tick interval")
	fs.DurationVar(&c.Speed.Step, "speed-step", env.duration("SNAKE_SPEED_STEP", loop.DefaultSettings.Step), "Interval decrease per fruit")
	fs.DurationVar(&c.Speed.MinInterval, "speed-min", env.duration("SNAKE_SPEED_MIN", loop.DefaultSettings.MinInterval), "Fastest tick interval")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	var err error
	if c.LogLevel, err = logging.ParseLevel(level); err != nil {
		return Config{}, err
	}
	if c.Headless {
		c.Autopilot = true
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	if c.IndexPath == "" && c.RecordDir != "" {
		c.IndexPath = filepath.Join(c.RecordDir, "index.log")
	}
	return c, c.Validate()
}

// Validate checks the configuration. Board sizes are checked by the engine
// itself so the rules live in one place.
func (c Config) Validate() error {
	if _, err := game.New(c.GameOptions()...); err != nil {
		return err
	}
	switch c.Renderer {
	case RendererText, RendererHTML:
	default:
		return fmt.Errorf("unknown renderer %q", c.Renderer)
	}
	if c.Renderer == RendererHTML && !c.Headless {
		return errors.New("-renderer html needs -headless; the terminal UI draws text")
	}
	if c.ServeAddr != "" && c.WatchURL != "" {
		return errors.New("-serve and -watch are mutually exclusive")
	}
	if c.WatchURL != "" && c.RecordDir != "" {
		return errors.New("-record-dir is only available when playing")
	}
	s := c.Speed
	if s.MinInterval <= 0 || s.StartInterval < s.MinInterval || s.Step < 0 {
		return fmt.Errorf("invalid speed settings: start=%s step=%s min=%s", s.StartInterval, s.Step, s.MinInterval)
	}
	return nil
}

type envLookup func(string) string

func (e envLookup) str(key, def string) string {
	if v := e(key); v != "" {
		return v
	}
	return def
}

func (e envLookup) float(key string, def float64) float64 {
	if v := e(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func (e envLookup) int64(key string, def int64) int64 {
	if v := e(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return def
}

func (e envLookup) duration(key string, def time.Duration) time.Duration {
	if v := e(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func (e envLookup) bool(key string, def bool) bool {
	if v := e(key); v != "" {
		return v == "true" || v == "1" || v == "yes"
	}
	return def
}
