// Package loop drives an engine at a controlled cadence: it buffers the
// latest steering input, handles pausing, ramps the speed up as fruit is
// eaten and hands every tick's changes to a renderer.
package loop

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/brensch/snekgrid/game"
	"github.com/brensch/snekgrid/render"
)

// Settings controls the speed ramp.
type Settings struct {
	StartInterval time.Duration
	Step          time.Duration
	MinInterval   time.Duration
}

// DefaultSettings starts at 200ms per tick and speeds up by 5ms per fruit
// down to 32ms.
var DefaultSettings = Settings{
	StartInterval: 200 * time.Millisecond,
	Step:          5 * time.Millisecond,
	MinInterval:   32 * time.Millisecond,
}

// TickEvent is passed to the OnTick observer after every step.
type TickEvent struct {
	Turn      int
	Direction game.Direction
	Result    game.TickResult
	Interval  time.Duration
}

// Option configures a Driver.
type Option func(*Driver)

func WithSettings(s Settings) Option {
	return func(d *Driver) { d.settings = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// WithObserver registers fn to be called after every step, e.g. to record
// the game.
func WithObserver(fn func(*game.Engine, TickEvent)) Option {
	return func(d *Driver) { d.observers = append(d.observers, fn) }
}

// Driver owns the loop-level state around an engine. Like the engine it is
// meant to be used from a single goroutine.
type Driver struct {
	engine    *game.Engine
	renderer  render.Renderer
	state     any
	settings  Settings
	logger    *slog.Logger
	observers []func(*game.Engine, TickEvent)

	interval time.Duration
	pending  game.Direction
	running  bool
	paused   bool
	over     bool
	lastTick time.Time
	eaten    int
}

// New performs the initial full-board render and returns a stopped driver.
func New(engine *game.Engine, renderer render.Renderer, surface io.Writer, opts ...Option) (*Driver, error) {
	d := &Driver{
		engine:   engine,
		renderer: renderer,
		settings: DefaultSettings,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.settings.MinInterval <= 0 || d.settings.StartInterval < d.settings.MinInterval || d.settings.Step < 0 {
		return nil, fmt.Errorf("invalid speed settings: %+v", d.settings)
	}
	d.interval = d.settings.StartInterval

	state, err := renderer.InitialRender(render.Layout(engine.Board()), surface)
	if err != nil {
		return nil, fmt.Errorf("initial render (%s): %w", renderer.Name(), err)
	}
	d.state = state
	return d, nil
}

func (d *Driver) Engine() *game.Engine { return d.engine }

func (d *Driver) Interval() time.Duration { return d.interval }
func (d *Driver) Running() bool           { return d.running }
func (d *Driver) Paused() bool            { return d.paused }
func (d *Driver) Over() bool              { return d.over }

// Eaten counts the fruit eaten so far.
func (d *Driver) Eaten() int { return d.eaten }

// Start begins scheduling ticks. The first tick is due one interval later.
func (d *Driver) Start(now time.Time) {
	if d.over || d.running {
		return
	}
	d.running = true
	d.lastTick = now
	d.logger.Info("loop started", "interval", d.interval)
}

func (d *Driver) stop() {
	d.running = false
}

// TogglePause starts a driver that is not yet running, otherwise flips the
// paused flag. It does nothing once the game is over.
func (d *Driver) TogglePause(now time.Time) {
	if d.over {
		return
	}
	if !d.running {
		d.Start(now)
		return
	}
	d.paused = !d.paused
	d.logger.Info("pause toggled", "paused", d.paused)
}

// Move buffers dir for the next tick, replacing any earlier request.
// Input is dropped while paused.
func (d *Driver) Move(dir game.Direction) {
	if d.paused || !dir.Valid() {
		return
	}
	d.pending = dir
}

// Pending is the direction that will be applied on the next step, if any.
func (d *Driver) Pending() (game.Direction, bool) {
	return d.pending, d.pending != 0
}

// Step runs one tick immediately, regardless of timing or pause state.
func (d *Driver) Step() game.TickResult {
	if d.pending != 0 {
		d.engine.SetDirection(d.pending)
		d.pending = 0
	}

	res := d.engine.Tick()
	if res.GameOver {
		if !d.over {
			d.logger.Info("game over", "turn", d.engine.Turn(), "length", d.engine.Len(), "eaten", d.eaten)
		}
		d.over = true
		d.stop()
	} else {
		if res.Eating {
			d.eaten++
			d.speedUp()
			d.logger.Debug("fruit eaten", "turn", d.engine.Turn(), "length", d.engine.Len(), "interval", d.interval)
		}
		if err := d.renderer.RenderChanges(d.state, res.Changes, res.Eating); err != nil {
			d.logger.Error("render changes", "renderer", d.renderer.Name(), "err", err)
		}
	}

	ev := TickEvent{
		Turn:      d.engine.Turn(),
		Direction: d.engine.Direction(),
		Result:    res,
		Interval:  d.interval,
	}
	for _, fn := range d.observers {
		fn(d.engine, ev)
	}
	return res
}

func (d *Driver) speedUp() {
	d.interval -= d.settings.Step
	if d.interval < d.settings.MinInterval {
		d.interval = d.settings.MinInterval
	}
}

// Advance ticks when the driver is running, not paused, and at least one
// interval has passed since the previous tick.
func (d *Driver) Advance(now time.Time) (game.TickResult, bool) {
	if !d.running || d.paused {
		return game.TickResult{}, false
	}
	if now.Sub(d.lastTick) < d.interval {
		return game.TickResult{}, false
	}
	d.lastTick = now
	return d.Step(), true
}

// Run plays the game on a timer until it is over or ctx is done. If steer
// is non-nil it is asked for a direction before every tick.
func (d *Driver) Run(ctx context.Context, steer func(*game.Engine) game.Direction) error {
	d.Start(time.Now())
	timer := time.NewTimer(d.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			d.stop()
			return ctx.Err()
		case <-timer.C:
			if !d.paused {
				if steer != nil {
					d.Move(steer(d.engine))
				}
				d.lastTick = time.Now()
				if res := d.Step(); res.GameOver {
					return nil
				}
			}
			timer.Reset(d.interval)
		}
	}
}
