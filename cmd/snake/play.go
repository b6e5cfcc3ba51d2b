package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/brensch/snekgrid/config"
	"github.com/brensch/snekgrid/game"
	"github.com/brensch/snekgrid/loop"
	"github.com/brensch/snekgrid/render"
	"github.com/brensch/snekgrid/rules"
	"github.com/brensch/snekgrid/store"
	"github.com/brensch/snekgrid/stream"
	"github.com/brensch/snekgrid/viewer"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

// play runs one game, optionally serving spectators and recording it.
func play(parent context.Context, cfg config.Config, logger *slog.Logger) error {
	engine, err := game.New(cfg.GameOptions()...)
	if err != nil {
		return err
	}
	logger = logger.With("seed", cfg.Seed)
	logger.Info("new game", "rows", engine.Rows(), "columns", engine.Columns())

	var local render.Renderer = render.NewText()
	if cfg.Renderer == config.RendererHTML {
		local = &render.HTML{}
	}
	renderer := local

	var hub *stream.Hub
	if cfg.ServeAddr != "" {
		hub = stream.NewHub(logger.With("component", "stream"))
		renderer = render.Multi(local, hub)
	}

	var rec *store.Recorder
	var idx *store.Index
	if cfg.RecordDir != "" {
		if idx, err = store.OpenIndex(cfg.IndexPath); err != nil {
			return err
		}
		defer idx.Close()
		if rec, err = store.NewRecorder(cfg.RecordDir, ""); err != nil {
			return err
		}
		if err := rec.Start(engine); err != nil {
			return err
		}
		logger = logger.With("game_id", rec.GameID())
		logger.Info("recording game", "path", rec.OutPath())
	}

	observe := func(e *game.Engine, ev loop.TickEvent) {
		if rec != nil {
			if err := rec.Record(e, ev.Direction, ev.Result); err != nil {
				logger.Error("record turn", "turn", ev.Turn, "err", err)
			}
		}
		if hub != nil && ev.Result.GameOver {
			hub.GameOver()
		}
	}

	screen := &render.Screen{}
	driver, err := loop.New(engine, renderer, screen,
		loop.WithSettings(cfg.Speed),
		loop.WithLogger(logger.With("component", "loop")),
		loop.WithObserver(observe),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if hub != nil {
		g.Go(func() error {
			hub.Run(gctx)
			return nil
		})
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		if cfg.RecordDir != "" {
			viewer.NewServer(cfg.RecordDir, idx, logger.With("component", "viewer")).RegisterRoutes(mux)
		}
		serve(gctx, g, cfg.ServeAddr, mux, logger)
	}

	finished := func() {
		logger.Info("game finished", "turn", engine.Turn(), "length", engine.Len(), "eaten", driver.Eaten(), "over", engine.Over())
		if rec != nil {
			finishRecording(rec, idx, logger)
		}
	}

	g.Go(func() error {
		defer cancel()
		if cfg.Headless {
			var steer func(*game.Engine) game.Direction
			if cfg.Autopilot {
				steer = rules.Autopilot
			}
			err := driver.Run(gctx, steer)
			finished()
			if err == nil && hub != nil {
				logger.Info("game over; still serving until interrupted")
				<-gctx.Done()
			}
			return err
		}
		p := tea.NewProgram(newModel(driver, screen, cfg.Autopilot), tea.WithAltScreen(), tea.WithContext(gctx))
		_, err := p.Run()
		interrupted := gctx.Err() != nil
		finished()
		if err != nil && !interrupted {
			return fmt.Errorf("terminal ui: %w", err)
		}
		return nil
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if cfg.Headless {
		fmt.Println(screen.String())
	}
	return err
}

func serve(ctx context.Context, g *errgroup.Group, addr string, handler http.Handler, logger *slog.Logger) {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	g.Go(func() error {
		logger.Info("serving", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve spectators: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

func finishRecording(rec *store.Recorder, idx *store.Index, logger *slog.Logger) {
	path, rows, err := rec.Finalize()
	if err != nil {
		logger.Error("finalize recording", "err", err)
		return
	}
	if path == "" {
		return
	}
	logger.Info("recording written", "path", path, "rows", rows)
	if err := idx.Add(rec.GameID()); err != nil {
		logger.Error("index game", "err", err)
		return
	}
	logger.Debug("game indexed", "games", idx.Count())
}
