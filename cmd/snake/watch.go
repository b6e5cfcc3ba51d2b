package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brensch/snekgrid/config"
	"github.com/brensch/snekgrid/render"
	"github.com/brensch/snekgrid/stream"
	tea "github.com/charmbracelet/bubbletea"
)

const watchRefresh = 50 * time.Millisecond

// watch follows a game served by another snake process.
func watch(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	screen := &render.Screen{}
	wcfg := stream.WatchConfig{
		HandshakeTimeout: 10 * time.Second,
		ReadTimeout:      2 * time.Minute,
		Logger:           logger.With("component", "watch"),
	}
	logger.Info("watching", "url", cfg.WatchURL)

	if cfg.Headless {
		err := stream.Watch(ctx, cfg.WatchURL, render.NewText(), screen, wcfg)
		fmt.Println(screen.String())
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	p := tea.NewProgram(watchModel{screen: screen, url: cfg.WatchURL}, tea.WithAltScreen(), tea.WithContext(ctx))
	go func() {
		err := stream.Watch(ctx, cfg.WatchURL, render.NewText(), screen, wcfg)
		p.Send(watchDoneMsg{err: err})
	}()

	final, err := p.Run()
	cancel()
	if m, ok := final.(watchModel); ok && m.err != nil {
		return m.err
	}
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}

type watchDoneMsg struct{ err error }

type watchModel struct {
	screen *render.Screen
	url    string
	done   bool
	err    error
}

func (m watchModel) Init() tea.Cmd {
	return tickCmd(watchRefresh)
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case watchDoneMsg:
		m.done = true
		m.err = msg.err
		return m, nil
	case TickMsg:
		if m.done {
			return m, nil
		}
		return m, tickCmd(watchRefresh)
	}
	return m, nil
}

func (m watchModel) View() string {
	frame := m.screen.String()
	if frame == "" {
		frame = "waiting for " + m.url
	}
	switch {
	case m.err != nil:
		return frame + "\n\n" + bannerStyle.Render("disconnected: "+m.err.Error()) + "  press q to quit\n"
	case m.done:
		return frame + "\n\n" + bannerStyle.Render("game over") + "  press q to quit\n"
	}
	return frame + "\n\n" + statusStyle.Render("watching "+m.url) + "  q quits\n"
}
