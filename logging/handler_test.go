package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestHandler_OrderedCompact(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{})
	logger.Info("tick", "turn", 3, "eating", true, "interval", 45*time.Millisecond, "err", errors.New("boom"))

	line := strings.TrimSpace(buf.String())
	if strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("want a single line, got %q", buf.String())
	}
	keys := []string{`"time"`, `"level"`, `"msg"`, `"turn"`, `"eating"`, `"interval"`, `"err"`}
	last := -1
	for _, k := range keys {
		i := strings.Index(line, k)
		if i <= last {
			t.Fatalf("key %s out of order in %s", k, line)
		}
		last = i
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(line), &got); err != nil {
		t.Fatalf("invalid json %q: %v", line, err)
	}
	if got["msg"] != "tick" || got["level"] != "INFO" || got["turn"] != float64(3) ||
		got["interval"] != "45ms" || got["err"] != "boom" {
		t.Fatalf("record=%v", got)
	}
}

func TestHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Level: slog.LevelWarn})
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("output=%q", buf.String())
	}
}

func TestHandler_GroupsMerge(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{}).With("component", "loop").WithGroup("game").With("rows", 21)
	logger.Info("start", "columns", 21, slog.Group("speed", "ms", 200))

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if got["component"] != "loop" {
		t.Fatalf("component=%v", got["component"])
	}
	g, ok := got["game"].(map[string]any)
	if !ok {
		t.Fatalf("game group missing: %v", got)
	}
	if g["rows"] != float64(21) || g["columns"] != float64(21) {
		t.Fatalf("game group=%v", g)
	}
	if s, ok := g["speed"].(map[string]any); !ok || s["ms"] != float64(200) {
		t.Fatalf("speed group=%v", g["speed"])
	}
	if strings.Count(buf.String(), `"game"`) != 1 {
		t.Fatalf("group written twice: %s", buf.String())
	}
}

func TestHandler_Indent(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, Options{Indent: true, AddSource: true}).Info("hello", "k", "v")
	out := buf.String()
	if !strings.Contains(out, "\n  \"msg\": \"hello\"") {
		t.Fatalf("not indented: %q", out)
	}
	if !strings.Contains(out, "handler_test.go:") {
		t.Fatalf("source missing: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{"debug": slog.LevelDebug, "INFO": slog.LevelInfo, " warn ": slog.LevelWarn, "error": slog.LevelError} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q)=%v,%v want=%v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error")
	}
}
