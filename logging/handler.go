// Package logging provides the slog handler used by the snake commands.
package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Options configures a Handler.
type Options struct {
	Level     slog.Leveler
	AddSource bool
	// Indent prints each record as an indented multi-line object.
	Indent bool
}

// Handler writes one JSON object per record. Keys keep the order they were
// logged in, after time, level and msg.
type Handler struct {
	w    io.Writer
	mu   *sync.Mutex
	opts Options

	attrs  []slog.Attr
	groups []string
}

func NewHandler(w io.Writer, opts Options) *Handler {
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}
	return &Handler{w: w, mu: &sync.Mutex{}, opts: opts}
}

// New is shorthand for slog.New(NewHandler(w, opts)).
func New(w io.Writer, opts Options) *slog.Logger {
	return slog.New(NewHandler(w, opts))
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	when := r.Time
	if when.IsZero() {
		when = time.Now()
	}
	root := object{
		{"time", when.Format(time.RFC3339Nano)},
		{"level", r.Level.String()},
		{"msg", r.Message},
	}
	if h.opts.AddSource {
		if src := sourceFromPC(r.PC); src != "" {
			root = append(root, field{"source", src})
		}
	}

	for _, a := range h.attrs {
		root.add(a)
	}
	var attrs []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	if len(h.groups) > 0 && len(attrs) > 0 {
		root.add(groupAttrs(h.groups, attrs))
	} else {
		for _, a := range attrs {
			root.add(a)
		}
	}

	var buf bytes.Buffer
	root.encode(&buf)
	out := buf.Bytes()
	if h.opts.Indent {
		var ind bytes.Buffer
		if err := json.Indent(&ind, out, "", "  "); err == nil {
			out = ind.Bytes()
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(append(out, '\n'))
	return err
}

// WithAttrs binds attrs inside any groups opened so far.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = append([]slog.Attr(nil), h.attrs...)
	if len(h.groups) > 0 {
		clone.attrs = append(clone.attrs, groupAttrs(h.groups, attrs))
	} else {
		clone.attrs = append(clone.attrs, attrs...)
	}
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

func groupAttrs(groups []string, attrs []slog.Attr) slog.Attr {
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	a := slog.Group(groups[len(groups)-1], args...)
	for i := len(groups) - 2; i >= 0; i-- {
		a = slog.Group(groups[i], a)
	}
	return a
}

type field struct {
	key   string
	value any
}

type object []field

// add appends a, merging groups that share a key.
func (o *object) add(a slog.Attr) {
	v := a.Value.Resolve()
	if a.Key == "" && v.Kind() != slog.KindGroup {
		return
	}
	if v.Kind() != slog.KindGroup {
		*o = append(*o, field{a.Key, valueToAny(v)})
		return
	}
	if a.Key == "" {
		for _, ga := range v.Group() {
			o.add(ga)
		}
		return
	}
	for i := range *o {
		if (*o)[i].key != a.Key {
			continue
		}
		if child, ok := (*o)[i].value.(object); ok {
			for _, ga := range v.Group() {
				child.add(ga)
			}
			(*o)[i].value = child
			return
		}
	}
	var child object
	for _, ga := range v.Group() {
		child.add(ga)
	}
	if len(child) > 0 {
		*o = append(*o, field{a.Key, child})
	}
}

func (o object) encode(buf *bytes.Buffer) {
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(f.key))
		buf.WriteByte(':')
		if child, ok := f.value.(object); ok {
			child.encode(buf)
			continue
		}
		b, err := json.Marshal(f.value)
		if err != nil {
			b, _ = json.Marshal(fmt.Sprint(f.value))
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
}

func valueToAny(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			return x.Error()
		case fmt.Stringer:
			return x.String()
		default:
			return x
		}
	default:
		return v.String()
	}
}

func sourceFromPC(pc uintptr) string {
	if pc == 0 {
		return ""
	}
	frames := runtime.CallersFrames([]uintptr{pc})
	f, _ := frames.Next()
	if f.File == "" {
		return ""
	}
	return filepath.Base(f.File) + ":" + strconv.Itoa(f.Line)
}

// ParseLevel accepts debug, info, warn or error in any case.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

// OpenFile opens path for appending, creating parent directories.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
