package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/brensch/snekgrid/game"
	"github.com/charmbracelet/lipgloss"
)

func plainText() *Text {
	s := lipgloss.NewStyle()
	return &Text{Wall: s, Head: s, Body: s, Fruit: s}
}

func newEngine(t *testing.T, fruits ...game.Point) *game.Engine {
	t.Helper()
	e, err := game.New(game.WithSize(5, 7), game.WithFruitFunc(game.FruitFromList(fruits...)))
	if err != nil {
		t.Fatalf("game.New: %v", err)
	}
	return e
}

func TestText_InitialFrame(t *testing.T) {
	e := newEngine(t, game.Point{X: 1, Y: 1})
	var screen Screen
	if _, err := plainText().InitialRender(Layout(e.Board()), &screen); err != nil {
		t.Fatalf("InitialRender: %v", err)
	}
	want := strings.Join([]string{
		"┌─────┐",
		"│*    │",
		"│  @  │",
		"│     │",
		"└─────┘",
	}, "\n")
	if got := screen.String(); got != want {
		t.Fatalf("frame:\n%s\nwant:\n%s", got, want)
	}
}

func TestText_RenderChanges(t *testing.T) {
	e := newEngine(t, game.Point{X: 4, Y: 2}, game.Point{X: 1, Y: 3})
	r := plainText()
	var screen Screen
	st, err := r.InitialRender(Layout(e.Board()), &screen)
	if err != nil {
		t.Fatalf("InitialRender: %v", err)
	}

	res := e.Tick()
	if !res.Eating {
		t.Fatalf("expected eating")
	}
	if err := r.RenderChanges(st, res.Changes, res.Eating); err != nil {
		t.Fatalf("RenderChanges: %v", err)
	}
	res = e.Tick()
	if err := r.RenderChanges(st, res.Changes, res.Eating); err != nil {
		t.Fatalf("RenderChanges: %v", err)
	}

	want := strings.Join([]string{
		"┌─────┐",
		"│     │",
		"│   o@│",
		"│*    │",
		"└─────┘",
	}, "\n")
	if got := screen.String(); got != want {
		t.Fatalf("frame:\n%s\nwant:\n%s", got, want)
	}
	frame, err := r.Frame(st)
	if err != nil || frame != want {
		t.Fatalf("Frame()=%q,%v", frame, err)
	}
}

func TestText_RejectsForeignState(t *testing.T) {
	err := plainText().RenderChanges("nope", nil, false)
	if !errors.Is(err, ErrState) {
		t.Fatalf("err=%v want ErrState", err)
	}
}

func parseMarkup(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parse markup: %v", err)
	}
	return doc
}

func TestHTML_InitialRender(t *testing.T) {
	e := newEngine(t, game.Point{X: 1, Y: 1})
	var screen Screen
	if _, err := (&HTML{}).InitialRender(Layout(e.Board()), &screen); err != nil {
		t.Fatalf("InitialRender: %v", err)
	}
	doc := parseMarkup(t, screen.String())

	board := doc.Find("#snake-game")
	if board.Length() != 1 {
		t.Fatalf("board element missing:\n%s", screen.String())
	}
	if style, _ := board.Attr("style"); style != "height: 120px; width: 168px" {
		t.Fatalf("board style=%q", style)
	}
	// 5x7 border: 2*5 + 2*7 - 4 walls.
	if n := doc.Find(".tile.wall").Length(); n != 20 {
		t.Fatalf("walls=%d want=20", n)
	}
	for _, cls := range []string{"top-left", "top-right", "bottom-left", "bottom-right"} {
		if n := doc.Find(".wall." + cls).Length(); n != 1 {
			t.Fatalf("%s walls=%d want=1", cls, n)
		}
	}
	if n := doc.Find(".wall.horizontal").Length(); n != 10 {
		t.Fatalf("horizontal walls=%d want=10", n)
	}
	if n := doc.Find(".wall.vertical").Length(); n != 6 {
		t.Fatalf("vertical walls=%d want=6", n)
	}
	snake := doc.Find(".tile.snake")
	if snake.Length() != 1 {
		t.Fatalf("snake tiles=%d want=1", snake.Length())
	}
	if style, _ := snake.Attr("style"); style != "transform: translate(72px, 48px)" {
		t.Fatalf("snake style=%q", style)
	}
	if n := doc.Find(".tile.fruit").Length(); n != 1 {
		t.Fatalf("fruit tiles=%d want=1", n)
	}
}

func TestHTML_MoveAndEat(t *testing.T) {
	e := newEngine(t, game.Point{X: 4, Y: 2}, game.Point{X: 1, Y: 3})
	r := &HTML{ID: "board"}
	var screen Screen
	st, err := r.InitialRender(Layout(e.Board()), &screen)
	if err != nil {
		t.Fatalf("InitialRender: %v", err)
	}

	res := e.Tick() // eats (4,2)
	if err := r.RenderChanges(st, res.Changes, res.Eating); err != nil {
		t.Fatalf("RenderChanges: %v", err)
	}
	doc := parseMarkup(t, screen.String())
	if n := doc.Find(".snake").Length(); n != 2 {
		t.Fatalf("snake tiles after eating=%d want=2", n)
	}
	if style, _ := doc.Find(".fruit").Attr("style"); style != translate(game.Point{X: 1, Y: 3}) {
		t.Fatalf("fruit style=%q", style)
	}

	res = e.Tick() // moves to (5,2)
	if err := r.RenderChanges(st, res.Changes, res.Eating); err != nil {
		t.Fatalf("RenderChanges: %v", err)
	}
	doc = parseMarkup(t, screen.String())
	got := map[string]bool{}
	doc.Find(".snake").Each(func(_ int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		got[style] = true
	})
	if len(got) != 2 || !got[translate(game.Point{X: 5, Y: 2})] || !got[translate(game.Point{X: 4, Y: 2})] {
		t.Fatalf("snake tiles=%v", got)
	}
}

func TestMulti_FansOut(t *testing.T) {
	e := newEngine(t, game.Point{X: 1, Y: 1})
	text := plainText()
	var screen Screen
	m := Multi(text, &HTML{})
	st, err := m.InitialRender(Layout(e.Board()), nil)
	if err != nil {
		t.Fatalf("InitialRender: %v", err)
	}
	res := e.Tick()
	if err := m.RenderChanges(st, res.Changes, res.Eating); err != nil {
		t.Fatalf("RenderChanges: %v", err)
	}
	states := st.([]any)
	frame, err := text.Frame(states[0])
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if !strings.Contains(frame, "@") {
		t.Fatalf("frame missing head:\n%s", frame)
	}
	markup, err := (&HTML{}).Markup(states[1])
	if err != nil || !strings.Contains(markup, "snake") {
		t.Fatalf("markup=%q err=%v", markup, err)
	}
	if screen.String() != "" {
		t.Fatalf("nil surface should not be written")
	}
	if err := m.RenderChanges("bad", nil, false); !errors.Is(err, ErrState) {
		t.Fatalf("err=%v want ErrState", err)
	}
}
