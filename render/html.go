package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/brensch/snekgrid/game"
)

// TileSize is the edge of one tile in CSS pixels.
const TileSize = 24

var tileClasses = map[game.Tile]string{
	game.Wall:  "wall",
	game.Snake: "snake",
	game.Fruit: "fruit",
}

// HTML keeps a DOM of absolutely positioned tiles, one element per
// non-empty cell, and writes the board markup to the surface after every
// render. Moving the snake reuses the tail element for the new head.
type HTML struct {
	// ID is the id attribute of the board element.
	ID string
}

type htmlState struct {
	doc     *goquery.Document
	board   *goquery.Selection
	snake   map[game.Point]*goquery.Selection
	fruit   *goquery.Selection
	fruitAt game.Point
	surface io.Writer
}

func (r *HTML) Name() string { return "html" }

func (r *HTML) id() string {
	if r.ID == "" {
		return "snake-game"
	}
	return r.ID
}

func translate(p game.Point) string {
	return fmt.Sprintf("transform: translate(%dpx, %dpx)", p.X*TileSize, p.Y*TileSize)
}

func tileHTML(info TileInfo, xMax, yMax int) string {
	classes := []string{"tile"}
	if info.Tile == game.Wall {
		if k := wallKind(info.Position, xMax, yMax); k != WallNone {
			classes = append(classes, k.String())
		}
	}
	classes = append(classes, tileClasses[info.Tile])
	return fmt.Sprintf(`<div class="%s" style="%s"></div>`, strings.Join(classes, " "), translate(info.Position))
}

func (r *HTML) InitialRender(board [][]TileInfo, surface io.Writer) (any, error) {
	rows, columns, err := boardSize(board)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		fmt.Sprintf(`<div id=%q class="board"></div>`, r.id())))
	if err != nil {
		return nil, fmt.Errorf("build document: %w", err)
	}
	st := &htmlState{
		doc:     doc,
		board:   doc.Find("#" + r.id()),
		snake:   make(map[game.Point]*goquery.Selection),
		surface: surface,
	}
	st.board.SetAttr("style", fmt.Sprintf("height: %dpx; width: %dpx", rows*TileSize, columns*TileSize))

	var sb strings.Builder
	for _, row := range board {
		for _, info := range row {
			if info.Tile == game.Empty {
				continue
			}
			sb.WriteString(tileHTML(info, columns-1, rows-1))
		}
	}
	st.board.AppendHtml(sb.String())

	st.board.Children().Each(func(i int, s *goquery.Selection) {
		p, ok := tilePosition(s)
		if !ok {
			return
		}
		switch {
		case s.HasClass("snake"):
			st.snake[p] = s
		case s.HasClass("fruit"):
			st.fruit = s
			st.fruitAt = p
		}
	})
	return st, r.flush(st)
}

// tilePosition recovers the cell of a tile element from its transform.
func tilePosition(s *goquery.Selection) (game.Point, bool) {
	style, ok := s.Attr("style")
	if !ok {
		return game.Point{}, false
	}
	var px, py int
	if _, err := fmt.Sscanf(style, "transform: translate(%dpx, %dpx)", &px, &py); err != nil {
		return game.Point{}, false
	}
	return game.Point{X: px / TileSize, Y: py / TileSize}, true
}

func (r *HTML) RenderChanges(state any, changes []game.Change, eating bool) error {
	st, ok := state.(*htmlState)
	if !ok {
		return stateError(r.Name(), state)
	}

	var spare *goquery.Selection
	for _, c := range changes {
		switch c.Tile {
		case game.Empty:
			if el, ok := st.snake[c.Position]; ok {
				delete(st.snake, c.Position)
				if spare != nil {
					spare.Remove()
				}
				spare = el
			}
		case game.Fruit:
			if st.fruit == nil {
				st.board.AppendHtml(tileHTML(TileInfo{Position: c.Position, Tile: game.Fruit}, 0, 0))
				st.fruit = st.board.Children().Last()
			} else {
				st.fruit.SetAttr("style", translate(c.Position))
			}
			st.fruitAt = c.Position
		case game.Snake:
			if st.fruit != nil && st.fruitAt == c.Position {
				// Eaten with no replacement fruit.
				st.fruit.Remove()
				st.fruit = nil
			}
			el := spare
			spare = nil
			if el == nil {
				st.board.AppendHtml(tileHTML(TileInfo{Position: c.Position, Tile: game.Snake}, 0, 0))
				el = st.board.Children().Last()
			} else {
				el.SetAttr("style", translate(c.Position))
			}
			st.snake[c.Position] = el
		}
	}
	if spare != nil {
		spare.Remove()
	}
	return r.flush(st)
}

// Markup returns the current board element as HTML.
func (r *HTML) Markup(state any) (string, error) {
	st, ok := state.(*htmlState)
	if !ok {
		return "", stateError(r.Name(), state)
	}
	return goquery.OuterHtml(st.board)
}

func (r *HTML) flush(st *htmlState) error {
	if st.surface == nil {
		return nil
	}
	markup, err := goquery.OuterHtml(st.board)
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	_, err = io.WriteString(st.surface, markup)
	return err
}
