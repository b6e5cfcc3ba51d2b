package render

import (
	"io"
	"strings"

	"github.com/brensch/snekgrid/game"
	"github.com/charmbracelet/lipgloss"
)

var wallGlyphs = map[WallKind]string{
	WallTopLeft:     "┌",
	WallTopRight:    "┐",
	WallBottomLeft:  "└",
	WallBottomRight: "┘",
	WallHorizontal:  "─",
	WallVertical:    "│",
	WallNone:        "#",
}

// Text draws the board as a character grid, one cell per column, styled
// with lipgloss. The full frame is written to the surface after every
// render.
type Text struct {
	Wall  lipgloss.Style
	Head  lipgloss.Style
	Body  lipgloss.Style
	Fruit lipgloss.Style
}

// NewText returns a Text renderer with the default colours.
func NewText() *Text {
	return &Text{
		Wall:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Head:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Body:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Fruit: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

type textState struct {
	grid    [][]game.Tile
	head    game.Point
	hasHead bool
	surface io.Writer
}

func (r *Text) Name() string { return "text" }

func (r *Text) InitialRender(board [][]TileInfo, surface io.Writer) (any, error) {
	rows, columns, err := boardSize(board)
	if err != nil {
		return nil, err
	}
	st := &textState{grid: make([][]game.Tile, rows), surface: surface}
	for y := range board {
		st.grid[y] = make([]game.Tile, columns)
		for x, info := range board[y] {
			st.grid[y][x] = info.Tile
			// A freshly built board has a single snake segment: the head.
			if info.Tile == game.Snake && !st.hasHead {
				st.head = info.Position
				st.hasHead = true
			}
		}
	}
	return st, r.flush(st)
}

func (r *Text) RenderChanges(state any, changes []game.Change, eating bool) error {
	st, ok := state.(*textState)
	if !ok {
		return stateError(r.Name(), state)
	}
	for _, c := range changes {
		p := c.Position
		if p.Y < 0 || p.Y >= len(st.grid) || p.X < 0 || p.X >= len(st.grid[p.Y]) {
			continue
		}
		st.grid[p.Y][p.X] = c.Tile
		if c.Tile == game.Snake {
			st.head = p
			st.hasHead = true
		}
	}
	return r.flush(st)
}

// Frame returns the current frame for state produced by InitialRender.
func (r *Text) Frame(state any) (string, error) {
	st, ok := state.(*textState)
	if !ok {
		return "", stateError(r.Name(), state)
	}
	return r.frame(st), nil
}

func (r *Text) flush(st *textState) error {
	if st.surface == nil {
		return nil
	}
	_, err := io.WriteString(st.surface, r.frame(st))
	return err
}

func (r *Text) frame(st *textState) string {
	yMax := len(st.grid) - 1
	var sb strings.Builder
	for y, row := range st.grid {
		xMax := len(row) - 1
		for x, t := range row {
			p := game.Point{X: x, Y: y}
			switch t {
			case game.Wall:
				sb.WriteString(r.Wall.Render(wallGlyphs[wallKind(p, xMax, yMax)]))
			case game.Snake:
				if st.hasHead && p == st.head {
					sb.WriteString(r.Head.Render("@"))
				} else {
					sb.WriteString(r.Body.Render("o"))
				}
			case game.Fruit:
				sb.WriteString(r.Fruit.Render("*"))
			default:
				sb.WriteByte(' ')
			}
		}
		if y < yMax {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
