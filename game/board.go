package game

import (
	"fmt"
	"strings"
)

var tileChars = map[Tile]byte{
	Empty: ' ',
	Wall:  'W',
	Snake: 'S',
	Fruit: 'F',
}

// FormatBoard renders a board one row per line using ' ', 'W', 'S' and 'F'.
func FormatBoard(board [][]Tile) string {
	var sb strings.Builder
	for _, row := range board {
		for _, t := range row {
			c, ok := tileChars[t]
			if !ok {
				c = '?'
			}
			sb.WriteByte(c)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ParseBoard is the inverse of FormatBoard; '.' is also read as Empty.
// Leading tabs and empty lines are ignored, as is a single leading '|' per
// line. Every row must have the same width.
func ParseBoard(s string) ([][]Tile, error) {
	lines := strings.Split(s, "\n")
	board := make([][]Tile, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimRight(strings.TrimLeft(line, "\t"), "\r")
		if line == "" {
			continue
		}
		line = strings.TrimPrefix(line, "|")
		row := make([]Tile, len(line))
		for x := 0; x < len(line); x++ {
			switch line[x] {
			case ' ', '.':
				row[x] = Empty
			case 'W':
				row[x] = Wall
			case 'S':
				row[x] = Snake
			case 'F':
				row[x] = Fruit
			default:
				return nil, fmt.Errorf("line %d col %d: unknown tile %q", i+1, x+1, line[x])
			}
		}
		if len(board) > 0 && len(row) != len(board[0]) {
			return nil, fmt.Errorf("line %d: width %d, want %d", i+1, len(row), len(board[0]))
		}
		board = append(board, row)
	}
	return board, nil
}
