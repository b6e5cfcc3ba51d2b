package render

import "github.com/brensch/snekgrid/game"

// WallKind distinguishes border segments so renderers can draw corners.
type WallKind uint8

const (
	WallNone WallKind = iota
	WallTopLeft
	WallTopRight
	WallBottomLeft
	WallBottomRight
	WallHorizontal
	WallVertical
)

func (k WallKind) String() string {
	switch k {
	case WallTopLeft:
		return "top-left"
	case WallTopRight:
		return "top-right"
	case WallBottomLeft:
		return "bottom-left"
	case WallBottomRight:
		return "bottom-right"
	case WallHorizontal:
		return "horizontal"
	case WallVertical:
		return "vertical"
	default:
		return ""
	}
}

// wallKind classifies p on a board whose last indices are xMax and yMax.
// Walls off the border (none today) report WallNone.
func wallKind(p game.Point, xMax, yMax int) WallKind {
	switch {
	case p.X == 0 && p.Y == 0:
		return WallTopLeft
	case p.X == xMax && p.Y == 0:
		return WallTopRight
	case p.X == 0 && p.Y == yMax:
		return WallBottomLeft
	case p.X == xMax && p.Y == yMax:
		return WallBottomRight
	case p.Y == 0 || p.Y == yMax:
		return WallHorizontal
	case p.X == 0 || p.X == xMax:
		return WallVertical
	}
	return WallNone
}
