package engine

import (
	"fmt"
	"strings"
)

var headingArrows = [...]string{"^", ">", "v", "<"}

// RenderText draws a board snapshot as fixed-width text. Robots are shown by
// their number and heading, checkpoints as #n (#n! for the final one) and
// conveyors as arrows. Walls are drawn as | and --- between cells.
func RenderText(state *BoardState) []string {
	if state == nil || state.Width <= 0 || state.Height <= 0 {
		return nil
	}

	cells := make(map[Position]*renderCell)
	for _, s := range state.Spaces {
		c := &renderCell{actions: s.Actions}
		for _, h := range s.Walls {
			if h >= North && h <= West {
				c.walls[h] = true
			}
		}
		cells[Position{X: s.X, Y: s.Y}] = c
	}
	hasWall := func(x, y int, h Heading) bool {
		c, ok := cells[Position{X: x, Y: y}]
		return ok && c.walls[h]
	}

	robots := make(map[Position]RobotState)
	for _, r := range state.Robots {
		if r.Placed {
			robots[Position{X: r.X, Y: r.Y}] = r
		}
	}

	horizontal := func(y int) string {
		// Wall line above row y
		var sb strings.Builder
		for x := 0; x < state.Width; x++ {
			sb.WriteString(" ")
			if hasWall(x, y-1, South) || hasWall(x, y, North) {
				sb.WriteString("---")
			} else {
				sb.WriteString("   ")
			}
		}
		return strings.TrimRight(sb.String(), " ")
	}

	var lines []string
	header := "   "
	for x := 0; x < state.Width; x++ {
		header += fmt.Sprintf(" %-3d", x)
	}
	lines = append(lines, strings.TrimRight(header, " "))

	for y := 0; y < state.Height; y++ {
		if line := horizontal(y); line != "" {
			lines = append(lines, "   "+line)
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%2d ", y))
		for x := 0; x < state.Width; x++ {
			if hasWall(x-1, y, East) || hasWall(x, y, West) {
				sb.WriteString("|")
			} else {
				sb.WriteString(" ")
			}
			sb.WriteString(cellText(robots, cells[Position{X: x, Y: y}], x, y))
		}
		if hasWall(state.Width-1, y, East) {
			sb.WriteString("|")
		}
		lines = append(lines, strings.TrimRight(sb.String(), " "))
	}
	if line := horizontal(state.Height); line != "" {
		lines = append(lines, "   "+line)
	}

	return lines
}

type renderCell struct {
	walls   [4]bool
	actions []FieldAction
}

func cellText(robots map[Position]RobotState, c *renderCell, x, y int) string {
	if r, ok := robots[Position{X: x, Y: y}]; ok {
		return fmt.Sprintf("%d%s ", r.Index+1, arrow(r.Heading))
	}
	if c == nil {
		return " . "
	}
	// A checkpoint wins over a conveyor on the same space
	for _, action := range c.actions {
		if action.Kind == CheckpointAction {
			if action.Final {
				return fmt.Sprintf("#%d!", action.Number%10)
			}
			return fmt.Sprintf("#%d ", action.Number%10)
		}
	}
	for _, action := range c.actions {
		if action.Kind == ConveyorAction {
			return " " + arrow(action.Heading) + " "
		}
	}
	return " . "
}

func arrow(h Heading) string {
	if h < North || h > West {
		return "?"
	}
	return headingArrows[h]
}
