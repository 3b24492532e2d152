// Command analyze prints quick, human-readable heuristics about board
// layouts: the built-in boards plus the files in a board directory (first
// argument, default "boards"). For every layout it renders the map, counts
// walls, conveyors and checkpoints, and compares how far each start position
// has to travel to visit all checkpoints in order. Large differences between
// start positions are flagged as unfair.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/wricardo/mcp-training/roborally/game/config"
	"github.com/wricardo/mcp-training/roborally/game/engine"
)

// unfairGap is the difference in route length between the best and worst
// start position above which a board is reported as unfair
const unfairGap = 3

// StartAnalysis describes the route of one start position
type StartAnalysis struct {
	Robot    int
	Start    engine.Position
	Straight int  // Manhattan distance through all checkpoints
	Route    int  // shortest path length around walls, -1 when blocked
	OnBelt   bool // the robot starts on a conveyor
}

// Analysis is the report for one layout
type Analysis struct {
	Name        string
	Width       int
	Height      int
	Checkpoints int
	Conveyors   int
	WallSides   int
	Map         []string
	Starts      []StartAnalysis
}

func main() {
	boardDir := "boards"
	if len(os.Args) > 1 {
		boardDir = os.Args[1]
	}
	if _, err := os.Stat(boardDir); err != nil {
		boardDir = ""
	}

	manager, err := config.NewManager(boardDir)
	if err != nil {
		fmt.Printf("Error opening boards: %v\n", err)
		os.Exit(1)
	}

	boards, err := manager.ListConfigs()
	if err != nil {
		fmt.Printf("Error listing boards: %v\n", err)
		os.Exit(1)
	}

	for _, info := range boards {
		fmt.Printf("\n=== Analyzing %s ===\n", info.BoardID)
		layout, err := manager.LoadConfig(info.BoardID)
		if err != nil {
			fmt.Printf("Error loading board: %v\n", err)
			continue
		}
		analysis, err := analyzeBoard(layout, engine.MaxRobots)
		if err != nil {
			fmt.Printf("Error building board: %v\n", err)
			continue
		}
		printAnalysis(os.Stdout, analysis)
	}
}

// analyzeBoard measures the routes from the start positions of the first
// robots
func analyzeBoard(layout *engine.BoardConfig, robots int) (*Analysis, error) {
	board, err := engine.BuildBoard(layout)
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{
		Name:        layout.Name,
		Width:       layout.Width,
		Height:      layout.Height,
		Checkpoints: engine.CountActions(board, engine.CheckpointAction),
		Conveyors:   engine.CountActions(board, engine.ConveyorAction),
		WallSides:   engine.CountWalls(board),
		Map:         engine.RenderText(board.Snapshot()),
	}

	var checkpoints []*engine.Space
	for n := 1; n <= analysis.Checkpoints; n++ {
		space, ok := engine.FindCheckpoint(board, n)
		if !ok {
			break
		}
		checkpoints = append(checkpoints, space)
	}

	for i := 0; i < robots; i++ {
		pos := engine.StartPosition(layout, i)
		start := StartAnalysis{Robot: i, Start: pos}

		current := board.SpaceAt(pos.X, pos.Y)
		for _, action := range current.Actions() {
			if action.Kind == engine.ConveyorAction {
				start.OnBelt = true
			}
		}

		for _, cp := range checkpoints {
			start.Straight += engine.ManhattanDistance(
				engine.Position{X: current.X, Y: current.Y},
				engine.Position{X: cp.X, Y: cp.Y})
			leg := distances(board, current)[cp]
			if leg == 0 && cp != current {
				start.Route = -1
			}
			if start.Route >= 0 {
				start.Route += leg
			}
			current = cp
		}
		analysis.Starts = append(analysis.Starts, start)
	}

	return analysis, nil
}

// distances runs a breadth-first search from origin. Unreachable spaces are
// missing from the result.
func distances(board *engine.Board, origin *engine.Space) map[*engine.Space]int {
	dist := map[*engine.Space]int{origin: 0}
	queue := []*engine.Space{origin}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, heading := range []engine.Heading{engine.North, engine.East, engine.South, engine.West} {
			next := board.Neighbour(current, heading)
			if _, seen := dist[next]; seen {
				continue
			}
			dist[next] = dist[current] + 1
			queue = append(queue, next)
		}
	}
	return dist
}

// routeGap returns the difference between the longest and shortest route,
// ignoring blocked starts
func routeGap(starts []StartAnalysis) int {
	shortest, longest := -1, -1
	for _, s := range starts {
		if s.Route < 0 {
			continue
		}
		if shortest < 0 || s.Route < shortest {
			shortest = s.Route
		}
		if s.Route > longest {
			longest = s.Route
		}
	}
	if shortest < 0 {
		return 0
	}
	return longest - shortest
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", a.Width, a.Height)
	fmt.Fprintf(w, "Checkpoints: %d\n", a.Checkpoints)
	fmt.Fprintf(w, "Conveyors: %d\n", a.Conveyors)
	fmt.Fprintf(w, "Wall sides: %d\n", a.WallSides)
	for _, line := range a.Map {
		fmt.Fprintln(w, line)
	}

	if a.Checkpoints == 0 {
		fmt.Fprintf(w, "No checkpoints, free play board\n")
		return
	}

	blocked := 0
	for _, s := range a.Starts {
		route := fmt.Sprintf("%d", s.Route)
		if s.Route < 0 {
			route = "blocked"
			blocked++
		}
		belt := ""
		if s.OnBelt {
			belt = " (starts on a conveyor)"
		}
		fmt.Fprintf(w, "Robot %d at (%d, %d): straight %d, route %s%s\n",
			s.Robot+1, s.Start.X, s.Start.Y, s.Straight, route, belt)
	}

	if blocked > 0 {
		fmt.Fprintf(w, "⚠️  CRITICAL: %d start positions cannot reach every checkpoint!\n", blocked)
	}
	if gap := routeGap(a.Starts); gap > unfairGap {
		fmt.Fprintf(w, "⚠️  WARNING: routes differ by %d moves between start positions\n", gap)
	} else if blocked == 0 {
		fmt.Fprintf(w, "✅ All start positions have comparable routes\n")
	}
}
