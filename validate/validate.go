// Command validate checks the board layouts in a directory (default
// ../boards). For every .json, .yaml and .yml file it checks:
//   - the file parses and passes engine validation
//   - the board is large enough for the maximum number of robots
//   - start positions do not sit on checkpoints
//   - no two of the maximum number of robots share a start position
//   - connectivity: every checkpoint can be reached from every start
//     position by moving around walls
//
// Conveyors are ignored for connectivity since a robot can always step off
// a belt.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/roborally/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateBoard loads and validates a single layout file
func validateBoard(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	config, err := engine.LoadBoardConfig(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	board, err := engine.BuildBoard(config)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	if config.Width*config.Height < engine.MaxRobots {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Board has %d spaces, at least %d are needed for a full game", config.Width*config.Height, engine.MaxRobots))
	}

	starts := startPositions(config)
	placed := make(map[engine.Position]int)
	for i, pos := range starts {
		for _, cp := range config.Checkpoints {
			if cp.X == pos.X && cp.Y == pos.Y {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf("Robot %d starts on checkpoint %d at (%d,%d)", i+1, cp.Number, pos.X, pos.Y))
			}
		}
		if j, clash := placed[pos]; clash {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Robots %d and %d both start at (%d,%d)", j+1, i+1, pos.X, pos.Y))
			continue
		}
		placed[pos] = i
	}

	if result.Valid {
		reachability := validateConnectivity(board, starts)
		if !reachability.Valid {
			result.Valid = false
		}
		result.Errors = append(result.Errors, reachability.Errors...)
	}

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Grid: %dx%d", config.Width, config.Height))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Checkpoints: %d", engine.CountActions(board, engine.CheckpointAction)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Conveyors: %d", engine.CountActions(board, engine.ConveyorAction)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Wall sides: %d", engine.CountWalls(board)))
	}

	return result
}

// startPositions returns where each of the maximum number of robots would
// start, indexed by robot
func startPositions(config *engine.BoardConfig) []engine.Position {
	positions := make([]engine.Position, engine.MaxRobots)
	for i := range positions {
		positions[i] = engine.StartPosition(config, i)
	}
	return positions
}

// validateConnectivity ensures every checkpoint can be reached from every
// start position using 4-directional moves that respect walls
func validateConnectivity(board *engine.Board, starts []engine.Position) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	if board == nil || len(starts) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "Cannot validate connectivity: no start positions")
		return result
	}

	var checkpoints []*engine.Space
	for n := 1; ; n++ {
		space, ok := engine.FindCheckpoint(board, n)
		if !ok {
			break
		}
		checkpoints = append(checkpoints, space)
	}
	if len(checkpoints) == 0 {
		result.Errors = append(result.Errors, "✓ No checkpoints, free play board")
		return result
	}

	for i, start := range starts {
		reachable := reachableFrom(board, board.SpaceAt(start.X, start.Y))
		for n, cp := range checkpoints {
			if !reachable[cp] {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf("Connectivity failure: checkpoint %d at (%d,%d) cannot be reached from start %d at (%d,%d)",
					n+1, cp.X, cp.Y, i+1, start.X, start.Y))
			}
		}
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Connectivity: all %d checkpoints reachable from %d start positions", len(checkpoints), len(starts)))
	}

	return result
}

// reachableFrom runs a breadth-first search over the board
func reachableFrom(board *engine.Board, start *engine.Space) map[*engine.Space]bool {
	visited := map[*engine.Space]bool{start: true}
	queue := []*engine.Space{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, heading := range []engine.Heading{engine.North, engine.East, engine.South, engine.West} {
			next := board.Neighbour(current, heading)
			if next == current || visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}

	return visited
}

// layoutFiles lists the layout files in dir in name order
func layoutFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// main validates every layout in the directory given as first argument,
// printing a concise report and exiting with non-zero status if any are
// invalid
func main() {
	boardDir := "../boards"
	if len(os.Args) > 1 {
		boardDir = os.Args[1]
	}

	files, err := layoutFiles(boardDir)
	if err != nil {
		fmt.Printf("Error finding board files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateBoard(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All boards are valid!")
	} else {
		fmt.Println("❌ Some boards have errors")
		os.Exit(1)
	}
}
