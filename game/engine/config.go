package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidBoard is wrapped by every board configuration validation error
var ErrInvalidBoard = errors.New("invalid board configuration")

// robotColors are assigned to robots in board order
var robotColors = [...]string{"red", "green", "blue", "orange", "grey", "yellow"}

// BoardConfig is the declarative description of a board layout
type BoardConfig struct {
	Name           string                `json:"name" yaml:"name"`
	Description    string                `json:"description" yaml:"description"`
	Width          int                   `json:"width" yaml:"width"`
	Height         int                   `json:"height" yaml:"height"`
	Walls          []WallPlacement       `json:"walls,omitempty" yaml:"walls,omitempty"`
	Conveyors      []ConveyorPlacement   `json:"conveyors,omitempty" yaml:"conveyors,omitempty"`
	Checkpoints    []CheckpointPlacement `json:"checkpoints,omitempty" yaml:"checkpoints,omitempty"`
	StartPositions []Position            `json:"start_positions,omitempty" yaml:"start_positions,omitempty"`
}

// Position represents x,y coordinates
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// WallPlacement puts walls on the given sides of one space
type WallPlacement struct {
	X        int       `json:"x" yaml:"x"`
	Y        int       `json:"y" yaml:"y"`
	Headings []Heading `json:"headings" yaml:"headings"`
}

// ConveyorPlacement puts a conveyor belt on one space
type ConveyorPlacement struct {
	X       int     `json:"x" yaml:"x"`
	Y       int     `json:"y" yaml:"y"`
	Heading Heading `json:"heading" yaml:"heading"`
}

// CheckpointPlacement puts a numbered checkpoint on one space
type CheckpointPlacement struct {
	X      int  `json:"x" yaml:"x"`
	Y      int  `json:"y" yaml:"y"`
	Number int  `json:"number" yaml:"number"`
	Final  bool `json:"final,omitempty" yaml:"final,omitempty"`
}

// PlayerConfig names and colors one robot; empty fields get defaults
type PlayerConfig struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// ValidateBoardConfig validates a board configuration for correctness
func ValidateBoardConfig(config *BoardConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidBoard)
	}
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidBoard)
	}

	if config.Width < MinBoardSize || config.Width > MaxBoardSize {
		return fmt.Errorf("%w: width must be between %d and %d, got %d", ErrInvalidBoard, MinBoardSize, MaxBoardSize, config.Width)
	}
	if config.Height < MinBoardSize || config.Height > MaxBoardSize {
		return fmt.Errorf("%w: height must be between %d and %d, got %d", ErrInvalidBoard, MinBoardSize, MaxBoardSize, config.Height)
	}

	inBounds := func(x, y int) bool {
		return x >= 0 && x < config.Width && y >= 0 && y < config.Height
	}

	for i, wall := range config.Walls {
		if !inBounds(wall.X, wall.Y) {
			return fmt.Errorf("%w: wall %d at (%d,%d) is off the board", ErrInvalidBoard, i+1, wall.X, wall.Y)
		}
		for _, h := range wall.Headings {
			if h < North || h > West {
				return fmt.Errorf("%w: wall %d has invalid heading %d", ErrInvalidBoard, i+1, int(h))
			}
		}
	}

	for i, conveyor := range config.Conveyors {
		if !inBounds(conveyor.X, conveyor.Y) {
			return fmt.Errorf("%w: conveyor %d at (%d,%d) is off the board", ErrInvalidBoard, i+1, conveyor.X, conveyor.Y)
		}
		if conveyor.Heading < North || conveyor.Heading > West {
			return fmt.Errorf("%w: conveyor %d has invalid heading %d", ErrInvalidBoard, i+1, int(conveyor.Heading))
		}
	}

	// Checkpoints must be numbered 1..n without gaps; only the highest may be final
	seen := make(map[int]bool)
	highest := 0
	for i, cp := range config.Checkpoints {
		if !inBounds(cp.X, cp.Y) {
			return fmt.Errorf("%w: checkpoint %d at (%d,%d) is off the board", ErrInvalidBoard, cp.Number, cp.X, cp.Y)
		}
		if cp.Number < 1 {
			return fmt.Errorf("%w: checkpoint %d has number %d, numbers start at 1", ErrInvalidBoard, i+1, cp.Number)
		}
		if seen[cp.Number] {
			return fmt.Errorf("%w: checkpoint number %d is used twice", ErrInvalidBoard, cp.Number)
		}
		seen[cp.Number] = true
		if cp.Number > highest {
			highest = cp.Number
		}
	}
	for n := 1; n <= highest; n++ {
		if !seen[n] {
			return fmt.Errorf("%w: checkpoint %d is missing, checkpoints must be numbered 1 to %d", ErrInvalidBoard, n, highest)
		}
	}
	for _, cp := range config.Checkpoints {
		if cp.Final && cp.Number != highest {
			return fmt.Errorf("%w: checkpoint %d is final but checkpoint %d exists", ErrInvalidBoard, cp.Number, highest)
		}
	}

	occupied := make(map[Position]bool)
	for i, pos := range config.StartPositions {
		if !inBounds(pos.X, pos.Y) {
			return fmt.Errorf("%w: start position %d at (%d,%d) is off the board", ErrInvalidBoard, i+1, pos.X, pos.Y)
		}
		if occupied[pos] {
			return fmt.Errorf("%w: start position (%d,%d) is used twice", ErrInvalidBoard, pos.X, pos.Y)
		}
		occupied[pos] = true
	}

	// The smallest game must fit, including robots placed on the diagonal
	placed := make(map[Position]int)
	for i := 0; i < MinRobots; i++ {
		pos := StartPosition(config, i)
		if j, clash := placed[pos]; clash {
			return fmt.Errorf("%w: robots %d and %d both start at (%d,%d)", ErrInvalidBoard, j+1, i+1, pos.X, pos.Y)
		}
		placed[pos] = i
	}

	return nil
}

// BuildBoard validates config and creates the board it describes. Walls are
// placed first, then conveyors, then checkpoints, so a space carrying both a
// conveyor and a checkpoint moves the robot before checking it.
func BuildBoard(config *BoardConfig) (*Board, error) {
	if err := ValidateBoardConfig(config); err != nil {
		return nil, err
	}

	board := NewBoard(config.Width, config.Height, config.Name)

	for _, wall := range config.Walls {
		space := board.SpaceAt(wall.X, wall.Y)
		for _, h := range wall.Headings {
			space.AddWall(h)
		}
	}
	for _, conveyor := range config.Conveyors {
		board.SpaceAt(conveyor.X, conveyor.Y).AddAction(Conveyor(conveyor.Heading))
	}
	for _, cp := range config.Checkpoints {
		board.SpaceAt(cp.X, cp.Y).AddAction(Checkpoint(cp.Number, cp.Final))
	}

	return board, nil
}

// NewGame builds the board, places one robot per player and starts the first
// programming phase
func NewGame(config *BoardConfig, players []PlayerConfig, opts ...Option) (*GameController, error) {
	if len(players) < MinRobots || len(players) > MaxRobots {
		return nil, fmt.Errorf("number of players must be between %d and %d, got %d", MinRobots, MaxRobots, len(players))
	}

	board, err := BuildBoard(config)
	if err != nil {
		return nil, err
	}

	for i, player := range players {
		name := player.Name
		if name == "" {
			name = fmt.Sprintf("Player %d", i+1)
		}
		color := player.Color
		if color == "" {
			color = robotColors[i%len(robotColors)]
		}

		robot := NewRobot(board, color, name)
		if err := board.AddRobot(robot); err != nil {
			return nil, err
		}

		pos := StartPosition(config, i)
		if err := robot.SetSpace(board.SpaceAt(pos.X, pos.Y)); err != nil {
			return nil, fmt.Errorf("failed to place %s: %w", name, err)
		}
	}

	controller := NewGameController(board, opts...)
	board.SetCurrentRobot(board.Robot(0))
	controller.StartProgrammingPhase()
	return controller, nil
}

// DefaultPlayers returns n players with default names and colors
func DefaultPlayers(n int) []PlayerConfig {
	return make([]PlayerConfig, n)
}

// StartPosition returns where robot i starts: the layout's start position if
// one is given, otherwise the diagonal (i mod width, i mod height)
func StartPosition(config *BoardConfig, i int) Position {
	if i < len(config.StartPositions) {
		return config.StartPositions[i]
	}
	return Position{X: i % config.Width, Y: i % config.Height}
}

// LoadBoardConfig loads and validates a board layout from a JSON or YAML file
func LoadBoardConfig(filename string) (*BoardConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseBoardConfig(data, filepath.Ext(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(filename), err)
	}

	if err := ValidateBoardConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// ParseBoardConfig decodes a layout. ext selects the format: ".yaml" and
// ".yml" are YAML, anything else is JSON.
func ParseBoardConfig(data []byte, ext string) (*BoardConfig, error) {
	var config BoardConfig
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}
	return &config, nil
}
