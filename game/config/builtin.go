package config

import (
	"sort"

	"github.com/wricardo/mcp-training/roborally/game/engine"
)

// DefaultBoard is the layout used when no board is requested
const DefaultBoard = "simple"

// builtinBoards holds constructors rather than values so callers always get
// a fresh copy they may modify
var builtinBoards = map[string]func() *engine.BoardConfig{
	"default":  defaultBoard,
	"simple":   simpleBoard,
	"advanced": advancedBoard,
}

// Builtin returns a copy of the built-in layout with the given name
func Builtin(name string) (*engine.BoardConfig, bool) {
	build, ok := builtinBoards[name]
	if !ok {
		return nil, false
	}
	return build(), true
}

// BuiltinNames returns the names of the built-in layouts in sorted order
func BuiltinNames() []string {
	names := make([]string, 0, len(builtinBoards))
	for name := range builtinBoards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func defaultBoard() *engine.BoardConfig {
	return &engine.BoardConfig{
		Name:        "default",
		Description: "Empty 8x8 board for free play",
		Width:       8,
		Height:      8,
	}
}

func simpleBoard() *engine.BoardConfig {
	config := &engine.BoardConfig{
		Name:        "simple",
		Description: "8x8 board with a conveyor ring, four walled corners and three checkpoints",
		Width:       8,
		Height:      8,
		Walls: []engine.WallPlacement{
			{X: 2, Y: 2, Headings: []engine.Heading{engine.South, engine.East}},
			{X: 2, Y: 5, Headings: []engine.Heading{engine.North, engine.East}},
			{X: 5, Y: 2, Headings: []engine.Heading{engine.West, engine.South}},
			{X: 5, Y: 5, Headings: []engine.Heading{engine.North, engine.West}},
		},
		Checkpoints: []engine.CheckpointPlacement{
			{X: 1, Y: 6, Number: 1},
			{X: 6, Y: 6, Number: 2},
			{X: 6, Y: 1, Number: 3, Final: true},
		},
	}

	for i := 2; i <= 5; i++ {
		config.Conveyors = append(config.Conveyors,
			engine.ConveyorPlacement{X: 0, Y: i, Heading: engine.South},
			engine.ConveyorPlacement{X: 7, Y: i, Heading: engine.North},
			engine.ConveyorPlacement{X: i, Y: 0, Heading: engine.West},
			engine.ConveyorPlacement{X: i, Y: 7, Heading: engine.East},
		)
	}
	return config
}

func advancedBoard() *engine.BoardConfig {
	return &engine.BoardConfig{
		Name:        "advanced",
		Description: "15x8 board with checkpoints in a row along the top edge",
		Width:       15,
		Height:      8,
		Walls: []engine.WallPlacement{
			{X: 0, Y: 0, Headings: []engine.Heading{engine.South}},
			{X: 1, Y: 0, Headings: []engine.Heading{engine.North}},
			{X: 1, Y: 1, Headings: []engine.Heading{engine.West}},
			{X: 5, Y: 5, Headings: []engine.Heading{engine.South}},
		},
		Conveyors: []engine.ConveyorPlacement{
			{X: 0, Y: 0, Heading: engine.West},
			{X: 1, Y: 0, Heading: engine.West},
			{X: 1, Y: 1, Heading: engine.North},
			{X: 5, Y: 5, Heading: engine.West},
			{X: 6, Y: 5, Heading: engine.West},
		},
		Checkpoints: []engine.CheckpointPlacement{
			{X: 4, Y: 0, Number: 1},
			{X: 5, Y: 0, Number: 2},
			{X: 6, Y: 0, Number: 3, Final: true},
		},
	}
}
