package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/roborally/game/engine"
)

func hand(commands ...*engine.Command) []engine.CardState {
	cards := make([]engine.CardState, engine.NoCards)
	for i := range cards {
		cards[i] = engine.CardState{Empty: true, Visible: true}
	}
	for i, c := range commands {
		if c != nil {
			cards[i] = engine.CardState{Command: c, Visible: true}
		}
	}
	return cards
}

func cmd(c engine.Command) *engine.Command {
	return &c
}

func newStrategy(t *testing.T, layout *engine.BoardConfig) *Strategy {
	t.Helper()
	s, err := NewStrategy(layout)
	require.NoError(t, err)
	return s
}

func TestBestProgram_Straight(t *testing.T) {
	s := newStrategy(t, &engine.BoardConfig{
		Name:        "line",
		Width:       5,
		Height:      1,
		Checkpoints: []engine.CheckpointPlacement{{X: 4, Y: 0, Number: 1, Final: true}},
	})

	robot := engine.RobotState{
		Placed:  true,
		Heading: engine.East,
		Hand: hand(cmd(engine.Forward), cmd(engine.Left), cmd(engine.FastForward), cmd(engine.UTurn),
			cmd(engine.Right), cmd(engine.Backwards), cmd(engine.Forward), cmd(engine.Left)),
	}

	plan := s.BestProgram(robot)
	assert.Equal(t, 0, plan.Score)
	assert.ElementsMatch(t, []int{0, 2, 6}, plan.HandSlots)
	assert.Empty(t, plan.Choices)
}

func TestBestProgram_Conveyor(t *testing.T) {
	s := newStrategy(t, &engine.BoardConfig{
		Name:        "belt",
		Width:       3,
		Height:      1,
		Conveyors:   []engine.ConveyorPlacement{{X: 1, Y: 0, Heading: engine.East}},
		Checkpoints: []engine.CheckpointPlacement{{X: 2, Y: 0, Number: 1, Final: true}},
	})

	plan := s.BestProgram(engine.RobotState{
		Placed:  true,
		Heading: engine.East,
		Hand:    hand(nil, nil, nil, cmd(engine.Forward)),
	})
	assert.Equal(t, []int{3}, plan.HandSlots)
	assert.Equal(t, 0, plan.Score)
}

func TestBestProgram_InteractiveChoice(t *testing.T) {
	s := newStrategy(t, &engine.BoardConfig{
		Name:        "turn",
		Width:       3,
		Height:      3,
		Checkpoints: []engine.CheckpointPlacement{{X: 2, Y: 1, Number: 1, Final: true}},
	})

	plan := s.BestProgram(engine.RobotState{
		Placed:  true,
		X:       1,
		Y:       1,
		Heading: engine.North,
		Hand:    hand(cmd(engine.LeftOrRight), cmd(engine.Forward)),
	})
	assert.Equal(t, []int{0, 1}, plan.HandSlots)
	assert.Equal(t, []engine.Command{engine.Right}, plan.Choices)
	assert.Equal(t, 0, plan.Score)
}

func TestBestProgram_WallDetour(t *testing.T) {
	// A wall east of the start makes the direct step useless
	s := newStrategy(t, &engine.BoardConfig{
		Name:        "detour",
		Width:       2,
		Height:      2,
		Walls:       []engine.WallPlacement{{X: 0, Y: 0, Headings: []engine.Heading{engine.East}}},
		Checkpoints: []engine.CheckpointPlacement{{X: 1, Y: 0, Number: 1, Final: true}},
	})

	plan := s.BestProgram(engine.RobotState{
		Placed:  true,
		Heading: engine.South,
		Hand:    hand(cmd(engine.Forward), cmd(engine.Left), cmd(engine.Forward), cmd(engine.Left), cmd(engine.Forward)),
	})
	assert.Equal(t, 0, plan.Score)
	assert.Len(t, plan.HandSlots, 5)
}

func TestBestProgram_NothingToDo(t *testing.T) {
	line := &engine.BoardConfig{
		Name:        "line",
		Width:       3,
		Height:      1,
		Checkpoints: []engine.CheckpointPlacement{{X: 2, Y: 0, Number: 1, Final: true}},
	}

	t.Run("not placed", func(t *testing.T) {
		plan := newStrategy(t, line).BestProgram(engine.RobotState{Hand: hand(cmd(engine.Forward))})
		assert.Empty(t, plan.HandSlots)
		assert.Equal(t, unreachable, plan.Score)
	})

	t.Run("empty hand", func(t *testing.T) {
		plan := newStrategy(t, line).BestProgram(engine.RobotState{Placed: true, Hand: hand()})
		assert.Empty(t, plan.HandSlots)
	})

	t.Run("only turns away", func(t *testing.T) {
		// Facing the checkpoint already, turning never helps
		plan := newStrategy(t, line).BestProgram(engine.RobotState{
			Placed:  true,
			Heading: engine.East,
			Hand:    hand(cmd(engine.Left), cmd(engine.UTurn)),
		})
		assert.Empty(t, plan.HandSlots)
		assert.Equal(t, 2, plan.Score)
	})

	t.Run("free play board", func(t *testing.T) {
		s := newStrategy(t, &engine.BoardConfig{Name: "open", Width: 2, Height: 2})
		plan := s.BestProgram(engine.RobotState{Placed: true, Hand: hand(cmd(engine.Forward))})
		assert.Empty(t, plan.HandSlots)
		assert.Equal(t, 0, plan.Score)
	})
}

func TestScore_CheckpointsOutweighDistance(t *testing.T) {
	s := newStrategy(t, &engine.BoardConfig{
		Name:   "two",
		Width:  4,
		Height: 1,
		Checkpoints: []engine.CheckpointPlacement{
			{X: 1, Y: 0, Number: 1},
			{X: 3, Y: 0, Number: 2, Final: true},
		},
	})

	far := robotPosition{space: s.board.SpaceAt(0, 0), reached: 0}
	near := robotPosition{space: s.board.SpaceAt(1, 0), reached: 0}
	claimed := robotPosition{space: s.board.SpaceAt(0, 0), reached: 1}
	won := robotPosition{space: s.board.SpaceAt(3, 0), reached: 2}

	assert.Less(t, s.score(near), s.score(far))
	assert.Less(t, s.score(claimed), s.score(near))
	assert.Equal(t, 0, s.score(won))
}

func TestRegister_ClaimsCheckpointsInOrder(t *testing.T) {
	s := newStrategy(t, &engine.BoardConfig{
		Name:   "order",
		Width:  3,
		Height: 1,
		Checkpoints: []engine.CheckpointPlacement{
			{X: 2, Y: 0, Number: 1},
			{X: 1, Y: 0, Number: 2, Final: true},
		},
	})

	pos := robotPosition{space: s.board.SpaceAt(0, 0), heading: engine.East}
	pos = s.register(pos, engine.Forward)
	assert.Equal(t, 0, pos.reached, "checkpoint 2 does not count before 1")

	pos = s.register(pos, engine.Forward)
	assert.Equal(t, 1, pos.reached)

	pos = s.register(pos, engine.Backwards)
	assert.Equal(t, 2, pos.reached)
	assert.Equal(t, engine.East, pos.heading)
}
