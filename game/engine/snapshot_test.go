package engine

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	game, err := NewGame(createTestConfig(), DefaultPlayers(2), WithDeck(NewSequenceDeck(Left)))
	require.NoError(t, err)
	board := game.Board()
	require.True(t, game.MoveCards(board.Robot(0).CardField(3), board.Robot(0).ProgramField(0)))
	game.FinishProgrammingPhase()

	state := board.Snapshot()
	assert.Equal(t, "test", state.Name)
	assert.Equal(t, Activation, state.Phase)
	assert.Equal(t, 0, state.CurrentRobot)
	assert.Equal(t, board.StatusMessage(), state.Status)
	assert.Nil(t, state.Winner)
	assert.Empty(t, state.Options)

	require.Len(t, state.Robots, 2)
	first := state.Robots[0]
	assert.Equal(t, "Player 1", first.Name)
	assert.True(t, first.Placed)
	assert.Equal(t, South, first.Heading)
	require.Len(t, first.Program, NoRegisters)
	require.Len(t, first.Hand, NoCards)

	require.NotNil(t, first.Program[0].Command)
	assert.Equal(t, Left, *first.Program[0].Command)
	assert.True(t, first.Hand[3].Empty)
	assert.True(t, first.Program[1].Empty)
	assert.False(t, first.Program[1].Visible)

	// Four spaces carry walls or actions
	assert.Len(t, state.Spaces, 4)

	data, err := json.Marshal(state)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"phase":"ACTIVATION"`)
	assert.Contains(t, string(data), `"heading":"NORTH"`)
}

func TestSnapshotHidesInvisibleCards(t *testing.T) {
	board, c := newTestBoard(t, 4, 4, Position{0, 0}, Position{1, 1})
	c.StartProgrammingPhase()
	fillPrograms(t, c, 3)
	c.FinishProgrammingPhase()

	state := board.Snapshot()
	hidden := state.Robots[0].Program[2]
	assert.False(t, hidden.Visible)
	assert.False(t, hidden.Empty)
	assert.Nil(t, hidden.Command)
}

func TestSnapshotWinner(t *testing.T) {
	board, c := newTestBoard(t, 3, 1, Position{0, 0}, Position{2, 0})
	board.SpaceAt(2, 0).AddAction(Checkpoint(1, true))

	c.ApplyFieldEffects()

	state := board.Snapshot()
	assert.Equal(t, Finished, state.Phase)
	require.NotNil(t, state.Winner)
	assert.Equal(t, 1, *state.Winner)
}

func TestRenderText(t *testing.T) {
	board, c := newTestBoard(t, 3, 2, Position{0, 0})
	board.SpaceAt(1, 0).AddWall(East)
	board.SpaceAt(0, 1).AddAction(Conveyor(East))
	board.SpaceAt(2, 1).AddAction(Checkpoint(1, true))
	c.TurnLeft(board.Robot(0))

	lines := RenderText(board.Snapshot())
	require.Len(t, lines, 3)
	assert.Equal(t, "    0   1   2", lines[0])
	assert.Equal(t, " 0  1>   . | .", lines[1])
	assert.Equal(t, " 1   >   .  #1!", lines[2])

	assert.Nil(t, RenderText(nil))
}

func TestRenderTextHorizontalWalls(t *testing.T) {
	board := NewBoard(2, 2, "walls")
	board.SpaceAt(1, 0).AddWall(South)

	lines := RenderText(board.Snapshot())
	require.Len(t, lines, 4)
	assert.Equal(t, "        ---", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], " 1"))
}

func TestBoardAnalysis(t *testing.T) {
	board, err := BuildBoard(createTestConfig())
	require.NoError(t, err)

	assert.Equal(t, 1, CountActions(board, ConveyorAction))
	assert.Equal(t, 2, CountActions(board, CheckpointAction))
	assert.Equal(t, 2, CountWalls(board))

	space, ok := FindCheckpoint(board, 2)
	require.True(t, ok)
	assert.Equal(t, "(5,3)", space.String())
	_, ok = FindCheckpoint(board, 3)
	assert.False(t, ok)

	robot := NewRobot(board, "red", "A")
	require.NoError(t, board.AddRobot(robot))
	require.NoError(t, robot.SetSpace(board.SpaceAt(1, 1)))

	next, distance, ok := NextCheckpoint(robot)
	require.True(t, ok)
	assert.Equal(t, "(5,0)", next.String())
	assert.Equal(t, 5, distance)

	robot.SetCheckpointsReached(2)
	_, _, ok = NextCheckpoint(robot)
	assert.False(t, ok)

	assert.Equal(t, 7, ManhattanDistance(Position{X: 0, Y: 0}, Position{X: 3, Y: 4}))
}
