package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestBoard builds an empty board with one robot per position. Robots face
// south, like freshly created robots do.
func newTestBoard(t *testing.T, width, height int, positions ...Position) (*Board, *GameController) {
	t.Helper()

	board := NewBoard(width, height, "test")
	for i, pos := range positions {
		robot := NewRobot(board, robotColors[i%len(robotColors)], string(rune('A'+i)))
		require.NoError(t, board.AddRobot(robot))
		require.NoError(t, robot.SetSpace(board.SpaceAt(pos.X, pos.Y)))
	}
	if board.RobotCount() > 0 {
		board.SetCurrentRobot(board.Robot(0))
	}
	return board, NewGameController(board, WithDeck(NewSequenceDeck(Forward)))
}

func requireAt(t *testing.T, robot *Robot, x, y int) {
	t.Helper()
	require.NotNil(t, robot.Space(), "%s is not on the board", robot.Name)
	require.Equal(t, Position{X: x, Y: y}, Position{X: robot.Space().X, Y: robot.Space().Y}, "position of %s", robot.Name)
}

// fillPrograms copies the first n hand cards of every robot into its registers
func fillPrograms(t *testing.T, c *GameController, n int) {
	t.Helper()
	for _, robot := range c.Board().Robots() {
		for i := 0; i < n; i++ {
			require.True(t, c.MoveCards(robot.CardField(i), robot.ProgramField(i)))
		}
	}
}
