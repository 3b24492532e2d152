package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *BoardConfig {
	return &BoardConfig{
		Name:        "test",
		Description: "Board for engine tests",
		Width:       6,
		Height:      4,
		Walls: []WallPlacement{
			{X: 2, Y: 1, Headings: []Heading{East, South}},
		},
		Conveyors: []ConveyorPlacement{
			{X: 0, Y: 3, Heading: North},
		},
		Checkpoints: []CheckpointPlacement{
			{X: 5, Y: 0, Number: 1},
			{X: 5, Y: 3, Number: 2, Final: true},
		},
		StartPositions: []Position{{X: 0, Y: 0}, {X: 1, Y: 0}},
	}
}

func TestValidateBoardConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*BoardConfig)
		wantErr bool
	}{
		{"valid", func(c *BoardConfig) {}, false},
		{"missing name", func(c *BoardConfig) { c.Name = "" }, true},
		{"zero width", func(c *BoardConfig) { c.Width = 0 }, true},
		{"too tall", func(c *BoardConfig) { c.Height = MaxBoardSize + 1 }, true},
		{"wall off board", func(c *BoardConfig) { c.Walls[0].X = 6 }, true},
		{"bad wall heading", func(c *BoardConfig) { c.Walls[0].Headings = []Heading{Heading(7)} }, true},
		{"conveyor off board", func(c *BoardConfig) { c.Conveyors[0].Y = -1 }, true},
		{"checkpoint zero", func(c *BoardConfig) { c.Checkpoints[0].Number = 0 }, true},
		{"duplicate checkpoint", func(c *BoardConfig) { c.Checkpoints[1].Number = 1 }, true},
		{"gap in checkpoints", func(c *BoardConfig) { c.Checkpoints[1].Number = 3 }, true},
		{"early final", func(c *BoardConfig) { c.Checkpoints[0].Final = true }, true},
		{"no final is allowed", func(c *BoardConfig) { c.Checkpoints[1].Final = false }, false},
		{"start off board", func(c *BoardConfig) { c.StartPositions[1] = Position{X: 9, Y: 0} }, true},
		{"shared start", func(c *BoardConfig) { c.StartPositions[1] = c.StartPositions[0] }, true},
		{"diagonal start for robot 2 is taken", func(c *BoardConfig) { c.StartPositions = []Position{{X: 1, Y: 1}} }, true},
		{"diagonal starts", func(c *BoardConfig) { c.StartPositions = nil }, false},
		{"single space", func(c *BoardConfig) {
			c.Width, c.Height = 1, 1
			c.Walls, c.Conveyors, c.Checkpoints, c.StartPositions = nil, nil, nil, nil
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createTestConfig()
			tt.modify(config)
			err := ValidateBoardConfig(config)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidBoard)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.ErrorIs(t, ValidateBoardConfig(nil), ErrInvalidBoard)
}

func TestBuildBoard(t *testing.T) {
	board, err := BuildBoard(createTestConfig())
	require.NoError(t, err)

	assert.Equal(t, "test", board.Name)
	assert.Equal(t, 6, board.Width)
	assert.Equal(t, 4, board.Height)
	assert.Equal(t, Initialisation, board.Phase())

	assert.Equal(t, []Heading{East, South}, board.SpaceAt(2, 1).Walls())
	assert.Equal(t, []FieldAction{Conveyor(North)}, board.SpaceAt(0, 3).Actions())
	assert.Equal(t, []FieldAction{Checkpoint(2, true)}, board.SpaceAt(5, 3).Actions())

	_, err = BuildBoard(&BoardConfig{Name: "bad", Width: 0, Height: 3})
	assert.ErrorIs(t, err, ErrInvalidBoard)
}

func TestNewGame(t *testing.T) {
	game, err := NewGame(createTestConfig(), []PlayerConfig{{Name: "Ada"}, {Color: "yellow"}, {}},
		WithDeck(NewSequenceDeck(UTurn)))
	require.NoError(t, err)

	board := game.Board()
	require.Equal(t, 3, board.RobotCount())
	assert.Equal(t, Programming, board.Phase())
	assert.Same(t, board.Robot(0), board.CurrentRobot())

	assert.Equal(t, "Ada", board.Robot(0).Name)
	assert.Equal(t, "red", board.Robot(0).Color)
	assert.Equal(t, "Player 2", board.Robot(1).Name)
	assert.Equal(t, "yellow", board.Robot(1).Color)
	assert.Equal(t, "blue", board.Robot(2).Color)

	requireAt(t, board.Robot(0), 0, 0)
	requireAt(t, board.Robot(1), 1, 0)
	requireAt(t, board.Robot(2), 2, 2) // diagonal fallback
	assert.Equal(t, UTurn, board.Robot(2).CardField(7).Card().Command)
}

func TestNewGamePlayerCount(t *testing.T) {
	_, err := NewGame(createTestConfig(), DefaultPlayers(1))
	assert.Error(t, err)
	_, err = NewGame(createTestConfig(), DefaultPlayers(MaxRobots+1))
	assert.Error(t, err)
}

func TestNewGameStartCollision(t *testing.T) {
	config := createTestConfig()
	config.StartPositions = []Position{{X: 0, Y: 0}, {X: 2, Y: 2}}

	// Two robots fit, but robot 2 falls back to (2,2), which robot 1 holds
	_, err := NewGame(config, DefaultPlayers(2))
	require.NoError(t, err)
	_, err = NewGame(config, DefaultPlayers(3))
	assert.ErrorIs(t, err, ErrSpaceOccupied)

	config.StartPositions = []Position{{X: 1, Y: 1}}
	_, err = NewGame(config, DefaultPlayers(2))
	assert.ErrorIs(t, err, ErrInvalidBoard)
	assert.ErrorContains(t, err, "robots 1 and 2 both start at (1,1)")
}

func TestParseBoardConfig(t *testing.T) {
	yamlData := []byte(`
name: tiny
width: 3
height: 2
walls:
  - {x: 1, y: 0, headings: [east, S]}
conveyors:
  - {x: 0, y: 1, heading: up}
checkpoints:
  - {x: 2, y: 1, number: 1, final: true}
`)
	config, err := ParseBoardConfig(yamlData, ".yaml")
	require.NoError(t, err)
	require.NoError(t, ValidateBoardConfig(config))
	assert.Equal(t, []Heading{East, South}, config.Walls[0].Headings)
	assert.Equal(t, North, config.Conveyors[0].Heading)
	assert.True(t, config.Checkpoints[0].Final)

	jsonData := []byte(`{"name":"tiny","width":3,"height":2,"conveyors":[{"x":0,"y":1,"heading":"WEST"}]}`)
	config, err = ParseBoardConfig(jsonData, ".json")
	require.NoError(t, err)
	assert.Equal(t, West, config.Conveyors[0].Heading)

	_, err = ParseBoardConfig([]byte(`{"name":"tiny","conveyors":[{"heading":"sideways"}]}`), ".json")
	assert.Error(t, err)
}

func TestLoadBoardConfig(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "tiny.yml")
	require.NoError(t, os.WriteFile(path, []byte("name: tiny\nwidth: 2\nheight: 2\n"), 0644))
	config, err := LoadBoardConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "tiny", config.Name)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"name":"bad","width":99,"height":2}`), 0644))
	_, err = LoadBoardConfig(bad)
	assert.ErrorIs(t, err, ErrInvalidBoard)

	_, err = LoadBoardConfig(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestSampleLayouts(t *testing.T) {
	for _, name := range []string{"crossroads.json", "gauntlet.yaml"} {
		t.Run(name, func(t *testing.T) {
			config, err := LoadBoardConfig(filepath.Join("..", "..", "boards", name))
			require.NoError(t, err)

			game, err := NewGame(config, DefaultPlayers(MaxRobots))
			require.NoError(t, err)
			assert.Equal(t, MaxRobots, game.Board().RobotCount())
		})
	}
}
