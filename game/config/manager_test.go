package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/roborally/game/engine"
)

func createValidConfig() *engine.BoardConfig {
	return &engine.BoardConfig{
		Name:        "Test Board",
		Description: "Test layout",
		Width:       5,
		Height:      4,
		Walls:       []engine.WallPlacement{{X: 1, Y: 1, Headings: []engine.Heading{engine.North}}},
		Conveyors:   []engine.ConveyorPlacement{{X: 2, Y: 2, Heading: engine.West}},
		Checkpoints: []engine.CheckpointPlacement{
			{X: 4, Y: 0, Number: 1},
			{X: 4, Y: 3, Number: 2, Final: true},
		},
	}
}

func writeConfigFile(t *testing.T, dir, filename string, config *engine.BoardConfig) {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), data, 0644))
}

func TestBuiltinBoards(t *testing.T) {
	assert.Equal(t, []string{"advanced", "default", "simple"}, BuiltinNames())

	for _, name := range BuiltinNames() {
		t.Run(name, func(t *testing.T) {
			config, ok := Builtin(name)
			require.True(t, ok)
			require.NoError(t, engine.ValidateBoardConfig(config))

			game, err := engine.NewGame(config, engine.DefaultPlayers(engine.MaxRobots))
			require.NoError(t, err)
			assert.Equal(t, engine.Programming, game.Board().Phase())
		})
	}

	simple, _ := Builtin("simple")
	assert.Equal(t, 8, simple.Width)
	assert.Len(t, simple.Conveyors, 16)
	assert.Len(t, simple.Checkpoints, 3)

	advanced, _ := Builtin("advanced")
	assert.Equal(t, 15, advanced.Width)
	assert.Equal(t, 8, advanced.Height)

	// Every call returns a fresh copy
	simple.Name = "changed"
	again, _ := Builtin("simple")
	assert.Equal(t, "simple", again.Name)

	_, ok := Builtin("missing")
	assert.False(t, ok)
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, DefaultBoard, manager.DefaultName())
		require.NotNil(t, manager.GetDefault())
		assert.Equal(t, "simple", manager.GetDefault().Name)
	})

	t.Run("builtin only", func(t *testing.T) {
		manager, err := NewManager("")
		require.NoError(t, err)
		assert.NotNil(t, manager.GetDefault())
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		assert.Error(t, err)
	})

	t.Run("broken default file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "simple.json"), []byte("{not json"), 0644))

		manager, err := NewManager(dir)
		require.NoError(t, err)
		assert.Equal(t, "simple", manager.GetDefault().Name)
		assert.Len(t, manager.GetDefault().Conveyors, 16, "built-in layout is used")
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "test.json", createValidConfig())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiny.yaml"), []byte(`
name: Tiny
width: 3
height: 3
conveyors:
  - {x: 1, y: 1, heading: east}
checkpoints:
  - {x: 2, y: 2, number: 1, final: true}
`), 0644))
	invalid := createValidConfig()
	invalid.Checkpoints[1].Number = 3
	writeConfigFile(t, dir, "gap.json", invalid)

	manager, err := NewManager(dir)
	require.NoError(t, err)

	t.Run("json file", func(t *testing.T) {
		config, err := manager.LoadConfig("test")
		require.NoError(t, err)
		assert.Equal(t, "Test Board", config.Name)
		assert.Equal(t, engine.West, config.Conveyors[0].Heading)
	})

	t.Run("name with extension", func(t *testing.T) {
		config, err := manager.LoadConfig("test.json")
		require.NoError(t, err)
		assert.Equal(t, "Test Board", config.Name)
	})

	t.Run("yaml file", func(t *testing.T) {
		config, err := manager.LoadConfig("tiny")
		require.NoError(t, err)
		assert.Equal(t, "Tiny", config.Name)
		assert.Equal(t, engine.East, config.Conveyors[0].Heading)
	})

	t.Run("builtin", func(t *testing.T) {
		config, err := manager.LoadConfig("advanced")
		require.NoError(t, err)
		assert.Equal(t, 15, config.Width)
	})

	t.Run("invalid layout", func(t *testing.T) {
		_, err := manager.LoadConfig("gap")
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.ErrorIs(t, err, engine.ErrInvalidBoard)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := manager.LoadConfig("nope")
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("path traversal", func(t *testing.T) {
		_, err := manager.LoadConfig("../etc/passwd")
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestManager_FileShadowsBuiltin(t *testing.T) {
	dir := t.TempDir()
	custom := createValidConfig()
	custom.Name = "My Advanced"
	writeConfigFile(t, dir, "advanced.json", custom)

	manager, err := NewManager(dir)
	require.NoError(t, err)

	config, err := manager.LoadConfig("advanced")
	require.NoError(t, err)
	assert.Equal(t, "My Advanced", config.Name)

	boards, err := manager.ListConfigs()
	require.NoError(t, err)
	require.Len(t, boards, 3)
	assert.Equal(t, "advanced", boards[0].BoardID)
	assert.Equal(t, "advanced.json", boards[0].Filename)
	assert.False(t, boards[0].Builtin)
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "alpha.json", createValidConfig())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	manager, err := NewManager(dir)
	require.NoError(t, err)

	boards, err := manager.ListConfigs()
	require.NoError(t, err)

	ids := make([]string, 0, len(boards))
	for _, b := range boards {
		ids = append(ids, b.BoardID)
	}
	assert.Equal(t, []string{"advanced", "alpha", "default", "simple"}, ids)

	alpha := boards[1]
	assert.Equal(t, "alpha.json", alpha.Filename)
	assert.Equal(t, "Test Board", alpha.Name)
	assert.Equal(t, 5, alpha.Width)
	assert.Equal(t, 2, alpha.Checkpoints)
	assert.Equal(t, 1, alpha.Conveyors)
	assert.False(t, alpha.Builtin)
	assert.True(t, boards[0].Builtin)
}

func TestManager_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	require.NoError(t, err)

	t.Run("json", func(t *testing.T) {
		require.NoError(t, manager.SaveConfig("saved", createValidConfig()))
		assert.FileExists(t, filepath.Join(dir, "saved.json"))

		reloaded, err := engine.LoadBoardConfig(filepath.Join(dir, "saved.json"))
		require.NoError(t, err)
		assert.Equal(t, createValidConfig(), reloaded)
	})

	t.Run("yaml replaces json", func(t *testing.T) {
		require.NoError(t, manager.SaveConfig("saved.yaml", createValidConfig()))
		assert.FileExists(t, filepath.Join(dir, "saved.yaml"))
		assert.NoFileExists(t, filepath.Join(dir, "saved.json"))

		reloaded, err := engine.LoadBoardConfig(filepath.Join(dir, "saved.yaml"))
		require.NoError(t, err)
		assert.Equal(t, createValidConfig(), reloaded)
	})

	t.Run("invalid layout", func(t *testing.T) {
		err := manager.SaveConfig("bad", &engine.BoardConfig{Name: "bad", Width: 0, Height: 1})
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.NoFileExists(t, filepath.Join(dir, "bad.json"))
	})

	t.Run("invalid name", func(t *testing.T) {
		err := manager.SaveConfig("../escape", createValidConfig())
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("no directory", func(t *testing.T) {
		builtinOnly, err := NewManager("")
		require.NoError(t, err)
		assert.ErrorIs(t, builtinOnly.SaveConfig("x", createValidConfig()), ErrNoConfigDir)
	})
}

func TestManager_SaveDefaultBoard(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, DefaultBoard, manager.DefaultName())

	require.NoError(t, manager.SaveConfig("other", createValidConfig()))
	assert.Equal(t, 8, manager.GetDefault().Width)

	require.NoError(t, manager.SaveConfig(DefaultBoard, createValidConfig()))
	assert.Equal(t, createValidConfig(), manager.GetDefault())

	loaded, err := manager.LoadConfig(DefaultBoard)
	require.NoError(t, err)
	assert.Same(t, manager.GetDefault(), loaded)

	require.NoError(t, manager.RefreshCache())
	assert.Equal(t, "Test Board", manager.GetDefault().Name)
}

func TestManager_SetDefault(t *testing.T) {
	manager, err := NewManager("")
	require.NoError(t, err)

	require.NoError(t, manager.SetDefault("advanced"))
	assert.Equal(t, "advanced", manager.DefaultName())
	assert.Equal(t, 15, manager.GetDefault().Width)

	assert.ErrorIs(t, manager.SetDefault("nope"), ErrConfigNotFound)
	assert.Equal(t, "advanced", manager.DefaultName())
}

func TestManager_CachingBehavior(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "cached.json", createValidConfig())

	manager, err := NewManager(dir)
	require.NoError(t, err)

	first, err := manager.LoadConfig("cached")
	require.NoError(t, err)
	second, err := manager.LoadConfig("cached")
	require.NoError(t, err)
	assert.Same(t, first, second)

	changed := createValidConfig()
	changed.Description = "changed on disk"
	writeConfigFile(t, dir, "cached.json", changed)

	stale, err := manager.LoadConfig("cached")
	require.NoError(t, err)
	assert.Equal(t, "Test layout", stale.Description)

	require.NoError(t, manager.RefreshCache())
	fresh, err := manager.LoadConfig("cached")
	require.NoError(t, err)
	assert.Equal(t, "changed on disk", fresh.Description)
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "shared.json", createValidConfig())

	manager, err := NewManager(dir)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			config, err := manager.LoadConfig("shared")
			if assert.NoError(t, err) {
				assert.Equal(t, "Test Board", config.Name)
			}
			_, err = manager.ListConfigs()
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
