package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/roborally/game/engine"
)

func createTestConfig() *engine.BoardConfig {
	return &engine.BoardConfig{
		Name:        "test",
		Description: "Test board",
		Width:       6,
		Height:      6,
		Conveyors:   []engine.ConveyorPlacement{{X: 3, Y: 3, Heading: engine.East}},
		Checkpoints: []engine.CheckpointPlacement{{X: 5, Y: 5, Number: 1, Final: true}},
	}
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create("test-session", "test", config, engine.DefaultPlayers(2))
		require.NoError(t, err)
		assert.Equal(t, "test-session", session.ID)
		assert.Equal(t, "test", session.BoardID)
		require.NotNil(t, session.Game)
		assert.Equal(t, 2, session.Game.Board().RobotCount())
		assert.Equal(t, engine.Programming, session.Game.Board().Phase())
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		session, err := manager.Create("", "test", config, engine.DefaultPlayers(3))
		require.NoError(t, err)
		assert.Len(t, session.ID, idLength)
	})

	t.Run("duplicate ID", func(t *testing.T) {
		_, err := manager.Create("TEST-SESSION", "test", config, engine.DefaultPlayers(2))
		assert.ErrorIs(t, err, ErrSessionAlreadyExists)
	})

	t.Run("invalid ID", func(t *testing.T) {
		_, err := manager.Create("a/b", "test", config, engine.DefaultPlayers(2))
		assert.ErrorIs(t, err, ErrInvalidSessionID)
	})

	t.Run("invalid game", func(t *testing.T) {
		_, err := manager.Create("", "test", config, engine.DefaultPlayers(1))
		assert.Error(t, err)
		_, err = manager.Create("", "broken", &engine.BoardConfig{Name: "broken"}, engine.DefaultPlayers(2))
		assert.ErrorIs(t, err, engine.ErrInvalidBoard)
	})

	assert.Equal(t, 2, manager.Count())
}

func TestManager_CreateWithDeck(t *testing.T) {
	manager := NewManager()
	session, err := manager.Create("", "test", createTestConfig(), engine.DefaultPlayers(2),
		engine.WithDeck(engine.NewSequenceDeck(engine.UTurn)))
	require.NoError(t, err)

	card := session.Game.Board().Robot(1).CardField(4).Card()
	require.NotNil(t, card)
	assert.Equal(t, engine.UTurn, card.Command)
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, err := manager.Create("AbCd", "test", createTestConfig(), engine.DefaultPlayers(2))
	require.NoError(t, err)

	for _, id := range []string{"AbCd", "abcd", "ABCD"} {
		session, err := manager.Get(id)
		require.NoError(t, err, id)
		assert.Same(t, created, session)
	}

	_, err = manager.Get("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	_, err := manager.Create("gone", "test", createTestConfig(), engine.DefaultPlayers(2))
	require.NoError(t, err)

	require.NoError(t, manager.Delete("GONE"))
	_, err = manager.Get("gone")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, manager.Delete("gone"), ErrSessionNotFound)
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	assert.Empty(t, manager.List())

	for i := 0; i < 3; i++ {
		_, err := manager.Create(fmt.Sprintf("s%d", i), "test", createTestConfig(), engine.DefaultPlayers(2))
		require.NoError(t, err)
	}

	ids := make([]string, 0, 3)
	for _, s := range manager.List() {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []string{"s0", "s1", "s2"}, ids)
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager()
	old, err := manager.Create("old", "test", createTestConfig(), engine.DefaultPlayers(2))
	require.NoError(t, err)
	_, err = manager.Create("fresh", "test", createTestConfig(), engine.DefaultPlayers(2))
	require.NoError(t, err)

	old.LastAccessedAt = time.Now().Add(-25 * time.Hour)

	assert.Equal(t, 1, manager.CleanupExpiredSessions(24*time.Hour))
	_, err = manager.Get("old")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = manager.Get("fresh")
	assert.NoError(t, err)
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	session, err := manager.Create("touch", "test", createTestConfig(), engine.DefaultPlayers(2))
	require.NoError(t, err)

	before := time.Now().Add(-time.Hour)
	session.LastAccessedAt = before

	require.NoError(t, manager.UpdateLastAccessed("TOUCH"))
	assert.True(t, session.LastAccessedAt.After(before))
	assert.ErrorIs(t, manager.UpdateLastAccessed("missing"), ErrSessionNotFound)
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager()
	a, err := manager.Create("a", "test", createTestConfig(), engine.DefaultPlayers(2))
	require.NoError(t, err)
	b, err := manager.Create("b", "test", createTestConfig(), engine.DefaultPlayers(2))
	require.NoError(t, err)

	a.Game.TurnLeft(a.Game.Board().Robot(0))

	assert.Equal(t, engine.East, a.Game.Board().Robot(0).Heading())
	assert.Equal(t, engine.South, b.Game.Board().Robot(0).Heading())
	assert.NotSame(t, a.Game.Board(), b.Game.Board())
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	var wg sync.WaitGroup
	ids := make(chan string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := manager.Create("", "test", config, engine.DefaultPlayers(2))
			if !assert.NoError(t, err) {
				return
			}
			ids <- session.ID
			_, err = manager.Get(session.ID)
			assert.NoError(t, err)
			assert.NoError(t, manager.UpdateLastAccessed(session.ID))
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate ID %s", id)
		seen[id] = true
	}
	assert.Equal(t, 50, manager.Count())
}
