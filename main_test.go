package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/roborally/api"
	"github.com/wricardo/mcp-training/roborally/game/service"
	"github.com/wricardo/mcp-training/roborally/transport/mcp"
)

const sprintLayout = `{
	"name": "sprint",
	"description": "Short race",
	"width": 3,
	"height": 3,
	"checkpoints": [{"x": 0, "y": 2, "number": 1, "final": true}]
}`

func TestConstants(t *testing.T) {
	assert.Equal(t, "1.0.0", Version)
	assert.Equal(t, "RoboRally Game Server", AppName)
}

func TestInitializeServices(t *testing.T) {
	ctx := context.Background()

	t.Run("board directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "sprint.json"), []byte(sprintLayout), 0644))

		gameService, sessions, err := initializeServices(dir, "sprint")
		require.NoError(t, err)
		require.NotNil(t, sessions)

		info, err := gameService.CreateSession(ctx, service.CreateSessionRequest{})
		require.NoError(t, err)
		assert.Equal(t, "sprint", info.BoardID)
		assert.Equal(t, 1, sessions.Count())
	})

	t.Run("missing directory falls back to built-ins", func(t *testing.T) {
		gameService, _, err := initializeServices(filepath.Join(t.TempDir(), "nope"), "")
		require.NoError(t, err)

		boards, err := gameService.ListBoards(ctx)
		require.NoError(t, err)
		for _, b := range boards {
			assert.True(t, b.Builtin)
		}
	})

	t.Run("unknown default board", func(t *testing.T) {
		_, _, err := initializeServices("", "atlantis")
		assert.ErrorContains(t, err, "failed to set default board")
	})
}

func TestSessionCleanupRoutine(t *testing.T) {
	gameService, sessions, err := initializeServices("", "")
	require.NoError(t, err)

	_, err = gameService.CreateSession(context.Background(), service.CreateSessionRequest{PlayerCount: 2})
	require.NoError(t, err)
	require.Equal(t, 1, sessions.Count())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sessionCleanupRoutine(ctx, sessions, 10*time.Millisecond, time.Nanosecond)

	require.Eventually(t, func() bool { return sessions.Count() == 0 }, time.Second, 10*time.Millisecond)
}

func TestNewRouter(t *testing.T) {
	gameService, _, err := initializeServices("", "")
	require.NoError(t, err)

	router := newRouter(api.NewServer(gameService, nil), mcp.NewClient("http://unused"))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/mcp", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("POST", "/mcp", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "execute_programs")
}

func TestAPIAvailable(t *testing.T) {
	gameService, _, err := initializeServices("", "")
	require.NoError(t, err)

	backend := httptest.NewServer(api.NewServer(gameService, nil))
	defer backend.Close()
	assert.True(t, apiAvailable(backend.URL))

	other := httptest.NewServer(http.NotFoundHandler())
	defer other.Close()
	assert.False(t, apiAvailable(other.URL))

	assert.False(t, apiAvailable("http://127.0.0.1:1"))
}

func TestBoardsCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sprint.json"), []byte(sprintLayout), 0644))

	var out bytes.Buffer
	cmd := newCommand()
	cmd.Writer = &out

	require.NoError(t, cmd.Run(context.Background(), []string{"roborally", "--config-dir", dir, "boards"}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "advanced"))
	assert.Contains(t, lines[3], "sprint")
	assert.Contains(t, lines[3], "(sprint.json)")
}

func TestCommandFlags(t *testing.T) {
	t.Setenv("PORT", "9191")
	t.Setenv("NGROK_ENABLED", "true")

	cmd := newCommand()
	var port int
	var ngrok bool
	var ttl time.Duration
	for _, sub := range cmd.Commands {
		if sub.Name == "boards" {
			sub.Action = func(ctx context.Context, c *cli.Command) error {
				port, ngrok, ttl = c.Int("port"), c.Bool("ngrok"), c.Duration("session-ttl")
				return nil
			}
		}
	}

	require.NoError(t, cmd.Run(context.Background(), []string{"roborally", "boards"}))
	assert.Equal(t, 9191, port)
	assert.True(t, ngrok)
	assert.Equal(t, 24*time.Hour, ttl)
}
