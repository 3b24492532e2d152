package service

import (
	"context"
	"time"

	"github.com/wricardo/mcp-training/roborally/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Round Control
	StartProgramming(ctx context.Context, sessionID string) (*CommandResult, error)
	FinishProgramming(ctx context.Context, sessionID string) (*CommandResult, error)
	ExecuteStep(ctx context.Context, sessionID string) (*CommandResult, error)
	ExecutePrograms(ctx context.Context, sessionID string) (*CommandResult, error)
	ChooseCommand(ctx context.Context, sessionID, command string, resume bool) (*CommandResult, error)

	// Cards
	MoveCards(ctx context.Context, sessionID string, req MoveCardsRequest) (*CommandResult, error)
	Program(ctx context.Context, sessionID string, req ProgramRequest) (*CommandResult, error)

	// Free Play
	RobotAction(ctx context.Context, sessionID string, req RobotActionRequest) (*CommandResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.BoardState, error)

	// Boards
	ListBoards(ctx context.Context) ([]*BoardInfo, error)
	LoadBoard(ctx context.Context, boardID string) (*engine.BoardConfig, error)
	SaveBoard(ctx context.Context, boardID string, config *engine.BoardConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, boardID string, config *engine.BoardConfig, players []engine.PlayerConfig, opts ...engine.Option) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles board layout loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.BoardConfig, error)
	ListConfigs() ([]*BoardInfo, error)
	GetDefault() *engine.BoardConfig
	DefaultName() string
	SaveConfig(name string, config *engine.BoardConfig) error
}

// Session represents an active game
type Session struct {
	ID             string
	BoardID        string
	Game           *engine.GameController
	Config         *engine.BoardConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
