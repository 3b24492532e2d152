package service

import (
	"time"

	"github.com/wricardo/mcp-training/roborally/game/engine"
)

// CreateSessionRequest describes a new game
type CreateSessionRequest struct {
	// BoardID selects the layout; empty means the default layout
	BoardID string `json:"board_id"`
	// Players names and colors the robots. When empty, PlayerCount default
	// players are created.
	Players     []engine.PlayerConfig `json:"players,omitempty"`
	PlayerCount int                   `json:"player_count,omitempty"`
	// Seed makes the card deck deterministic
	Seed *uint64 `json:"seed,omitempty"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string              `json:"id"`
	BoardID        string              `json:"board_id"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	State          *engine.BoardState  `json:"state"`
	Board          *engine.BoardConfig `json:"board,omitempty"`
}

// CommandResult is returned by every operation that changes a game
type CommandResult struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	State   *engine.BoardState `json:"state"`
	Events  []GameEvent        `json:"events"`
}

// Event types reported in CommandResult.Events
const (
	EventPhaseChanged      = "phase_changed"
	EventRegisterAdvanced  = "register_advanced"
	EventRobotMoved        = "robot_moved"
	EventRobotTurned       = "robot_turned"
	EventCheckpointReached = "checkpoint_reached"
	EventCardsMoved        = "cards_moved"
	EventWaitingForChoice  = "waiting_for_choice"
	EventGameFinished      = "game_finished"
)

// GameEvent represents something that happened while a command ran
type GameEvent struct {
	Type      string           `json:"type"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Robot     *int             `json:"robot,omitempty"`
	Position  *engine.Position `json:"position,omitempty"`
}

// SlotRef addresses one card field of a robot
type SlotRef struct {
	Kind  engine.CardFieldKind `json:"kind"`
	Index int                  `json:"index"`
}

// MoveCardsRequest moves a card between two fields of the same robot
type MoveCardsRequest struct {
	Robot int     `json:"robot"`
	From  SlotRef `json:"from"`
	To    SlotRef `json:"to"`
}

// ProgramRequest fills the registers of a robot from its hand. HandSlots[i]
// is the hand slot whose card goes into register i.
type ProgramRequest struct {
	Robot     int   `json:"robot"`
	HandSlots []int `json:"hand_slots"`
}

// Free-play actions accepted by RobotAction
const (
	ActionForward     = "forward"
	ActionBackward    = "backward"
	ActionFastForward = "fast_forward"
	ActionTurnLeft    = "turn_left"
	ActionTurnRight   = "turn_right"
	ActionUTurn       = "u_turn"
	ActionPlace       = "place"
)

// RobotActions lists the free-play actions
var RobotActions = []string{ActionForward, ActionBackward, ActionFastForward, ActionTurnLeft, ActionTurnRight, ActionUTurn, ActionPlace}

// RobotActionRequest runs one movement primitive outside program execution.
// X and Y are only used by ActionPlace, which moves the current robot.
type RobotActionRequest struct {
	Robot  int    `json:"robot"`
	Action string `json:"action"`
	X      int    `json:"x,omitempty"`
	Y      int    `json:"y,omitempty"`
}

// BoardInfo provides information about a board layout
type BoardInfo struct {
	Filename    string `json:"filename,omitempty"`
	BoardID     string `json:"board_id"` // The identifier to use for session creation
	Name        string `json:"name"`     // Display name
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Checkpoints int    `json:"checkpoints"`
	Conveyors   int    `json:"conveyors"`
	Builtin     bool   `json:"builtin"`
}
