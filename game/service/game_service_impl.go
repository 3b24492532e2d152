package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/roborally/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	// mu serialises every operation. Reads take it exclusively too, since
	// they touch the session's last access time.
	mu       sync.Mutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load board layout
	boardID := req.BoardID
	var config *engine.BoardConfig
	if boardID != "" {
		var err error
		config, err = s.configs.LoadConfig(boardID)
		if err != nil {
			// Provide helpful error message with available options
			if available := s.boardIDs(); len(available) > 0 && !slices.Contains(available, boardID) {
				return nil, fmt.Errorf("board '%s' not found, available boards: %v: %w", boardID, available, err)
			}
			return nil, fmt.Errorf("failed to load board %s: %w", boardID, err)
		}
	} else {
		config = s.configs.GetDefault()
		boardID = s.configs.DefaultName()
	}

	players := req.Players
	if len(players) == 0 {
		count := req.PlayerCount
		if count == 0 {
			count = engine.MinRobots
		}
		if count < engine.MinRobots || count > engine.MaxRobots {
			return nil, fmt.Errorf("%w: player count must be between %d and %d, got %d", ErrInvalidPlayers, engine.MinRobots, engine.MaxRobots, count)
		}
		players = engine.DefaultPlayers(count)
	}
	if len(players) < engine.MinRobots || len(players) > engine.MaxRobots {
		return nil, fmt.Errorf("%w: need %d to %d players, got %d", ErrInvalidPlayers, engine.MinRobots, engine.MaxRobots, len(players))
	}

	var opts []engine.Option
	if req.Seed != nil {
		opts = append(opts, engine.WithDeck(engine.NewRandomDeck(*req.Seed)))
	}

	sess, err := s.sessions.Create("", boardID, config, players, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info().Str("session", sess.ID).Str("board", boardID).Int("players", len(players)).Msg("session created")
	return newSessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return newSessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		info := newSessionInfo(sess)
		// The layout is only sent for single sessions
		info.Board = nil
		result = append(result, info)
	}

	slices.SortFunc(result, func(a, b *SessionInfo) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	log.Info().Str("session", sessionID).Msg("session deleted")
	return nil
}

// StartProgramming deals new hands and clears all programs
func (s *gameServiceImpl) StartProgramming(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.command(sessionID, "start_programming", func(game *engine.GameController) (bool, error) {
		if err := requirePhase(game.Board(), engine.Initialisation, engine.Programming); err != nil {
			return false, err
		}
		game.StartProgrammingPhase()
		return true, nil
	})
}

// FinishProgramming locks in the programs and starts the activation phase
func (s *gameServiceImpl) FinishProgramming(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.command(sessionID, "finish_programming", func(game *engine.GameController) (bool, error) {
		if err := requirePhase(game.Board(), engine.Programming); err != nil {
			return false, err
		}
		game.FinishProgrammingPhase()
		return true, nil
	})
}

// ExecuteStep runs the next card of the current register
func (s *gameServiceImpl) ExecuteStep(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.command(sessionID, "execute_step", func(game *engine.GameController) (bool, error) {
		if err := requirePhase(game.Board(), engine.Activation); err != nil {
			return false, err
		}
		game.ExecuteStep()
		return true, nil
	})
}

// ExecutePrograms runs the remaining registers until the round ends or a
// robot waits for a choice
func (s *gameServiceImpl) ExecutePrograms(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.command(sessionID, "execute_programs", func(game *engine.GameController) (bool, error) {
		if err := requirePhase(game.Board(), engine.Activation); err != nil {
			return false, err
		}
		game.ExecutePrograms()
		return true, nil
	})
}

// ChooseCommand answers a pending interactive card. With resume set, the
// remaining registers run afterwards as in ExecutePrograms.
func (s *gameServiceImpl) ChooseCommand(ctx context.Context, sessionID, command string, resume bool) (*CommandResult, error) {
	return s.command(sessionID, "choose_command", func(game *engine.GameController) (bool, error) {
		board := game.Board()
		if err := requirePhase(board, engine.PlayerInteraction); err != nil {
			return false, err
		}

		chosen, err := engine.ParseCommand(command)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
		}
		options := pendingOptions(board)
		if !slices.Contains(options, chosen) {
			return false, fmt.Errorf("%w: %s is not one of %v", ErrInvalidCommand, chosen, options)
		}

		game.HandleInteractiveCommand(chosen)
		if resume && board.Phase() == engine.Activation {
			game.ExecutePrograms()
		}
		return true, nil
	})
}

// MoveCards moves a card between two fields of one robot
func (s *gameServiceImpl) MoveCards(ctx context.Context, sessionID string, req MoveCardsRequest) (*CommandResult, error) {
	return s.command(sessionID, "move_cards", func(game *engine.GameController) (bool, error) {
		board := game.Board()
		if err := requirePhase(board, engine.Programming); err != nil {
			return false, err
		}
		robot, err := robotAt(board, req.Robot)
		if err != nil {
			return false, err
		}
		source, err := cardField(robot, req.From)
		if err != nil {
			return false, err
		}
		target, err := cardField(robot, req.To)
		if err != nil {
			return false, err
		}

		if !game.MoveCards(source, target) {
			return false, fmt.Errorf("%w: %s %d to %s %d needs a card in the source and an empty target",
				ErrCardMoveRejected, req.From.Kind, req.From.Index, req.To.Kind, req.To.Index)
		}
		return true, nil
	})
}

// Program fills a robot's registers from its hand in one call
func (s *gameServiceImpl) Program(ctx context.Context, sessionID string, req ProgramRequest) (*CommandResult, error) {
	return s.command(sessionID, "program", func(game *engine.GameController) (bool, error) {
		board := game.Board()
		if err := requirePhase(board, engine.Programming); err != nil {
			return false, err
		}
		robot, err := robotAt(board, req.Robot)
		if err != nil {
			return false, err
		}
		if len(req.HandSlots) == 0 || len(req.HandSlots) > engine.NoRegisters {
			return false, fmt.Errorf("%w: between 1 and %d hand slots required, got %d", ErrInvalidSlot, engine.NoRegisters, len(req.HandSlots))
		}

		// Check everything first so a rejected program leaves the cards untouched
		seen := make(map[int]bool)
		for register, slot := range req.HandSlots {
			field := robot.CardField(slot)
			if field == nil {
				return false, fmt.Errorf("%w: hand slot %d out of range", ErrInvalidSlot, slot)
			}
			if seen[slot] {
				return false, fmt.Errorf("%w: hand slot %d used twice", ErrInvalidSlot, slot)
			}
			seen[slot] = true
			if field.Card() == nil {
				return false, fmt.Errorf("%w: hand slot %d is empty", ErrCardMoveRejected, slot)
			}
			if robot.ProgramField(register).Card() != nil {
				return false, fmt.Errorf("%w: register %d is not empty", ErrCardMoveRejected, register)
			}
		}

		for register, slot := range req.HandSlots {
			game.MoveCards(robot.CardField(slot), robot.ProgramField(register))
		}
		return true, nil
	})
}

// RobotAction runs a movement primitive directly, outside program execution
func (s *gameServiceImpl) RobotAction(ctx context.Context, sessionID string, req RobotActionRequest) (*CommandResult, error) {
	return s.command(sessionID, "robot_action", func(game *engine.GameController) (bool, error) {
		board := game.Board()
		if err := requirePhase(board, engine.Initialisation, engine.Programming); err != nil {
			return false, err
		}
		robot, err := robotAt(board, req.Robot)
		if err != nil {
			return false, err
		}

		before := board.MoveCounter()
		switch req.Action {
		case ActionForward:
			game.MoveForward(robot)
		case ActionBackward:
			game.MoveBackward(robot)
		case ActionFastForward:
			game.FastForward(robot)
		case ActionTurnLeft:
			game.TurnLeft(robot)
		case ActionTurnRight:
			game.TurnRight(robot)
		case ActionUTurn:
			game.UTurn(robot)
		case ActionPlace:
			if robot != board.CurrentRobot() {
				return false, fmt.Errorf("%w: it is %s's turn", ErrInvalidRobot, board.CurrentRobot().Name)
			}
			space := board.SpaceAt(req.X, req.Y)
			if space == nil {
				return false, fmt.Errorf("%w: (%d,%d) is off the board", ErrInvalidPosition, req.X, req.Y)
			}
			return game.MoveCurrentRobotToSpace(space), nil
		default:
			return false, fmt.Errorf("%w: unknown action %q, valid actions are %v", ErrInvalidCommand, req.Action, RobotActions)
		}
		return board.MoveCounter() > before, nil
	})
}

// GetGameState retrieves the current board state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.BoardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Game.Board().Snapshot(), nil
}

// ListBoards returns the available board layouts
func (s *gameServiceImpl) ListBoards(ctx context.Context) ([]*BoardInfo, error) {
	return s.configs.ListConfigs()
}

// LoadBoard loads a specific board layout
func (s *gameServiceImpl) LoadBoard(ctx context.Context, boardID string) (*engine.BoardConfig, error) {
	return s.configs.LoadConfig(boardID)
}

// SaveBoard saves a board layout
func (s *gameServiceImpl) SaveBoard(ctx context.Context, boardID string, config *engine.BoardConfig) error {
	if err := s.configs.SaveConfig(boardID, config); err != nil {
		return err
	}
	log.Info().Str("board", boardID).Msg("board saved")
	return nil
}

// command runs op against a session's game under the service lock and
// reports the resulting state together with what changed
func (s *gameServiceImpl) command(sessionID, name string, op func(game *engine.GameController) (bool, error)) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	board := sess.Game.Board()
	before := board.Snapshot()

	var finished []engine.Event
	unsubscribe := board.Subscribe(func(e engine.Event) {
		if e.Type == engine.EventGameFinished {
			finished = append(finished, e)
		}
	})
	success, err := op(sess.Game)
	unsubscribe()
	if err != nil {
		log.Debug().Err(err).Str("session", sessionID).Str("command", name).Msg("command rejected")
		return nil, err
	}

	after := board.Snapshot()
	events := extractEvents(before, after)
	if name == "move_cards" || name == "program" {
		events = append(events, GameEvent{
			Type:      EventCardsMoved,
			Message:   "Program updated",
			Timestamp: time.Now(),
		})
	}
	for _, e := range finished {
		winner := board.RobotIndex(e.Robot)
		events = append(events, GameEvent{
			Type:      EventGameFinished,
			Message:   fmt.Sprintf("%s reached the final checkpoint after %d moves", e.Robot.Name, e.MoveCount),
			Timestamp: time.Now(),
			Robot:     &winner,
		})
		log.Info().Str("session", sessionID).Str("winner", e.Robot.Name).Int("moves", e.MoveCount).Msg("game won")
	}

	log.Debug().Str("session", sessionID).Str("command", name).Stringer("phase", after.Phase).Int("moves", after.MoveCounter).Msg("command executed")

	return &CommandResult{
		Success: success,
		Message: after.Status,
		State:   after,
		Events:  events,
	}, nil
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *gameServiceImpl) boardIDs() []string {
	boards, err := s.configs.ListConfigs()
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(boards))
	for _, b := range boards {
		ids = append(ids, b.BoardID)
	}
	return ids
}

func newSessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		BoardID:        sess.BoardID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		State:          sess.Game.Board().Snapshot(),
		Board:          sess.Config,
	}
}

func requirePhase(board *engine.Board, allowed ...engine.Phase) error {
	phase := board.Phase()
	if slices.Contains(allowed, phase) {
		return nil
	}
	if phase == engine.PlayerInteraction {
		return fmt.Errorf("%w: %s is waiting for a choice between %v", ErrWrongPhase, board.CurrentRobot().Name, pendingOptions(board))
	}
	return fmt.Errorf("%w: phase is %s, expected one of %v", ErrWrongPhase, phase, allowed)
}

func pendingOptions(board *engine.Board) []engine.Command {
	current := board.CurrentRobot()
	if current == nil {
		return nil
	}
	field := current.ProgramField(board.Step())
	if field == nil || field.Card() == nil {
		return nil
	}
	return field.Card().Command.Options()
}

func robotAt(board *engine.Board, index int) (*engine.Robot, error) {
	robot := board.Robot(index)
	if robot == nil {
		return nil, fmt.Errorf("%w: robot %d does not exist, the board has %d robots", ErrInvalidRobot, index, board.RobotCount())
	}
	return robot, nil
}

func cardField(robot *engine.Robot, ref SlotRef) (*engine.CardField, error) {
	var field *engine.CardField
	switch ref.Kind {
	case engine.ProgramField:
		field = robot.ProgramField(ref.Index)
	case engine.HandField:
		field = robot.CardField(ref.Index)
	default:
		return nil, fmt.Errorf("%w: unknown field kind %q", ErrInvalidSlot, ref.Kind)
	}
	if field == nil {
		return nil, fmt.Errorf("%w: %s %d out of range", ErrInvalidSlot, ref.Kind, ref.Index)
	}
	return field, nil
}

// extractEvents compares two snapshots of the same board
func extractEvents(before, after *engine.BoardState) []GameEvent {
	events := []GameEvent{}
	now := time.Now()

	for i, robot := range after.Robots {
		if i >= len(before.Robots) {
			break
		}
		prev := before.Robots[i]
		index := i

		if robot.Placed && (prev.X != robot.X || prev.Y != robot.Y || !prev.Placed) {
			pos := engine.Position{X: robot.X, Y: robot.Y}
			events = append(events, GameEvent{
				Type:      EventRobotMoved,
				Message:   fmt.Sprintf("%s moved from (%d,%d) to (%d,%d)", robot.Name, prev.X, prev.Y, robot.X, robot.Y),
				Timestamp: now,
				Robot:     &index,
				Position:  &pos,
			})
		}
		if prev.Heading != robot.Heading {
			events = append(events, GameEvent{
				Type:      EventRobotTurned,
				Message:   fmt.Sprintf("%s turned from %s to %s", robot.Name, prev.Heading, robot.Heading),
				Timestamp: now,
				Robot:     &index,
			})
		}
		if robot.CheckpointsReached > prev.CheckpointsReached {
			events = append(events, GameEvent{
				Type:      EventCheckpointReached,
				Message:   fmt.Sprintf("%s reached checkpoint %d", robot.Name, robot.CheckpointsReached),
				Timestamp: now,
				Robot:     &index,
			})
		}
	}

	if before.Phase != after.Phase {
		events = append(events, GameEvent{
			Type:      EventPhaseChanged,
			Message:   fmt.Sprintf("Phase changed from %s to %s", before.Phase, after.Phase),
			Timestamp: now,
		})
	} else if after.Phase == engine.Activation && before.Step != after.Step {
		events = append(events, GameEvent{
			Type:      EventRegisterAdvanced,
			Message:   fmt.Sprintf("Register %d is next", after.Step+1),
			Timestamp: now,
		})
	}

	if after.Phase == engine.PlayerInteraction && before.Phase != engine.PlayerInteraction && after.CurrentRobot >= 0 {
		current := after.CurrentRobot
		events = append(events, GameEvent{
			Type:      EventWaitingForChoice,
			Message:   fmt.Sprintf("%s must choose one of %v", after.Robots[current].Name, after.Options),
			Timestamp: now,
			Robot:     &current,
		})
	}

	return events
}
