package engine

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Board queries
	Board() *Board

	// Round control
	StartProgrammingPhase()
	FinishProgrammingPhase()
	ExecuteStep()
	ExecutePrograms()
	HandleInteractiveCommand(command Command)

	// Cards
	MoveCards(source, target *CardField) bool

	// Direct movement, usable outside program execution
	MoveTo(robot *Robot, target *Space, heading Heading) error
	MoveForward(robot *Robot)
	MoveBackward(robot *Robot)
	FastForward(robot *Robot)
	TurnRight(robot *Robot)
	TurnLeft(robot *Robot)
	UTurn(robot *Robot)
	MoveCurrentRobotToSpace(space *Space) bool

	// Field effects
	ApplyFieldEffects()
}

// GameController implements the Engine interface. It drives one board and is
// not safe for concurrent use; hosts must serialise calls.
type GameController struct {
	board *Board
	deck  Deck
}

// Option configures a GameController
type Option func(*GameController)

// WithDeck replaces the random deck used in the programming phase
func WithDeck(deck Deck) Option {
	return func(c *GameController) {
		c.deck = deck
	}
}

// NewGameController creates a controller for board
func NewGameController(board *Board, opts ...Option) *GameController {
	c := &GameController{board: board}
	for _, opt := range opts {
		opt(c)
	}
	if c.deck == nil {
		c.deck = NewTimeSeededDeck()
	}
	return c
}

// Board returns the controlled board
func (c *GameController) Board() *Board {
	return c.board
}

// StartProgrammingPhase clears every program, deals a fresh hand to every
// robot and hands the turn to the first robot
func (c *GameController) StartProgrammingPhase() {
	c.board.SetPhase(Programming)
	c.board.SetCurrentRobot(c.board.Robot(0))
	c.board.SetStep(0)

	for _, robot := range c.board.Robots() {
		for i := 0; i < NoRegisters; i++ {
			field := robot.ProgramField(i)
			field.SetCard(nil)
			field.SetVisible(true)
		}
		for i := 0; i < NoCards; i++ {
			field := robot.CardField(i)
			field.SetCard(c.deck.Draw())
			field.SetVisible(true)
		}
	}
	log.Debug().Str("board", c.board.Name).Msg("programming phase started")
}

// FinishProgrammingPhase hides the programs, reveals the first register and
// starts the activation phase
func (c *GameController) FinishProgrammingPhase() {
	c.makeProgramFieldsInvisible()
	c.makeProgramFieldsVisible(0)
	c.board.SetPhase(Activation)
	c.board.SetCurrentRobot(c.board.Robot(0))
	c.board.SetStep(0)
	log.Debug().Str("board", c.board.Name).Msg("activation phase started")
}

func (c *GameController) makeProgramFieldsVisible(register int) {
	if register < 0 || register >= NoRegisters {
		return
	}
	for _, robot := range c.board.Robots() {
		robot.ProgramField(register).SetVisible(true)
	}
}

func (c *GameController) makeProgramFieldsInvisible() {
	for _, robot := range c.board.Robots() {
		for i := 0; i < NoRegisters; i++ {
			robot.ProgramField(i).SetVisible(false)
		}
	}
}

// ExecutePrograms runs cards until the activation phase ends or a card needs
// the player to choose
func (c *GameController) ExecutePrograms() {
	c.board.SetStepMode(false)
	c.continuePrograms()
}

// ExecuteStep runs exactly one card
func (c *GameController) ExecuteStep() {
	c.board.SetStepMode(true)
	c.continuePrograms()
}

func (c *GameController) continuePrograms() {
	for {
		c.executeNextStep(nil)
		if c.board.Phase() != Activation || c.board.StepMode() {
			return
		}
	}
}

// HandleInteractiveCommand answers a pending choice with command
func (c *GameController) HandleInteractiveCommand(command Command) {
	c.executeNextStep(&command)
}

// executeNextStep executes the current robot's card in the current register.
// interactive, when set, overrides the card's command.
func (c *GameController) executeNextStep(interactive *Command) {
	current := c.board.CurrentRobot()

	switch {
	case c.board.Phase() == Activation && current != nil:
		step := c.board.Step()
		if step < 0 || step >= NoRegisters {
			panic(fmt.Sprintf("engine: register step %d out of range", step))
		}

		if card := current.ProgramField(step).Card(); card != nil {
			command := card.Command
			if interactive != nil {
				command = *interactive
			}
			if command.IsInteractive() && interactive == nil {
				c.board.SetPhase(PlayerInteraction)
				return
			}
			c.executeCommand(current, command)
		}
		c.proceedToNextRobot()

	case c.board.Phase() == PlayerInteraction && current != nil:
		// Without an answer the game keeps waiting
		if interactive == nil {
			return
		}
		c.executeCommand(current, *interactive)
		c.board.SetPhase(Activation)
		c.proceedToNextRobot()

	default:
		panic(fmt.Sprintf("engine: cannot execute a step in phase %s", c.board.Phase()))
	}
}

func (c *GameController) executeCommand(robot *Robot, command Command) {
	if robot == nil || robot.Board() != c.board {
		return
	}

	switch command {
	case Forward:
		c.MoveForward(robot)
	case Right:
		c.TurnRight(robot)
	case Left:
		c.TurnLeft(robot)
	case FastForward:
		c.FastForward(robot)
	case UTurn:
		c.UTurn(robot)
	case Backwards:
		c.MoveBackward(robot)
	}
}

// proceedToNextRobot passes the turn on. After the last robot the field
// effects fire and the next register starts, or a new round begins.
func (c *GameController) proceedToNextRobot() {
	next := c.board.RobotIndex(c.board.CurrentRobot()) + 1
	if next < c.board.RobotCount() {
		c.board.SetCurrentRobot(c.board.Robot(next))
		return
	}

	c.ApplyFieldEffects()
	if c.board.Phase() == Finished {
		return
	}

	nextStep := c.board.Step() + 1
	if nextStep < NoRegisters {
		c.makeProgramFieldsVisible(nextStep)
		c.board.SetStep(nextStep)
		c.board.SetCurrentRobot(c.board.Robot(0))
		return
	}
	c.StartProgrammingPhase()
}

// MoveCards moves the card in source to target. It only succeeds if source
// holds a card and target is empty.
func (c *GameController) MoveCards(source, target *CardField) bool {
	if source == nil || target == nil || source == target {
		return false
	}
	card := source.Card()
	if card == nil || target.Card() != nil {
		return false
	}
	target.SetCard(card)
	source.SetCard(nil)
	return true
}

func (c *GameController) handleGameEnd(winner *Robot) {
	c.board.winner = winner
	log.Info().Str("board", c.board.Name).Str("winner", winner.Name).Int("moves", c.board.MoveCounter()).Msg("game finished")
	c.board.emit(Event{Type: EventGameFinished, Subject: "board", Robot: winner})
}
