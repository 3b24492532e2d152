package engine

import (
	"errors"

	"github.com/rs/zerolog/log"
)

// FieldActionKind selects the variant of a FieldAction
type FieldActionKind string

const (
	ConveyorAction   FieldActionKind = "conveyor"
	CheckpointAction FieldActionKind = "checkpoint"
)

// FieldAction is a rule attached to a space that fires for the robot standing
// on it. Heading is used by conveyors; Number and Final by checkpoints.
type FieldAction struct {
	Kind    FieldActionKind `json:"kind"`
	Heading Heading         `json:"heading"`
	Number  int             `json:"number,omitempty"`
	Final   bool            `json:"final,omitempty"`
}

// Conveyor returns a conveyor belt moving robots towards heading
func Conveyor(heading Heading) FieldAction {
	return FieldAction{Kind: ConveyorAction, Heading: heading}
}

// Checkpoint returns checkpoint number n; final marks the last one
func Checkpoint(n int, final bool) FieldAction {
	return FieldAction{Kind: CheckpointAction, Number: n, Final: final}
}

// ApplyFieldEffects runs the field actions under every robot, robots in board
// order and actions in the order they were added to the space
func (c *GameController) ApplyFieldEffects() {
	for _, robot := range c.board.Robots() {
		space := robot.Space()
		if space == nil {
			continue
		}
		for _, action := range space.Actions() {
			c.doFieldAction(action, space)
		}
	}
}

// doFieldAction executes action on space and reports whether it took effect
func (c *GameController) doFieldAction(action FieldAction, space *Space) bool {
	switch action.Kind {
	case ConveyorAction:
		return c.doConveyor(action, space)
	case CheckpointAction:
		return c.doCheckpoint(action, space)
	}
	return false
}

func (c *GameController) doConveyor(action FieldAction, space *Space) bool {
	robot := space.Robot()
	if robot == nil {
		return false
	}

	target := c.board.Neighbour(space, action.Heading)
	if err := c.MoveTo(robot, target, action.Heading); err != nil {
		if errors.Is(err, ErrImpossibleMove) {
			log.Debug().Err(err).Str("robot", robot.Name).Msg("conveyor blocked")
		}
		return false
	}
	return true
}

func (c *GameController) doCheckpoint(action FieldAction, space *Space) bool {
	robot := space.Robot()
	if robot == nil {
		return false
	}
	// Checkpoints are claimed strictly in order
	if action.Number != 1 && !robot.HasReachedCheckpoint(action.Number-1) {
		return false
	}

	if !robot.HasReachedCheckpoint(action.Number) {
		robot.SetCheckpointsReached(action.Number)
		log.Debug().Str("robot", robot.Name).Int("checkpoint", action.Number).Msg("checkpoint reached")
		if action.Final {
			c.board.SetPhase(Finished)
			c.handleGameEnd(robot)
		}
	}
	return true
}
