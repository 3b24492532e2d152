package engine

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// ErrImpossibleMove is returned when a robot cannot be placed on a target space
// because of a wall, the board edge or a push chain that cannot shift
var ErrImpossibleMove = errors.New("impossible move")

// ImpossibleMoveError describes a rejected move
type ImpossibleMoveError struct {
	Robot   *Robot
	Target  *Space
	Heading Heading
}

func (e *ImpossibleMoveError) Error() string {
	return fmt.Sprintf("impossible move: %s cannot move %s to %s", e.Robot.Name, e.Heading, e.Target)
}

// Unwrap lets errors.Is match ErrImpossibleMove
func (e *ImpossibleMoveError) Unwrap() error {
	return ErrImpossibleMove
}

// MoveTo moves robot onto target, travelling in heading. An occupant of target
// is pushed one space further in the same heading, recursively. Either the
// whole chain shifts or nothing moves and an ImpossibleMoveError is returned.
func (c *GameController) MoveTo(robot *Robot, target *Space, heading Heading) error {
	current := robot.Space()
	if current == nil || target == nil || target == current {
		return &ImpossibleMoveError{Robot: robot, Target: target, Heading: heading}
	}

	// Re-check the step itself rather than trusting the caller's target
	if c.board.Neighbour(current, heading) == current {
		return &ImpossibleMoveError{Robot: robot, Target: target, Heading: heading}
	}

	if pushed := target.Robot(); pushed != nil {
		next := c.board.Neighbour(target, heading)
		if next == target {
			return &ImpossibleMoveError{Robot: robot, Target: target, Heading: heading}
		}
		// Nothing has moved yet if the push fails, so there is nothing to undo
		if err := c.MoveTo(pushed, next, heading); err != nil {
			return err
		}
		if target.Robot() != nil {
			return &ImpossibleMoveError{Robot: robot, Target: target, Heading: heading}
		}
	}

	robot.relocate(target)
	return nil
}

// step moves robot one space in heading, counting the move on success
func (c *GameController) step(robot *Robot, heading Heading) {
	if robot.Board() != c.board || robot.Space() == nil {
		return
	}

	target := c.board.Neighbour(robot.Space(), heading)
	if err := c.MoveTo(robot, target, heading); err != nil {
		log.Debug().Err(err).Str("robot", robot.Name).Stringer("heading", heading).Msg("move blocked")
		return
	}
	c.board.incrementCounter()
}

// MoveForward moves robot one space in the direction it faces
func (c *GameController) MoveForward(robot *Robot) {
	c.step(robot, robot.Heading())
}

// MoveBackward moves robot one space opposite to the direction it faces
func (c *GameController) MoveBackward(robot *Robot) {
	c.step(robot, robot.Heading().Opposite())
}

// FastForward moves robot forward twice. Each step is resolved on its own, so
// an obstacle after the first space stops only the second step.
func (c *GameController) FastForward(robot *Robot) {
	c.MoveForward(robot)
	c.MoveForward(robot)
}

// TurnRight rotates robot 90 degrees clockwise
func (c *GameController) TurnRight(robot *Robot) {
	robot.SetHeading(robot.Heading().Next())
	c.board.incrementCounter()
}

// TurnLeft rotates robot 90 degrees counter-clockwise
func (c *GameController) TurnLeft(robot *Robot) {
	robot.SetHeading(robot.Heading().Prev())
	c.board.incrementCounter()
}

// UTurn rotates robot 180 degrees
func (c *GameController) UTurn(robot *Robot) {
	robot.SetHeading(robot.Heading().Opposite())
	c.board.incrementCounter()
}

// MoveCurrentRobotToSpace is the free-play move: the current robot jumps to
// space if it is free, then the turn passes to the next robot
func (c *GameController) MoveCurrentRobotToSpace(space *Space) bool {
	current := c.board.CurrentRobot()
	if current == nil || space == nil || space.Robot() != nil {
		return false
	}
	if err := current.SetSpace(space); err != nil {
		return false
	}

	next := (c.board.RobotIndex(current) + 1) % c.board.RobotCount()
	c.board.SetCurrentRobot(c.board.Robot(next))
	c.board.incrementCounter()
	return true
}
