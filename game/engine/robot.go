package engine

import (
	"errors"
	"fmt"
)

var (
	ErrSpaceOccupied = errors.New("space is occupied")
	ErrForeignSpace  = errors.New("space belongs to another board")
)

// Robot is a player's piece on the board
type Robot struct {
	board *Board
	Name  string
	Color string

	space              *Space
	heading            Heading
	checkpointsReached int

	program [NoRegisters]*CardField
	hand    [NoCards]*CardField
}

// CardFieldKind tells program registers and hand slots apart
type CardFieldKind string

const (
	ProgramField CardFieldKind = "program"
	HandField    CardFieldKind = "hand"
)

// CardField is a slot holding at most one command card
type CardField struct {
	robot   *Robot
	Kind    CardFieldKind
	Index   int
	card    *CommandCard
	visible bool
}

// NewRobot creates a robot for board. The robot faces south and is not placed
// on any space until SetSpace is called; add it with Board.AddRobot.
func NewRobot(board *Board, color, name string) *Robot {
	r := &Robot{
		board:   board,
		Name:    name,
		Color:   color,
		heading: South,
	}
	for i := range r.program {
		r.program[i] = &CardField{robot: r, Kind: ProgramField, Index: i, visible: true}
	}
	for i := range r.hand {
		r.hand[i] = &CardField{robot: r, Kind: HandField, Index: i, visible: true}
	}
	return r
}

// Board returns the board the robot plays on
func (r *Robot) Board() *Board {
	return r.board
}

// Space returns the space the robot stands on, or nil before placement
func (r *Robot) Space() *Space {
	return r.space
}

// SetSpace moves the robot to space, keeping both back-references in sync.
// A nil space takes the robot off the board.
func (r *Robot) SetSpace(space *Space) error {
	if space == r.space {
		return nil
	}
	if space != nil {
		if space.board != r.board {
			return ErrForeignSpace
		}
		if space.robot != nil {
			return fmt.Errorf("%w: %s at %s", ErrSpaceOccupied, space.robot.Name, space)
		}
	}
	r.relocate(space)
	return nil
}

// relocate updates the robot and space references together; callers have
// already checked that the target is free
func (r *Robot) relocate(space *Space) {
	old := r.space
	r.space = space
	if old != nil {
		old.robot = nil
	}
	if space != nil {
		space.robot = r
	}
	r.board.notifyChange("robot", r)
}

// Heading returns the direction the robot faces
func (r *Robot) Heading() Heading {
	return r.heading
}

// SetHeading turns the robot to face heading
func (r *Robot) SetHeading(heading Heading) {
	if heading != r.heading {
		r.heading = heading
		r.board.notifyChange("robot", r)
	}
}

// CheckpointsReached returns the number of the last checkpoint claimed
func (r *Robot) CheckpointsReached() int {
	return r.checkpointsReached
}

// SetCheckpointsReached records checkpoint progress
func (r *Robot) SetCheckpointsReached(n int) {
	if n != r.checkpointsReached {
		r.checkpointsReached = n
		r.board.notifyChange("robot", r)
	}
}

// HasReachedCheckpoint reports whether checkpoint n or a later one has been claimed
func (r *Robot) HasReachedCheckpoint(n int) bool {
	return r.checkpointsReached >= n
}

// ProgramField returns register i
func (r *Robot) ProgramField(i int) *CardField {
	if i < 0 || i >= NoRegisters {
		return nil
	}
	return r.program[i]
}

// CardField returns hand slot i
func (r *Robot) CardField(i int) *CardField {
	if i < 0 || i >= NoCards {
		return nil
	}
	return r.hand[i]
}

// Robot returns the owner of the field
func (f *CardField) Robot() *Robot {
	return f.robot
}

// Card returns the card in the field, or nil if it is empty
func (f *CardField) Card() *CommandCard {
	return f.card
}

// SetCard puts card into the field; nil empties it
func (f *CardField) SetCard(card *CommandCard) {
	if card != f.card {
		f.card = card
		f.robot.board.notifyChange("field", f.robot)
	}
}

// Visible reports whether the field's card is shown
func (f *CardField) Visible() bool {
	return f.visible
}

// SetVisible shows or hides the field's card
func (f *CardField) SetVisible(visible bool) {
	if visible != f.visible {
		f.visible = visible
		f.robot.board.notifyChange("field", f.robot)
	}
}
