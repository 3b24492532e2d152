package engine

import "fmt"

// Board is the game board: a fixed grid of spaces plus the robots playing on
// it and the round state. A Board is not safe for concurrent use.
type Board struct {
	Name   string
	Width  int
	Height int

	spaces [][]*Space // indexed [x][y]
	robots []*Robot

	current  *Robot
	phase    Phase
	step     int
	stepMode bool
	counter  int
	winner   *Robot

	listeners      []listenerEntry
	nextListenerID int
}

// Space is a single grid cell
type Space struct {
	board *Board
	X     int
	Y     int

	walls   [4]bool
	actions []FieldAction
	robot   *Robot
}

// NewBoard creates an empty board of the given dimensions
func NewBoard(width, height int, name string) *Board {
	b := &Board{
		Name:   name,
		Width:  width,
		Height: height,
		phase:  Initialisation,
	}

	b.spaces = make([][]*Space, width)
	for x := 0; x < width; x++ {
		b.spaces[x] = make([]*Space, height)
		for y := 0; y < height; y++ {
			b.spaces[x][y] = &Space{board: b, X: x, Y: y}
		}
	}

	return b
}

// SpaceAt returns the space at (x, y), or nil if the coordinates are off the board
func (b *Board) SpaceAt(x, y int) *Space {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return nil
	}
	return b.spaces[x][y]
}

// Neighbour returns the space next to space in the given heading. If the step
// would leave the board, or a wall on either side blocks it, space itself is
// returned, so callers detect "no movement" by comparing with the origin.
func (b *Board) Neighbour(space *Space, heading Heading) *Space {
	dx, dy := heading.delta()
	x, y := space.X+dx, space.Y+dy

	// No wrap-around: the board edge behaves like a wall
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return space
	}

	neighbour := b.spaces[x][y]
	if space.HasWall(heading) || neighbour.HasWall(heading.Opposite()) {
		return space
	}
	return neighbour
}

// AddRobot appends a robot created for this board to the robot order
func (b *Board) AddRobot(robot *Robot) error {
	if robot.board != b {
		return fmt.Errorf("robot %s belongs to another board", robot.Name)
	}
	for _, r := range b.robots {
		if r == robot {
			return nil
		}
	}
	b.robots = append(b.robots, robot)
	b.notifyChange("board", robot)
	return nil
}

// RobotCount returns the number of robots on the board
func (b *Board) RobotCount() int {
	return len(b.robots)
}

// Robot returns the robot at index i in board order, or nil
func (b *Board) Robot(i int) *Robot {
	if i < 0 || i >= len(b.robots) {
		return nil
	}
	return b.robots[i]
}

// Robots returns the robots in board order
func (b *Board) Robots() []*Robot {
	result := make([]*Robot, len(b.robots))
	copy(result, b.robots)
	return result
}

// RobotIndex returns the index of robot in board order, or -1
func (b *Board) RobotIndex(robot *Robot) int {
	if robot == nil || robot.board != b {
		return -1
	}
	for i, r := range b.robots {
		if r == robot {
			return i
		}
	}
	return -1
}

// CurrentRobot returns the robot whose turn it is
func (b *Board) CurrentRobot() *Robot {
	return b.current
}

// SetCurrentRobot makes robot current if it is on this board
func (b *Board) SetCurrentRobot(robot *Robot) {
	if robot != b.current && b.RobotIndex(robot) >= 0 {
		b.current = robot
		b.notifyChange("board", robot)
	}
}

// Phase returns the current phase
func (b *Board) Phase() Phase {
	return b.phase
}

// SetPhase changes the phase
func (b *Board) SetPhase(phase Phase) {
	if phase != b.phase {
		b.phase = phase
		b.notifyChange("board", nil)
	}
}

// Step returns the register currently being executed
func (b *Board) Step() int {
	return b.step
}

// SetStep changes the register being executed
func (b *Board) SetStep(step int) {
	if step != b.step {
		b.step = step
		b.notifyChange("board", nil)
	}
}

// StepMode reports whether programs run one card at a time
func (b *Board) StepMode() bool {
	return b.stepMode
}

// SetStepMode toggles single-step execution
func (b *Board) SetStepMode(stepMode bool) {
	if stepMode != b.stepMode {
		b.stepMode = stepMode
		b.notifyChange("board", nil)
	}
}

// MoveCounter returns the number of moves made in the game so far
func (b *Board) MoveCounter() int {
	return b.counter
}

// SetMoveCounter sets the move counter
func (b *Board) SetMoveCounter(counter int) {
	if counter != b.counter {
		b.counter = counter
		b.notifyChange("board", nil)
	}
}

func (b *Board) incrementCounter() {
	b.SetMoveCounter(b.counter + 1)
}

// Winner returns the robot that claimed the final checkpoint, or nil
func (b *Board) Winner() *Robot {
	return b.winner
}

// StatusMessage returns the one-line status shown under the board
func (b *Board) StatusMessage() string {
	name := "-"
	checkpoints := 0
	if b.current != nil {
		name = b.current.Name
		checkpoints = b.current.CheckpointsReached()
	}
	return fmt.Sprintf("Phase = %s, Player = %s, Moves = %d, Register = %d Checkpoints = %d",
		b.phase, name, b.counter, b.step, checkpoints)
}

// Board returns the board the space belongs to
func (s *Space) Board() *Board {
	return s.board
}

// Robot returns the robot occupying the space, or nil
func (s *Space) Robot() *Robot {
	return s.robot
}

// HasWall reports whether the space has a wall on the given side
func (s *Space) HasWall(heading Heading) bool {
	return s.walls[heading]
}

// Walls returns the headings of the space's walls in clockwise order
func (s *Space) Walls() []Heading {
	var walls []Heading
	for _, h := range Headings {
		if s.walls[h] {
			walls = append(walls, h)
		}
	}
	return walls
}

// AddWall puts a wall on the given side of the space
func (s *Space) AddWall(heading Heading) {
	if !s.walls[heading] {
		s.walls[heading] = true
		s.board.notifyChange("space", nil)
	}
}

// Actions returns the field actions of the space in execution order
func (s *Space) Actions() []FieldAction {
	result := make([]FieldAction, len(s.actions))
	copy(result, s.actions)
	return result
}

// AddAction appends a field action to the space
func (s *Space) AddAction(action FieldAction) {
	s.actions = append(s.actions, action)
	s.board.notifyChange("space", nil)
}

func (s *Space) String() string {
	return fmt.Sprintf("(%d,%d)", s.X, s.Y)
}
