package engine

// BoardState is a read-only snapshot of a board, shaped for JSON clients
type BoardState struct {
	Name         string       `json:"name"`
	Width        int          `json:"width"`
	Height       int          `json:"height"`
	Phase        Phase        `json:"phase"`
	Step         int          `json:"step"`
	StepMode     bool         `json:"step_mode"`
	MoveCounter  int          `json:"move_counter"`
	CurrentRobot int          `json:"current_robot"`
	Status       string       `json:"status"`
	Robots       []RobotState `json:"robots"`
	Spaces       []SpaceState `json:"spaces"`

	// Winner is the index of the winning robot once the game is finished
	Winner *int `json:"winner,omitempty"`

	// Options lists the choices of a pending interactive card
	Options []Command `json:"options,omitempty"`
}

// RobotState describes one robot
type RobotState struct {
	Index              int         `json:"index"`
	Name               string      `json:"name"`
	Color              string      `json:"color"`
	Placed             bool        `json:"placed"`
	X                  int         `json:"x"`
	Y                  int         `json:"y"`
	Heading            Heading     `json:"heading"`
	CheckpointsReached int         `json:"checkpoints_reached"`
	Program            []CardState `json:"program"`
	Hand               []CardState `json:"hand"`
}

// CardState describes one card field. Command is omitted for empty fields
// and for hidden ones.
type CardState struct {
	Command *Command `json:"command,omitempty"`
	Empty   bool     `json:"empty"`
	Visible bool     `json:"visible"`
}

// SpaceState describes a space with walls or field actions; plain spaces are
// left out of the snapshot
type SpaceState struct {
	X       int           `json:"x"`
	Y       int           `json:"y"`
	Walls   []Heading     `json:"walls,omitempty"`
	Actions []FieldAction `json:"actions,omitempty"`
}

// Snapshot captures the current state of the board
func (b *Board) Snapshot() *BoardState {
	state := &BoardState{
		Name:         b.Name,
		Width:        b.Width,
		Height:       b.Height,
		Phase:        b.phase,
		Step:         b.step,
		StepMode:     b.stepMode,
		MoveCounter:  b.counter,
		CurrentRobot: b.RobotIndex(b.current),
		Status:       b.StatusMessage(),
		Robots:       make([]RobotState, 0, len(b.robots)),
		Spaces:       []SpaceState{},
	}

	for i, robot := range b.robots {
		rs := RobotState{
			Index:              i,
			Name:               robot.Name,
			Color:              robot.Color,
			Heading:            robot.heading,
			CheckpointsReached: robot.checkpointsReached,
			Program:            make([]CardState, NoRegisters),
			Hand:               make([]CardState, NoCards),
		}
		if robot.space != nil {
			rs.Placed = true
			rs.X, rs.Y = robot.space.X, robot.space.Y
		}
		for j, field := range robot.program {
			rs.Program[j] = cardState(field)
		}
		for j, field := range robot.hand {
			rs.Hand[j] = cardState(field)
		}
		state.Robots = append(state.Robots, rs)
	}

	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			space := b.spaces[x][y]
			if len(space.actions) == 0 && len(space.Walls()) == 0 {
				continue
			}
			state.Spaces = append(state.Spaces, SpaceState{
				X:       x,
				Y:       y,
				Walls:   space.Walls(),
				Actions: space.Actions(),
			})
		}
	}

	if b.winner != nil {
		winner := b.RobotIndex(b.winner)
		state.Winner = &winner
	}

	if b.phase == PlayerInteraction && b.current != nil {
		if card := b.current.ProgramField(b.step).Card(); card != nil {
			state.Options = card.Command.Options()
		}
	}

	return state
}

func cardState(field *CardField) CardState {
	cs := CardState{Empty: field.card == nil, Visible: field.visible}
	if field.card != nil && field.visible {
		command := field.card.Command
		cs.Command = &command
	}
	return cs
}
