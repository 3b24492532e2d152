package engine

import (
	"fmt"
	"strings"
)

const (
	// NoRegisters is the number of program registers per robot
	NoRegisters = 5
	// NoCards is the number of hand slots per robot
	NoCards = 8

	// Validation constants
	MinBoardSize = 1
	MaxBoardSize = 50
	MinRobots    = 2
	MaxRobots    = 6
)

// Phase represents the stage of the current round
type Phase int

const (
	Initialisation Phase = iota
	Programming
	Activation
	PlayerInteraction
	Finished
)

var phaseNames = [...]string{"INITIALISATION", "PROGRAMMING", "ACTIVATION", "PLAYER_INTERACTION", "FINISHED"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// MarshalText implements encoding.TextMarshaler
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if strings.EqualFold(name, string(text)) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", string(text))
}

// Heading is one of the four cardinal directions. The order is clockwise,
// so Next is a right turn and Prev is a left turn.
type Heading int

const (
	North Heading = iota
	East
	South
	West
)

// Headings lists all headings in clockwise order starting at North
var Headings = [...]Heading{North, East, South, West}

var headingNames = [...]string{"NORTH", "EAST", "SOUTH", "WEST"}

// Next returns the heading 90 degrees clockwise
func (h Heading) Next() Heading {
	return (h + 1) % 4
}

// Prev returns the heading 90 degrees counter-clockwise
func (h Heading) Prev() Heading {
	return (h + 3) % 4
}

// Opposite returns the heading 180 degrees away
func (h Heading) Opposite() Heading {
	return (h + 2) % 4
}

// delta returns the grid offset of one step in this heading; y grows southwards
func (h Heading) delta() (dx, dy int) {
	switch h {
	case North:
		return 0, -1
	case East:
		return 1, 0
	case South:
		return 0, 1
	case West:
		return -1, 0
	}
	return 0, 0
}

func (h Heading) String() string {
	if h < 0 || int(h) >= len(headingNames) {
		return fmt.Sprintf("Heading(%d)", int(h))
	}
	return headingNames[h]
}

// MarshalText implements encoding.TextMarshaler
func (h Heading) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (h *Heading) UnmarshalText(text []byte) error {
	parsed, err := ParseHeading(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHeading parses a heading name. Full names ("north"), initials ("N")
// and the screen directions used by the REST API ("up") are accepted.
func ParseHeading(s string) (Heading, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NORTH", "N", "UP":
		return North, nil
	case "EAST", "E", "RIGHT":
		return East, nil
	case "SOUTH", "S", "DOWN":
		return South, nil
	case "WEST", "W", "LEFT":
		return West, nil
	}
	return North, fmt.Errorf("unknown heading %q", s)
}

// Command is the instruction printed on a command card
type Command int

const (
	Forward Command = iota
	Right
	Left
	FastForward
	UTurn
	Backwards
	LeftOrRight
)

// Commands lists the complete command set, in the order cards are drawn from
var Commands = [...]Command{Forward, Right, Left, FastForward, UTurn, Backwards, LeftOrRight}

var commandNames = [...]string{"FORWARD", "RIGHT", "LEFT", "FAST_FORWARD", "U_TURN", "BACKWARDS", "LEFT_OR_RIGHT"}

var commandDisplayNames = [...]string{"Fwd", "Turn Right", "Turn Left", "Fast Fwd", "U-Turn", "Back", "Left OR Right"}

func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return fmt.Sprintf("Command(%d)", int(c))
	}
	return commandNames[c]
}

// DisplayName returns the label printed on the card
func (c Command) DisplayName() string {
	if c < 0 || int(c) >= len(commandDisplayNames) {
		return c.String()
	}
	return commandDisplayNames[c]
}

// IsInteractive reports whether the command needs the player to pick an option
func (c Command) IsInteractive() bool {
	return len(c.Options()) > 0
}

// Options returns the commands a player may choose from for an interactive command
func (c Command) Options() []Command {
	if c == LeftOrRight {
		return []Command{Left, Right}
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (c Command) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Command) UnmarshalText(text []byte) error {
	parsed, err := ParseCommand(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCommand parses a command name such as "FAST_FORWARD" or "fast-forward"
func ParseCommand(s string) (Command, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	switch normalized {
	case "BACKWARD", "BACK":
		return Backwards, nil
	case "UTURN":
		return UTurn, nil
	case "FASTFORWARD":
		return FastForward, nil
	}
	for i, name := range commandNames {
		if name == normalized {
			return Command(i), nil
		}
	}
	return Forward, fmt.Errorf("unknown command %q", s)
}

// CommandCard is an immutable card carrying one command
type CommandCard struct {
	Command Command `json:"command"`
}

// NewCommandCard creates a card for the given command
func NewCommandCard(command Command) *CommandCard {
	return &CommandCard{Command: command}
}

// Name returns the display name of the card's command
func (c *CommandCard) Name() string {
	return c.Command.DisplayName()
}
