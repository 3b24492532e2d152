package main

import (
	"fmt"

	"github.com/wricardo/mcp-training/roborally/game/engine"
)

// unreachable scores a checkpoint that no route reaches
const unreachable = 1 << 20

// Strategy picks programs by trying every ordered selection of hand cards
// on a simulated copy of the board. Other robots are ignored.
type Strategy struct {
	board    *engine.Board
	targets  map[int]*engine.Space
	final    int
	distance map[*engine.Space]map[*engine.Space]int
}

// Plan is the program chosen for one robot
type Plan struct {
	HandSlots []int
	Choices   []engine.Command // answer for each interactive card, in order
	Score     int
}

// robotPosition is the simulated state of a robot
type robotPosition struct {
	space   *engine.Space
	heading engine.Heading
	reached int
}

// NewStrategy prepares the search for the given layout
func NewStrategy(layout *engine.BoardConfig) (*Strategy, error) {
	board, err := engine.BuildBoard(layout)
	if err != nil {
		return nil, fmt.Errorf("build board: %w", err)
	}

	s := &Strategy{
		board:    board,
		targets:  make(map[int]*engine.Space),
		distance: make(map[*engine.Space]map[*engine.Space]int),
	}
	for _, cp := range layout.Checkpoints {
		s.targets[cp.Number] = board.SpaceAt(cp.X, cp.Y)
		if cp.Number > s.final {
			s.final = cp.Number
		}
	}
	return s, nil
}

// BestProgram returns the hand slots, in register order, that bring the robot
// closest to its next checkpoint
func (s *Strategy) BestProgram(robot engine.RobotState) Plan {
	type handCard struct {
		slot    int
		command engine.Command
	}
	var hand []handCard
	for i, card := range robot.Hand {
		if card.Command != nil {
			hand = append(hand, handCard{slot: i, command: *card.Command})
		}
	}

	start := robotPosition{
		space:   s.board.SpaceAt(robot.X, robot.Y),
		heading: robot.Heading,
		reached: robot.CheckpointsReached,
	}
	if !robot.Placed || start.space == nil || len(hand) == 0 {
		return Plan{Score: unreachable}
	}

	length := min(engine.NoRegisters, len(hand))
	best := Plan{Score: s.score(start) + 1}
	used := make([]bool, len(hand))
	slots := make([]int, 0, length)
	choices := make([]engine.Command, 0, length)

	var search func(pos robotPosition)
	search = func(pos robotPosition) {
		if score := s.score(pos); score < best.Score || (score == best.Score && len(slots) < len(best.HandSlots)) {
			best = Plan{
				HandSlots: append([]int(nil), slots...),
				Choices:   append([]engine.Command(nil), choices...),
				Score:     score,
			}
		}
		if len(slots) == length || pos.reached >= s.final && s.final > 0 {
			return
		}

		for i, card := range hand {
			if used[i] {
				continue
			}
			used[i] = true
			slots = append(slots, card.slot)

			options := []engine.Command{card.command}
			if card.command.IsInteractive() {
				options = card.command.Options()
			}
			for _, command := range options {
				if card.command.IsInteractive() {
					choices = append(choices, command)
				}
				search(s.register(pos, command))
				if card.command.IsInteractive() {
					choices = choices[:len(choices)-1]
				}
			}

			slots = slots[:len(slots)-1]
			used[i] = false
		}
	}
	search(start)

	return best
}

// register simulates one card followed by the field effects of the space the
// robot ends on
func (s *Strategy) register(pos robotPosition, command engine.Command) robotPosition {
	switch command {
	case engine.Forward:
		pos.space = s.board.Neighbour(pos.space, pos.heading)
	case engine.FastForward:
		pos.space = s.board.Neighbour(s.board.Neighbour(pos.space, pos.heading), pos.heading)
	case engine.Backwards:
		pos.space = s.board.Neighbour(pos.space, pos.heading.Opposite())
	case engine.Right:
		pos.heading = pos.heading.Next()
	case engine.Left:
		pos.heading = pos.heading.Prev()
	case engine.UTurn:
		pos.heading = pos.heading.Opposite()
	}

	for _, action := range pos.space.Actions() {
		switch action.Kind {
		case engine.ConveyorAction:
			pos.space = s.board.Neighbour(pos.space, action.Heading)
			return pos
		case engine.CheckpointAction:
			if action.Number == pos.reached+1 {
				pos.reached = action.Number
			}
		}
	}
	return pos
}

// score is lower for better positions: every claimed checkpoint outweighs
// any distance, then the path length to the next checkpoint counts
func (s *Strategy) score(pos robotPosition) int {
	if s.final == 0 {
		return 0
	}
	remaining := (s.final - pos.reached) * unreachable
	target, ok := s.targets[pos.reached+1]
	if !ok {
		return remaining
	}
	d, ok := s.distancesTo(target)[pos.space]
	if !ok {
		d = unreachable - 1
	}
	return remaining - unreachable + d
}

// distancesTo returns the path length from every space to target, walking
// around walls. Results are cached per target.
func (s *Strategy) distancesTo(target *engine.Space) map[*engine.Space]int {
	if dist, ok := s.distance[target]; ok {
		return dist
	}

	// Walls block both directions, so searching outwards from the target
	// gives the distance towards it
	dist := map[*engine.Space]int{target: 0}
	queue := []*engine.Space{target}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, heading := range engine.Headings {
			next := s.board.Neighbour(current, heading)
			if _, seen := dist[next]; seen {
				continue
			}
			dist[next] = dist[current] + 1
			queue = append(queue, next)
		}
	}

	s.distance[target] = dist
	return dist
}
