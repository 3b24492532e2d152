package engine

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// CountActions counts the field actions of the given kind on the board
func CountActions(board *Board, kind FieldActionKind) int {
	count := 0
	for x := 0; x < board.Width; x++ {
		for y := 0; y < board.Height; y++ {
			for _, action := range board.spaces[x][y].actions {
				if action.Kind == kind {
					count++
				}
			}
		}
	}
	return count
}

// CountWalls counts wall sides on the board. A wall set on both adjacent
// spaces counts twice.
func CountWalls(board *Board) int {
	count := 0
	for x := 0; x < board.Width; x++ {
		for y := 0; y < board.Height; y++ {
			count += len(board.spaces[x][y].Walls())
		}
	}
	return count
}

// FindCheckpoint returns the space holding checkpoint n
func FindCheckpoint(board *Board, n int) (*Space, bool) {
	for x := 0; x < board.Width; x++ {
		for y := 0; y < board.Height; y++ {
			for _, action := range board.spaces[x][y].actions {
				if action.Kind == CheckpointAction && action.Number == n {
					return board.spaces[x][y], true
				}
			}
		}
	}
	return nil, false
}

// NextCheckpoint returns the space of the checkpoint robot has to claim next
// and its Manhattan distance from the robot
func NextCheckpoint(robot *Robot) (*Space, int, bool) {
	if robot == nil || robot.Space() == nil {
		return nil, -1, false
	}
	space, ok := FindCheckpoint(robot.Board(), robot.CheckpointsReached()+1)
	if !ok {
		return nil, -1, false
	}
	from := Position{X: robot.Space().X, Y: robot.Space().Y}
	return space, ManhattanDistance(from, Position{X: space.X, Y: space.Y}), true
}
