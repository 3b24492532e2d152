// Package engine provides the core rules of the robot racing game.
//
// The engine package implements the game mechanics including:
//   - A rectangular grid of spaces with walls and field actions
//   - Robot movement with recursive pushing of other robots
//   - Conveyor belts and ordered checkpoints
//   - The round state machine: programming, activation and player interaction
//   - Board layout loading and validation
//
// Core Types:
//
// A Board holds the spaces and robots and the state of the current round.
// GameController implements the Engine interface and is the only code that
// changes a board while a game is running. BoardConfig is the declarative
// layout a board is built from, loaded from JSON or YAML.
//
// Usage:
//
//	config, err := engine.LoadBoardConfig("boards/gauntlet.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	game, err := engine.NewGame(config, engine.DefaultPlayers(2))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Program the robots, then run the registers
//	robot := game.Board().Robot(0)
//	game.MoveCards(robot.CardField(0), robot.ProgramField(0))
//	game.FinishProgrammingPhase()
//	game.ExecutePrograms()
//
// Game Rules:
//
// Every round each robot is dealt eight command cards and fills its five
// program registers. The registers are then executed one at a time, each
// robot in board order; after every register the field actions fire. A
// robot moving onto an occupied space pushes the occupant along, and the
// whole chain moves or nothing does. The first robot to claim every
// checkpoint in order wins and the game is finished.
package engine
