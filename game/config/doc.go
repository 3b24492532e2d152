// Package config manages the board layouts games are played on.
//
// The config package handles:
//   - Loading layouts from JSON and YAML files
//   - Layout validation before anything is cached or saved
//   - The built-in layouts and the default layout
//   - Layout discovery and listing
//
// Layout Format:
//
// A layout names the board size and lists its walls, conveyor belts,
// numbered checkpoints and optional robot start positions:
//
//	name: tiny
//	width: 4
//	height: 4
//	walls:
//	  - {x: 1, y: 1, headings: [north, east]}
//	conveyors:
//	  - {x: 0, y: 2, heading: south}
//	checkpoints:
//	  - {x: 3, y: 3, number: 1, final: true}
//
// Available Layouts:
//
// Three layouts are built in and are served even without a layout directory:
//   - default: empty 8x8 board
//   - simple: 8x8 board with a conveyor ring and three checkpoints
//   - advanced: 15x8 board with checkpoints along the top edge
//
// A file in the layout directory with the same name replaces the built-in one.
//
// Usage:
//
//	manager, err := config.NewManager("boards")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	layout, err := manager.LoadConfig("advanced")
//	boards, err := manager.ListConfigs()
package config
