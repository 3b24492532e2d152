// Package mcp exposes the robot game to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call is translated into a request
// against the REST API (see package api) and the JSON answer is rendered as
// text with an ASCII board, so an agent sees the same game as any other
// client.
//
// Tools:
//   - create_session, list_sessions, get_session, list_boards
//   - board_state: board map, robots, programs and hands
//   - start_programming, program_robot, move_cards, finish_programming
//   - execute_step, execute_programs, choose_command
//   - robot_action: direct moves while programming
//   - game_instructions: the complete rules
//
// Transports:
//
//	// Stdio, for local MCP clients
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP, one JSON-RPC message per POST
//	router.Handle("/mcp", client)
package mcp
