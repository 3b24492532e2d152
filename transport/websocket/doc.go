// Package websocket pushes board updates to browsers watching a game.
//
// A central Hub owns the set of connected clients, grouped by session ID.
// Registration, removal and broadcasts all pass through the hub's Run loop,
// so no lock guards the client map. Each connection gets a read pump, which
// only keeps the connection alive, and a write pump, which drains the
// client's send buffer and pings the peer.
//
// Clients connect to /ws?session=<id>. The first message is the current
// board state; after that the REST layer calls BroadcastToSession after every
// mutating request and BroadcastEvent with EventGameFinished when a robot
// reaches the final checkpoint:
//
//	{"session_id": "a1b2c3d4", "event": "state_update", "state": {...}}
//	{"session_id": "a1b2c3d4", "event": "game_finished", "data": {"winner": 0, "moves": 17}}
//
// A client whose send buffer is full is dropped rather than slowing the hub.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	hub.BroadcastToSession(sessionID, game.Board().Snapshot())
package websocket
