// Package api provides the HTTP REST API for the robot game server.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions                 create a game ({"board_id", "players", "player_count", "seed"})
//   - GET    /api/sessions                 list games (?sort=created|accessed&order=asc|desc&limit=n&board=id)
//   - GET    /api/sessions/{id}            session info with state and layout
//   - DELETE /api/sessions/{id}            end a game
//   - GET    /api/sessions/{id}/state      board snapshot
//
// Rounds:
//   - POST /api/sessions/{id}/programming/start   deal new hands
//   - POST /api/sessions/{id}/program             {"robot": 0, "hand_slots": [3, 0, 5]}
//   - POST /api/sessions/{id}/cards/move          {"robot": 0, "from": {"kind": "hand", "index": 3}, "to": {"kind": "program", "index": 0}}
//   - POST /api/sessions/{id}/programming/finish  lock programs, start activation
//   - POST /api/sessions/{id}/step                run one card
//   - POST /api/sessions/{id}/run                 run until the round ends or a choice is pending
//   - POST /api/sessions/{id}/interactive         {"command": "LEFT", "resume": true}
//   - POST /api/sessions/{id}/robots/{robot}/actions  {"action": "forward"} or {"action": "place", "x": 3, "y": 4}
//
// Boards:
//   - GET  /api/boards          list layouts
//   - GET  /api/boards/{name}   one layout
//   - POST /api/boards          save a layout (BoardConfig plus optional "board_id")
//
// Other:
//   - GET /api/health
//   - GET /ws?session={id}      WebSocket state updates
//
// Every round command returns a service.CommandResult and pushes the new
// state to WebSocket clients of the session.
//
// Errors are returned as {"error": "message"}. Unknown sessions and boards
// map to 404, commands in the wrong phase to 409 and invalid input to 400.
package api
