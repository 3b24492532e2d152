// Package session provides in-memory session management for the game server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session expiration after inactivity
//
// Core Types:
//
// Manager stores service.Session values, each owning its own game
// controller and board, together with creation and last access times.
//
// Session Identifiers:
//
// Generated IDs are the first eight characters of a random UUID. Lookups
// are case-insensitive. Callers may also pick their own ID.
//
// Concurrency:
//
// The manager is safe for concurrent use. It only guards the session map;
// the games themselves are serialised by the service layer.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", "simple", config, engine.DefaultPlayers(2))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Drop games nobody touched for a day
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
package session
