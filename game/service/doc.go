// Package service provides the business logic layer of the game server.
//
// The service package implements:
//   - Multi-session game management
//   - Phase checks in front of every engine operation
//   - Card programming helpers
//   - Change events derived from board snapshots
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager loads board layouts.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and
// the engine. The engine treats an operation in the wrong phase as a
// programming error, so the service rejects such requests with ErrWrongPhase
// before they reach it. All game mutations are serialised by one lock.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("boards")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, service.CreateSessionRequest{BoardID: "simple"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameService.Program(ctx, info.ID, service.ProgramRequest{Robot: 0, HandSlots: []int{0, 1, 2, 3, 4}})
//	gameService.FinishProgramming(ctx, info.ID)
//	result, err := gameService.ExecutePrograms(ctx, info.ID)
package service
