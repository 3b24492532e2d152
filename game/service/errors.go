package service

import "errors"

var (
	// ErrWrongPhase is returned when an operation is not allowed in the current phase
	ErrWrongPhase       = errors.New("operation not allowed in current phase")
	ErrInvalidCommand   = errors.New("invalid command")
	ErrInvalidRobot     = errors.New("invalid robot")
	ErrInvalidSlot      = errors.New("invalid card slot")
	ErrInvalidPosition  = errors.New("invalid position")
	ErrInvalidPlayers   = errors.New("invalid players")
	ErrCardMoveRejected = errors.New("card move rejected")
)
