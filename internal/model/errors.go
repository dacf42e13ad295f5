package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Session errors
	ErrNoActiveSession  = errors.New("no active session")
	ErrAlreadyInSession = errors.New("player already has an active session")
	ErrGameNotFound     = errors.New("game not found")
	ErrGameFinalized    = errors.New("game is already finalized")

	// Guess errors
	ErrInvalidLevel = errors.New("invalid difficulty level")
	ErrOutOfRange   = errors.New("guess is outside the allowed range")

	// Room errors
	ErrRoomNotFound     = errors.New("room not found or already started")
	ErrAlreadyInRoom    = errors.New("player is already in the room")
	ErrNotHost          = errors.New("player is not the room host")
	ErrInvalidRoomState = errors.New("room is not in the required state")
	ErrRoomFinished     = errors.New("room is already finished")
)
