package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomEmpty          = errors.New("no visitors registered in room")
	ErrGameNotActive      = errors.New("game is not active")
	ErrGameAlreadyStarted = errors.New("game has already started")

	// Visitor/player errors
	ErrVisitorNotFound = errors.New("visitor not found")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrMachineMissing  = errors.New("player has no current machine")

	// Guess errors
	ErrInvalidGuess      = errors.New("guess must be a positive integer")
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 1")

	// Storage errors
	ErrStoreUnavailable = errors.New("store unavailable")
)
