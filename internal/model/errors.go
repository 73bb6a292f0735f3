package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomExpired        = errors.New("room expired")
	ErrUnauthorized       = errors.New("requester is not the room owner")
	ErrAlreadyPlayed      = errors.New("player has already played in this room")
	ErrPasscodesExhausted = errors.New("no free room passcode available")

	// Validation errors
	ErrInvalidUsername = errors.New("username is required")
	ErrInvalidScore    = errors.New("score must be a non-negative integer")
	ErrInvalidCoins    = errors.New("coins must be a non-negative integer")

	// Profile errors
	ErrProfileNotFound         = errors.New("profile not found")
	ErrProfileExists           = errors.New("profile already exists")
	ErrAnonymousNamesExhausted = errors.New("no free anonymous name available")

	// Score errors
	ErrScoreNotFound = errors.New("score not found")

	// Storage errors
	ErrStoreUnavailable = errors.New("store unavailable")
)
