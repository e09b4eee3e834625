package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a player has no running game.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrCatalogNotFound indicates the country catalog could not be loaded.
	ErrCatalogNotFound = errors.New("country catalog not found")
	// ErrCatalogTooSmall is returned when fewer countries than flags per round are available.
	ErrCatalogTooSmall = errors.New("country catalog needs at least three countries")
	// ErrInvalidAnswerIndex indicates a tapped index outside the current round.
	ErrInvalidAnswerIndex = errors.New("answer index out of range")
	// ErrUnexpectedPhase is returned when an action does not fit the game's current phase.
	ErrUnexpectedPhase = errors.New("action not allowed in current game phase")
)
