package session

import "errors"

var (
	// ErrSlotTaken rejects a join for a side that is already occupied.
	ErrSlotTaken = errors.New("slot_taken")
	// ErrUninitialized guards operations against a session whose record
	// could not be loaded.
	ErrUninitialized = errors.New("session_uninitialized")
	// ErrUnknownPlayer rejects actions from a player occupying no slot.
	ErrUnknownPlayer = errors.New("unknown_player")
	// ErrCompleted rejects state-affecting actions on a finished match.
	ErrCompleted = errors.New("session_completed")
	// ErrNotActive rejects game actions before both slots are filled.
	ErrNotActive = errors.New("session_not_active")
	// ErrClosed is returned when the actor has shut down after cleanup.
	ErrClosed = errors.New("session_closed")
)
