package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientInventory means more prizes were requested than remain.
	// Nothing is mutated; the caller must lower the count and must not retry on its own.
	ErrInsufficientInventory = errors.New("insufficient inventory")

	// ErrPersistenceWrite means saving the inventory after a draw failed.
	// The draw result stands.
	ErrPersistenceWrite = errors.New("persistence write failed")

	// ErrUnknownRank means a drawn rank is missing from the prize list
	ErrUnknownRank = errors.New("unknown rank")

	// ErrInvalidDrawCount means the engine was asked for zero or fewer prizes
	ErrInvalidDrawCount = errors.New("draw count must be positive")

	// ErrNotAuthorized means the actor is not on the admin allow-list
	ErrNotAuthorized = errors.New("not authorized to draw")

	// ErrDrawClosed means the draw is switched off, sold out or shutting down
	ErrDrawClosed = errors.New("lucky draw is closed")

	// ErrRevealIndex means a reveal tap named an item outside the batch
	ErrRevealIndex = errors.New("reveal index out of range")

	// ErrInvalidTransition means the reveal step is not allowed in the current phase
	ErrInvalidTransition = errors.New("invalid reveal transition")
)

// InsufficientInventoryError carries the requested and available counts
type InsufficientInventoryError struct {
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory: requested %d, %d remaining", e.Requested, e.Available)
}

func (e *InsufficientInventoryError) Is(target error) bool {
	return target == ErrInsufficientInventory
}
