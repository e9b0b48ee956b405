// Package storage defines persistence contracts for characters and balances.
package storage

import (
	"context"
	"errors"

	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/domain/character"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// CharacterStore persists one character per user.
type CharacterStore interface {
	SaveCharacter(ctx context.Context, c character.Character) error
	GetCharacter(ctx context.Context, userID string) (character.Character, error)
	// DeleteCharacter reports whether a character was removed.
	DeleteCharacter(ctx context.Context, userID string) (bool, error)
}

// Ledger tracks a signed credit balance per user. Absent users read as zero
// and no floor is enforced.
type Ledger interface {
	// OpenAccount creates the user's balance row holding initial and reports
	// whether it was created by this call.
	OpenAccount(ctx context.Context, userID string, initial float64) (bool, error)
	Balance(ctx context.Context, userID string) (float64, error)
	// Credit and Debit adjust the balance atomically and return the new value.
	Credit(ctx context.Context, userID string, amount float64) (float64, error)
	Debit(ctx context.Context, userID string, amount float64) (float64, error)
}
