// Package narrative produces story turns for an adventure.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/domain/character"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/domain/history"
)

// MaxChoices is the most choices a turn displays.
const MaxChoices = 5

// FallbackCost is charged for the apology turn served when generation fails.
const FallbackCost = 0.001

// Turn is one generated story segment.
type Turn struct {
	Text    string
	Choices []string
	Cost    float64
	// Fallback marks the apology turn substituted for a failed generation.
	Fallback bool
}

// Generator produces the next turn for a character and transcript.
type Generator interface {
	Generate(ctx context.Context, c character.Character, h history.History) (Turn, error)
	// ProbeCost is the minimum balance required before a turn is attempted.
	ProbeCost() float64
}

// ErrInvalidTurn reports a turn that breaks the generator contract.
var ErrInvalidTurn = errors.New("invalid turn")

// Validate checks that t offers at least one choice and has a finite
// non-negative cost. Choices beyond MaxChoices are dropped when displayed.
func Validate(t Turn) error {
	switch {
	case len(t.Choices) == 0:
		return fmt.Errorf("%w: no choices", ErrInvalidTurn)
	case math.IsNaN(t.Cost) || math.IsInf(t.Cost, 0) || t.Cost < 0:
		return fmt.Errorf("%w: cost %v", ErrInvalidTurn, t.Cost)
	}
	return nil
}

// Fallback returns the apology turn used when generation fails.
func Fallback() Turn {
	return Turn{
		Text: "An unexpected silence falls. It seems the threads of fate are tangled.",
		Choices: []string{
			"Wait a moment and see if anything changes.",
			"Take a deep breath and try again.",
		},
		Cost:     FallbackCost,
		Fallback: true,
	}
}
