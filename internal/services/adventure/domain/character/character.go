// Package character defines player characters and their creation rules.
package character

import (
	"strconv"
	"strings"
	"unicode/utf8"

	apperrors "github.com/Womp-Womp/AdventureBot/internal/platform/errors"
)

// Field limits applied to character creation input.
const (
	MaxNameLength      = 100
	MaxBackstoryLength = 1000
	MaxTraitsLength    = 200
)

// Character is a player's persona. It is owned by one user and never edited;
// a reset deletes it.
type Character struct {
	UserID     string
	Name       string
	Backstory  string
	Abilities  []string
	Desires    []string
	Weaknesses []string
}

// Draft is raw creation input. Trait fields are comma-separated lists.
type Draft struct {
	Name       string `json:"name"`
	Backstory  string `json:"backstory"`
	Abilities  string `json:"abilities"`
	Desires    string `json:"desires"`
	Weaknesses string `json:"weaknesses"`
}

// IsZero reports whether no field of the draft was filled in.
func (d Draft) IsZero() bool {
	return strings.TrimSpace(d.Name) == "" &&
		strings.TrimSpace(d.Backstory) == "" &&
		strings.TrimSpace(d.Abilities) == "" &&
		strings.TrimSpace(d.Desires) == "" &&
		strings.TrimSpace(d.Weaknesses) == ""
}

// Build validates the draft and returns the character it describes.
func (d Draft) Build(userID string) (Character, error) {
	name := strings.TrimSpace(d.Name)
	backstory := strings.TrimSpace(d.Backstory)

	if name == "" {
		return Character{}, apperrors.New(apperrors.CodeCharacterNameEmpty, "character name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return Character{}, tooLong(apperrors.CodeCharacterNameTooLong, "name", MaxNameLength)
	}
	if backstory == "" {
		return Character{}, apperrors.New(apperrors.CodeCharacterBackstoryEmpty, "character backstory is required")
	}
	if utf8.RuneCountInString(backstory) > MaxBackstoryLength {
		return Character{}, tooLong(apperrors.CodeCharacterBackstoryTooLong, "backstory", MaxBackstoryLength)
	}
	for _, field := range []struct {
		name string
		raw  string
	}{
		{"abilities", d.Abilities},
		{"desires", d.Desires},
		{"weaknesses", d.Weaknesses},
	} {
		if utf8.RuneCountInString(field.raw) > MaxTraitsLength {
			return Character{}, tooLong(apperrors.CodeCharacterTraitsTooLong, field.name, MaxTraitsLength)
		}
	}

	return Character{
		UserID:     userID,
		Name:       name,
		Backstory:  backstory,
		Abilities:  ParseTraitList(d.Abilities),
		Desires:    ParseTraitList(d.Desires),
		Weaknesses: ParseTraitList(d.Weaknesses),
	}, nil
}

// ParseTraitList splits a comma-separated list, trimming items and dropping
// empty ones. It never returns nil.
func ParseTraitList(raw string) []string {
	items := []string{}
	for _, part := range strings.Split(raw, ",") {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func tooLong(code apperrors.Code, field string, limit int) error {
	return apperrors.WithMetadata(code, field+" is too long", map[string]string{
		"Field": field,
		"Max":   strconv.Itoa(limit),
	})
}

