package narrative

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/domain/character"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/domain/history"
)

// StubCost is the flat price of a stub turn.
const StubCost = 0.01

// Stub is a deterministic Generator: a fixed opening scene for an empty
// transcript, otherwise a scene echoing the player's last choice. It answers
// in the same list-formatted text a model would and parses it back.
type Stub struct {
	// Debug logs every prompt built for a turn.
	Debug bool
}

var _ Generator = Stub{}

// ProbeCost implements Generator.
func (Stub) ProbeCost() float64 {
	return ProbeCost()
}

// Generate implements Generator.
func (s Stub) Generate(ctx context.Context, c character.Character, h history.History) (Turn, error) {
	if err := ctx.Err(); err != nil {
		return Turn{}, err
	}
	prompt := BuildPrompt(c, h)
	response := stubResponse(c, h)
	if s.Debug {
		log.Printf("narrative: prompt user=%q history=%d estimated_cost=%.4f\n%s",
			c.UserID, len(h), CalculateCost(prompt, response), prompt)
	}
	return Turn{
		Text:    Narration(response),
		Choices: ParseChoices(response),
		Cost:    StubCost,
	}, nil
}

func stubResponse(c character.Character, h history.History) string {
	var text string
	var choices []string
	if choice, ok := h.LastPlayerChoice(); ok {
		text = "Following your decision to '" + choice + "', you find yourself facing a new scenario. " +
			"The air is thick with anticipation. What will " + c.Name + " do next?"
		choices = []string{
			"Press on cautiously after deciding '" + choice + "'.",
			"Examine the strange glowing rune on the wall more closely.",
			"Call out to see if anyone is nearby in this new area.",
			"Prepare a defensive spell or stance, wary of what's to come.",
		}
	} else {
		text = "The wind howls around " + c.Name + " as they stand at the crossroads. " +
			"To the north, a dark forest looms. To the east, a glittering city can be seen in the distance. " +
			"A weathered signpost points west, its carvings too faded to read. South, the road back from whence you came."
		choices = []string{
			"Venture into the dark forest to the north.",
			"Head towards the glittering city in the east.",
			"Inspect the weathered signpost to the west.",
			"Cautiously retreat south along the road you came from.",
			"Scan the surroundings for any immediate threats or points of interest.",
		}
	}

	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n\nWhat do you do?\n")
	for i, choice := range choices {
		b.WriteString("\n" + strconv.Itoa(i+1) + ". " + choice)
	}
	return b.String()
}
