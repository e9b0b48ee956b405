package narrative

import (
	"strings"

	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/domain/character"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/domain/history"
)

const persona = "You are a Genius Storyteller and Dungeon Master, crafting a rich and engaging " +
	"Dungeons & Dragons style text-based adventure.\n" +
	"Your writing is evocative, descriptive, and tailored to the player's character.\n" +
	"You will always present a narrative segment and then offer 4-5 distinct, actionable " +
	"choices for the player to take.\n" +
	"Format the choices clearly as a numbered or bulleted list.\n" +
	"Ensure the story flows logically from the character's actions and the established context.\n" +
	"The player's character details are provided below. Use them to personalize the story."

// BuildPrompt renders the full generation prompt for a character and transcript.
func BuildPrompt(c character.Character, h history.History) string {
	var b strings.Builder
	b.WriteString(persona)

	b.WriteString("\n\n--- Character Information ---")
	b.WriteString("\nName: " + c.Name)
	b.WriteString("\nBackstory: " + c.Backstory)
	b.WriteString("\nAbilities: " + strings.Join(c.Abilities, ", "))
	b.WriteString("\nDesires: " + strings.Join(c.Desires, ", "))
	b.WriteString("\nWeaknesses: " + strings.Join(c.Weaknesses, ", "))

	b.WriteString("\n\n--- Adventure History ---")
	if len(h) == 0 {
		b.WriteString("\nThis is the beginning of your adventure.")
	}
	for _, entry := range h {
		b.WriteString("\n" + roleLabel(entry.Role) + ": " + entry.Text)
	}

	b.WriteString("\n\n--- Current Situation ---\n")
	if choice, ok := h.LastPlayerChoice(); ok {
		b.WriteString("The player chose: '" + choice + "'. Now, continue the story and provide new choices.")
	} else if len(h) == 0 {
		b.WriteString("This is the very beginning of " + c.Name + "'s adventure. Start the story and provide the first set of choices.")
	} else {
		b.WriteString("Continue the story based on the last event and provide new choices.")
	}

	b.WriteString("\n\n--- Your Task ---")
	b.WriteString("\nGenerate the next part of the story and provide 4-5 distinct choices as a list.")
	return b.String()
}

func roleLabel(r history.Role) string {
	switch r {
	case history.RolePlayer:
		return "Player"
	case history.RoleNarrator:
		return "Narrator"
	default:
		return "Unknown"
	}
}
