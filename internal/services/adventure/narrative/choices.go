package narrative

import (
	"strings"
	"unicode"
)

// defaultChoices keeps a turn playable when a response has no list items.
var defaultChoices = []string{
	"Look around for another way forward.",
	"Wait and see what happens next.",
}

// ParseChoices extracts "- item" and "N. item" lines from a response. When
// none are found it returns two placeholder choices, never an empty list.
func ParseChoices(response string) []string {
	var choices []string
	for _, line := range strings.Split(response, "\n") {
		if item, ok := listItem(line); ok {
			choices = append(choices, item)
		}
	}
	if len(choices) == 0 {
		return append([]string(nil), defaultChoices...)
	}
	return choices
}

// Narration returns the response with list items and the trailing prompt
// line removed.
func Narration(response string) string {
	var kept []string
	for _, line := range strings.Split(response, "\n") {
		if _, ok := listItem(line); ok {
			continue
		}
		kept = append(kept, line)
	}
	text := strings.TrimSpace(strings.Join(kept, "\n"))
	text = strings.TrimSpace(strings.TrimSuffix(text, "What do you do?"))
	return text
}

func listItem(line string) (string, bool) {
	line = strings.TrimSpace(line)
	var item string
	switch {
	case strings.HasPrefix(line, "- "):
		item = line[2:]
	case len(line) > 2 && unicode.IsDigit(rune(line[0])) && line[1] == '.' && line[2] == ' ':
		item = line[3:]
	default:
		return "", false
	}
	item = strings.TrimSpace(item)
	return item, item != ""
}
