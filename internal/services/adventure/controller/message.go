package controller

import (
	"unicode/utf8"

	"github.com/Womp-Womp/AdventureBot/internal/platform/errors/i18n"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/narrative"
)

// adventureMessage lays out a turn as a card: title, narration, a footer
// with the balance and the turn's cost, and at most five choice buttons.
func (c *Controller) adventureMessage(locale, name string, turn narrative.Turn, balance float64, opening bool) Message {
	cat := c.catalog(locale)
	titleKey := i18n.NoticeTitle
	if opening {
		titleKey = i18n.NoticeTitleOpening
	}
	return Message{
		Kind:  KindAdventure,
		Title: cat.Format(titleKey, map[string]string{"Name": name}),
		Body:  turn.Text,
		Footer: cat.Format(i18n.NoticeFooter, map[string]string{
			"Balance": formatAmount(balance),
			"Cost":    formatAmount(turn.Cost),
		}),
		Choices: c.labels(turn.Choices),
	}
}

func (c *Controller) labels(choices []string) []string {
	choices = capChoices(choices)
	out := make([]string, len(choices))
	for i, choice := range choices {
		out[i] = truncate(choice, c.cfg.LabelLimit)
	}
	return out
}

func capChoices(choices []string) []string {
	if len(choices) > narrative.MaxChoices {
		return choices[:narrative.MaxChoices]
	}
	return choices
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
