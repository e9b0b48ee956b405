package controller

import (
	"context"
	"log"

	"github.com/Womp-Womp/AdventureBot/internal/platform/errors/i18n"
)

// timeout expires whatever the fired timer was bound to: a pending reset
// prompt or the session's current message. Timers for anything else are
// stale and change nothing.
func (c *Controller) timeout(ctx context.Context, ev Event) (Outcome, error) {
	if prompt, ok := c.takePending(ev.MessageID, ev.UserID); ok {
		c.update(ctx, ev.MessageID, c.confirmationMessage(prompt.locale, i18n.NoticeResetExpired))
		log.Printf("adventure: reset prompt expired user=%q prompt=%q", ev.UserID, ev.MessageID)
		return Outcome{Status: StatusResetExpired, MessageID: ev.MessageID}, nil
	}

	current, ok := c.registry.Get(ev.UserID)
	if !ok || current.MessageID != ev.MessageID {
		return Outcome{Status: StatusIgnored}, nil
	}
	notice := c.catalog(current.Locale).Format(i18n.NoticeTimedOut, nil)
	c.disable(ctx, current.MessageID, notice)
	c.registry.RemoveIf(ev.UserID, ev.MessageID)
	c.disarm(ev.MessageID)
	return Outcome{Status: StatusTimedOut, MessageID: ev.MessageID}, nil
}
