package controller

import (
	"context"
	"log"
	"strconv"

	apperrors "github.com/Womp-Womp/AdventureBot/internal/platform/errors"
	"github.com/Womp-Womp/AdventureBot/internal/platform/errors/i18n"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/domain/history"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/session"
)

// choose advances the user's session by one turn. Checks run in order and
// the first failure returns without side effects beyond those noted.
func (c *Controller) choose(ctx context.Context, ev Event) (Outcome, error) {
	userID := ev.UserID
	if ev.Actor != userID {
		return Outcome{Status: StatusRejected}, apperrors.New(apperrors.CodeNotYourSession, "choice pressed by another user")
	}

	current, ok := c.registry.Get(userID)
	if !ok || current.MessageID != ev.MessageID {
		c.disable(ctx, ev.MessageID, "")
		return Outcome{Status: StatusRejected, MessageID: current.MessageID},
			apperrors.New(apperrors.CodeStaleSession, "choice on a message that is not current")
	}

	probe := c.generator.ProbeCost()
	balance, err := c.ledger.Balance(ctx, userID)
	if err != nil {
		return Outcome{Status: StatusFailed, MessageID: current.MessageID}, storageError("read balance", err)
	}
	if balance < probe {
		c.exhaust(ctx, current)
		return Outcome{Status: StatusExhausted, Balance: balance},
			apperrors.WithMetadata(apperrors.CodeInsufficientBalance, "balance below probe cost", map[string]string{
				"Balance":  formatAmount(balance),
				"Required": formatAmount(probe),
			})
	}

	if ev.ChoiceIndex < 0 || ev.ChoiceIndex >= len(current.Choices) {
		return Outcome{Status: StatusRejected, MessageID: current.MessageID},
			apperrors.WithMetadata(apperrors.CodeInvalidArgument, "choice index out of range",
				map[string]string{"Index": strconv.Itoa(ev.ChoiceIndex)})
	}
	choice := current.Choices[ev.ChoiceIndex]

	working := current.History.With(history.Entry{Role: history.RolePlayer, Text: choice})
	turn := c.generate(ctx, current.Character, working)

	balance, err = c.ledger.Debit(ctx, userID, turn.Cost)
	if err != nil {
		return Outcome{Status: StatusFailed, MessageID: current.MessageID}, storageError("debit turn", err)
	}
	working = working.With(history.Entry{Role: history.RoleNarrator, Text: turn.Text})

	msg := c.adventureMessage(current.Locale, current.Character.Name, turn, balance, false)
	messageID, err := c.render(ctx, userID, msg)
	if err != nil {
		log.Printf("adventure: render turn failed user=%q err=%v", userID, err)
		if refunded, rerr := c.ledger.Credit(ctx, userID, turn.Cost); rerr != nil {
			log.Printf("adventure: refund failed user=%q cost=%.4f err=%v", userID, turn.Cost, rerr)
		} else {
			balance = refunded
		}
		c.notify(ctx, userID, current.Locale, i18n.NoticeFailure, nil)
		return Outcome{Status: StatusFailed, MessageID: current.MessageID, Balance: balance}, err
	}

	next := current
	next.History = working
	next.MessageID = messageID
	next.Choices = capChoices(turn.Choices)
	next.Title = msg.Title
	next.Text = msg.Body
	next.Turn = current.Turn + 1
	c.registry.Set(userID, next)

	c.disable(ctx, current.MessageID, "")
	c.disarm(current.MessageID)
	c.arm(userID, messageID, c.cfg.IdleTimeout)

	if balance <= 0 {
		c.exhaust(ctx, next)
		return Outcome{Status: StatusExhausted, MessageID: messageID, Balance: balance}, nil
	}
	if balance < probe {
		c.notify(ctx, userID, current.Locale, i18n.NoticeLowBalance, map[string]string{"Balance": formatAmount(balance)})
	}
	return Outcome{Status: StatusAdvanced, MessageID: messageID, Balance: balance}, nil
}

// exhaust ends a session that can no longer pay for a turn.
func (c *Controller) exhaust(ctx context.Context, s session.Session) {
	c.disable(ctx, s.MessageID, "")
	c.registry.RemoveIf(s.UserID, s.MessageID)
	c.disarm(s.MessageID)
	c.notify(ctx, s.UserID, s.Locale, i18n.NoticeExhausted, nil)
	log.Printf("adventure: exhausted user=%q message=%q", s.UserID, s.MessageID)
}
