package controller

import (
	"context"
	"errors"
	"log"

	apperrors "github.com/Womp-Womp/AdventureBot/internal/platform/errors"
	"github.com/Womp-Womp/AdventureBot/internal/platform/errors/i18n"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/domain/character"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/domain/history"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/narrative"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/session"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/storage"
)

func (c *Controller) start(ctx context.Context, ev Event) (Outcome, error) {
	userID := ev.UserID
	locale := c.locale(ev)

	if existing, ok := c.registry.Get(userID); ok {
		if c.reachable(ctx, existing.MessageID) {
			return Outcome{Status: StatusRejected, MessageID: existing.MessageID},
				apperrors.WithMetadata(apperrors.CodeSessionInProgress, "adventure already in progress",
					map[string]string{"MessageID": existing.MessageID})
		}
		log.Printf("adventure: dropping unreachable session user=%q message=%q", userID, existing.MessageID)
		c.registry.Remove(userID)
		c.disarm(existing.MessageID)
	}

	granted, err := c.ledger.OpenAccount(ctx, userID, c.cfg.StartingBalance)
	if err != nil {
		return Outcome{Status: StatusFailed}, storageError("open account", err)
	}
	if granted {
		log.Printf("adventure: granted starting balance user=%q amount=%.2f", userID, c.cfg.StartingBalance)
		c.notify(ctx, userID, locale, i18n.NoticeWelcome, map[string]string{"Amount": formatAmount(c.cfg.StartingBalance)})
	}

	char, found, err := c.resolveCharacter(ctx, userID, ev.Draft)
	if err != nil {
		return Outcome{Status: StatusRejected, Granted: granted}, err
	}
	if !found {
		return Outcome{Status: StatusCharacterRequired, Granted: granted}, nil
	}

	turn := c.generate(ctx, char, nil)
	balance, err := c.ledger.Balance(ctx, userID)
	if err != nil {
		return Outcome{Status: StatusFailed, Granted: granted}, storageError("read balance", err)
	}

	msg := c.adventureMessage(locale, char.Name, turn, balance, true)
	messageID, err := c.render(ctx, userID, msg)
	if err != nil {
		log.Printf("adventure: render opening failed user=%q err=%v", userID, err)
		c.notify(ctx, userID, locale, i18n.NoticeFailure, nil)
		return Outcome{Status: StatusFailed, Balance: balance, Granted: granted}, err
	}

	c.registry.Set(userID, session.Session{
		UserID:    userID,
		Character: char,
		History:   history.History{},
		MessageID: messageID,
		Choices:   capChoices(turn.Choices),
		Title:     msg.Title,
		Text:      msg.Body,
		Turn:      1,
		Locale:    locale,
		StartedAt: c.now(),
	})
	c.arm(userID, messageID, c.cfg.IdleTimeout)
	log.Printf("adventure: started user=%q character=%q message=%q", userID, char.Name, messageID)

	return Outcome{Status: StatusStarted, MessageID: messageID, Balance: balance, Granted: granted}, nil
}

// reachable reports whether a message still exists. Lookup failures count
// as unreachable so a broken transport cannot pin a dead session.
func (c *Controller) reachable(ctx context.Context, messageID string) bool {
	tctx, cancel := context.WithTimeout(ctx, c.cfg.TransportTimeout)
	defer cancel()
	ok, err := c.presenter.Exists(tctx, messageID)
	if err != nil {
		log.Printf("adventure: message lookup failed message=%q err=%v", messageID, err)
		return false
	}
	return ok
}

// resolveCharacter prefers the stored character, then a supplied draft.
func (c *Controller) resolveCharacter(ctx context.Context, userID string, draft *character.Draft) (character.Character, bool, error) {
	stored, err := c.characters.GetCharacter(ctx, userID)
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return character.Character{}, false, storageError("get character", err)
	}
	if draft == nil || draft.IsZero() {
		return character.Character{}, false, nil
	}
	built, err := draft.Build(userID)
	if err != nil {
		return character.Character{}, false, err
	}
	if err := c.characters.SaveCharacter(ctx, built); err != nil {
		return character.Character{}, false, storageError("save character", err)
	}
	log.Printf("adventure: created character user=%q name=%q", userID, built.Name)
	return built, true, nil
}

// generate asks for the next turn, substituting the fallback turn when the
// generator fails or breaks its contract.
func (c *Controller) generate(ctx context.Context, char character.Character, h history.History) narrative.Turn {
	gctx, cancel := context.WithTimeout(ctx, c.cfg.GeneratorTimeout)
	defer cancel()
	turn, err := c.generator.Generate(gctx, char, h)
	if err == nil {
		err = narrative.Validate(turn)
	}
	if err != nil {
		log.Printf("adventure: generation failed user=%q err=%v", char.UserID, apperrors.Wrap(apperrors.CodeGenerator, "generate turn", err))
		return narrative.Fallback()
	}
	return turn
}
