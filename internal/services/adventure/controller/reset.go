package controller

import (
	"context"
	"log"

	apperrors "github.com/Womp-Womp/AdventureBot/internal/platform/errors"
	"github.com/Womp-Womp/AdventureBot/internal/platform/errors/i18n"
)

// Positions of the buttons on a reset prompt.
const (
	ConfirmIndex = 0
	CancelIndex  = 1
)

// reset asks the user to confirm deleting their character.
func (c *Controller) reset(ctx context.Context, ev Event) (Outcome, error) {
	locale := c.locale(ev)
	cat := c.catalog(locale)
	prompt := Message{
		Kind:    KindConfirmation,
		Title:   cat.Format(i18n.NoticeResetTitle, nil),
		Body:    cat.Format(i18n.NoticeResetPrompt, nil),
		Choices: []string{cat.Format(i18n.LabelConfirmReset, nil), cat.Format(i18n.LabelCancel, nil)},
	}
	promptID, err := c.render(ctx, ev.UserID, prompt)
	if err != nil {
		log.Printf("adventure: render reset prompt failed user=%q err=%v", ev.UserID, err)
		c.notify(ctx, ev.UserID, locale, i18n.NoticeFailure, nil)
		return Outcome{Status: StatusFailed}, err
	}

	c.mu.Lock()
	c.pending[promptID] = pendingReset{userID: ev.UserID, locale: locale}
	c.mu.Unlock()
	c.arm(ev.UserID, promptID, c.cfg.ConfirmTimeout)
	return Outcome{Status: StatusResetPrompted, MessageID: promptID}, nil
}

// confirmReset answers a reset prompt. Only the user who asked may answer.
func (c *Controller) confirmReset(ctx context.Context, ev Event) (Outcome, error) {
	c.mu.Lock()
	prompt, ok := c.pending[ev.MessageID]
	c.mu.Unlock()
	if !ok || prompt.userID != ev.UserID {
		return Outcome{Status: StatusRejected}, apperrors.New(apperrors.CodeStaleSession, "reset prompt is no longer pending")
	}
	if ev.Actor != prompt.userID {
		return Outcome{Status: StatusRejected, MessageID: ev.MessageID},
			apperrors.New(apperrors.CodeNotYourConfirmation, "reset confirmed by another user")
	}

	if !ev.Confirmed {
		c.takePending(ev.MessageID, ev.UserID)
		c.disarm(ev.MessageID)
		c.update(ctx, ev.MessageID, c.confirmationMessage(prompt.locale, i18n.NoticeResetCancelled))
		return Outcome{Status: StatusResetCancelled, MessageID: ev.MessageID}, nil
	}

	deleted, err := c.characters.DeleteCharacter(ctx, ev.UserID)
	if err != nil {
		return Outcome{Status: StatusFailed, MessageID: ev.MessageID}, storageError("delete character", err)
	}
	c.takePending(ev.MessageID, ev.UserID)
	c.disarm(ev.MessageID)

	if current, ok := c.registry.Get(ev.UserID); ok {
		tctx, cancel := context.WithTimeout(ctx, c.cfg.TransportTimeout)
		if err := c.presenter.Delete(tctx, current.MessageID); err != nil {
			log.Printf("adventure: delete session message failed user=%q message=%q err=%v", ev.UserID, current.MessageID, err)
		}
		cancel()
		c.registry.Remove(ev.UserID)
		c.disarm(current.MessageID)
	}

	key := i18n.NoticeResetDone
	if !deleted {
		key = i18n.NoticeResetNoCharacter
	}
	c.update(ctx, ev.MessageID, c.confirmationMessage(prompt.locale, key))
	log.Printf("adventure: reset user=%q character_deleted=%t", ev.UserID, deleted)
	return Outcome{Status: StatusResetDone, MessageID: ev.MessageID}, nil
}

// takePending removes a pending prompt owned by userID.
func (c *Controller) takePending(promptID, userID string) (pendingReset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prompt, ok := c.pending[promptID]
	if !ok || prompt.userID != userID {
		return pendingReset{}, false
	}
	delete(c.pending, promptID)
	return prompt, true
}

func (c *Controller) confirmationMessage(locale, bodyKey string) Message {
	cat := c.catalog(locale)
	return Message{
		Kind:     KindConfirmation,
		Title:    cat.Format(i18n.NoticeResetTitle, nil),
		Body:     cat.Format(bodyKey, nil),
		Choices:  []string{cat.Format(i18n.LabelConfirmReset, nil), cat.Format(i18n.LabelCancel, nil)},
		Disabled: true,
	}
}
