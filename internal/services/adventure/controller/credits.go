package controller

import (
	"context"
	"log"
	"math"
	"strings"

	apperrors "github.com/Womp-Womp/AdventureBot/internal/platform/errors"
)

// Balance returns a user's credit balance.
func (c *Controller) Balance(ctx context.Context, userID string) (float64, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, apperrors.New(apperrors.CodeInvalidArgument, "user id is required")
	}
	balance, err := c.ledger.Balance(ctx, userID)
	if err != nil {
		return 0, storageError("read balance", err)
	}
	return balance, nil
}

// IsAdmin reports whether userID is the configured admin.
func (c *Controller) IsAdmin(userID string) bool {
	admin := strings.TrimSpace(c.cfg.AdminUserID)
	return admin != "" && strings.TrimSpace(userID) == admin
}

// GrantCredits adds a positive amount to target's balance. Only the
// configured admin may grant; with no admin configured nobody can.
func (c *Controller) GrantCredits(ctx context.Context, actorID, targetID string, amount float64) (float64, error) {
	if !c.IsAdmin(actorID) {
		log.Printf("adventure: grant denied actor=%q target=%q", actorID, targetID)
		return 0, apperrors.New(apperrors.CodePermissionDenied, "credit grants require the admin user")
	}
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return 0, apperrors.New(apperrors.CodeInvalidArgument, "target user id is required")
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, apperrors.WithMetadata(apperrors.CodeCreditAmountInvalid, "credit amount must be positive",
			map[string]string{"Amount": formatAmount(amount)})
	}
	balance, err := c.ledger.Credit(ctx, targetID, amount)
	if err != nil {
		return 0, storageError("credit balance", err)
	}
	log.Printf("adventure: granted credits actor=%q target=%q amount=%.2f balance=%.2f", actorID, targetID, amount, balance)
	return balance, nil
}
