// Package controller runs the adventure state machine.
//
// Every event for a user is handled inside that user's critical section, so
// for a given user at most one of start, choice, timeout, reset, and reset
// confirmation is in flight. The registry entry is only replaced once every
// blocking call of a turn has succeeded.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/Womp-Womp/AdventureBot/internal/platform/errors"
	"github.com/Womp-Womp/AdventureBot/internal/platform/errors/i18n"
	"github.com/Womp-Womp/AdventureBot/internal/platform/timeouts"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/domain/character"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/narrative"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/session"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/storage"
)

const tracerName = "github.com/Womp-Womp/AdventureBot/internal/services/adventure/controller"

// Defaults applied to zero Config fields.
const (
	DefaultStartingBalance = 5.00
	DefaultIdleTimeout     = 300 * time.Second
	DefaultConfirmTimeout  = 30 * time.Second
	DefaultLabelLimit      = 80
)

// Kind names an event.
type Kind string

const (
	KindStart        Kind = "start"
	KindChoice       Kind = "choice"
	KindTimeout      Kind = "timeout"
	KindReset        Kind = "reset"
	KindResetConfirm Kind = "reset_confirm"
)

// Event is one normalized input to the state machine.
type Event struct {
	Kind Kind
	// UserID owns the session or prompt the event targets.
	UserID string
	// Actor pressed the control; empty means UserID.
	Actor     string
	MessageID string
	// ChoiceIndex is the pressed button for Choice events.
	ChoiceIndex int
	// Confirmed answers a reset prompt.
	Confirmed bool
	// Draft supplies a character for Start when none is stored.
	Draft  *character.Draft
	Locale string
}

// Status summarizes what an event did.
type Status string

const (
	StatusStarted           Status = "started"
	StatusAdvanced          Status = "advanced"
	StatusRejected          Status = "rejected"
	StatusFailed            Status = "failed"
	StatusExhausted         Status = "exhausted"
	StatusTimedOut          Status = "timed_out"
	StatusIgnored           Status = "ignored"
	StatusCharacterRequired Status = "character_required"
	StatusResetPrompted     Status = "reset_prompted"
	StatusResetDone         Status = "reset_done"
	StatusResetCancelled    Status = "reset_cancelled"
	StatusResetExpired      Status = "reset_expired"
)

// Outcome reports the result of an event.
type Outcome struct {
	Status    Status
	MessageID string
	Balance   float64
	// Granted is set when Start opened the user's account.
	Granted bool
}

// Config tunes the controller.
type Config struct {
	StartingBalance float64
	IdleTimeout     time.Duration
	ConfirmTimeout  time.Duration
	// AdminUserID may grant credits; empty disables grants.
	AdminUserID      string
	Locale           string
	LabelLimit       int
	TransportTimeout time.Duration
	GeneratorTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.StartingBalance == 0 {
		c.StartingBalance = DefaultStartingBalance
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.ConfirmTimeout <= 0 {
		c.ConfirmTimeout = DefaultConfirmTimeout
	}
	if c.LabelLimit <= 0 {
		c.LabelLimit = DefaultLabelLimit
	}
	if c.TransportTimeout <= 0 {
		c.TransportTimeout = timeouts.Transport
	}
	if c.GeneratorTimeout <= 0 {
		c.GeneratorTimeout = timeouts.Generator
	}
	if strings.TrimSpace(c.Locale) == "" {
		c.Locale = i18n.BaseLocale
	}
	return c
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Registry   *session.Registry
	Locker     *session.Locker
	Characters storage.CharacterStore
	Ledger     storage.Ledger
	Generator  narrative.Generator
	Presenter  Presenter
	Scheduler  Scheduler
	Now        func() time.Time
}

// Controller owns the session registry and turns events into state changes.
type Controller struct {
	cfg        Config
	registry   *session.Registry
	locker     *session.Locker
	characters storage.CharacterStore
	ledger     storage.Ledger
	generator  narrative.Generator
	presenter  Presenter
	scheduler  Scheduler
	now        func() time.Time
	tracer     trace.Tracer

	mu      sync.Mutex
	timers  map[string]Timer
	pending map[string]pendingReset
}

type pendingReset struct {
	userID string
	locale string
}

// New builds a Controller.
func New(cfg Config, deps Deps) (*Controller, error) {
	if deps.Characters == nil {
		return nil, errors.New("character store is required")
	}
	if deps.Ledger == nil {
		return nil, errors.New("ledger is required")
	}
	if deps.Generator == nil {
		return nil, errors.New("generator is required")
	}
	if deps.Presenter == nil {
		return nil, errors.New("presenter is required")
	}
	if deps.Registry == nil {
		deps.Registry = session.NewRegistry()
	}
	if deps.Locker == nil {
		deps.Locker = session.NewLocker()
	}
	if deps.Scheduler == nil {
		deps.Scheduler = WallClock{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Controller{
		cfg:        cfg.withDefaults(),
		registry:   deps.Registry,
		locker:     deps.Locker,
		characters: deps.Characters,
		ledger:     deps.Ledger,
		generator:  deps.Generator,
		presenter:  deps.Presenter,
		scheduler:  deps.Scheduler,
		now:        deps.Now,
		tracer:     otel.Tracer(tracerName),
		timers:     make(map[string]Timer),
		pending:    make(map[string]pendingReset),
	}, nil
}

// Registry exposes the live sessions.
func (c *Controller) Registry() *session.Registry {
	return c.registry
}

// Handle applies one event under the owning user's lock.
func (c *Controller) Handle(ctx context.Context, ev Event) (Outcome, error) {
	ev.UserID = strings.TrimSpace(ev.UserID)
	if ev.UserID == "" {
		ev.UserID = strings.TrimSpace(ev.Actor)
	}
	if ev.Actor == "" {
		ev.Actor = ev.UserID
	}
	if ev.UserID == "" {
		return Outcome{Status: StatusRejected}, apperrors.New(apperrors.CodeInvalidArgument, "user id is required")
	}

	ctx, span := c.tracer.Start(ctx, "adventure."+string(ev.Kind), trace.WithAttributes(
		attribute.String("adventure.user_id", ev.UserID),
		attribute.String("adventure.actor_id", ev.Actor),
		attribute.String("adventure.message_id", ev.MessageID),
	))
	defer span.End()

	unlock, err := c.locker.Lock(ctx, ev.UserID)
	if err != nil {
		return Outcome{Status: StatusFailed}, err
	}
	defer unlock()

	var out Outcome
	switch ev.Kind {
	case KindStart:
		out, err = c.start(ctx, ev)
	case KindChoice:
		out, err = c.choose(ctx, ev)
	case KindTimeout:
		out, err = c.timeout(ctx, ev)
	case KindReset:
		out, err = c.reset(ctx, ev)
	case KindResetConfirm:
		out, err = c.confirmReset(ctx, ev)
	default:
		out, err = Outcome{Status: StatusRejected}, apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("unknown event kind %q", ev.Kind))
	}

	span.SetAttributes(attribute.String("adventure.status", string(out.Status)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
	}
	return out, err
}

func (c *Controller) catalog(locale string) *i18n.Catalog {
	if strings.TrimSpace(locale) == "" {
		locale = c.cfg.Locale
	}
	return i18n.GetCatalog(locale)
}

func (c *Controller) locale(ev Event) string {
	if strings.TrimSpace(ev.Locale) != "" {
		return ev.Locale
	}
	return c.cfg.Locale
}

// notify sends a catalog notice. Delivery failures are only logged.
func (c *Controller) notify(ctx context.Context, userID, locale, key string, metadata map[string]string) {
	text := c.catalog(locale).Format(key, metadata)
	tctx, cancel := context.WithTimeout(ctx, c.cfg.TransportTimeout)
	defer cancel()
	if err := c.presenter.Notify(tctx, userID, text); err != nil {
		log.Printf("adventure: notify failed user=%q key=%s err=%v", userID, key, err)
	}
}

// disable freezes a message's choices. Failures are only logged.
func (c *Controller) disable(ctx context.Context, messageID, notice string) {
	if messageID == "" {
		return
	}
	tctx, cancel := context.WithTimeout(ctx, c.cfg.TransportTimeout)
	defer cancel()
	if err := c.presenter.Disable(tctx, messageID, notice); err != nil {
		log.Printf("adventure: disable failed message=%q err=%v", messageID, err)
	}
}

func (c *Controller) render(ctx context.Context, userID string, m Message) (string, error) {
	tctx, cancel := context.WithTimeout(ctx, c.cfg.TransportTimeout)
	defer cancel()
	id, err := c.presenter.Render(tctx, userID, m)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeTransport, "render message", err)
	}
	return id, nil
}

func (c *Controller) update(ctx context.Context, messageID string, m Message) {
	tctx, cancel := context.WithTimeout(ctx, c.cfg.TransportTimeout)
	defer cancel()
	if err := c.presenter.Update(tctx, messageID, m); err != nil {
		log.Printf("adventure: update failed message=%q err=%v", messageID, err)
	}
}

func storageError(message string, err error) error {
	return apperrors.Wrap(apperrors.CodeStorage, message, err)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
