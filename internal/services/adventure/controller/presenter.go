package controller

import (
	"context"
	"time"
)

// MessageKind distinguishes adventure cards from yes/no prompts.
type MessageKind string

const (
	KindAdventure    MessageKind = "adventure"
	KindConfirmation MessageKind = "confirmation"
)

// Message is the content of one interactive message.
type Message struct {
	Kind    MessageKind
	Title   string
	Body    string
	Footer  string
	Choices []string
	// Disabled renders the choices without letting anyone press them.
	Disabled bool
}

// Presenter displays interactive messages on the chat platform. Presses on a
// message come back to the controller as Choice or ResetConfirm events.
type Presenter interface {
	// Render posts a new message for userID and returns its ID.
	Render(ctx context.Context, userID string, m Message) (string, error)
	// Update replaces a message's content.
	Update(ctx context.Context, messageID string, m Message) error
	// Disable freezes a message's choices, appending notice when not empty.
	Disable(ctx context.Context, messageID string, notice string) error
	Delete(ctx context.Context, messageID string) error
	// Exists reports whether a message can still be shown to its owner.
	Exists(ctx context.Context, messageID string) (bool, error)
	// Notify sends userID a plain notice outside any message.
	Notify(ctx context.Context, userID string, text string) error
}

// Timer is a pending callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// WallClock schedules callbacks with time.AfterFunc.
type WallClock struct{}

// AfterFunc implements Scheduler.
func (WallClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
