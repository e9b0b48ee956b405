// Package ws presents adventure messages to players over WebSocket and turns
// their button presses into controller events.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/Womp-Womp/AdventureBot/internal/platform/timeouts"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/controller"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/domain/character"
)

const (
	maxFramePayloadBytes   = 16 * 1024
	maxFramesPerSecond     = 20
	maxDecodeErrorsPerConn = 3

	// defaultRetainPerUser bounds the cards kept for replay per user.
	defaultRetainPerUser = 20
	// maxQueuedNotices bounds notices held for a user with no open socket.
	maxQueuedNotices = 20
)

// Frame types.
const (
	frameStart   = "adventure.start"
	frameChoice  = "adventure.choice"
	frameReset   = "adventure.reset"
	frameReady   = "adventure.ready"
	frameMessage = "adventure.message"
	frameDeleted = "adventure.deleted"
	frameNotice  = "adventure.notice"
	frameAck     = "adventure.ack"
	frameError   = "adventure.error"
)

// Dispatcher receives the events produced by player input.
type Dispatcher interface {
	Handle(ctx context.Context, ev controller.Event) (controller.Outcome, error)
}

// Authenticator resolves a bearer token to a user ID.
type Authenticator func(token string) (string, error)

type wsFrame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type wsErrorEnvelope struct {
	Error wsError `json:"error"`
}

type wsError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

type readyPayload struct {
	UserID     string `json:"user_id"`
	Locale     string `json:"locale"`
	ServerTime string `json:"server_time"`
}

type startPayload struct {
	Character *character.Draft `json:"character,omitempty"`
}

type choicePayload struct {
	MessageID string `json:"message_id"`
	Index     int    `json:"index"`
}

type messageEnvelope struct {
	Message cardView `json:"message"`
}

type cardView struct {
	MessageID string   `json:"message_id"`
	OwnerID   string   `json:"owner_id"`
	Kind      string   `json:"kind"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	HTML      string   `json:"html"`
	Footer    string   `json:"footer,omitempty"`
	Choices   []string `json:"choices"`
	Disabled  bool     `json:"disabled"`
	Notice    string   `json:"notice,omitempty"`

	message controller.Message
}

type deletedPayload struct {
	MessageID string `json:"message_id"`
}

type noticePayload struct {
	Text string `json:"text"`
}

type ackEnvelope struct {
	Result ackResult `json:"result"`
}

type ackResult struct {
	Status    string  `json:"status"`
	MessageID string  `json:"message_id,omitempty"`
	Balance   float64 `json:"balance"`
}

type wsPeer struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	encoder *json.Encoder
}

func newWSPeer(conn *websocket.Conn) *wsPeer {
	return &wsPeer{conn: conn, encoder: json.NewEncoder(conn)}
}

func (p *wsPeer) writeFrame(frame wsFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.conn.SetWriteDeadline(time.Now().Add(timeouts.WSWrite))
	return p.encoder.Encode(frame)
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("ws: marshal frame payload failed err=%v", err)
		return nil
	}
	return b
}
