package ws

import (
	"context"
	"log"
	"strings"
	"sync"

	apperrors "github.com/Womp-Womp/AdventureBot/internal/platform/errors"
	"github.com/Womp-Womp/AdventureBot/internal/platform/id"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/controller"
)

var _ controller.Presenter = (*Hub)(nil)

// Hub owns every card shown to players and the sockets they are shown on.
// Cards outlive connections so a reconnecting player sees them again.
type Hub struct {
	mu      sync.Mutex
	cards   map[string]*card
	order   map[string][]string
	peers   map[string]map[*wsPeer]struct{}
	notices map[string][]string
	retain  int
	newID   func() (string, error)
}

type card struct {
	id      string
	owner   string
	message controller.Message
	notice  string
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		cards:   make(map[string]*card),
		order:   make(map[string][]string),
		peers:   make(map[string]map[*wsPeer]struct{}),
		notices: make(map[string][]string),
		retain:  defaultRetainPerUser,
		newID:   id.NewID,
	}
}

// Render implements controller.Presenter.
func (h *Hub) Render(ctx context.Context, userID string, m controller.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", apperrors.New(apperrors.CodeInvalidArgument, "owner is required")
	}
	messageID, err := h.newID()
	if err != nil {
		return "", err
	}
	c := &card{id: messageID, owner: userID, message: m}

	h.mu.Lock()
	h.cards[messageID] = c
	h.order[userID] = append(h.order[userID], messageID)
	evicted := h.evictLocked(userID)
	view := h.viewLocked(c)
	peers := h.peersLocked(userID)
	h.mu.Unlock()

	for _, old := range evicted {
		broadcast(peers, wsFrame{Type: frameDeleted, Payload: mustJSON(deletedPayload{MessageID: old})})
	}
	broadcast(peers, messageFrame(ctx, view))
	return messageID, nil
}

// Update implements controller.Presenter.
func (h *Hub) Update(ctx context.Context, messageID string, m controller.Message) error {
	return h.mutate(ctx, messageID, func(c *card) {
		c.message = m
	})
}

// Disable implements controller.Presenter.
func (h *Hub) Disable(ctx context.Context, messageID string, notice string) error {
	return h.mutate(ctx, messageID, func(c *card) {
		c.message.Disabled = true
		if notice != "" {
			c.notice = notice
		}
	})
}

// Delete implements controller.Presenter.
func (h *Hub) Delete(ctx context.Context, messageID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	c, ok := h.cards[messageID]
	if !ok {
		h.mu.Unlock()
		return unknownMessage(messageID)
	}
	delete(h.cards, messageID)
	h.order[c.owner] = without(h.order[c.owner], messageID)
	peers := h.peersLocked(c.owner)
	h.mu.Unlock()

	broadcast(peers, wsFrame{Type: frameDeleted, Payload: mustJSON(deletedPayload{MessageID: messageID})})
	return nil
}

// Exists implements controller.Presenter.
func (h *Hub) Exists(ctx context.Context, messageID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.cards[messageID]
	return ok, nil
}

// Notify implements controller.Presenter. Notices for a player with no open
// socket are queued until they connect.
func (h *Hub) Notify(ctx context.Context, userID string, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	peers := h.peersLocked(userID)
	if len(peers) == 0 {
		queue := append(h.notices[userID], text)
		if len(queue) > maxQueuedNotices {
			queue = queue[len(queue)-maxQueuedNotices:]
		}
		h.notices[userID] = queue
		h.mu.Unlock()
		return nil
	}
	h.mu.Unlock()

	broadcast(peers, noticeFrame(text))
	return nil
}

// owner returns the kind and owner of a live card.
func (h *Hub) owner(messageID string) (controller.MessageKind, string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.cards[messageID]
	if !ok {
		return "", "", false
	}
	return c.message.Kind, c.owner, true
}

// attach registers a socket for userID and replays the player's cards and
// queued notices to it.
func (h *Hub) attach(ctx context.Context, userID string, peer *wsPeer) {
	h.mu.Lock()
	set, ok := h.peers[userID]
	if !ok {
		set = make(map[*wsPeer]struct{})
		h.peers[userID] = set
	}
	set[peer] = struct{}{}
	views := make([]cardView, 0, len(h.order[userID]))
	for _, messageID := range h.order[userID] {
		views = append(views, h.viewLocked(h.cards[messageID]))
	}
	queued := h.notices[userID]
	delete(h.notices, userID)
	h.mu.Unlock()

	for _, view := range views {
		_ = peer.writeFrame(messageFrame(ctx, view))
	}
	for _, text := range queued {
		_ = peer.writeFrame(noticeFrame(text))
	}
}

func (h *Hub) detach(userID string, peer *wsPeer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.peers[userID]
	delete(set, peer)
	if len(set) == 0 {
		delete(h.peers, userID)
	}
}

func (h *Hub) mutate(ctx context.Context, messageID string, apply func(*card)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	c, ok := h.cards[messageID]
	if !ok {
		h.mu.Unlock()
		return unknownMessage(messageID)
	}
	apply(c)
	view := h.viewLocked(c)
	peers := h.peersLocked(c.owner)
	h.mu.Unlock()

	broadcast(peers, messageFrame(ctx, view))
	return nil
}

// evictLocked drops the oldest cards beyond the retention limit.
func (h *Hub) evictLocked(userID string) []string {
	ids := h.order[userID]
	if len(ids) <= h.retain {
		return nil
	}
	evicted := append([]string(nil), ids[:len(ids)-h.retain]...)
	h.order[userID] = append([]string(nil), ids[len(ids)-h.retain:]...)
	for _, messageID := range evicted {
		delete(h.cards, messageID)
	}
	return evicted
}

func (h *Hub) viewLocked(c *card) cardView {
	return cardView{
		MessageID: c.id,
		OwnerID:   c.owner,
		Kind:      string(c.message.Kind),
		Title:     c.message.Title,
		Body:      c.message.Body,
		Footer:    c.message.Footer,
		Choices:   append([]string(nil), c.message.Choices...),
		Disabled:  c.message.Disabled,
		Notice:    c.notice,
		message:   c.message,
	}
}

func (h *Hub) peersLocked(userID string) []*wsPeer {
	set := h.peers[userID]
	peers := make([]*wsPeer, 0, len(set))
	for peer := range set {
		peers = append(peers, peer)
	}
	return peers
}

func messageFrame(ctx context.Context, view cardView) wsFrame {
	html, err := cardHTML(ctx, view.message, view.Notice)
	if err != nil {
		log.Printf("ws: render card html failed message=%q err=%v", view.MessageID, err)
	}
	view.HTML = html
	return wsFrame{Type: frameMessage, Payload: mustJSON(messageEnvelope{Message: view})}
}

func noticeFrame(text string) wsFrame {
	return wsFrame{Type: frameNotice, Payload: mustJSON(noticePayload{Text: text})}
}

func broadcast(peers []*wsPeer, frame wsFrame) {
	for _, peer := range peers {
		if err := peer.writeFrame(frame); err != nil {
			log.Printf("ws: write %s frame failed err=%v", frame.Type, err)
		}
	}
}

func unknownMessage(messageID string) error {
	return apperrors.WithMetadata(apperrors.CodeNotFound, "unknown message", map[string]string{"MessageID": messageID})
}

func without(ids []string, target string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
