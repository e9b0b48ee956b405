package ws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/websocket"

	apperrors "github.com/Womp-Womp/AdventureBot/internal/platform/errors"
	"github.com/Womp-Womp/AdventureBot/internal/platform/errors/i18n"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/auth"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/controller"
)

type wsUserKey struct{}

type wsLocaleKey struct{}

// NewHandler serves /ws for authenticated players and /up for probes.
func NewHandler(hub *Hub, dispatcher Dispatcher, authenticate Authenticator) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	wsHandler := websocket.Handler(func(conn *websocket.Conn) {
		handleWSConn(conn, hub, dispatcher)
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if hub == nil || dispatcher == nil || authenticate == nil {
			http.Error(w, "websocket is not configured", http.StatusServiceUnavailable)
			return
		}

		token := accessTokenFromRequest(r)
		if token == "" {
			log.Printf("ws: unauthorized: missing token remote=%s", r.RemoteAddr)
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		userID, err := authenticate(token)
		if err != nil || strings.TrimSpace(userID) == "" {
			log.Printf("ws: unauthorized: remote=%s err=%v", r.RemoteAddr, err)
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), wsUserKey{}, strings.TrimSpace(userID))
		ctx = context.WithValue(ctx, wsLocaleKey{}, localeFromRequest(r))
		wsHandler.ServeHTTP(w, r.WithContext(ctx))
	})

	return mux
}

// accessTokenFromRequest reads the bearer header, falling back to the token
// query parameter for browsers that cannot set headers on upgrades.
func accessTokenFromRequest(r *http.Request) string {
	if token := auth.BearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func localeFromRequest(r *http.Request) string {
	if locale := strings.TrimSpace(r.URL.Query().Get("locale")); locale != "" {
		return i18n.GetCatalog(locale).Locale()
	}
	return i18n.FromAcceptLanguage(r.Header.Get("Accept-Language"))
}

type wsSession struct {
	userID string
	locale string
	peer   *wsPeer
}

func handleWSConn(conn *websocket.Conn, hub *Hub, dispatcher Dispatcher) {
	defer func() {
		_ = conn.Close()
	}()

	ctx := conn.Request().Context()
	userID, _ := ctx.Value(wsUserKey{}).(string)
	locale, _ := ctx.Value(wsLocaleKey{}).(string)
	session := &wsSession{userID: userID, locale: locale, peer: newWSPeer(conn)}

	_ = session.peer.writeFrame(wsFrame{
		Type: frameReady,
		Payload: mustJSON(readyPayload{
			UserID:     userID,
			Locale:     locale,
			ServerTime: time.Now().UTC().Format(time.RFC3339),
		}),
	})
	hub.attach(ctx, userID, session.peer)
	defer hub.detach(userID, session.peer)

	decoder := json.NewDecoder(conn)
	windowStart := time.Now()
	framesInWindow := 0
	decodeErrors := 0

	for {
		var frame wsFrame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			writeWSError(session, "", apperrors.New(apperrors.CodeInvalidArgument, "invalid frame payload"))
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		if len(frame.Payload) > maxFramePayloadBytes {
			writeWSError(session, frame.RequestID, apperrors.New(apperrors.CodeInvalidArgument, "payload too large"))
			continue
		}

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > maxFramesPerSecond {
			log.Printf("ws: rate limit exceeded user=%q", userID)
			return
		}

		ev, err := eventFromFrame(hub, session, frame)
		if err != nil {
			writeWSError(session, frame.RequestID, err)
			continue
		}
		out, err := dispatcher.Handle(ctx, ev)
		if err != nil {
			writeWSError(session, frame.RequestID, err)
			continue
		}
		_ = session.peer.writeFrame(wsFrame{
			Type:      frameAck,
			RequestID: frame.RequestID,
			Payload: mustJSON(ackEnvelope{Result: ackResult{
				Status:    string(out.Status),
				MessageID: out.MessageID,
				Balance:   out.Balance,
			}}),
		})
	}
}

// eventFromFrame maps an inbound frame to a controller event. Presses on a
// reset prompt become confirmations for the prompt's owner.
func eventFromFrame(hub *Hub, session *wsSession, frame wsFrame) (controller.Event, error) {
	base := controller.Event{UserID: session.userID, Actor: session.userID, Locale: session.locale}
	switch frame.Type {
	case frameStart:
		var payload startPayload
		if len(frame.Payload) > 0 {
			if err := json.Unmarshal(frame.Payload, &payload); err != nil {
				return controller.Event{}, apperrors.Wrap(apperrors.CodeInvalidArgument, "invalid start payload", err)
			}
		}
		base.Kind = controller.KindStart
		base.Draft = payload.Character
		return base, nil
	case frameReset:
		base.Kind = controller.KindReset
		return base, nil
	case frameChoice:
		var payload choicePayload
		if err := json.Unmarshal(frame.Payload, &payload); err != nil {
			return controller.Event{}, apperrors.Wrap(apperrors.CodeInvalidArgument, "invalid choice payload", err)
		}
		messageID := strings.TrimSpace(payload.MessageID)
		if messageID == "" {
			return controller.Event{}, apperrors.New(apperrors.CodeInvalidArgument, "message_id is required")
		}
		base.MessageID = messageID
		base.ChoiceIndex = payload.Index
		base.Kind = controller.KindChoice
		kind, owner, ok := hub.owner(messageID)
		if !ok {
			return base, nil
		}
		base.UserID = owner
		if kind == controller.KindConfirmation {
			base.Kind = controller.KindResetConfirm
			base.Confirmed = payload.Index == controller.ConfirmIndex
		}
		return base, nil
	default:
		return controller.Event{}, apperrors.New(apperrors.CodeInvalidArgument, "unsupported frame type")
	}
}

func writeWSError(session *wsSession, requestID string, err error) {
	code := apperrors.CodeOf(err)
	if code == apperrors.CodeUnknown || code.HTTPStatus() >= http.StatusInternalServerError {
		log.Printf("ws: request failed user=%q code=%s err=%v", session.userID, code, err)
	}
	_ = session.peer.writeFrame(wsFrame{
		Type:      frameError,
		RequestID: requestID,
		Payload: mustJSON(wsErrorEnvelope{Error: wsError{
			Code:      string(code),
			Message:   apperrors.Localize(err, session.locale),
			Retryable: code == apperrors.CodeTransport,
		}}),
	})
}
