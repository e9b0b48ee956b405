package play

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

type scriptedServer struct {
	t        *testing.T
	mu       sync.Mutex
	received []frame
	auth     string
	locale   string
}

func (s *scriptedServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.auth = r.Header.Get("Authorization")
	s.locale = r.URL.Query().Get("locale")
	s.mu.Unlock()

	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.t.Errorf("upgrade: %v", err)
		return
	}
	defer conn.Close()

	send := func(kind, requestID string, payload any) {
		raw, _ := json.Marshal(payload)
		_ = conn.WriteJSON(frame{Type: kind, RequestID: requestID, Payload: raw})
	}
	send("adventure.ready", "", map[string]string{"user_id": "u1"})

	for {
		var in frame
		if err := conn.ReadJSON(&in); err != nil {
			return
		}
		s.mu.Lock()
		s.received = append(s.received, in)
		s.mu.Unlock()

		switch in.Type {
		case "adventure.start":
			send("adventure.message", "", map[string]any{"message": card{
				MessageID: "m1", OwnerID: "u1", Kind: "adventure",
				Title: "Eldrin's Adventure Begins!", Body: "A gate looms.",
				Choices: []string{"Knock", "Climb", "Leave"},
				Footer:  "Credits remaining: 5.00",
			}})
			send("adventure.message", "", map[string]any{"message": card{
				MessageID: "x1", OwnerID: "someone-else", Title: "Not mine", Choices: []string{"nope"},
			}})
			send("adventure.ack", in.RequestID, map[string]any{"result": map[string]any{"status": "started"}})
		case "adventure.choice":
			send("adventure.message", "", map[string]any{"message": card{MessageID: "m1", OwnerID: "u1", Disabled: true}})
			send("adventure.message", "", map[string]any{"message": card{
				MessageID: "m2", OwnerID: "u1", Title: "Eldrin's Adventure",
				Body: "You scale the wall.", Choices: []string{"Jump", "Wait"},
			}})
			send("adventure.ack", in.RequestID, map[string]any{"result": map[string]any{"status": "advanced"}})
		case "adventure.reset":
			send("adventure.error", in.RequestID, map[string]any{"error": map[string]any{
				"code": "SESSION_IN_PROGRESS", "message": "Finish your current adventure first.",
			}})
		}
	}
}

func (s *scriptedServer) frames() []frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]frame(nil), s.received...)
}

func startScripted(t *testing.T) (*scriptedServer, string) {
	t.Helper()
	srv := &scriptedServer{t: t}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return srv, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func TestRunPlaysChoices(t *testing.T) {
	srv, wsURL := startScripted(t)
	cfg := Config{URL: wsURL, Token: "tok", Locale: "pt-BR", Name: "Eldrin", Backstory: "Exiled."}

	var out strings.Builder
	in := strings.NewReader("2\n9\nr\nq\n")
	if err := Run(context.Background(), cfg, in, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Connected as u1.",
		"== Eldrin's Adventure Begins! ==",
		"2) Climb",
		"Credits remaining: 5.00",
		"You scale the wall.",
		"2) Wait",
		`Unknown input "9".`,
		"! Finish your current adventure first.",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Not mine") {
		t.Fatalf("printed another player's card:\n%s", text)
	}

	got := srv.frames()
	if len(got) != 3 {
		t.Fatalf("frames = %d, want 3", len(got))
	}
	var start struct {
		Character struct {
			Name string `json:"name"`
		} `json:"character"`
	}
	if err := json.Unmarshal(got[0].Payload, &start); err != nil || start.Character.Name != "Eldrin" {
		t.Fatalf("start payload = %s err=%v", got[0].Payload, err)
	}
	var choice struct {
		MessageID string `json:"message_id"`
		Index     int    `json:"index"`
	}
	if err := json.Unmarshal(got[1].Payload, &choice); err != nil {
		t.Fatalf("decode choice: %v", err)
	}
	if choice.MessageID != "m1" || choice.Index != 1 {
		t.Fatalf("choice = %+v", choice)
	}
	if got[2].Type != "adventure.reset" {
		t.Fatalf("third frame = %q", got[2].Type)
	}
	srv.mu.Lock()
	auth, locale := srv.auth, srv.locale
	srv.mu.Unlock()
	if auth != "Bearer tok" || locale != "pt-BR" {
		t.Fatalf("auth = %q locale = %q", auth, locale)
	}
}

func TestRunWithoutDraftSendsEmptyCharacter(t *testing.T) {
	srv, wsURL := startScripted(t)
	var out strings.Builder
	if err := Run(context.Background(), Config{URL: wsURL, Token: "tok"}, strings.NewReader(""), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := srv.frames()
	if len(got) != 1 || got[0].Type != "adventure.start" {
		t.Fatalf("frames = %+v", got)
	}
	if !strings.Contains(string(got[0].Payload), `"character":null`) {
		t.Fatalf("payload = %s", got[0].Payload)
	}
}

func TestRunRejectsNonWebSocketURL(t *testing.T) {
	err := Run(context.Background(), Config{URL: "http://localhost/ws", Token: "tok"}, strings.NewReader(""), &strings.Builder{})
	if err == nil {
		t.Fatal("expected scheme error")
	}
}

func TestParseConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LORE_WEAVER_TOKEN", "env-token")
	t.Setenv("LORE_WEAVER_WS_URL", "")

	fs := flag.NewFlagSet("adventure-play", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-name", "Eldrin", "-backstory", "Exiled."})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Token != "env-token" || cfg.Name != "Eldrin" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.URL != "ws://localhost:8090/ws" {
		t.Fatalf("url = %q", cfg.URL)
	}
	if d := cfg.draft(); d == nil || d.Backstory != "Exiled." {
		t.Fatalf("draft = %+v", d)
	}

	t.Setenv("LORE_WEAVER_TOKEN", "")
	if _, err := ParseConfig(flag.NewFlagSet("adventure-play", flag.ContinueOnError), nil); err == nil {
		t.Fatal("expected missing token error")
	}
}
