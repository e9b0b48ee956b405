// Package play implements a terminal client that plays adventures over the
// WebSocket endpoint.
package play

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	entrypoint "github.com/Womp-Womp/AdventureBot/internal/platform/cmd"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/domain/character"
)

// Config holds play command configuration.
type Config struct {
	URL    string `env:"LORE_WEAVER_WS_URL" envDefault:"ws://localhost:8090/ws"`
	Token  string `env:"LORE_WEAVER_TOKEN"`
	Locale string `env:"LORE_WEAVER_LOCALE"`

	Name      string
	Backstory string
	Abilities string
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.URL, "url", cfg.URL, "adventure WebSocket URL")
	fs.StringVar(&cfg.Token, "token", cfg.Token, "bearer token from adventure-admin token")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "preferred locale")
	fs.StringVar(&cfg.Name, "name", "", "character name for a first adventure")
	fs.StringVar(&cfg.Backstory, "backstory", "", "character backstory")
	fs.StringVar(&cfg.Abilities, "abilities", "", "character abilities")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return Config{}, errors.New("a token is required: pass -token or set LORE_WEAVER_TOKEN")
	}
	return cfg, nil
}

func (c Config) draft() *character.Draft {
	if strings.TrimSpace(c.Name) == "" && strings.TrimSpace(c.Backstory) == "" {
		return nil
	}
	return &character.Draft{Name: c.Name, Backstory: c.Backstory, Abilities: c.Abilities}
}

type frame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type card struct {
	MessageID string   `json:"message_id"`
	OwnerID   string   `json:"owner_id"`
	Kind      string   `json:"kind"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Footer    string   `json:"footer"`
	Choices   []string `json:"choices"`
	Disabled  bool     `json:"disabled"`
	Notice    string   `json:"notice"`
}

var errClosed = errors.New("connection closed by server")

// Run connects, starts an adventure, and relays choices read from in until
// the player quits or in is exhausted.
func Run(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServicePlay, func(ctx context.Context) error {
		return play(ctx, cfg, in, out)
	})
}

func play(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	target, err := dialURL(cfg)
	if err != nil {
		return err
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+strings.TrimSpace(cfg.Token))
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, target, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial %s: %s: %w", cfg.URL, resp.Status, err)
		}
		return fmt.Errorf("dial %s: %w", cfg.URL, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	s := &session{conn: conn, out: out, frames: readFrames(conn)}
	if err := s.awaitReady(); err != nil {
		return err
	}
	if err := s.request("adventure.start", map[string]any{"character": cfg.draft()}); err != nil {
		return err
	}

	lines := bufio.NewScanner(in)
	for {
		s.prompt()
		if !lines.Scan() {
			return lines.Err()
		}
		input := strings.ToLower(strings.TrimSpace(lines.Text()))
		switch input {
		case "":
			continue
		case "q", "quit":
			return nil
		case "r", "reset":
			err = s.request("adventure.reset", nil)
		case "s", "start":
			err = s.request("adventure.start", nil)
		default:
			n, convErr := strconv.Atoi(input)
			if convErr != nil || s.active == nil || n < 1 || n > len(s.active.Choices) {
				fmt.Fprintf(out, "Unknown input %q.\n", input)
				continue
			}
			err = s.request("adventure.choice", map[string]any{"message_id": s.active.MessageID, "index": n - 1})
		}
		if err != nil {
			return err
		}
	}
}

func dialURL(cfg Config) (string, error) {
	u, err := url.Parse(strings.TrimSpace(cfg.URL))
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", cfg.URL, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", fmt.Errorf("url %q must use ws or wss", cfg.URL)
	}
	if locale := strings.TrimSpace(cfg.Locale); locale != "" {
		q := u.Query()
		q.Set("locale", locale)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func readFrames(conn *websocket.Conn) <-chan frame {
	frames := make(chan frame, 64)
	go func() {
		defer close(frames)
		for {
			var f frame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			frames <- f
		}
	}()
	return frames
}

type session struct {
	conn   *websocket.Conn
	out    io.Writer
	frames <-chan frame
	userID string
	active *card
	seq    int
}

func (s *session) awaitReady() error {
	for f := range s.frames {
		if f.Type == "adventure.ready" {
			var ready struct {
				UserID string `json:"user_id"`
			}
			_ = json.Unmarshal(f.Payload, &ready)
			s.userID = ready.UserID
			fmt.Fprintf(s.out, "Connected as %s.\n", s.userID)
			return nil
		}
		s.handle(f)
	}
	return errClosed
}

// request sends a frame and consumes frames until its ack or error arrives.
func (s *session) request(kind string, payload any) error {
	s.seq++
	id := "req-" + strconv.Itoa(s.seq)
	f := frame{Type: kind, RequestID: id}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		f.Payload = raw
	}
	if err := s.conn.WriteJSON(f); err != nil {
		return fmt.Errorf("send %s: %w", kind, err)
	}
	for reply := range s.frames {
		if reply.RequestID == id && (reply.Type == "adventure.ack" || reply.Type == "adventure.error") {
			s.handle(reply)
			return nil
		}
		s.handle(reply)
	}
	return errClosed
}

func (s *session) handle(f frame) {
	switch f.Type {
	case "adventure.message":
		var env struct {
			Message card `json:"message"`
		}
		if err := json.Unmarshal(f.Payload, &env); err != nil {
			return
		}
		c := env.Message
		if s.userID != "" && c.OwnerID != s.userID {
			return
		}
		if c.Disabled {
			if s.active != nil && s.active.MessageID == c.MessageID {
				s.active = nil
			}
			return
		}
		s.active = &c
		s.printCard(c)
	case "adventure.deleted":
		var del struct {
			MessageID string `json:"message_id"`
		}
		_ = json.Unmarshal(f.Payload, &del)
		if s.active != nil && s.active.MessageID == del.MessageID {
			s.active = nil
		}
	case "adventure.notice":
		var notice struct {
			Text string `json:"text"`
		}
		_ = json.Unmarshal(f.Payload, &notice)
		fmt.Fprintf(s.out, "* %s\n", notice.Text)
	case "adventure.error":
		var env struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(f.Payload, &env)
		fmt.Fprintf(s.out, "! %s\n", env.Error.Message)
	}
}

func (s *session) printCard(c card) {
	fmt.Fprintf(s.out, "\n== %s ==\n%s\n", c.Title, c.Body)
	if c.Notice != "" {
		fmt.Fprintf(s.out, "(%s)\n", c.Notice)
	}
	for i, choice := range c.Choices {
		fmt.Fprintf(s.out, "%d) %s\n", i+1, choice)
	}
	if c.Footer != "" {
		fmt.Fprintln(s.out, c.Footer)
	}
}

func (s *session) prompt() {
	if s.active != nil && len(s.active.Choices) > 0 {
		fmt.Fprintf(s.out, "> choose 1-%d, r to reset, q to quit: ", len(s.active.Choices))
		return
	}
	fmt.Fprint(s.out, "> s to start, r to reset, q to quit: ")
}
