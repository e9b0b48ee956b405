package controller

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/domain/character"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/domain/history"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/narrative"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/storage"
)

type fakeMessage struct {
	owner    string
	msg      Message
	notice   string
	disabled bool
	deleted  bool
}

type fakePresenter struct {
	mu         sync.Mutex
	next       int
	messages   map[string]*fakeMessage
	notices    map[string][]string
	renderErr  error
	existsErr  error
	missing    map[string]bool
	renders    int
	disableErr error
}

func newFakePresenter() *fakePresenter {
	return &fakePresenter{
		messages: make(map[string]*fakeMessage),
		notices:  make(map[string][]string),
		missing:  make(map[string]bool),
	}
}

func (p *fakePresenter) Render(_ context.Context, userID string, m Message) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renders++
	if p.renderErr != nil {
		return "", p.renderErr
	}
	p.next++
	id := "msg-" + strconv.Itoa(p.next)
	p.messages[id] = &fakeMessage{owner: userID, msg: m}
	return id, nil
}

func (p *fakePresenter) Update(_ context.Context, messageID string, m Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	fm, ok := p.messages[messageID]
	if !ok {
		return fmt.Errorf("unknown message %q", messageID)
	}
	fm.msg = m
	fm.disabled = m.Disabled
	return nil
}

func (p *fakePresenter) Disable(_ context.Context, messageID string, notice string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disableErr != nil {
		return p.disableErr
	}
	fm, ok := p.messages[messageID]
	if !ok {
		return fmt.Errorf("unknown message %q", messageID)
	}
	fm.disabled = true
	fm.notice = notice
	return nil
}

func (p *fakePresenter) Delete(_ context.Context, messageID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	fm, ok := p.messages[messageID]
	if !ok {
		return fmt.Errorf("unknown message %q", messageID)
	}
	fm.deleted = true
	return nil
}

func (p *fakePresenter) Exists(_ context.Context, messageID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.existsErr != nil {
		return false, p.existsErr
	}
	fm, ok := p.messages[messageID]
	return ok && !fm.deleted && !p.missing[messageID], nil
}

func (p *fakePresenter) Notify(_ context.Context, userID string, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notices[userID] = append(p.notices[userID], text)
	return nil
}

func (p *fakePresenter) message(id string) fakeMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	if fm, ok := p.messages[id]; ok {
		return *fm
	}
	return fakeMessage{}
}

func (p *fakePresenter) noticesFor(userID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.notices[userID]...)
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	mu      sync.Mutex
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

func (t *fakeTimer) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) timer(i int) *fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timers[i]
}

func (s *fakeScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

type fakeCharacters struct {
	mu        sync.Mutex
	chars     map[string]character.Character
	deleteErr error
}

func newFakeCharacters() *fakeCharacters {
	return &fakeCharacters{chars: make(map[string]character.Character)}
}

func (f *fakeCharacters) SaveCharacter(_ context.Context, c character.Character) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.chars[c.UserID]; ok {
		return storage.ErrAlreadyExists
	}
	f.chars[c.UserID] = c
	return nil
}

func (f *fakeCharacters) GetCharacter(_ context.Context, userID string) (character.Character, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.chars[userID]
	if !ok {
		return character.Character{}, storage.ErrNotFound
	}
	return c, nil
}

func (f *fakeCharacters) DeleteCharacter(_ context.Context, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	_, ok := f.chars[userID]
	delete(f.chars, userID)
	return ok, nil
}

func (f *fakeCharacters) has(userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.chars[userID]
	return ok
}

type fakeLedger struct {
	mu       sync.Mutex
	balances map[string]float64
	opened   map[string]bool
	debitErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: make(map[string]float64), opened: make(map[string]bool)}
}

func (l *fakeLedger) OpenAccount(_ context.Context, userID string, initial float64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.opened[userID] {
		return false, nil
	}
	l.opened[userID] = true
	l.balances[userID] = initial
	return true, nil
}

func (l *fakeLedger) Balance(_ context.Context, userID string) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userID], nil
}

func (l *fakeLedger) Credit(_ context.Context, userID string, amount float64) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opened[userID] = true
	l.balances[userID] = round4(l.balances[userID] + amount)
	return l.balances[userID], nil
}

func (l *fakeLedger) Debit(_ context.Context, userID string, amount float64) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.debitErr != nil {
		return 0, l.debitErr
	}
	l.balances[userID] = round4(l.balances[userID] - amount)
	return l.balances[userID], nil
}

func (l *fakeLedger) set(userID string, balance float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opened[userID] = true
	l.balances[userID] = balance
}

func (l *fakeLedger) balance(userID string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userID]
}

func round4(v float64) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 4, 64), 64)
	return f
}

// fakeGenerator wraps the stub and can be told to fail or to return a
// scripted turn.
type fakeGenerator struct {
	mu    sync.Mutex
	probe float64
	err   error
	turn  *narrative.Turn
	calls int
	seen  []history.History
	stub  narrative.Stub
}

func (g *fakeGenerator) ProbeCost() float64 {
	return g.probe
}

func (g *fakeGenerator) Generate(ctx context.Context, c character.Character, h history.History) (narrative.Turn, error) {
	g.mu.Lock()
	g.calls++
	g.seen = append(g.seen, h)
	err, turn := g.err, g.turn
	g.mu.Unlock()
	if err != nil {
		return narrative.Turn{}, err
	}
	if turn != nil {
		return *turn, nil
	}
	return g.stub.Generate(ctx, c, h)
}

var errBoom = errors.New("boom")
