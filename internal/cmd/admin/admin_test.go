package admin

import (
	"bytes"
	"context"
	"flag"
	"net"
	"strings"
	"testing"
	"time"

	apperrors "github.com/Womp-Womp/AdventureBot/internal/platform/errors"
	platformgrpc "github.com/Womp-Womp/AdventureBot/internal/platform/grpc"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/api/grpc/operator"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/auth"
)

const testSecret = "admin-test-secret"

type fakeLedger struct {
	balances map[string]float64
	admin    string
}

func (f *fakeLedger) Balance(_ context.Context, userID string) (float64, error) {
	return f.balances[userID], nil
}

func (f *fakeLedger) GrantCredits(_ context.Context, actorID, targetID string, amount float64) (float64, error) {
	if !f.IsAdmin(actorID) {
		return 0, apperrors.New(apperrors.CodePermissionDenied, "denied")
	}
	f.balances[targetID] += amount
	return f.balances[targetID], nil
}

func (f *fakeLedger) IsAdmin(userID string) bool {
	return userID == f.admin
}

func startOperator(t *testing.T, ledger operator.Ledger) string {
	t.Helper()

	tokens := auth.Config{Secret: []byte(testSecret)}
	server, _ := platformgrpc.NewServer(operator.AuthInterceptor(func(token string) (string, error) {
		return auth.Verify(tokens, token)
	}), operator.ServiceName)
	operator.RegisterOperatorServer(server, operator.NewService(ledger))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		_ = server.Serve(listener)
	}()
	t.Cleanup(server.Stop)
	return listener.Addr().String()
}

func parse(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	fs := flag.NewFlagSet("adventure-admin", flag.ContinueOnError)
	return ParseConfig(fs, args)
}

func TestParseConfigGrantWithPositionalAmount(t *testing.T) {
	t.Setenv("LORE_WEAVER_AUTH_SECRET", testSecret)
	t.Setenv("LORE_WEAVER_ADMIN_USER_ID", "root")

	cfg, err := parse(t, "-user", "u1", "grant", "2.5")
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Command != CommandGrant || cfg.UserID != "u1" || cfg.Amount != 2.5 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.AdminUserID != "root" {
		t.Fatalf("admin = %q", cfg.AdminUserID)
	}
	if cfg.GRPCAddr != "localhost:8091" || cfg.DialTimeout != 5*time.Second {
		t.Fatalf("defaults = %q %v", cfg.GRPCAddr, cfg.DialTimeout)
	}
}

func TestParseConfigRejects(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		admin  string
		args   []string
	}{
		{name: "missing secret", args: []string{"-user", "u1", "token"}},
		{name: "missing command", secret: testSecret, args: []string{"-user", "u1"}},
		{name: "unknown command", secret: testSecret, args: []string{"-user", "u1", "refund"}},
		{name: "token without user", secret: testSecret, args: []string{"token"}},
		{name: "grant without admin", secret: testSecret, args: []string{"-user", "u1", "-amount", "1", "grant"}},
		{name: "balance without anyone", secret: testSecret, args: []string{"balance"}},
		{name: "bad amount", secret: testSecret, admin: "root", args: []string{"-user", "u1", "grant", "lots"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LORE_WEAVER_AUTH_SECRET", tt.secret)
			t.Setenv("LORE_WEAVER_ADMIN_USER_ID", tt.admin)
			if _, err := parse(t, tt.args...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRunTokenPrintsVerifiableToken(t *testing.T) {
	var out bytes.Buffer
	cfg := Config{AuthSecret: testSecret, Command: CommandToken, UserID: "u1", TokenTTL: time.Hour}
	if err := Run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	userID, err := auth.Verify(auth.Config{Secret: []byte(testSecret)}, strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("subject = %q", userID)
	}
}

func TestRunBalanceAndGrant(t *testing.T) {
	t.Setenv("LORE_WEAVER_OTEL_ENDPOINT", "")
	ledger := &fakeLedger{balances: map[string]float64{"u1": 1.25}, admin: "root"}
	addr := startOperator(t, ledger)
	base := Config{
		GRPCAddr:    addr,
		AuthSecret:  testSecret,
		AdminUserID: "root",
		DialTimeout: 2 * time.Second,
		UserID:      "u1",
	}

	var out bytes.Buffer
	balance := base
	balance.Command = CommandBalance
	if err := Run(context.Background(), balance, &out); err != nil {
		t.Fatalf("balance: %v", err)
	}
	if got := out.String(); got != "u1 1.25\n" {
		t.Fatalf("balance output = %q", got)
	}

	out.Reset()
	grant := base
	grant.Command = CommandGrant
	grant.Amount = 2.5
	if err := Run(context.Background(), grant, &out); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if got := out.String(); !strings.Contains(got, "3.75") {
		t.Fatalf("grant output = %q", got)
	}
	if ledger.balances["u1"] != 3.75 {
		t.Fatalf("ledger balance = %v", ledger.balances["u1"])
	}
}

func TestRunGrantAsNonAdminFails(t *testing.T) {
	t.Setenv("LORE_WEAVER_OTEL_ENDPOINT", "")
	ledger := &fakeLedger{balances: map[string]float64{}, admin: "root"}
	addr := startOperator(t, ledger)

	cfg := Config{
		GRPCAddr:    addr,
		AuthSecret:  testSecret,
		AdminUserID: "mallory",
		DialTimeout: 2 * time.Second,
		Command:     CommandGrant,
		UserID:      "u1",
		Amount:      1,
	}
	err := Run(context.Background(), cfg, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "grant credits") {
		t.Fatalf("expected grant error, got %v", err)
	}
}
