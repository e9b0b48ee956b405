package operator

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	apperrors "github.com/Womp-Womp/AdventureBot/internal/platform/errors"
)

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
	if amount <= 0 {
		return 0, apperrors.New(apperrors.CodeCreditAmountInvalid, "amount")
	}
	f.balances[targetID] += amount
	return f.balances[targetID], nil
}

func (f *fakeLedger) IsAdmin(userID string) bool {
	return f.admin != "" && userID == f.admin
}

func tokenAuth(token string) (string, error) {
	user, ok := strings.CutPrefix(token, "tok-")
	if !ok {
		return "", errors.New("bad token")
	}
	return user, nil
}

func startOperator(t *testing.T, ledger Ledger) *OperatorClient {
	t.Helper()

	listener := bufconn.Listen(1 << 20)
	server := grpc.NewServer(grpc.UnaryInterceptor(AuthInterceptor(tokenAuth)))
	RegisterOperatorServer(server, NewService(ledger))
	go func() {
		_ = server.Serve(listener)
	}()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufconn: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewOperatorClient(conn)
}

func newLedger() *fakeLedger {
	return &fakeLedger{balances: map[string]float64{"u1": 4.99, "u2": 1}, admin: "root"}
}

func TestGetBalanceDefaultsToCaller(t *testing.T) {
	client := startOperator(t, newLedger())

	got, err := client.GetBalance(WithBearer(context.Background(), "tok-u1"), "")
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if got != 4.99 {
		t.Fatalf("balance = %v", got)
	}
}

func TestGetBalanceOfOtherUserRequiresAdmin(t *testing.T) {
	client := startOperator(t, newLedger())

	_, err := client.GetBalance(WithBearer(context.Background(), "tok-u1"), "u2")
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("code = %v, want PermissionDenied", status.Code(err))
	}

	got, err := client.GetBalance(WithBearer(context.Background(), "tok-root"), "u2")
	if err != nil || got != 1 {
		t.Fatalf("admin read = %v, %v", got, err)
	}
}

func TestRequiresBearer(t *testing.T) {
	client := startOperator(t, newLedger())

	tests := []struct {
		name string
		ctx  context.Context
	}{
		{name: "missing", ctx: context.Background()},
		{name: "bad token", ctx: WithBearer(context.Background(), "nope")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.GetBalance(tt.ctx, "")
			if status.Code(err) != codes.Unauthenticated {
				t.Fatalf("code = %v, want Unauthenticated", status.Code(err))
			}
		})
	}
}

func TestGrantCredits(t *testing.T) {
	ledger := newLedger()
	client := startOperator(t, ledger)

	got, err := client.GrantCredits(WithBearer(context.Background(), "tok-root"), "u2", 2.5)
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if got.UserID != "u2" || got.Balance != 3.5 {
		t.Fatalf("result = %+v", got)
	}
	if got.Text != "Added 2.50 credits to u2. New balance: 3.50." {
		t.Fatalf("text = %q", got.Text)
	}
}

func TestGrantCreditsErrorsCarryLocalizedDetails(t *testing.T) {
	client := startOperator(t, newLedger())
	ctx := metadata.AppendToOutgoingContext(WithBearer(context.Background(), "tok-root"), "accept-language", "pt-BR")

	_, err := client.GrantCredits(ctx, "u2", -1)

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.InvalidArgument {
		t.Fatalf("status = %v", err)
	}
	var info *errdetails.ErrorInfo
	var localized *errdetails.LocalizedMessage
	for _, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.ErrorInfo:
			info = d
		case *errdetails.LocalizedMessage:
			localized = d
		}
	}
	if info == nil || info.Reason != "CREDIT_AMOUNT_INVALID" {
		t.Fatalf("error info = %v", info)
	}
	if localized == nil || localized.Locale != "pt-BR" || localized.Message == "" {
		t.Fatalf("localized = %v", localized)
	}
}

func TestGrantCreditsByNonAdmin(t *testing.T) {
	client := startOperator(t, newLedger())

	_, err := client.GrantCredits(WithBearer(context.Background(), "tok-u1"), "u1", 1)
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("code = %v", status.Code(err))
	}
}
