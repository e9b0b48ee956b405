// Package operator serves the operator gRPC API: balance lookups and
// admin credit grants.
package operator

import (
	"context"
	"strconv"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	apperrors "github.com/Womp-Womp/AdventureBot/internal/platform/errors"
	"github.com/Womp-Womp/AdventureBot/internal/platform/errors/i18n"
	"github.com/Womp-Womp/AdventureBot/internal/platform/requestctx"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/auth"
)

// Ledger is the controller surface the service needs.
type Ledger interface {
	Balance(ctx context.Context, userID string) (float64, error)
	GrantCredits(ctx context.Context, actorID, targetID string, amount float64) (float64, error)
	IsAdmin(userID string) bool
}

// Authenticator resolves a bearer token to a user ID.
type Authenticator func(token string) (string, error)

// Service implements OperatorServer.
type Service struct {
	ledger Ledger
}

var _ OperatorServer = (*Service)(nil)

// NewService creates an operator service.
func NewService(ledger Ledger) *Service {
	return &Service{ledger: ledger}
}

// GetBalance implements OperatorServer. Reading another user's balance
// requires the admin.
func (s *Service) GetBalance(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.DoubleValue, error) {
	if s == nil || s.ledger == nil {
		return nil, statusFor(ctx, apperrors.New(apperrors.CodeUnknown, "ledger is not configured"))
	}
	caller := requestctx.UserIDFromContext(ctx)
	target := strings.TrimSpace(in.GetValue())
	if target == "" {
		target = caller
	}
	if target != caller && !s.ledger.IsAdmin(caller) {
		return nil, statusFor(ctx, apperrors.New(apperrors.CodePermissionDenied, "reading another balance requires the admin user"))
	}
	balance, err := s.ledger.Balance(ctx, target)
	if err != nil {
		return nil, statusFor(ctx, err)
	}
	return wrapperspb.Double(balance), nil
}

// GrantCredits implements OperatorServer.
func (s *Service) GrantCredits(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if s == nil || s.ledger == nil {
		return nil, statusFor(ctx, apperrors.New(apperrors.CodeUnknown, "ledger is not configured"))
	}
	fields := in.GetFields()
	target := strings.TrimSpace(fields["user_id"].GetStringValue())
	amountValue, ok := fields["amount"]
	if !ok {
		return nil, statusFor(ctx, apperrors.New(apperrors.CodeCreditAmountInvalid, "amount is required"))
	}
	amount := amountValue.GetNumberValue()

	balance, err := s.ledger.GrantCredits(ctx, requestctx.UserIDFromContext(ctx), target, amount)
	if err != nil {
		return nil, statusFor(ctx, err)
	}
	text := i18n.GetCatalog(requestctx.LocaleFromContext(ctx)).Format(i18n.NoticeCreditsGranted, map[string]string{
		"Amount":  strconv.FormatFloat(amount, 'f', -1, 64),
		"User":    target,
		"Balance": strconv.FormatFloat(balance, 'f', -1, 64),
	})
	out, err := structpb.NewStruct(map[string]any{
		"user_id": target,
		"balance": balance,
		"text":    text,
	})
	if err != nil {
		return nil, statusFor(ctx, apperrors.Wrap(apperrors.CodeUnknown, "encode grant reply", err))
	}
	return out, nil
}

// AuthInterceptor authenticates operator calls from the authorization
// metadata and records the caller and locale on the context.
func AuthInterceptor(authenticate Authenticator) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !strings.HasPrefix(info.FullMethod, "/"+ServiceName+"/") {
			return handler(ctx, req)
		}
		md, _ := metadata.FromIncomingContext(ctx)
		locale := i18n.BaseLocale
		if values := md.Get("accept-language"); len(values) > 0 {
			locale = i18n.FromAcceptLanguage(values[0])
		}
		ctx = requestctx.WithLocale(ctx, locale)

		var token string
		if values := md.Get("authorization"); len(values) > 0 {
			token = auth.BearerToken(values[0])
		}
		if token == "" || authenticate == nil {
			return nil, statusFor(ctx, apperrors.New(apperrors.CodeUnauthenticated, "bearer token is required"))
		}
		userID, err := authenticate(token)
		if err != nil || strings.TrimSpace(userID) == "" {
			if _, ok := apperrors.As(err); !ok {
				err = apperrors.Wrap(apperrors.CodeUnauthenticated, "token rejected", err)
			}
			return nil, statusFor(ctx, err)
		}
		return handler(requestctx.WithUserID(ctx, strings.TrimSpace(userID)), req)
	}
}

// WithBearer attaches a bearer token to outgoing calls.
func WithBearer(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func statusFor(ctx context.Context, err error) error {
	return apperrors.LocalizedStatus(err, requestctx.LocaleFromContext(ctx))
}
