package operator

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "loreweaver.adventure.v1.OperatorService"

const (
	getBalanceMethod   = "/" + ServiceName + "/GetBalance"
	grantCreditsMethod = "/" + ServiceName + "/GrantCredits"
)

// OperatorServer is the server API for the operator service.
//
// GetBalance takes a user ID (empty means the caller) and returns the
// balance. GrantCredits takes a struct with user_id and amount and returns
// user_id, balance, and a localized confirmation text.
type OperatorServer interface {
	GetBalance(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.DoubleValue, error)
	GrantCredits(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

// RegisterOperatorServer registers srv on s.
func RegisterOperatorServer(s grpc.ServiceRegistrar, srv OperatorServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OperatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetBalance", Handler: getBalanceHandler},
		{MethodName: "GrantCredits", Handler: grantCreditsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "loreweaver/adventure/v1/operator.proto",
}

func getBalanceHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OperatorServer).GetBalance(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getBalanceMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OperatorServer).GetBalance(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func grantCreditsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OperatorServer).GrantCredits(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: grantCreditsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OperatorServer).GrantCredits(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// OperatorClient calls the operator service.
type OperatorClient struct {
	cc grpc.ClientConnInterface
}

// NewOperatorClient wraps a client connection.
func NewOperatorClient(cc grpc.ClientConnInterface) *OperatorClient {
	return &OperatorClient{cc: cc}
}

// GetBalance returns the balance of userID, or the caller's when empty.
func (c *OperatorClient) GetBalance(ctx context.Context, userID string, opts ...grpc.CallOption) (float64, error) {
	out := new(wrapperspb.DoubleValue)
	if err := c.cc.Invoke(ctx, getBalanceMethod, wrapperspb.String(userID), out, opts...); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

// GrantResult is the reply to a credit grant.
type GrantResult struct {
	UserID  string
	Balance float64
	Text    string
}

// GrantCredits adds amount to userID's balance.
func (c *OperatorClient) GrantCredits(ctx context.Context, userID string, amount float64, opts ...grpc.CallOption) (GrantResult, error) {
	in, err := structpb.NewStruct(map[string]any{"user_id": userID, "amount": amount})
	if err != nil {
		return GrantResult{}, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, grantCreditsMethod, in, out, opts...); err != nil {
		return GrantResult{}, err
	}
	fields := out.GetFields()
	return GrantResult{
		UserID:  fields["user_id"].GetStringValue(),
		Balance: fields["balance"].GetNumberValue(),
		Text:    fields["text"].GetStringValue(),
	}, nil
}
