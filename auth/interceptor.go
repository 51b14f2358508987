package auth

import (
	"context"
	"strings"

	pb "arena-ledger/proto/ledger"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Map of methods that do not require session authentication.
// Using generated constants from the proto package for type-safety.
var publicMethods = map[string]struct{}{
	pb.LedgerService_Join_FullMethodName: {},
}

type contextKey string

const (
	ParticipantIDKey contextKey = "participant_id"
	DisplayNameKey   contextKey = "display_name"
)

// UnaryAuthInterceptor handles session token validation for incoming gRPC calls.
func UnaryAuthInterceptor(ctx context.Context, req any,
	info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	// Skip authentication for public methods (Join)
	if isPublicMethod(info.FullMethod) {
		return handler(ctx, req)
	}

	newCtx, err := authenticate(ctx)
	if err != nil {
		return nil, err
	}
	return handler(newCtx, req)
}

// StreamAuthInterceptor protects the Subscribe stream the same way the
// unary calls are protected.
func StreamAuthInterceptor(srv any, ss grpc.ServerStream,
	info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	if isPublicMethod(info.FullMethod) {
		return handler(srv, ss)
	}

	newCtx, err := authenticate(ss.Context())
	if err != nil {
		return err
	}
	return handler(srv, &wrappedStream{ServerStream: ss, ctx: newCtx})
}

// authenticate extracts and validates the Bearer token carried in the
// call metadata and enriches the context with the participant identity.
func authenticate(ctx context.Context) (context.Context, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "metadata is missing")
	}

	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, status.Error(codes.Unauthenticated, "authorization token is missing")
	}

	// Expecting the standard "Bearer <token>" format
	tokenStr := strings.TrimPrefix(values[0], "Bearer ")

	claims, err := ValidateToken(tokenStr)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid or expired token")
	}

	// Inject participant identity into context for downstream service layers
	newCtx := context.WithValue(ctx, ParticipantIDKey, claims.ParticipantID)
	newCtx = context.WithValue(newCtx, DisplayNameKey, claims.DisplayName)
	return newCtx, nil
}

// isPublicMethod checks if the current gRPC method is allowed without a token.
func isPublicMethod(method string) bool {
	_, ok := publicMethods[method]
	return ok
}

type wrappedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedStream) Context() context.Context { return w.ctx }
