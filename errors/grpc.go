package errors

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// MapToGRPCError translates ledger sentinel errors into gRPC status codes.
// Unknown errors are reported as Internal without leaking their message.
func MapToGRPCError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrInvalidAmount):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrAlreadyDisconnected):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ErrNameRejected):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrInvalidToken):
		return status.Error(codes.Unauthenticated, err.Error())
	default:
		return status.Error(codes.Internal, "internal ledger error")
	}
}
