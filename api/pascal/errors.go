package pascal

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	mdwerror "github.com/msto63/pascal/foundation/core/error"
)

// GRPCCode maps an error code to a gRPC status code
func GRPCCode(code mdwerror.Code) codes.Code {
	switch code {
	case mdwerror.CodeNotFound:
		return codes.NotFound
	case mdwerror.CodeInvalidInput, mdwerror.CodeInvalidFormat, mdwerror.CodeInvalidLength,
		mdwerror.CodeSyntax, mdwerror.CodeUndefinedVariable:
		return codes.InvalidArgument
	case mdwerror.CodeTimeout:
		return codes.DeadlineExceeded
	case mdwerror.CodeServiceUnavailable, mdwerror.CodeDatabaseError:
		return codes.Unavailable
	case mdwerror.CodeInvalidConfig, mdwerror.CodeConfigError:
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}

// ToStatus converts err to a gRPC status error. Status errors pass
// through unchanged.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var mdwErr *mdwerror.Error
	if errors.As(err, &mdwErr) {
		return status.Error(GRPCCode(mdwErr.Code()), mdwErr.Message())
	}
	return status.Error(codes.Internal, err.Error())
}

// FromStatus converts a gRPC status error into an *mdwerror.Error with a
// matching code
func FromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	var code mdwerror.Code
	switch st.Code() {
	case codes.NotFound:
		code = mdwerror.CodeNotFound
	case codes.InvalidArgument:
		code = mdwerror.CodeInvalidInput
	case codes.DeadlineExceeded, codes.Canceled:
		code = mdwerror.CodeTimeout
	case codes.Unavailable:
		code = mdwerror.CodeServiceUnavailable
	case codes.FailedPrecondition:
		code = mdwerror.CodeConfigError
	default:
		code = mdwerror.CodeInternal
	}

	return mdwerror.Wrap(err, st.Message()).
		WithCode(code).
		WithDetail("grpc_code", st.Code().String())
}
