package grpc

import (
	"errors"
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	mdwerror "github.com/msto63/euklid/foundation/core/error"
)

// ErrorDomain identifies euklid error codes inside google.rpc.ErrorInfo
const ErrorDomain = "euklid"

// StatusCode maps a structured error code to a gRPC status code
func StatusCode(code mdwerror.Code) codes.Code {
	switch code {
	case mdwerror.CodeInvalidInput, mdwerror.CodeParseError, mdwerror.CodeInvalidFormat,
		mdwerror.CodeDivisionByZero, mdwerror.CodeEmptyInput, mdwerror.CodeInsufficientInputs,
		mdwerror.CodeNonTerminatingDecimal, mdwerror.CodeValidationFailed:
		return codes.InvalidArgument
	case mdwerror.CodeOverflow:
		return codes.OutOfRange
	case mdwerror.CodeNotFound:
		return codes.NotFound
	case mdwerror.CodeRateLimited:
		return codes.ResourceExhausted
	case mdwerror.CodeTimeout:
		return codes.DeadlineExceeded
	case mdwerror.CodeServiceUnavailable:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// ToStatus converts err into a gRPC status error. The structured code and
// the error details travel in an ErrorInfo so FromStatus can restore them.
// Errors that already carry a status are returned unchanged.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var mdwErr *mdwerror.Error
	if !errors.As(err, &mdwErr) {
		return status.Error(codes.Internal, err.Error())
	}

	code := mdwerror.GetCode(err)
	st := status.New(StatusCode(code), err.Error())

	metadata := map[string]string{}
	for k, v := range mdwErr.Details() {
		metadata[k] = fmt.Sprint(v)
	}
	withInfo, derr := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   string(code),
		Domain:   ErrorDomain,
		Metadata: metadata,
	})
	if derr != nil {
		return st.Err()
	}
	return withInfo.Err()
}

// FromStatus restores a structured error from a gRPC status error. Errors
// without euklid ErrorInfo keep their gRPC code as CodeServiceUnavailable
// or CodeInternal.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != ErrorDomain {
			continue
		}
		e := mdwerror.New(st.Message()).WithCode(mdwerror.Code(info.GetReason()))
		for k, v := range info.GetMetadata() {
			e = e.WithDetail(k, v)
		}
		return e
	}

	switch st.Code() {
	case codes.Unavailable:
		return mdwerror.Wrap(err, "calculator unavailable").WithCode(mdwerror.CodeServiceUnavailable)
	case codes.DeadlineExceeded:
		return mdwerror.Wrap(err, "request timed out").WithCode(mdwerror.CodeTimeout)
	default:
		return mdwerror.Wrap(err, st.Message()).WithCode(mdwerror.CodeInternal)
	}
}
