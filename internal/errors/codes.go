package errors

import "google.golang.org/grpc/codes"

// Code classifies an error independently of the transport it leaves through
type Code string

const (
	CodeOK                 Code = "OK"
	CodeCanceled           Code = "CANCELED"
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodeDeadlineExceeded   Code = "DEADLINE_EXCEEDED"
	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"
	CodeUnimplemented      Code = "UNIMPLEMENTED"
	CodeInternal           Code = "INTERNAL"
	CodeUnavailable        Code = "UNAVAILABLE"
)

var toGRPC = map[Code]codes.Code{
	CodeOK:                 codes.OK,
	CodeCanceled:           codes.Canceled,
	CodeInvalidArgument:    codes.InvalidArgument,
	CodeDeadlineExceeded:   codes.DeadlineExceeded,
	CodeNotFound:           codes.NotFound,
	CodeAlreadyExists:      codes.AlreadyExists,
	CodeFailedPrecondition: codes.FailedPrecondition,
	CodeUnimplemented:      codes.Unimplemented,
	CodeInternal:           codes.Internal,
	CodeUnavailable:        codes.Unavailable,
}

var fromGRPC = func() map[codes.Code]Code {
	m := make(map[codes.Code]Code, len(toGRPC))
	for c, g := range toGRPC {
		m[g] = c
	}
	return m
}()

// String returns the string representation of the code
func (c Code) String() string {
	return string(c)
}

// GRPCCode returns the matching gRPC status code. Unknown codes map to Unknown.
func (c Code) GRPCCode() codes.Code {
	if g, ok := toGRPC[c]; ok {
		return g
	}
	return codes.Unknown
}

func codeFromGRPC(g codes.Code) Code {
	if c, ok := fromGRPC[g]; ok {
		return c
	}
	return CodeInternal
}
