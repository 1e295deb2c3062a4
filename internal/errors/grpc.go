package errors

import (
	"sort"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToGRPCError converts err into a gRPC status error. Validation failures are
// attached as a BadRequest detail with one violation per field message.
func ToGRPCError(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	var e *Error
	if !As(err, &e) {
		return status.Error(GetCode(err).GRPCCode(), err.Error())
	}

	st := status.New(e.Code.GRPCCode(), e.Message)
	if fields, ok := e.Meta[MetaValidationErrors].(map[string][]string); ok && len(fields) > 0 {
		if detailed, detailErr := st.WithDetails(badRequest(fields)); detailErr == nil {
			st = detailed
		}
	}
	return st.Err()
}

// FromGRPCError converts a gRPC status error back into an *Error, restoring
// validation fields from a BadRequest detail.
func FromGRPCError(err error) error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	out := &Error{
		Code:    codeFromGRPC(st.Code()),
		Message: st.Message(),
	}
	for _, detail := range st.Details() {
		br, ok := detail.(*errdetails.BadRequest)
		if !ok {
			continue
		}
		fields := make(map[string][]string)
		for _, v := range br.GetFieldViolations() {
			fields[v.GetField()] = append(fields[v.GetField()], v.GetDescription())
		}
		out.WithMeta(MetaValidationErrors, fields)
	}
	return out
}

// GRPCStatus returns the status err would be sent as
func GRPCStatus(err error) *status.Status {
	if err == nil {
		return status.New(codes.OK, "")
	}
	st, _ := status.FromError(ToGRPCError(err))
	return st
}

func badRequest(fields map[string][]string) *errdetails.BadRequest {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	br := &errdetails.BadRequest{}
	for _, name := range names {
		for _, msg := range fields[name] {
			br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       name,
				Description: msg,
			})
		}
	}
	return br
}
