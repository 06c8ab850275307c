package errors

import (
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrEmptyAuth     = errors.New("missing authorization")
	ErrEmptySubject  = errors.New("missing subject")
	ErrTokenInvalid  = errors.New("invalid token")
	ErrSessionDenied = errors.New("token does not grant access to this session")
)

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
