// Package apperrors classifies failures into a closed set of kinds, each carrying
// a machine-readable code, an HTTP-style status and an optional structured context.
package apperrors

import (
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// Kind discriminates the variants of AppError.
type Kind string

const (
	KindApp          Kind = "AppError"
	KindAPI          Kind = "ApiError"
	KindValidation   Kind = "ValidationError"
	KindNotFound     Kind = "NotFoundError"
	KindUnauthorized Kind = "UnauthorizedError"
)

const (
	CodeApp          = "APP_ERROR"
	CodeAPI          = "API_ERROR"
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
)

type defaults struct {
	code           string
	statusCode     int
	statusOverride bool
}

var kindDefaults = map[Kind]defaults{
	KindApp:          {code: CodeApp, statusCode: http.StatusInternalServerError, statusOverride: true},
	KindAPI:          {code: CodeAPI, statusCode: http.StatusInternalServerError, statusOverride: true},
	KindValidation:   {code: CodeValidation, statusCode: http.StatusBadRequest},
	KindNotFound:     {code: CodeNotFound, statusCode: http.StatusNotFound},
	KindUnauthorized: {code: CodeUnauthorized, statusCode: http.StatusUnauthorized},
}

// AppError is the single error type behind every kind. It is immutable after construction.
type AppError struct {
	kind       Kind
	message    string
	code       string
	statusCode int
	context    Context
	cause      error
	stack      errors.StackTrace
}

// New creates a generic application error (APP_ERROR, 500).
func New(message string, opts ...Option) *AppError {
	return newError(KindApp, message, opts)
}

// NewAPI creates an error for failed calls to external APIs (API_ERROR, 500).
func NewAPI(message string, opts ...Option) *AppError {
	return newError(KindAPI, message, opts)
}

// NewValidation creates a user-input error (VALIDATION_ERROR, 400). The status is fixed.
func NewValidation(message string, opts ...Option) *AppError {
	return newError(KindValidation, message, opts)
}

// NewNotFound creates a missing-resource error (NOT_FOUND, 404). The status is fixed.
func NewNotFound(message string, opts ...Option) *AppError {
	return newError(KindNotFound, message, opts)
}

// NewUnauthorized creates an authentication error (UNAUTHORIZED, 401). The status is fixed.
func NewUnauthorized(message string, opts ...Option) *AppError {
	return newError(KindUnauthorized, message, opts)
}

func newError(kind Kind, message string, opts []Option) *AppError {
	settings := options{}
	for _, opt := range opts {
		opt(&settings)
	}

	def := kindDefaults[kind]
	code := def.code
	if settings.code != "" {
		code = settings.code
	}

	statusCode := def.statusCode
	if def.statusOverride && settings.statusCode != 0 {
		statusCode = settings.statusCode
	}

	return &AppError{
		kind:       kind,
		message:    message,
		code:       code,
		statusCode: statusCode,
		context:    settings.context,
		cause:      settings.cause,
		stack:      callers(),
	}
}

// callers drops the frames of callers itself, newError and the exported constructor.
func callers() errors.StackTrace {
	trace := errors.New("").(stackTracer).StackTrace()
	if len(trace) > 3 {
		return trace[3:]
	}
	return trace
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func (e *AppError) Error() string {
	return e.message
}

// Kind returns the variant discriminator.
func (e *AppError) Kind() Kind {
	return e.kind
}

// ErrorKind returns the discriminator as printed by loggers.
func (e *AppError) ErrorKind() string {
	return string(e.kind)
}

func (e *AppError) Message() string {
	return e.message
}

func (e *AppError) Code() string {
	return e.code
}

func (e *AppError) StatusCode() int {
	return e.statusCode
}

// Context returns a copy of the diagnostic payload.
func (e *AppError) Context() Context {
	return e.context.clone()
}

// FieldErrors returns the itemized field errors stored under "errors", if any.
func (e *AppError) FieldErrors() []FieldError {
	value, ok := e.context.Get(ErrorsKey)
	if !ok {
		return nil
	}
	return value.FieldErrors()
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// StackTrace returns the call stack captured at construction.
func (e *AppError) StackTrace() errors.StackTrace {
	return e.stack
}

// Format supports %s, %v, %q and %+v (message, cause and stack trace).
func (e *AppError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "%s: %s", e.kind, e.message)
			if e.cause != nil {
				_, _ = fmt.Fprintf(s, ": %+v", e.cause)
			}
			e.stack.Format(s, verb)
			return
		}
		fallthrough
	case 's':
		_, _ = io.WriteString(s, e.message)
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.message)
	}
}
