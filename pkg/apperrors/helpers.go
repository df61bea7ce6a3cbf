package apperrors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// As finds the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err's chain holds an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.kind == kind
}

// StatusCode returns the HTTP status carried by err, or 500 for foreign errors.
func StatusCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.statusCode
	}
	return http.StatusInternalServerError
}

// Code returns the machine-readable code carried by err, or APP_ERROR for foreign errors.
func Code(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.code
	}
	return CodeApp
}

// Normalize turns a failure value into an error. Errors are returned unchanged;
// any other non-nil value, typically recovered from a panic, becomes an error whose
// message is its default formatting, with the stack captured here.
func Normalize(value any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case error:
		return v
	default:
		return errors.New(fmt.Sprint(v))
	}
}
