// Package form validates user-submitted forms, reporting every invalid field
// through a single ValidationError.
package form

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/JailtonJunior94/aeon-kit/pkg/apperrors"
	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
	"github.com/go-playground/validator/v10"
)

const (
	// CodeValidation is the code of ValidationErrors produced by form validation.
	CodeValidation = "FORM_VALIDATION_ERROR"

	// FailedMessage is the message of ValidationErrors produced by form validation.
	FailedMessage = "Form validation failed"

	// messageTag holds the user-facing message of a field rule.
	messageTag = "message"
)

// Validator checks structs against their `validate` tags.
// Field paths use the json names; messages come from the `message` tag.
type Validator struct {
	validate *validator.Validate
	logger   observability.Logger
}

// NewValidator creates a Validator logging under the "FormValidation" namespace.
func NewValidator(logger observability.Logger) *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonName)

	return &Validator{
		validate: validate,
		logger:   logger.Child("FormValidation"),
	}
}

// Validate returns data when it satisfies its rules. Otherwise it returns a
// ValidationError with code FORM_VALIDATION_ERROR whose context holds the ordered
// field errors under "errors". Failures of the validator itself are returned as is.
func Validate[T any](ctx context.Context, v *Validator, data T) (T, error) {
	err := v.validate.StructCtx(ctx, data)
	if err == nil {
		return data, nil
	}

	var zero T
	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) {
		v.logger.Error(ctx, "Unexpected validation error", observability.Error(err))
		return zero, err
	}

	fieldErrors := formatErrors(reflect.TypeOf(data), validationErrors)
	v.logger.Warn(ctx, FailedMessage, observability.Any("errors", fieldErrors))

	return zero, apperrors.NewValidation(FailedMessage,
		apperrors.WithCode(CodeValidation),
		apperrors.WithContext(apperrors.ErrorsField(apperrors.ErrorsKey, fieldErrors)),
	)
}

func formatErrors(root reflect.Type, validationErrors validator.ValidationErrors) []apperrors.FieldError {
	result := make([]apperrors.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		path := trimRoot(fe.Namespace())
		result = append(result, apperrors.FieldError{
			Path:    path,
			Message: fieldMessage(root, fe, path),
		})
	}
	return result
}

// fieldMessage prefers the `message` tag of the failing field.
func fieldMessage(root reflect.Type, fe validator.FieldError, path string) string {
	if field, ok := lookupField(root, trimRoot(fe.StructNamespace())); ok {
		if message := field.Tag.Get(messageTag); message != "" {
			return message
		}
	}
	return fmt.Sprintf("%s failed on the '%s' rule", path, fe.Tag())
}

func lookupField(root reflect.Type, namespace string) (reflect.StructField, bool) {
	current := root
	var field reflect.StructField

	for _, segment := range strings.Split(namespace, ".") {
		if index := strings.IndexByte(segment, '['); index >= 0 {
			segment = segment[:index]
		}

		current = elem(current)
		if current == nil || current.Kind() != reflect.Struct {
			return reflect.StructField{}, false
		}

		var ok bool
		field, ok = current.FieldByName(segment)
		if !ok {
			return reflect.StructField{}, false
		}
		current = field.Type
	}

	return field, true
}

func elem(t reflect.Type) reflect.Type {
	for t != nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Map:
			t = t.Elem()
		default:
			return t
		}
	}
	return nil
}

// trimRoot drops the leading struct type name of a validator namespace.
func trimRoot(namespace string) string {
	if index := strings.IndexByte(namespace, '.'); index >= 0 {
		return namespace[index+1:]
	}
	return namespace
}

func jsonName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	}
	return name
}
