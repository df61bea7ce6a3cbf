package apperrors_test

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/JailtonJunior94/aeon-kit/pkg/apperrors"
	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	scenarios := []struct {
		name       string
		err        *apperrors.AppError
		kind       apperrors.Kind
		code       string
		statusCode int
	}{
		{name: "app error", err: apperrors.New("m"), kind: apperrors.KindApp, code: "APP_ERROR", statusCode: http.StatusInternalServerError},
		{name: "api error", err: apperrors.NewAPI("m"), kind: apperrors.KindAPI, code: "API_ERROR", statusCode: http.StatusInternalServerError},
		{name: "validation error", err: apperrors.NewValidation("m"), kind: apperrors.KindValidation, code: "VALIDATION_ERROR", statusCode: http.StatusBadRequest},
		{name: "not found error", err: apperrors.NewNotFound("m"), kind: apperrors.KindNotFound, code: "NOT_FOUND", statusCode: http.StatusNotFound},
		{name: "unauthorized error", err: apperrors.NewUnauthorized("m"), kind: apperrors.KindUnauthorized, code: "UNAUTHORIZED", statusCode: http.StatusUnauthorized},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			assert.Equal(t, "m", scenario.err.Error())
			assert.Equal(t, scenario.kind, scenario.err.Kind())
			assert.Equal(t, string(scenario.kind), scenario.err.ErrorKind())
			assert.Equal(t, scenario.code, scenario.err.Code())
			assert.Equal(t, scenario.statusCode, scenario.err.StatusCode())
			assert.Empty(t, scenario.err.Context())
			assert.NotEmpty(t, scenario.err.StackTrace())
		})
	}
}

func TestOverrides(t *testing.T) {
	t.Run("app and api errors accept a status override", func(t *testing.T) {
		err := apperrors.NewAPI("upstream down", apperrors.WithCode("UPSTREAM"), apperrors.WithStatusCode(http.StatusBadGateway))
		assert.Equal(t, "UPSTREAM", err.Code())
		assert.Equal(t, http.StatusBadGateway, err.StatusCode())

		err = apperrors.New("teapot", apperrors.WithStatusCode(http.StatusTeapot))
		assert.Equal(t, http.StatusTeapot, err.StatusCode())
	})

	t.Run("fixed kinds ignore the status override", func(t *testing.T) {
		err := apperrors.NewValidation("bad", apperrors.WithCode("FORM_VALIDATION_ERROR"), apperrors.WithStatusCode(http.StatusTeapot))
		assert.Equal(t, "FORM_VALIDATION_ERROR", err.Code())
		assert.Equal(t, http.StatusBadRequest, err.StatusCode())

		assert.Equal(t, http.StatusNotFound, apperrors.NewNotFound("x", apperrors.WithStatusCode(500)).StatusCode())
		assert.Equal(t, http.StatusUnauthorized, apperrors.NewUnauthorized("x", apperrors.WithStatusCode(500)).StatusCode())
	})

	t.Run("empty values fall back to the defaults", func(t *testing.T) {
		err := apperrors.New("m", apperrors.WithCode(""), apperrors.WithStatusCode(0))
		assert.Equal(t, "APP_ERROR", err.Code())
		assert.Equal(t, http.StatusInternalServerError, err.StatusCode())
	})
}

func TestCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := apperrors.NewAPI("request failed", apperrors.WithCause(cause))

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "request failed", err.Error())
}

func TestHelpers(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", apperrors.NewNotFound("page missing"))

	appErr, ok := apperrors.As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "page missing", appErr.Message())

	assert.True(t, apperrors.IsKind(wrapped, apperrors.KindNotFound))
	assert.False(t, apperrors.IsKind(wrapped, apperrors.KindApp))
	assert.Equal(t, http.StatusNotFound, apperrors.StatusCode(wrapped))
	assert.Equal(t, "NOT_FOUND", apperrors.Code(wrapped))

	foreign := stderrors.New("plain")
	_, ok = apperrors.As(foreign)
	assert.False(t, ok)
	assert.Equal(t, http.StatusInternalServerError, apperrors.StatusCode(foreign))
	assert.Equal(t, "APP_ERROR", apperrors.Code(foreign))
}

func TestNormalize(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, apperrors.Normalize(nil))
	})

	t.Run("errors are returned unchanged", func(t *testing.T) {
		err := apperrors.NewValidation("bad")
		assert.Same(t, err, apperrors.Normalize(err))
	})

	t.Run("other values become errors with a stack", func(t *testing.T) {
		err := apperrors.Normalize(42)
		require.Error(t, err)
		assert.Equal(t, "42", err.Error())

		_, hasStack := observability.StackText(err)
		assert.True(t, hasStack)
	})
}

func TestContextKeepsOrderAndKinds(t *testing.T) {
	err := apperrors.NewValidation("Form validation failed",
		apperrors.WithContext(
			apperrors.StringField("form", "contact"),
			apperrors.IntField("attempt", 2),
			apperrors.BoolField("retryable", false),
			apperrors.ErrorsField(apperrors.ErrorsKey, []apperrors.FieldError{
				{Path: "name", Message: "Name is required"},
				{Path: "question", Message: "Question is required"},
			}),
		),
	)

	ctx := err.Context()
	require.Equal(t, 4, ctx.Len())

	attempt, ok := ctx.Get("attempt")
	require.True(t, ok)
	assert.Equal(t, apperrors.ValueInt, attempt.Type())
	assert.Equal(t, 2, attempt.Int())

	fieldErrors := err.FieldErrors()
	require.Len(t, fieldErrors, 2)
	assert.Equal(t, "name", fieldErrors[0].Path)
	assert.Equal(t, "question", fieldErrors[1].Path)

	body, marshalErr := json.Marshal(ctx)
	require.NoError(t, marshalErr)
	assert.JSONEq(t, `{"form":"contact","attempt":2,"retryable":false,"errors":[{"path":"name","message":"Name is required"},{"path":"question","message":"Question is required"}]}`, string(body))
	assert.Equal(t, `{"form":"contact","attempt":2,"retryable":false,"errors":[{"path":"name","message":"Name is required"},{"path":"question","message":"Question is required"}]}`, string(body))
}

func TestContextDecodesResponseDetails(t *testing.T) {
	var ctx apperrors.Context
	require.NoError(t, json.Unmarshal([]byte(`{"path":"/x","status":503,"retryable":true,"errors":[{"path":"name","message":"Name is required"}]}`), &ctx))

	require.Equal(t, 4, ctx.Len())
	assert.Equal(t, "path", ctx[0].Key)
	status, _ := ctx.Get("status")
	assert.Equal(t, 503, status.Int())
	retryable, _ := ctx.Get("retryable")
	assert.True(t, retryable.Bool())
	errs, _ := ctx.Get(apperrors.ErrorsKey)
	assert.Equal(t, []apperrors.FieldError{{Path: "name", Message: "Name is required"}}, errs.FieldErrors())

	assert.Error(t, json.Unmarshal([]byte(`{"ratio":0.5}`), &ctx))
	assert.Error(t, json.Unmarshal([]byte(`["not","an","object"]`), &ctx))
}

func TestContextIsCopiedOnRead(t *testing.T) {
	err := apperrors.New("m", apperrors.WithContext(apperrors.StringField("a", "1")))

	ctx := err.Context()
	ctx[0] = apperrors.StringField("a", "changed")

	value, _ := err.Context().Get("a")
	assert.Equal(t, "1", value.String())
}

func TestLoggerReportsKindAndStack(t *testing.T) {
	err := apperrors.NewUnauthorized("token expired")

	assert.Equal(t, "UnauthorizedError", observability.ErrorKind(err))
	stack, ok := observability.StackText(err)
	require.True(t, ok)
	assert.NotEmpty(t, stack)
}

func TestFormatPlusV(t *testing.T) {
	err := apperrors.NewAPI("Unsplash API error: 503 Service Unavailable")

	assert.Equal(t, "Unsplash API error: 503 Service Unavailable", fmt.Sprintf("%v", err))
	assert.Contains(t, fmt.Sprintf("%+v", err), "ApiError: Unsplash API error: 503 Service Unavailable")
}
