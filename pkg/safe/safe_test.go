package safe_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/JailtonJunior94/aeon-kit/pkg/apperrors"
	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
	"github.com/JailtonJunior94/aeon-kit/pkg/observability/fake"
	"github.com/JailtonJunior94/aeon-kit/pkg/safe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTryCatch(t *testing.T) {
	t.Run("returns the result on success", func(t *testing.T) {
		logger := fake.NewLogger()

		result, err := safe.TryCatch(logger, func() (int, error) { return 7, nil }, nil)

		require.NoError(t, err)
		assert.Equal(t, 7, result)
		assert.Empty(t, logger.GetEntries())
	})

	t.Run("handler recovers the failure", func(t *testing.T) {
		logger := fake.NewLogger()
		failure := apperrors.NewValidation("bad input")
		calls := 0
		var received error

		result, err := safe.TryCatch(logger, func() (string, error) {
			return "", failure
		}, func(err error) string {
			calls++
			received = err
			return "fallback"
		})

		require.NoError(t, err)
		assert.Equal(t, "fallback", result)
		assert.Equal(t, 1, calls)
		assert.Same(t, failure, received)
		assert.Empty(t, logger.GetEntries())
	})

	t.Run("without handler logs once and returns the error", func(t *testing.T) {
		logger := fake.NewLogger()
		failure := stderrors.New("boom")

		_, err := safe.TryCatch(logger, func() (int, error) { return 0, failure }, nil)

		assert.ErrorIs(t, err, failure)
		entries := logger.EntriesAt(observability.LogLevelError)
		require.Len(t, entries, 1)
		assert.Equal(t, safe.UnhandledMessage, entries[0].Message)
		assert.Len(t, logger.GetEntries(), 1)
	})

	t.Run("panics are normalized", func(t *testing.T) {
		logger := fake.NewLogger()

		var received error
		result, err := safe.TryCatch(logger, func() (*int, error) {
			panic("kaboom")
		}, func(err error) *int {
			received = err
			return nil
		})

		require.NoError(t, err)
		assert.Nil(t, result)
		require.Error(t, received)
		assert.Equal(t, "kaboom", received.Error())
	})

	t.Run("panics with errors keep the error", func(t *testing.T) {
		logger := fake.NewLogger()
		failure := apperrors.NewNotFound("missing")

		_, err := safe.TryCatch(logger, func() (int, error) { panic(failure) }, nil)

		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
		assert.Len(t, logger.EntriesAt(observability.LogLevelError), 1)
	})
}

func TestTryCatchAsync(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the result on success", func(t *testing.T) {
		logger := fake.NewLogger()

		result, err := safe.TryCatchAsync(ctx, logger, func(ctx context.Context) ([]string, error) {
			return []string{"a", "b"}, nil
		}, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, result)
	})

	t.Run("rejection without handler returns the same error and logs exactly once", func(t *testing.T) {
		logger := fake.NewLogger()
		failure := apperrors.NewAPI("Unsplash API error: 500 Internal Server Error")

		_, err := safe.TryCatchAsync(ctx, logger, func(ctx context.Context) (int, error) {
			return 0, failure
		}, nil)

		assert.Same(t, failure, err)
		entries := logger.GetEntries()
		require.Len(t, entries, 1)
		assert.Equal(t, observability.LogLevelError, entries[0].Level)
	})

	t.Run("rejection with handler resolves with the handler value", func(t *testing.T) {
		logger := fake.NewLogger()
		failure := stderrors.New("boom")
		calls := 0

		result, err := safe.TryCatchAsync(ctx, logger, func(ctx context.Context) (int, error) {
			return 0, failure
		}, func(err error) int {
			calls++
			assert.Same(t, failure, err)
			return -1
		})

		require.NoError(t, err)
		assert.Equal(t, -1, result)
		assert.Equal(t, 1, calls)
		assert.Empty(t, logger.GetEntries())
	})

	t.Run("non-error panics become errors", func(t *testing.T) {
		logger := fake.NewLogger()

		_, err := safe.TryCatchAsync(ctx, logger, func(ctx context.Context) (int, error) {
			panic(404)
		}, nil)

		require.Error(t, err)
		assert.Equal(t, "404", err.Error())
	})

	t.Run("cancellation counts as a failure", func(t *testing.T) {
		logger := fake.NewLogger()
		cancelCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		release := make(chan struct{})

		_, err := safe.TryCatchAsync(cancelCtx, logger, func(ctx context.Context) (int, error) {
			<-release
			return 0, nil
		}, nil)
		close(release)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Len(t, logger.EntriesAt(observability.LogLevelError), 1)
	})
}
