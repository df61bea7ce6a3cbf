// Package safe runs functions behind a recover boundary: failures are either
// turned into a substitute value by a handler or logged once and returned.
package safe

import (
	"context"

	"github.com/JailtonJunior94/aeon-kit/pkg/apperrors"
	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
)

// UnhandledMessage is logged at error level when a failure has no handler.
const UnhandledMessage = "Unhandled error"

// Handler recovers from a normalized failure by producing a substitute value.
type Handler[T any] func(err error) T

// TryCatch runs fn, recovering panics. On failure the normalized error goes to
// onError, whose result is returned with a nil error. Without a handler the error
// is logged once on log and returned.
func TryCatch[T any](log observability.Logger, fn func() (T, error), onError Handler[T]) (T, error) {
	result, err := run(fn)
	if err == nil {
		return result, nil
	}
	return recoverWith(context.Background(), log, err, onError)
}

// TryCatchAsync runs fn on its own goroutine with the same contract as TryCatch.
// Cancellation of ctx while waiting counts as a failure carrying ctx.Err(); fn
// keeps running and should honour ctx itself.
func TryCatchAsync[T any](ctx context.Context, log observability.Logger, fn func(ctx context.Context) (T, error), onError Handler[T]) (T, error) {
	type outcome struct {
		result T
		err    error
	}

	done := make(chan outcome, 1)
	go func() {
		result, err := run(func() (T, error) { return fn(ctx) })
		done <- outcome{result: result, err: err}
	}()

	var (
		result T
		err    error
	)

	select {
	case out := <-done:
		result, err = out.result, out.err
	case <-ctx.Done():
		err = ctx.Err()
	}

	if err == nil {
		return result, nil
	}
	return recoverWith(ctx, log, err, onError)
}

func run[T any](fn func() (T, error)) (result T, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			var zero T
			result = zero
			err = apperrors.Normalize(recovered)
		}
	}()
	return fn()
}

func recoverWith[T any](ctx context.Context, log observability.Logger, err error, onError Handler[T]) (T, error) {
	if onError != nil {
		return onError(err), nil
	}

	if log != nil {
		log.Error(ctx, UnhandledMessage, observability.Error(err))
	}

	var zero T
	return zero, err
}
