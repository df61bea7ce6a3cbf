package apperrors

// Option customizes an AppError at construction.
type Option func(*options)

type options struct {
	code       string
	statusCode int
	context    Context
	cause      error
}

// WithCode overrides the default code. An empty code keeps the default.
func WithCode(code string) Option {
	return func(o *options) {
		o.code = code
	}
}

// WithStatusCode overrides the default status of AppError and ApiError.
// Other kinds keep their fixed status; zero keeps the default.
func WithStatusCode(statusCode int) Option {
	return func(o *options) {
		o.statusCode = statusCode
	}
}

// WithContext appends diagnostic fields, keeping their order.
func WithContext(fields ...ContextField) Option {
	return func(o *options) {
		o.context = append(o.context, fields...)
	}
}

// WithCause records the underlying error, reachable through errors.Unwrap.
func WithCause(cause error) Option {
	return func(o *options) {
		o.cause = cause
	}
}
