// Package contact accepts contact form submissions and optionally forwards
// them to a webhook.
package contact

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"time"

	"github.com/JailtonJunior94/aeon-kit/pkg/apperrors"
	"github.com/JailtonJunior94/aeon-kit/pkg/form"
	"github.com/JailtonJunior94/aeon-kit/pkg/httpclient"
	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
	"github.com/jonboulle/clockwork"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	CodeDeliveryFailed = "CONTACT_DELIVERY_FAILED"

	outcomeAccepted = "accepted"
	outcomeInvalid  = "invalid"
	outcomeFailed   = "failed"
)

// Receipt acknowledges an accepted submission.
type Receipt struct {
	ID         string    `json:"id"`
	ReceivedAt time.Time `json:"received_at"`
}

// delivery is the webhook payload.
type delivery struct {
	ID         string    `json:"id"`
	ReceivedAt time.Time `json:"received_at"`
	Name       string    `json:"name"`
	Contact    string    `json:"contact"`
	Question   string    `json:"question"`
}

type Service struct {
	logger      observability.Logger
	validator   *form.Validator
	client      httpclient.HTTPClient
	webhookURL  string
	clock       clockwork.Clock
	submissions *prometheus.CounterVec
}

// NewService builds the service. Without WithWebhook a valid submission is
// only logged and acknowledged.
func NewService(logger observability.Logger, opts ...Option) *Service {
	s := settings{
		clock:      clockwork.NewRealClock(),
		registerer: prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&s)
	}

	return &Service{
		logger:      logger.Child("ContactForm"),
		validator:   form.NewValidator(logger),
		client:      s.client,
		webhookURL:  s.webhookURL,
		clock:       s.clock,
		submissions: registerCounter(s.registerer),
	}
}

// Submit validates f, forwards it when a webhook is configured and returns a receipt.
// Invalid input yields a ValidationError; delivery failures an ApiError.
func (s *Service) Submit(ctx context.Context, f form.ContactForm) (Receipt, error) {
	s.logger.Info(ctx, "Submitting contact form", observability.String("name", f.Name))

	validated, err := form.Validate(ctx, s.validator, f)
	if err != nil {
		s.submissions.WithLabelValues(outcomeInvalid).Inc()
		return Receipt{}, err
	}

	now := s.clock.Now().UTC()
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		s.submissions.WithLabelValues(outcomeFailed).Inc()
		return Receipt{}, apperrors.New("Failed to generate receipt", apperrors.WithCause(err))
	}
	receipt := Receipt{ID: id.String(), ReceivedAt: now}

	if err := s.forward(ctx, receipt, validated); err != nil {
		s.submissions.WithLabelValues(outcomeFailed).Inc()
		s.logger.Error(ctx, "Failed to submit contact form", observability.Error(err))
		return Receipt{}, err
	}

	s.submissions.WithLabelValues(outcomeAccepted).Inc()
	s.logger.Info(ctx, "Contact form submitted successfully",
		observability.String("name", validated.Name),
		observability.String("receipt_id", receipt.ID),
	)
	return receipt, nil
}

func (s *Service) forward(ctx context.Context, receipt Receipt, f form.ContactForm) error {
	if s.webhookURL == "" || s.client == nil {
		return nil
	}

	body, err := httpclient.JSONBody(delivery{
		ID:         receipt.ID,
		ReceivedAt: receipt.ReceivedAt,
		Name:       f.Name,
		Contact:    f.Contact,
		Question:   f.Question,
	})
	if err != nil {
		return apperrors.New("Failed to encode contact form", apperrors.WithCause(err))
	}

	headers := map[string]string{"Content-Type": "application/json"}
	if _, err := httpclient.MakeRequest[struct{}](ctx, s.client, http.MethodPost, s.webhookURL, headers, body); err != nil {
		return deliveryError(err)
	}
	return nil
}

func deliveryError(err error) error {
	opts := []apperrors.Option{
		apperrors.WithCode(CodeDeliveryFailed),
		apperrors.WithStatusCode(http.StatusBadGateway),
		apperrors.WithCause(err),
	}

	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		opts = append(opts, apperrors.WithContext(apperrors.IntField("upstream_status", statusErr.StatusCode)))
	}
	return apperrors.NewAPI("Failed to deliver contact form", opts...)
}

func registerCounter(registerer prometheus.Registerer) *prometheus.CounterVec {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aeon",
		Subsystem: "contact",
		Name:      "submissions_total",
		Help:      "Contact form submissions by outcome.",
	}, []string{"outcome"})

	if registerer == nil {
		return counter
	}
	if err := registerer.Register(counter); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}
	return counter
}
