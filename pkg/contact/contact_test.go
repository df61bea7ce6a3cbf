package contact

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JailtonJunior94/aeon-kit/pkg/apperrors"
	"github.com/JailtonJunior94/aeon-kit/pkg/form"
	"github.com/JailtonJunior94/aeon-kit/pkg/httpclient"
	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
	"github.com/JailtonJunior94/aeon-kit/pkg/observability/fake"
	"github.com/jonboulle/clockwork"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var receivedAt = time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite

	ctx      context.Context
	logger   *fake.Logger
	registry *prometheus.Registry
	clock    *clockwork.FakeClock
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.logger = fake.NewLogger()
	s.registry = prometheus.NewRegistry()
	s.clock = clockwork.NewFakeClockAt(receivedAt)
}

func (s *ServiceSuite) newService(opts ...Option) *Service {
	opts = append([]Option{WithRegisterer(s.registry), WithClock(s.clock)}, opts...)
	return NewService(s.logger, opts...)
}

func (s *ServiceSuite) counter(outcome string) float64 {
	families, err := s.registry.Gather()
	s.Require().NoError(err)

	for _, family := range families {
		if family.GetName() != "aeon_contact_submissions_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func validForm() form.ContactForm {
	return form.ContactForm{Name: "Ada", Contact: "ada@example.com", Question: "When does the portal open?"}
}

func (s *ServiceSuite) TestSubmit_WithoutWebhook() {
	receipt, err := s.newService().Submit(s.ctx, validForm())

	s.Require().NoError(err)
	parsed, parseErr := ulid.Parse(receipt.ID)
	s.Require().NoError(parseErr)
	s.Equal(ulid.Timestamp(receivedAt), parsed.Time())
	s.Equal(receivedAt, receipt.ReceivedAt)
	s.Equal(float64(1), s.counter(outcomeAccepted))

	infos := s.logger.EntriesAt(observability.LogLevelInfo)
	s.Require().Len(infos, 2)
	s.Equal("Submitting contact form", infos[0].Message)
	s.Equal("app:ContactForm", infos[0].Namespace)
	name, _ := infos[0].Field("name")
	s.Equal("Ada", name)
	s.Equal("Contact form submitted successfully", infos[1].Message)
}

func (s *ServiceSuite) TestSubmit_InvalidForm() {
	_, err := s.newService().Submit(s.ctx, form.ContactForm{Name: "Ada"})

	s.Require().Error(err)
	s.True(apperrors.IsKind(err, apperrors.KindValidation))
	s.Equal(form.CodeValidation, apperrors.Code(err))

	appErr, ok := apperrors.As(err)
	s.Require().True(ok)
	s.Len(appErr.FieldErrors(), 2)
	s.Equal(float64(1), s.counter(outcomeInvalid))
	s.Zero(s.counter(outcomeAccepted))
}

func (s *ServiceSuite) TestSubmit_ForwardsToWebhook() {
	var payload delivery
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		s.Equal("application/json", r.Header.Get("Content-Type"))
		s.NoError(json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer webhook.Close()

	receipt, err := s.newService(WithWebhook(webhook.URL, webhook.Client())).Submit(s.ctx, validForm())

	s.Require().NoError(err)
	s.Equal(receipt.ID, payload.ID)
	s.Equal("Ada", payload.Name)
	s.Equal("ada@example.com", payload.Contact)
	s.Equal("When does the portal open?", payload.Question)
}

func (s *ServiceSuite) TestSubmit_RetriesTransientWebhookFailures() {
	var attempts atomic.Int32
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer webhook.Close()

	client := httpclient.NewClient(s.logger, httpclient.WithRetry(3, time.Millisecond, httpclient.DefaultRetryPolicy))
	_, err := s.newService(WithWebhook(webhook.URL, client)).Submit(s.ctx, validForm())

	s.Require().NoError(err)
	s.Equal(int32(3), attempts.Load())
}

func (s *ServiceSuite) TestSubmit_WebhookFailure() {
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer webhook.Close()

	_, err := s.newService(WithWebhook(webhook.URL, webhook.Client())).Submit(s.ctx, validForm())

	s.Require().Error(err)
	s.True(apperrors.IsKind(err, apperrors.KindAPI))
	s.Equal(CodeDeliveryFailed, apperrors.Code(err))
	s.Equal(http.StatusBadGateway, apperrors.StatusCode(err))

	appErr, _ := apperrors.As(err)
	status, ok := appErr.Context().Get("upstream_status")
	s.Require().True(ok)
	s.Equal(http.StatusInternalServerError, status.Int())

	s.Equal(float64(1), s.counter(outcomeFailed))
	s.Len(s.logger.EntriesAt(observability.LogLevelError), 1)
}

func TestRegisterCounter_ReusesExistingCollector(t *testing.T) {
	registry := prometheus.NewRegistry()

	first := registerCounter(registry)
	second := registerCounter(registry)

	require.Same(t, first, second)
}

func TestRegisterCounter_NilRegisterer(t *testing.T) {
	assert.NotNil(t, registerCounter(nil))
}
