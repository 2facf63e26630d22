package detector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pageza/pantrychef/backend/internal/metrics"
)

// ErrImageRejected is returned when the inference server refuses the payload
var ErrImageRejected = errors.New("image rejected by detector")

// Options configures an HTTPDetector
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	MinConfidence     float64
	RequestsPerSecond float64
	Burst             int
	FailureThreshold  uint32
	OpenTimeout       time.Duration
}

type predictResponse struct {
	Predictions []Detection `json:"predictions"`
}

// HTTPDetector calls POST {BaseURL}/predict with the image as multipart
// field "image". Outgoing calls are rate limited and guarded by a circuit
// breaker.
type HTTPDetector struct {
	client        *resty.Client
	breaker       *gobreaker.CircuitBreaker[[]Detection]
	limiter       *rate.Limiter
	minConfidence float64
	logger        *zap.Logger
}

// NewHTTPDetector creates a detector client
func NewHTTPDetector(opts Options, logger *zap.Logger) *HTTPDetector {
	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "pantrychef-backend")

	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	d := &HTTPDetector{
		client:        client,
		limiter:       rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst),
		minConfidence: opts.MinConfidence,
		logger:        logger,
	}

	d.breaker = gobreaker.NewCircuitBreaker[[]Detection](gobreaker.Settings{
		Name:    "detector",
		Timeout: opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.FailureThreshold
		},
		// a rejected image says nothing about the server's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrImageRejected)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("detector circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.SetBreakerState(to.String())
		},
	})
	metrics.SetBreakerState(gobreaker.StateClosed.String())

	return d
}

// Detect sends the image to the inference server
func (d *HTTPDetector) Detect(ctx context.Context, image []byte, filename string) ([]Detection, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	raw, err := d.breaker.Execute(func() ([]Detection, error) {
		return d.predict(ctx, image, filename)
	})
	switch {
	case err == nil:
		metrics.DetectorRequestsTotal.WithLabelValues("ok").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.DetectorRequestsTotal.WithLabelValues("breaker_open").Inc()
		return nil, fmt.Errorf("%w: %v", ErrDetectorUnavailable, err)
	case errors.Is(err, ErrImageRejected):
		metrics.DetectorRequestsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	default:
		metrics.DetectorRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	return normalize(raw, d.minConfidence), nil
}

func (d *HTTPDetector) predict(ctx context.Context, image []byte, filename string) ([]Detection, error) {
	var body predictResponse
	resp, err := d.client.R().
		SetContext(ctx).
		SetFileReader("image", filename, bytes.NewReader(image)).
		SetResult(&body).
		Post("/predict")
	if err != nil {
		d.logger.Error("detector request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrDetectorUnavailable, err)
	}

	switch {
	case resp.StatusCode() == http.StatusBadRequest || resp.StatusCode() == http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("%w: %s", ErrImageRejected, resp.Status())
	case resp.IsError():
		d.logger.Error("detector returned error status", zap.Int("status", resp.StatusCode()))
		return nil, fmt.Errorf("%w: status %d", ErrDetectorUnavailable, resp.StatusCode())
	}

	return body.Predictions, nil
}
