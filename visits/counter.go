package visits

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName      = "wee-visits"
	userAgent       = "wee-visits/1.0"
	maxResponseBody = 1 << 20
	DefaultTimeout  = 10 * time.Second
)

// Counter reads, or increments and reads, the aggregate visit count.
type Counter interface {
	FetchCount(ctx context.Context, increment bool) (int, error)
}

type CounterConfig struct {
	Endpoint string
	Schema   Schema
	Timeout  time.Duration
}

type incrementRequest struct {
	IncreaseHits bool `json:"increase_hits"`
}

// HTTPCounter talks to a remote counting endpoint. Reads are GET requests,
// increments are POST requests carrying {"increase_hits": true}.
type HTTPCounter struct {
	endpoint string
	schema   Schema
	client   *http.Client
}

func NewHTTPCounter(config CounterConfig) (*HTTPCounter, error) {
	endpoint, err := url.Parse(config.Endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "invalid counting endpoint")
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return nil, errors.Errorf("counting endpoint must be http or https, got %q", config.Endpoint)
	}
	if endpoint.Host == "" {
		return nil, errors.Errorf("counting endpoint %q has no host", config.Endpoint)
	}

	if config.Schema.Key == "" {
		config.Schema = Flat(DefaultCountField)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &HTTPCounter{
		endpoint: endpoint.String(),
		schema:   config.Schema,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

func (c *HTTPCounter) Endpoint() string {
	return c.endpoint
}

func (c *HTTPCounter) FetchCount(ctx context.Context, increment bool) (int, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "fetch count", trace.WithAttributes(
		attribute.Bool("visits.increment", increment),
		attribute.String("visits.schema", c.schema.String()),
	))
	defer span.End()

	count, err := c.fetch(ctx, increment)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(attribute.Int("visits.count", count))
	return count, nil
}

func (c *HTTPCounter) fetch(ctx context.Context, increment bool) (int, error) {
	request, err := c.newRequest(ctx, increment)
	if err != nil {
		return 0, &NetworkError{Endpoint: c.endpoint, Cause: err}
	}

	response, err := c.client.Do(request)
	if err != nil {
		return 0, &NetworkError{Endpoint: c.endpoint, Cause: err}
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return 0, &NetworkError{Endpoint: c.endpoint, Status: response.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBody))
	if err != nil {
		return 0, &NetworkError{Endpoint: c.endpoint, Status: response.StatusCode, Cause: err}
	}

	return ExtractCount(body, c.schema)
}

func (c *HTTPCounter) newRequest(ctx context.Context, increment bool) (*http.Request, error) {
	if !increment {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
		if err != nil {
			return nil, err
		}
		request.Header.Set("Accept", "application/json")
		request.Header.Set("User-Agent", userAgent)
		return request, nil
	}

	body, err := json.Marshal(incrementRequest{IncreaseHits: true})
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("User-Agent", userAgent)

	return request, nil
}
