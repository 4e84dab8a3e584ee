package visits

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const FallbackText = "Could not load visits."

// Text formats a count for display; a nil count renders the fallback.
func Text(count *int) string {
	if count == nil {
		return FallbackText
	}
	return fmt.Sprintf("%d visits", *count)
}

// Outcome describes a single widget run. Count is nil when the count could
// not be fetched; Counted reports whether an increment was requested.
type Outcome struct {
	Count   *int
	Counted bool
	Text    string
	Err     error
}

type WidgetOption func(widget *Widget)

func WithLogger(log *zerolog.Logger) WidgetOption {
	return func(widget *Widget) {
		widget.log = log
	}
}

func WithMarkerTTL(ttl time.Duration) WidgetOption {
	return func(widget *Widget) {
		if ttl > 0 {
			widget.ttl = ttl
		}
	}
}

// Widget counts a page load at most once per marker lifetime and renders
// the resulting count.
type Widget struct {
	counter Counter
	log     *zerolog.Logger
	ttl     time.Duration
}

func NewWidget(counter Counter, options ...WidgetOption) *Widget {
	widget := &Widget{counter: counter, ttl: MarkerTTL}
	for _, option := range options {
		option(widget)
	}
	if widget.log == nil {
		widget.log = &log.Logger
	}

	return widget
}

// Run performs one page load. Browsers carrying the marker get a read-only
// count; others are counted and marked once the counting call succeeds.
// Failures are logged and rendered as the fallback text, never returned.
func (w *Widget) Run(ctx context.Context, cookies CookieStore, target DisplayTarget) Outcome {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "run widget")
	defer span.End()

	visited := cookies.HasVisited()
	outcome := Outcome{Counted: !visited}
	span.SetAttributes(attribute.Bool("visits.visited", visited))

	count, err := w.fetch(ctx, !visited)
	switch {
	case err != nil:
		outcome.Err = err
		w.log.Warn().Err(err).Bool("increment", !visited).Msg("failed to fetch visit count")
	case !visited:
		outcome.Count = &count
		if err := cookies.MarkVisited(w.ttl); err != nil {
			w.log.Warn().Err(err).Msg("failed to set visit marker")
		}
	default:
		outcome.Count = &count
	}

	outcome.Text = w.Render(target, outcome.Count)
	return outcome
}

func (w *Widget) fetch(ctx context.Context, increment bool) (count int, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = errors.Errorf("counter panicked: %v", recovered)
		}
	}()

	return w.counter.FetchCount(ctx, increment)
}

// Render writes the formatted count, or the fallback when count is nil, into
// the target.
func (w *Widget) Render(target DisplayTarget, count *int) string {
	text := Text(count)
	if err := target.Render(text); err != nil {
		w.log.Error().Err(err).Str("text", text).Msg("failed to render visit count")
	}
	return text
}
