package site

import (
	"context"
	_ "embed"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/weegigs/wee-visits-go/support"
	"github.com/weegigs/wee-visits-go/visits"
)

//go:embed index.html
var index []byte

type Page []byte

func IndexPage() Page {
	return index
}

// Tracing marks the global tracer provider as installed.
type Tracing struct{}

func NewTracing(ctx context.Context, config support.Config) (Tracing, func(), error) {
	shutdown, err := support.Telemetry(ctx, config)
	if err != nil {
		return Tracing{}, nil, err
	}
	return Tracing{}, shutdown, nil
}

func NewCounter(config support.Config) (*visits.HTTPCounter, error) {
	return visits.NewHTTPCounter(config.CounterConfig())
}

func NewWidget(config support.Config, counter visits.Counter, logger *zerolog.Logger, _ Tracing) *visits.Widget {
	return visits.NewWidget(counter, visits.WithLogger(logger), visits.WithMarkerTTL(config.MarkerTTL))
}

var Live = wire.NewSet(
	support.LoadConfig,
	support.NewLogger,
	NewTracing,
	NewCounter,
	wire.Bind(new(visits.Counter), new(*visits.HTTPCounter)),
	NewWidget,
	IndexPage,
)
