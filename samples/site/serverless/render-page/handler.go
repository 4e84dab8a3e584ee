package main

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/weegigs/wee-visits-go/connectors/visitslambda"
	"github.com/weegigs/wee-visits-go/samples/site"
	"github.com/weegigs/wee-visits-go/support"
	"github.com/weegigs/wee-visits-go/visits"
)

func createHandler(config support.Config, widget *visits.Widget, page site.Page, logger *zerolog.Logger) visitslambda.GatewayHandler {
	return visitslambda.NewHandler(
		widget,
		visitslambda.Page(page),
		visitslambda.Logger(logger),
		visitslambda.TargetID(config.TargetID),
	)
}

var Live = wire.NewSet(site.Live, createHandler)
