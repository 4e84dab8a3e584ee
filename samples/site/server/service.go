package main

import (
	"net"
	"net/http"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/weegigs/wee-visits-go/connectors/visitshttp"
	"github.com/weegigs/wee-visits-go/samples/site"
	"github.com/weegigs/wee-visits-go/support"
	"github.com/weegigs/wee-visits-go/visits"
)

type Server struct {
	Addr    string
	Handler http.Handler
}

func NewServer(config support.Config, widget *visits.Widget, page site.Page, logger *zerolog.Logger) *Server {
	handler := visitshttp.NewHandler(
		widget,
		page,
		visitshttp.Logger(logger),
		visitshttp.AllowedOrigins(config.AllowedOrigins),
		visitshttp.TargetID(config.TargetID),
	)

	return &Server{
		Addr:    net.JoinHostPort("", config.Port),
		Handler: visitshttp.WithRequestLogging(handler),
	}
}

var Live = wire.NewSet(site.Live, NewServer)
