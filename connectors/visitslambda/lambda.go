package visitslambda

import (
	"bytes"
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/weegigs/wee-visits-go/visits"
)

type GatewayHandler = func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

type Page []byte

type HandlerOption func(handler *pageHandler)

func Logger(log *zerolog.Logger) HandlerOption {
	return func(handler *pageHandler) {
		handler.log = log
	}
}

func TargetID(id string) HandlerOption {
	return func(handler *pageHandler) {
		handler.targetID = id
	}
}

// NewHandler renders page for API Gateway HTTP API requests. Counting
// failures still produce a 200 with the fallback text.
func NewHandler(widget *visits.Widget, page Page, options ...HandlerOption) GatewayHandler {
	handler := &pageHandler{widget: widget, page: page, targetID: visits.DefaultTargetID}
	for _, option := range options {
		option(handler)
	}
	if handler.log == nil {
		handler.log = &log.Logger
	}

	return handler.handle
}

type pageHandler struct {
	log      *zerolog.Logger
	widget   *visits.Widget
	page     Page
	targetID string
}

func (h *pageHandler) handle(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if method := event.RequestContext.HTTP.Method; method != "" && method != http.MethodGet {
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusMethodNotAllowed,
			Headers:    map[string]string{"Allow": http.MethodGet},
		}, nil
	}

	document, err := visits.ParseDocument(bytes.NewReader(h.page), h.targetID)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to parse page")
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusInternalServerError}, nil
	}

	cookies := visits.NewHeaderCookies(event.Cookies)
	outcome := h.widget.Run(ctx, cookies, document)

	body, err := document.Bytes()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to render page")
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusInternalServerError}, nil
	}

	h.log.Debug().
		Str("request_id", event.RequestContext.RequestID).
		Bool("counted", outcome.Counted).
		Str("text", outcome.Text).
		Msg("rendered page")

	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":  "text/html; charset=utf-8",
			"Cache-Control": "no-store",
		},
		Cookies: cookies.SetCookies(),
		Body:    string(body),
	}, nil
}
