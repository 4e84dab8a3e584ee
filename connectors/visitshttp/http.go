package visitshttp

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/weegigs/wee-visits-go/visits"
)

type HandlerOption func(service *httpService)

func Logger(log *zerolog.Logger) HandlerOption {
	return func(service *httpService) {
		service.log = log
	}
}

func AllowedOrigins(origins []string) HandlerOption {
	return func(service *httpService) {
		service.origins = origins
	}
}

func TargetID(id string) HandlerOption {
	return func(service *httpService) {
		service.targetID = id
	}
}

// NewHandler serves page with the visit count rendered into it, and the
// bare count as JSON under /api/visits.
func NewHandler(widget *visits.Widget, page []byte, options ...HandlerOption) http.Handler {
	service := &httpService{widget: widget, page: page, targetID: visits.DefaultTargetID}
	for _, option := range options {
		option(service)
	}
	if service.log == nil {
		service.log = &log.Logger
	}

	r := chi.NewRouter()

	r.Method("GET", "/", service.getPage())

	r.Group(func(r chi.Router) {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   service.origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
			AllowCredentials: len(service.origins) > 0,
		}).Handler)
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Method("GET", "/api/visits", service.getVisits())
		r.Method("OPTIONS", "/api/visits", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
	})

	return otelhttp.NewHandler(r, "wee-visits-http")
}

type httpService struct {
	log      *zerolog.Logger
	widget   *visits.Widget
	page     []byte
	targetID string
	origins  []string
}

type visitsResponse struct {
	Text    string `json:"text"`
	Count   *int   `json:"count"`
	Counted bool   `json:"counted"`
}

func (service *httpService) getPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		document, err := visits.ParseDocument(bytes.NewReader(service.page), service.targetID)
		if err != nil {
			service.log.Error().Err(err).Msg("failed to parse page")
			http.Error(w, "failed to render page", http.StatusInternalServerError)
			return
		}

		outcome := service.widget.Run(r.Context(), visits.NewHTTPCookies(w, r), document)

		body, err := document.Bytes()
		if err != nil {
			service.log.Error().Err(err).Msg("failed to render page")
			http.Error(w, "failed to render page", http.StatusInternalServerError)
			return
		}

		service.log.Debug().Bool("counted", outcome.Counted).Str("text", outcome.Text).Msg("rendered page")

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

func (service *httpService) getVisits() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := &visits.TextTarget{}
		outcome := service.widget.Run(r.Context(), visits.NewHTTPCookies(w, r), target)

		w.Header().Set("Cache-Control", "no-store")
		render.JSON(w, r, visitsResponse{Text: target.Text(), Count: outcome.Count, Counted: outcome.Counted})
	}
}
