package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/weegigs/wee-visits-go/samples/site"
	"github.com/weegigs/wee-visits-go/support"
	"github.com/weegigs/wee-visits-go/visits"
)

func TestServer(t *testing.T) {
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"statusCode": 200, "body": "{\"example.com\": 1001}"}`)
	}))
	defer endpoint.Close()

	config := support.Config{
		Endpoint:  endpoint.URL,
		Schema:    visits.Enveloped(visits.Keyed("example.com")),
		TargetID:  visits.DefaultTargetID,
		MarkerTTL: visits.MarkerTTL,
		Port:      "9080",
	}

	counter, err := site.NewCounter(config)
	if !assert.Nil(t, err) {
		return
	}

	logger := zerolog.Nop()
	server := NewServer(config, site.NewWidget(config, counter, &logger, site.Tracing{}), site.IndexPage(), &logger)
	assert.Equal(t, ":9080", server.Addr)

	recorder := httptest.NewRecorder()
	server.Handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `<span id="visitors">1001 visits</span>`)
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
}
