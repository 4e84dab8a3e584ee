package visits

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
)

type recordedCall struct {
	method      string
	contentType string
	body        string
}

func countingEndpoint(t *testing.T, status int, response string) (*httptest.Server, *[]recordedCall) {
	var mutex sync.Mutex
	calls := &[]recordedCall{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("failed to read request body: %v", err)
		}
		mutex.Lock()
		*calls = append(*calls, recordedCall{method: r.Method, contentType: r.Header.Get("Content-Type"), body: string(body)})
		mutex.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(server.Close)

	return server, calls
}

func newTestCounter(t *testing.T, endpoint string, schema Schema) *HTTPCounter {
	counter, err := NewHTTPCounter(CounterConfig{Endpoint: endpoint, Schema: schema})
	if err != nil {
		t.Fatalf("failed to create counter: %v", err)
	}
	return counter
}

func TestHTTPCounter(t *testing.T) {
	t.Run("reads with a GET", func(t *testing.T) {
		server, calls := countingEndpoint(t, http.StatusOK, `{"hits": 42}`)
		counter := newTestCounter(t, server.URL, Flat("hits"))

		count, err := counter.FetchCount(context.Background(), false)

		assert.Nil(t, err)
		assert.Equal(t, 42, count)
		if assert.Len(t, *calls, 1) {
			assert.Equal(t, http.MethodGet, (*calls)[0].method)
			assert.Empty(t, (*calls)[0].body)
		}
	})

	t.Run("increments with a POST", func(t *testing.T) {
		server, calls := countingEndpoint(t, http.StatusOK, `{"site": "example.com", "visitorCount": 43}`)
		counter := newTestCounter(t, server.URL, Flat("visitorCount"))

		count, err := counter.FetchCount(context.Background(), true)

		assert.Nil(t, err)
		assert.Equal(t, 43, count)
		if !assert.Len(t, *calls, 1) {
			return
		}

		call := (*calls)[0]
		assert.Equal(t, http.MethodPost, call.method)
		assert.Equal(t, "application/json", call.contentType)

		var body map[string]any
		assert.Nil(t, json.Unmarshal([]byte(call.body), &body))
		assert.Equal(t, map[string]any{"increase_hits": true}, body)
	})

	t.Run("fails on a non success status", func(t *testing.T) {
		server, _ := countingEndpoint(t, http.StatusInternalServerError, `{"error": "database error"}`)
		counter := newTestCounter(t, server.URL, Flat("hits"))

		_, err := counter.FetchCount(context.Background(), true)

		var network *NetworkError
		if assert.ErrorAs(t, err, &network) {
			assert.Equal(t, http.StatusInternalServerError, network.Status)
		}
	})

	t.Run("fails when the endpoint is unreachable", func(t *testing.T) {
		server, _ := countingEndpoint(t, http.StatusOK, `{"hits": 1}`)
		counter := newTestCounter(t, server.URL, Flat("hits"))
		server.Close()

		_, err := counter.FetchCount(context.Background(), false)

		assert.True(t, IsNetworkError(err))
	})

	t.Run("fails on a missing count", func(t *testing.T) {
		server, _ := countingEndpoint(t, http.StatusOK, `{"count": 1}`)
		counter := newTestCounter(t, server.URL, Flat("hits"))

		_, err := counter.FetchCount(context.Background(), false)

		assert.True(t, IsResponseShapeError(err))
	})

	t.Run("honours cancellation", func(t *testing.T) {
		server, _ := countingEndpoint(t, http.StatusOK, `{"hits": 1}`)
		counter := newTestCounter(t, server.URL, Flat("hits"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := counter.FetchCount(ctx, false)

		assert.True(t, IsNetworkError(err))
	})
}

func TestNewHTTPCounter(t *testing.T) {
	t.Run("defaults to flat hits", func(t *testing.T) {
		counter, err := NewHTTPCounter(CounterConfig{Endpoint: "https://api.example.com/visitor_count"})

		assert.Nil(t, err)
		assert.Equal(t, Flat("hits"), counter.schema)
		assert.Equal(t, DefaultTimeout, counter.client.Timeout)
	})

	t.Run("rejects non http endpoints", func(t *testing.T) {
		_, err := NewHTTPCounter(CounterConfig{Endpoint: "ftp://example.com"})
		assert.NotNil(t, err)
	})

	t.Run("rejects endpoints without a host", func(t *testing.T) {
		_, err := NewHTTPCounter(CounterConfig{Endpoint: "https:///path"})
		assert.NotNil(t, err)
	})

	t.Run("rejects malformed endpoints", func(t *testing.T) {
		_, err := NewHTTPCounter(CounterConfig{Endpoint: "://bad"})
		assert.NotNil(t, err)
	})
}
