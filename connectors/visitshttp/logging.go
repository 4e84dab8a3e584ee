package visitshttp

import (
	"crypto/rand"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
	log "github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// WithRequestLogging logs each request and tags it with a request id,
// reusing an incoming X-Request-ID when present.
func WithRequestLogging(h http.Handler) http.Handler {
	logFn := func(rw http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = ulid.MustNew(ulid.Timestamp(start), rand.Reader).String()
		}
		rw.Header().Set(RequestIDHeader, id)

		recorder := &statusRecorder{ResponseWriter: rw, status: http.StatusOK}
		h.ServeHTTP(recorder, r)

		log.WithFields(log.Fields{
			"request_id": id,
			"uri":        r.RequestURI,
			"method":     r.Method,
			"status":     recorder.status,
			"duration":   time.Since(start),
		}).Info()
	}
	return http.HandlerFunc(logFn)
}
