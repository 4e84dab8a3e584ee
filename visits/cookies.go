package visits

import (
	"net/http"
	"sync"
	"time"
)

const (
	MarkerName  = "visited"
	MarkerValue = "true"
	MarkerPath  = "/"
	MarkerTTL   = 30 * 24 * time.Hour
)

// Marker is the cookie that records a counted browser for the length of
// its TTL.
type Marker struct {
	Name  string
	Value string
	TTL   time.Duration
}

func DefaultMarker() Marker {
	return Marker{Name: MarkerName, Value: MarkerValue, TTL: MarkerTTL}
}

// Cookie renders the marker as a root scoped, same-site strict cookie.
func (m Marker) Cookie(now time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     m.Name,
		Value:    m.Value,
		Path:     MarkerPath,
		MaxAge:   int(m.TTL / time.Second),
		Expires:  now.Add(m.TTL).UTC(),
		SameSite: http.SameSiteStrictMode,
	}
}

type CookieStore interface {
	HasVisited() bool
	MarkVisited(ttl time.Duration) error
}

type clock = func() time.Time

// HTTPCookies reads the marker from an incoming request and writes it to
// the response headers.
type HTTPCookies struct {
	request *http.Request
	writer  http.ResponseWriter
	now     clock

	mutex  sync.Mutex
	marked bool
}

func NewHTTPCookies(w http.ResponseWriter, r *http.Request) *HTTPCookies {
	return &HTTPCookies{request: r, writer: w, now: time.Now}
}

func (c *HTTPCookies) HasVisited() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.marked {
		return true
	}

	_, err := c.request.Cookie(MarkerName)
	return err == nil
}

// MarkVisited must be called before the response body is written. Only the
// first call writes the marker.
func (c *HTTPCookies) MarkVisited(ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.marked {
		return nil
	}

	marker := Marker{Name: MarkerName, Value: MarkerValue, TTL: ttl}
	http.SetCookie(c.writer, marker.Cookie(c.now()))
	c.marked = true

	return nil
}

// HeaderCookies works on raw cookie strings, as delivered by API Gateway
// HTTP APIs, and collects the Set-Cookie values to return.
type HeaderCookies struct {
	incoming []*http.Cookie
	now      clock

	mutex    sync.Mutex
	outgoing []string
}

// NewHeaderCookies accepts Cookie header values, either one pair per entry
// or several pairs joined by "; ".
func NewHeaderCookies(values []string) *HeaderCookies {
	header := http.Header{}
	for _, value := range values {
		header.Add("Cookie", value)
	}
	request := http.Request{Header: header}

	return &HeaderCookies{incoming: request.Cookies(), now: time.Now}
}

func (c *HeaderCookies) HasVisited() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if len(c.outgoing) > 0 {
		return true
	}

	for _, cookie := range c.incoming {
		if cookie.Name == MarkerName {
			return true
		}
	}

	return false
}

func (c *HeaderCookies) MarkVisited(ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if len(c.outgoing) > 0 {
		return nil
	}

	marker := Marker{Name: MarkerName, Value: MarkerValue, TTL: ttl}
	c.outgoing = append(c.outgoing, marker.Cookie(c.now()).String())

	return nil
}

// SetCookies returns the Set-Cookie values written so far.
func (c *HeaderCookies) SetCookies() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return append([]string(nil), c.outgoing...)
}
