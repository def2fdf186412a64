// Package metrics records upstream round trips and inbound requests.
package metrics

import (
	"net/http"
	"time"
)

// Upstream system labels.
const (
	SystemGateway  = "oms_gateway"
	SystemCommerce = "commerce"
	SystemContent  = "content_store"
)

// Recorder observes one upstream round trip. status is 0 when the request
// never produced a response.
type Recorder interface {
	ObserveUpstream(system, method string, status int, elapsed time.Duration)
}

// Nop discards every observation.
type Nop struct{}

func (Nop) ObserveUpstream(string, string, int, time.Duration) {}

// Multi fans an observation out to several recorders.
type Multi []Recorder

func (m Multi) ObserveUpstream(system, method string, status int, elapsed time.Duration) {
	for _, r := range m {
		r.ObserveUpstream(system, method, status, elapsed)
	}
}

// Transport wraps base so every round trip is reported to rec under system.
func Transport(base http.RoundTripper, rec Recorder, system string) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if rec == nil {
		rec = Nop{}
	}
	return &instrumentedTransport{base: base, rec: rec, system: system}
}

type instrumentedTransport struct {
	base   http.RoundTripper
	rec    Recorder
	system string
}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	status := 0
	if err == nil {
		status = resp.StatusCode
	}
	t.rec.ObserveUpstream(t.system, req.Method, status, time.Since(start))
	return resp, err
}

// NewHTTPClient returns a client for one upstream system. No timeout is set:
// a call lives as long as the inbound request context.
func NewHTTPClient(rec Recorder, system string) *http.Client {
	return &http.Client{Transport: Transport(nil, rec, system)}
}
