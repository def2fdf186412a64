package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type recorded struct {
	system string
	method string
	status int
}

type fakeRecorder struct {
	calls []recorded
}

func (f *fakeRecorder) ObserveUpstream(system, method string, status int, _ time.Duration) {
	f.calls = append(f.calls, recorded{system, method, status})
}

func TestTransport_ReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	rec := &fakeRecorder{}
	client := NewHTTPClient(rec, SystemGateway)

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if len(rec.calls) != 1 {
		t.Fatalf("expected 1 observation, got %d", len(rec.calls))
	}
	got := rec.calls[0]
	if got.system != SystemGateway || got.method != http.MethodGet || got.status != http.StatusBadGateway {
		t.Fatalf("unexpected observation %+v", got)
	}
}

func TestTransport_TransportErrorIsZeroStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	rec := &fakeRecorder{}
	client := NewHTTPClient(rec, SystemCommerce)
	if _, err := client.Get(url); err == nil {
		t.Fatalf("expected dial error against closed server")
	}
	if len(rec.calls) != 1 || rec.calls[0].status != 0 {
		t.Fatalf("expected a single zero-status observation, got %+v", rec.calls)
	}
}

func TestPrometheus_CountsByOutcome(t *testing.T) {
	p := NewPrometheus()
	Multi{p, Nop{}}.ObserveUpstream(SystemContent, http.MethodPost, 200, time.Millisecond)
	p.ObserveUpstream(SystemContent, http.MethodPost, 503, time.Millisecond)
	p.ObserveUpstream(SystemContent, http.MethodPost, 0, time.Millisecond)

	if got := testutil.ToFloat64(p.upstreamRequests.WithLabelValues(SystemContent, http.MethodPost, "success")); got != 1 {
		t.Fatalf("expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(p.upstreamRequests.WithLabelValues(SystemContent, http.MethodPost, "server_error")); got != 1 {
		t.Fatalf("expected 1 server error, got %v", got)
	}
	if got := testutil.ToFloat64(p.upstreamRequests.WithLabelValues(SystemContent, http.MethodPost, "transport_error")); got != 1 {
		t.Fatalf("expected 1 transport error, got %v", got)
	}
}

func TestPrometheus_MiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := NewPrometheus()
	r := gin.New()
	r.Use(p.Middleware())
	r.GET("/locations/:locationId/status", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/locations/42/status", nil))

	if got := testutil.ToFloat64(p.httpRequests.WithLabelValues(http.MethodGet, "/locations/:locationId/status", "200")); got != 1 {
		t.Fatalf("expected request counted under route template, got %v", got)
	}
}
