package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestMiddlewareRecordsRequests(t *testing.T) {
	metrics := NewMetrics()

	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Get("/tags", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, target := range []string{"/tags", "/tags", "/missing"} {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, target, nil))
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, `slodi_http_requests_total{code="200",route="/tags"} 2`) {
		t.Fatalf("missing 200 counter:\n%s", body)
	}
	if !strings.Contains(body, `slodi_http_requests_total{code="404",route="/missing"} 1`) {
		t.Fatalf("missing 404 counter:\n%s", body)
	}
}

func TestDomainCounters(t *testing.T) {
	metrics := NewMetrics()

	metrics.RecordCacheLookup("membership", "hit")
	metrics.RecordCacheLookup("membership", "hit")
	metrics.RecordCacheLookup("user", "miss")
	metrics.RecordTokenVerification("ok")
	metrics.RecordKeyRefresh("error")

	body := scrape(t, metrics)
	for _, want := range []string{
		`slodi_cache_lookups_total{namespace="membership",outcome="hit"} 2`,
		`slodi_cache_lookups_total{namespace="user",outcome="miss"} 1`,
		`slodi_token_verifications_total{outcome="ok"} 1`,
		`slodi_jwks_refreshes_total{outcome="error"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in:\n%s", want, body)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics

	metrics.RecordCacheLookup("membership", "hit")
	metrics.RecordTokenVerification("ok")
	metrics.RecordKeyRefresh("ok")

	resp := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 from nil metrics handler, got %d", resp.Code)
	}
}

func scrape(t *testing.T, metrics *Metrics) string {
	t.Helper()
	resp := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("scrape failed: %d", resp.Code)
	}
	return resp.Body.String()
}
