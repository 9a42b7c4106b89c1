package httpserver_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpserver "park_reviews/internal/adapters/http_server"
	"park_reviews/internal/adapters/observability"
)

func TestServer_Healthz(t *testing.T) {
	ts := httptest.NewServer(httpserver.New().Mux())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected response %d %q", resp.StatusCode, body)
	}
}

func TestServer_MetricsMounted(t *testing.T) {
	srv := httpserver.New()
	srv.Mount("/metrics", observability.MetricsHandler(observability.InitRegistry()))
	observability.ObserveMenu("1", 0)

	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "parkreviews_menu_queries_total") {
		t.Fatalf("metrics output missing menu counter:\n%s", body)
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	ts := httptest.NewServer(httpserver.New().Mux())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/anything")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
