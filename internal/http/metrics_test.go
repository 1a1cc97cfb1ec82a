package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func hasFamily(t *testing.T, reg *prometheus.Registry, name string) bool {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() == name {
			return true
		}
	}
	return false
}

// Every router built in tests carries its own registry, so registering a
// second one must expose the collectors there as well.
func TestRegisterMetricsOnMultipleRegistries(t *testing.T) {
	first := prometheus.NewRegistry()
	second := prometheus.NewRegistry()

	RegisterMetrics(first)
	RegisterMetrics(second)

	h := WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if !hasFamily(t, first, "http_requests_total") {
		t.Fatal("first registry is missing http_requests_total")
	}
	if !hasFamily(t, second, "http_requests_total") {
		t.Fatal("second registry is missing http_requests_total")
	}
}

func TestRegisterMetricsIsIdempotentPerRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()

	RegisterMetrics(reg)
	RegisterMetrics(reg)

	if _, err := reg.Gather(); err != nil {
		t.Fatalf("gather after double registration: %v", err)
	}
}
