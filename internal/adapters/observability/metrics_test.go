package observability_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reviewdesk/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record one sample per family so every vec is exported
	observability.ObserveHTTP("/v1/dashboard", "GET", 200, 12*time.Millisecond)
	observability.ObserveTransition("approve", "ok")
	observability.ObserveSync(errors.New("boom"), 5*time.Millisecond)
	observability.ObserveRollback("approve")
	observability.ObserveBatchItem("analyze", "skipped")

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, name := range []string{
		"reviewdesk_http_requests_total",
		"reviewdesk_review_transitions_total",
		"reviewdesk_review_sync_duration_seconds",
		"reviewdesk_review_rollbacks_total",
		"reviewdesk_batch_items_total",
	} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
}

func TestLabelErr(t *testing.T) {
	if got := observability.LabelErr(nil); got != "none" {
		t.Fatalf("nil: %q", got)
	}
	if got := observability.LabelErr(errors.New("x")); got != "*errors.errorString" {
		t.Fatalf("type label: %q", got)
	}
}
