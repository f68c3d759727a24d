package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func gatherValue(t *testing.T, r *Registry, name string) (float64, bool) {
	t.Helper()
	var families []*dto.MetricFamily
	families, err := r.Prometheus().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			}
		}
		return total, true
	}
	return 0, false
}

func TestRecordHTTPRequest(t *testing.T) {
	r := NewRegistry()
	r.RecordHTTPRequest("GET", "/deliberations", "200", 5*time.Millisecond)
	r.RecordHTTPRequest("POST", "/deliberations", "201", 12*time.Millisecond)

	if got, ok := gatherValue(t, r, "agora_http_requests_total"); !ok || got != 2 {
		t.Errorf("agora_http_requests_total = %g (found %v), want 2", got, ok)
	}
	if got, ok := gatherValue(t, r, "agora_http_request_duration_seconds"); !ok || got != 2 {
		t.Errorf("duration sample count = %g (found %v), want 2", got, ok)
	}
}

func TestRecordLayoutRun(t *testing.T) {
	r := NewRegistry()
	r.RecordLayoutRun("success", 42, 80*time.Millisecond)
	r.RecordLayoutRun("cancelled", 7, 5*time.Millisecond)

	if got, _ := gatherValue(t, r, "agora_layout_runs_total"); got != 2 {
		t.Errorf("agora_layout_runs_total = %g, want 2", got)
	}
	if got, _ := gatherValue(t, r, "agora_layout_nodes_per_run"); got != 2 {
		t.Errorf("nodes per run sample count = %g, want 2", got)
	}
}

func TestRecordStoreOperation(t *testing.T) {
	r := NewRegistry()
	r.RecordStoreOperation("create_node", "success", time.Millisecond)

	if got, _ := gatherValue(t, r, "agora_store_operations_total"); got != 1 {
		t.Errorf("agora_store_operations_total = %g, want 1", got)
	}
}

func TestRecordEvents(t *testing.T) {
	r := NewRegistry()
	r.RecordEventPublished("node.created")
	r.RecordEventPublished("layout.completed")
	r.RecordEventDropped()

	if got, _ := gatherValue(t, r, "agora_events_published_total"); got != 2 {
		t.Errorf("agora_events_published_total = %g, want 2", got)
	}
	if got, _ := gatherValue(t, r, "agora_events_dropped_total"); got != 1 {
		t.Errorf("agora_events_dropped_total = %g, want 1", got)
	}
}

func TestHandlerServesTextFormat(t *testing.T) {
	r := NewRegistry()
	r.RecordEventPublished("node.created")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "agora_events_published_total") {
		t.Error("Exposition missing agora_events_published_total")
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Error("Exposition missing runtime collector series")
	}
}

func TestRegistriesAreIsolated(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	a.RecordEventDropped()

	if got, _ := gatherValue(t, b, "agora_events_dropped_total"); got != 0 {
		t.Errorf("Registry b saw %g drops from registry a", got)
	}
}
