package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/lumipallolabs/treemapview/internal/core"
)

func TestObserveDeletion(t *testing.T) {
	deletions := testutil.ToFloat64(deletionsTotal)
	freed := testutil.ToFloat64(freedBytesTotal)

	Observe(core.DeletionDetectedEvent{Path: "/r/a", Size: 400, TotalFreed: 400})

	if got := testutil.ToFloat64(deletionsTotal); got != deletions+1 {
		t.Errorf("deletions = %v, want %v", got, deletions+1)
	}
	if got := testutil.ToFloat64(freedBytesTotal); got != freed+400 {
		t.Errorf("freed = %v, want %v", got, freed+400)
	}
}

func TestObserveLayout(t *testing.T) {
	shown := testutil.ToFloat64(layoutsTotal.WithLabelValues("false"))
	suppressed := testutil.ToFloat64(layoutsTotal.WithLabelValues("true"))

	Observe(core.TreemapChangedEvent{Tiles: 12, Elapsed: time.Millisecond})
	if got := testutil.ToFloat64(tiles); got != 12 {
		t.Errorf("tiles = %v", got)
	}

	Observe(core.TreemapChangedEvent{Suppressed: true})
	if got := testutil.ToFloat64(tiles); got != 0 {
		t.Errorf("tiles after suppression = %v", got)
	}

	if got := testutil.ToFloat64(layoutsTotal.WithLabelValues("false")); got != shown+1 {
		t.Errorf("shown layouts = %v", got)
	}
	if got := testutil.ToFloat64(layoutsTotal.WithLabelValues("true")); got != suppressed+1 {
		t.Errorf("suppressed layouts = %v", got)
	}
}

func TestHandlerExportsMetrics(t *testing.T) {
	RecordHTTPRequest(http.MethodGet, "/api/treemap", http.StatusOK, 5*time.Millisecond)
	Observe(core.ScanCompletedEvent{Path: "/r", Err: errors.New("boom"), Elapsed: time.Second})
	Observe(core.SelectionChangedEvent{})

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		`treemapview_http_requests_total{method="GET",path="/api/treemap",status="200"}`,
		`treemapview_scan_duration_seconds_count{status="error"}`,
		"treemapview_selection_changes_total",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}
