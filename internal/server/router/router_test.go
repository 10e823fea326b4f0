package router

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mamadbah2/herdfeed/internal/domain/models"
	"github.com/mamadbah2/herdfeed/internal/domain/reference"
	"github.com/mamadbah2/herdfeed/internal/metrics"
	"github.com/mamadbah2/herdfeed/internal/server/handlers"
	"github.com/mamadbah2/herdfeed/internal/service/advisory"
	"github.com/mamadbah2/herdfeed/internal/service/feeding"
	"github.com/mamadbah2/herdfeed/internal/service/reporting"
	"github.com/mamadbah2/herdfeed/internal/state"
)

func newEngine(t *testing.T) http.Handler {
	t.Helper()
	store := state.NewStore(state.Herd{
		Animals: []models.Animal{
			{ID: "a", TagID: "TAG-1", Name: "Pig A", Group: models.GroupGrower, Weight: 40, Status: models.StatusPending},
			{ID: "b", TagID: "TAG-2", Name: "Pig B", Group: models.GroupGrower, Weight: 60, Status: models.StatusPending},
		},
		Events: []models.FeedEvent{},
	})
	ref := reference.Default()
	m := metrics.New()

	herdSvc := feeding.NewService(store, ref, feeding.Dependencies{Metrics: m}, nil)
	reportSvc := reporting.NewService(store, ref, nil)
	adv := advisory.NewService(nil, 0, time.Second, nil)
	t.Cleanup(adv.Close)

	return New(Handlers{
		Herd:    handlers.NewHerdHandler(herdSvc, nil),
		Reports: handlers.NewReportHandler(reportSvc, adv, ref, nil),
		Metrics: m.Handler(),
	}, nil)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := do(t, newEngine(t), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("unexpected healthz %d %s", rec.Code, rec.Body.String())
	}
}

func TestRecordFeedingThenReport(t *testing.T) {
	engine := newEngine(t)

	rec := do(t, engine, http.MethodPost, "/api/feedings", `{"group":"Grower","feedType":"2","totalKg":3}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("record status %d: %s", rec.Code, rec.Body.String())
	}
	var event models.FeedEvent
	if err := json.Unmarshal(rec.Body.Bytes(), &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if len(event.Estimates) != 2 || event.FeedType != "Grower Plus" {
		t.Fatalf("unexpected event %+v", event)
	}

	rec = do(t, engine, http.MethodGet, "/api/reports/costs?window=7d", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("report status %d", rec.Code)
	}
	var report models.CostReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.EventCount != 1 || math.Abs(report.TotalCost-2.1) > 1e-9 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Status.OK != 2 {
		t.Fatalf("expected 2 OK animals, got %+v", report.Status)
	}

	rec = do(t, engine, http.MethodGet, "/api/feedings?limit=5", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), event.ID) {
		t.Fatalf("feedings list %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, engine, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `herdfeed_feed_events_total{group="Grower"} 1`) {
		t.Fatalf("metrics missing feed event counter: %s", rec.Body.String())
	}
}

func TestRecordFeedingValidation(t *testing.T) {
	engine := newEngine(t)

	cases := map[string]string{
		"malformed":     `{"group":`,
		"missing total": `{"group":"Grower","feedType":"2"}`,
		"unknown group": `{"group":"Boars","feedType":"2","totalKg":3}`,
		"negative":      `{"group":"Grower","feedType":"2","totalKg":-1}`,
		"bad override":  `{"group":"Grower","feedType":"2","totalKg":3,"overrides":{"a":"asleep"}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, engine, http.MethodPost, "/api/feedings", body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAnimalRoutes(t *testing.T) {
	engine := newEngine(t)

	rec := do(t, engine, http.MethodPost, "/api/animals", `{"tagId":"TAG-77","name":"Rosie","group":"Pregnant","weight":140,"sex":"Female","isPregnant":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status %d: %s", rec.Code, rec.Body.String())
	}
	var created models.Animal
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = do(t, engine, http.MethodGet, "/api/animals?group=Pregnant", "")
	var listed []models.Animal
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("unexpected list %+v", listed)
	}

	rec = do(t, engine, http.MethodPatch, "/api/animals/"+created.ID, `{"weight":145.5}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "145.5") {
		t.Fatalf("update %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, engine, http.MethodPatch, "/api/animals/nope", `{"weight":10}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = do(t, engine, http.MethodGet, "/api/animals?status=Hungry", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}
}

func TestExportCSV(t *testing.T) {
	engine := newEngine(t)

	rec := do(t, engine, http.MethodGet, "/api/reports/export.csv", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "liveshock_herd_report_") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	if lines := strings.Split(rec.Body.String(), "\n"); len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(lines))
	}
}

func TestResetAndReadOnlyRoutes(t *testing.T) {
	engine := newEngine(t)

	rec := do(t, engine, http.MethodPost, "/api/admin/reset", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"animals":100`) {
		t.Fatalf("reset %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, engine, http.MethodGet, "/api/advisory", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), advisory.PendingText) {
		t.Fatalf("advisory %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, engine, http.MethodGet, "/api/reference", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Starter Mix") {
		t.Fatalf("reference %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, engine, http.MethodGet, "/api/reports/costs?window=90d", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown window, got %d", rec.Code)
	}
}

func TestAnimalSearch(t *testing.T) {
	rec := do(t, newEngine(t), http.MethodGet, "/api/animals?q=tag-2", "")
	var listed []models.Animal
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != "b" {
		t.Fatalf("unexpected search result %+v", listed)
	}
}
