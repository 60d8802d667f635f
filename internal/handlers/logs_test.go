package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lahn92/AquaTimer/internal/models"
	"github.com/lahn92/AquaTimer/internal/service"
)

func TestLogsHandler_ListAndValidation(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	events := []models.LightEvent{
		{EventID: "e1", OccurredAt: now, Type: models.EventTimeSync, Description: "clock synced"},
		{EventID: "e2", OccurredAt: now.Add(1 * time.Second), Type: models.EventScheduleReplaced, Description: "schedule replaced"},
	}
	logs := &mockEventLog{resp: events}
	r := newTestRouter(&service.Service{EventLog: logs})

	// Invalid 'from' → 400
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs/?from=notatime", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid 'from', got %d", w.Code)
	}

	// Valid range and type (lowercase type should be normalized to upper in service call)
	w = httptest.NewRecorder()
	q := "/api/v1/logs/?from=" + now.Format(time.RFC3339) + "&to=" + now.Add(2*time.Second).Format(time.RFC3339) + "&type=time_sync"
	req = httptest.NewRequest(http.MethodGet, q, nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("logs status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count  int                 `json:"count"`
		Events []models.LightEvent `json:"events"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || len(out.Events) != 2 {
		t.Fatalf("unexpected response: %+v", out)
	}
	if logs.lastType != models.EventTimeSync {
		t.Fatalf("expected lastType %q, got %q", models.EventTimeSync, logs.lastType)
	}
}

func TestLogsHandler_DateOnlyToIsEndOfDay(t *testing.T) {
	logs := &mockEventLog{}
	r := newTestRouter(&service.Service{EventLog: logs})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs/?to=2026-03-01", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("logs status=%d, body=%s", w.Code, w.Body.String())
	}

	wantDay := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if logs.lastTo.Before(wantDay.Add(23 * time.Hour)) || logs.lastTo.After(wantDay.Add(24*time.Hour)) {
		t.Fatalf("date-only 'to' not end-of-day: %v", logs.lastTo)
	}
}

func TestLogsHandler_InvertedRange(t *testing.T) {
	logs := &mockEventLog{}
	r := newTestRouter(&service.Service{EventLog: logs})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs/?from=2026-03-02&to=2026-03-01", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for from > to, got %d", w.Code)
	}
}
