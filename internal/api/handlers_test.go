package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadmax/timecop/internal/audit"
	"github.com/nadmax/timecop/internal/cache"
	"github.com/nadmax/timecop/internal/clickup"
	"github.com/nadmax/timecop/internal/config"
	"github.com/nadmax/timecop/internal/fraud"
)

// fakeClickUp serves the two provider endpoints the gateway exercises.
type fakeClickUp struct {
	members      string
	memberStatus int
	entries      string
	calls        atomic.Int32
}

func (f *fakeClickUp) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		switch r.URL.Path {
		case "/team/9000":
			if f.memberStatus != 0 {
				w.WriteHeader(f.memberStatus)
				return
			}
			fmt.Fprint(w, f.members)
		case "/team/9000/time_entries":
			fmt.Fprint(w, f.entries)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func defaultFake() *fakeClickUp {
	return &fakeClickUp{
		members: `{"team": {"members": [{"user": {"id": 1, "username": "alice", "email": "alice@example.com"}}]}}`,
		entries: `{"data": [
			{"user": {"username": "alice", "email": "alice@example.com"},
			 "task": {"id": "t1", "name": "Deploy"},
			 "duration": "600000", "start": "1700000000000"},
			{"user": {"username": "alice", "email": "alice@example.com"},
			 "duration": "5405000"}
		]}`,
	}
}

func setupTestAPI(t *testing.T, fake *fakeClickUp, reports *cache.ReportCache) (*API, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(fake.handler())

	cfg := &config.Config{
		APIKey:                    "test-key",
		TeamID:                    "9000",
		BaseURL:                   server.URL,
		DefaultLookbackHours:      9.5,
		ShortTaskThresholdMinutes: 5,
		RequestTimeout:            5 * time.Second,
		ProbeTimeout:              time.Second,
	}

	client := clickup.NewClient(cfg)
	auditor := audit.NewAuditor(client, fraud.NewClassifier(cfg.ShortTaskThresholdMinutes))

	return NewAPI(auditor, client, reports, cfg), server
}

func TestHandleAudit(t *testing.T) {
	api, server := setupTestAPI(t, defaultFake(), nil)
	defer server.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/audit", nil)
	w := httptest.NewRecorder()

	api.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var report audit.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))

	assert.True(t, report.Success)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 9.5, report.AuditPeriod.Hours)
	assert.Equal(t, 2, report.Summary.Total)
	assert.Equal(t, 1, report.Summary.Fraud)
	assert.Equal(t, 1, report.Summary.Clean)

	require.Len(t, report.Tasks, 2)
	assert.Equal(t, "fraud", report.Tasks[0].Status)
	assert.Equal(t, "Deploy", report.Tasks[0].TaskName)
	assert.Equal(t, "No Task", report.Tasks[1].TaskName)
	assert.Equal(t, "N/A", report.Tasks[1].TaskID)
}

func TestHandleAudit_CustomHours(t *testing.T) {
	api, server := setupTestAPI(t, defaultFake(), nil)
	defer server.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/audit?hours=24", nil)
	w := httptest.NewRecorder()

	api.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var report audit.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 24.0, report.AuditPeriod.Hours)
}

func TestHandleAudit_InvalidHours(t *testing.T) {
	api, server := setupTestAPI(t, defaultFake(), nil)
	defer server.Close()

	for _, raw := range []string{"abc", "-1", "0"} {
		req := httptest.NewRequest(http.MethodGet, "/api/audit?hours="+raw, nil)
		w := httptest.NewRecorder()

		api.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "hours=%q", raw)
	}
}

func TestHandleAudit_NoUsers(t *testing.T) {
	fake := defaultFake()
	fake.members = `{"team": {"members": []}}`

	api, server := setupTestAPI(t, fake, nil)
	defer server.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/audit", nil)
	w := httptest.NewRecorder()

	api.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Failed to fetch users", body["error"])
}

func TestHandleAudit_MembersFetchFailing(t *testing.T) {
	fake := defaultFake()
	fake.memberStatus = http.StatusInternalServerError

	api, server := setupTestAPI(t, fake, nil)
	defer server.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/audit", nil)
	w := httptest.NewRecorder()

	api.ServeHTTP(w, req)

	// A failed members fetch is indistinguishable from an empty team.
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandleAudit_MethodNotAllowed(t *testing.T) {
	api, server := setupTestAPI(t, defaultFake(), nil)
	defer server.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/audit", nil)
	w := httptest.NewRecorder()

	api.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandleAudit_CachedReport(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	reports, err := cache.New(mr.Addr(), time.Minute)
	require.NoError(t, err)
	defer func() { _ = reports.Close() }()

	fake := defaultFake()
	api, server := setupTestAPI(t, fake, reports)
	defer server.Close()

	first := httptest.NewRecorder()
	api.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/audit", nil))
	require.Equal(t, http.StatusOK, first.Code)

	providerCalls := fake.calls.Load()

	second := httptest.NewRecorder()
	api.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/audit", nil))
	require.Equal(t, http.StatusOK, second.Code)

	// The second request is served from cache without touching the provider.
	assert.Equal(t, providerCalls, fake.calls.Load())

	var cached audit.Report
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &cached))

	var fresh audit.Report
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &fresh))
	assert.Equal(t, fresh.RunID, cached.RunID)
}

func TestHandleHealth(t *testing.T) {
	api, server := setupTestAPI(t, defaultFake(), nil)
	defer server.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()

	api.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var health healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.API)
	assert.Equal(t, "connected", health.ClickUp)
	assert.Equal(t, "9000", health.TeamID)
	assert.NotEmpty(t, health.Timestamp)
}

func TestHandleHealth_ProviderError(t *testing.T) {
	fake := defaultFake()
	fake.memberStatus = http.StatusUnauthorized

	api, server := setupTestAPI(t, fake, nil)
	defer server.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()

	api.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var health healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "error", health.ClickUp)
}

func TestHandleHealth_ProviderUnreachable(t *testing.T) {
	fake := defaultFake()
	api, server := setupTestAPI(t, fake, nil)
	// Closing the fake upstream makes the probe fail at the transport level.
	server.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()

	api.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var health healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "disconnected", health.ClickUp)
}
