// Package api exposes the audit pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nadmax/timecop/internal/audit"
	"github.com/nadmax/timecop/internal/cache"
	"github.com/nadmax/timecop/internal/clickup"
	"github.com/nadmax/timecop/internal/config"
	"github.com/nadmax/timecop/internal/httputil"
)

type API struct {
	auditor *audit.Auditor
	probe   *clickup.Client
	reports *cache.ReportCache
	cfg     *config.Config
	mux     *http.ServeMux
}

type healthResponse struct {
	API       string `json:"api"`
	ClickUp   string `json:"clickup"`
	TeamID    string `json:"team_id"`
	Timestamp string `json:"timestamp"`
}

// NewAPI wires the gateway routes. The report cache may be nil, in which case
// every audit request runs the pipeline.
func NewAPI(auditor *audit.Auditor, probe *clickup.Client, reports *cache.ReportCache, cfg *config.Config) *API {
	api := &API{
		auditor: auditor,
		probe:   probe,
		reports: reports,
		cfg:     cfg,
		mux:     http.NewServeMux(),
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	a.mux.HandleFunc("/api/audit", a.handleAudit)
	a.mux.HandleFunc("/api/health", a.handleHealth)
	a.mux.Handle("/metrics", promhttp.Handler())

	fs := http.FileServer(http.Dir("./web"))
	a.mux.Handle("/", fs)
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *API) handleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hours := a.cfg.DefaultLookbackHours
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			httputil.WriteJSONError(w, "hours must be a positive number", http.StatusBadRequest)
			return
		}
		hours = parsed
	}

	if report, ok := a.reports.Get(r.Context(), hours); ok {
		httputil.WriteJSON(w, http.StatusOK, report)
		return
	}

	report, err := a.auditor.Run(r.Context(), hours)
	if err != nil {
		if errors.Is(err, audit.ErrNoUsers) {
			httputil.WriteJSONError(w, "Failed to fetch users", http.StatusServiceUnavailable)
			return
		}
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := a.reports.Set(r.Context(), hours, report); err != nil {
		log.Printf("failed to cache audit report: %v", err)
	}

	httputil.WriteJSON(w, http.StatusOK, report)
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.cfg.ProbeTimeout)
	defer cancel()

	status := "connected"
	if err := a.probe.Ping(ctx); err != nil {
		if errors.Is(err, clickup.ErrUnexpectedStatus) {
			status = "error"
		} else {
			status = "disconnected"
		}
	}

	httputil.WriteJSON(w, http.StatusOK, healthResponse{
		API:       "healthy",
		ClickUp:   status,
		TeamID:    a.cfg.TeamID,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
