package audit

import "github.com/nadmax/timecop/internal/fraud"

type Report struct {
	Success       bool        `json:"success"`
	RunID         string      `json:"run_id"`
	Timestamp     string      `json:"timestamp"`
	AuditPeriod   Period      `json:"audit_period"`
	Summary       Summary     `json:"summary"`
	DegradedCalls int         `json:"degraded_calls"`
	Tasks         []TaskGroup `json:"tasks"`
}

// Period is the lookback window, rendered as local wall-clock strings.
type Period struct {
	Start string  `json:"start"`
	End   string  `json:"end"`
	Hours float64 `json:"hours"`
}

// Summary counts are disjoint by entry verdict and sum to Total.
type Summary struct {
	Total     int `json:"total"`
	Fraud     int `json:"fraud"`
	Potential int `json:"potential"`
	Clean     int `json:"clean"`
}

type TaskGroup struct {
	TaskName string  `json:"task_name"`
	TaskID   string  `json:"task_id"`
	Status   string  `json:"status"`
	Entries  []Entry `json:"entries"`

	severity fraud.Severity
}

type Entry struct {
	User       string `json:"user"`
	Email      string `json:"email"`
	Duration   string `json:"duration"`
	DurationMs int64  `json:"duration_ms"`
	LoggedAt   string `json:"logged_at"`
	Verdict    string `json:"verdict"`

	severity fraud.Severity
}

func statusLabel(s fraud.Severity) string {
	switch s {
	case fraud.Fraud:
		return "fraud"
	case fraud.PotentialFraud:
		return "potential"
	default:
		return "clean"
	}
}
