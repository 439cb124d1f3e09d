// Package audit runs the audit pipeline: fetch every team member's time
// entries for the lookback window, classify each entry, group by task and
// assemble the ranked report.
package audit

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/nadmax/timecop/internal/clickup"
	"github.com/nadmax/timecop/internal/fraud"
	"github.com/nadmax/timecop/internal/metrics"
	"github.com/nadmax/timecop/internal/timefmt"
)

// ErrNoUsers marks an audit aborted because the member list came back empty.
// The provider's response shape cannot distinguish a failed fetch from a team
// with zero members, so both escalate here.
var ErrNoUsers = errors.New("failed to fetch users from provider")

// Provider is the read surface of the time-tracking service the auditor needs.
type Provider interface {
	GetTeamMembers(ctx context.Context) clickup.MembersPage
	GetAllTimeEntries(ctx context.Context, startMs, endMs int64, userIDs []string) clickup.EntriesBatch
}

type Auditor struct {
	provider   Provider
	classifier *fraud.Classifier
}

func NewAuditor(provider Provider, classifier *fraud.Classifier) *Auditor {
	return &Auditor{
		provider:   provider,
		classifier: classifier,
	}
}

// taskKey groups entries by the (name, id) pair. Grouping by the pair rather
// than id alone means inconsistently-named tasks split into separate groups;
// report consumers depend on that behavior.
type taskKey struct {
	name string
	id   string
}

// Run audits all team members' entries over the past hours and returns the
// grouped, severity-ranked report.
func (a *Auditor) Run(ctx context.Context, hours float64) (*Report, error) {
	began := time.Now()
	runID := uuid.New().String()

	end := began
	start := end.Add(-time.Duration(hours * float64(time.Hour)))
	startMs := start.UnixMilli()
	endMs := end.UnixMilli()

	log.Printf("audit %s: window %s to %s (%.1fh)", runID, timefmt.FormatTimestamp(&start), timefmt.FormatTimestamp(&end), hours)

	members := a.provider.GetTeamMembers(ctx)
	if len(members.Users) == 0 {
		metrics.RecordAudit("no_users", time.Since(began))
		return nil, ErrNoUsers
	}

	userIDs := make([]string, 0, len(members.Users))
	for _, user := range members.Users {
		userIDs = append(userIDs, user.ID)
	}

	batch := a.provider.GetAllTimeEntries(ctx, startMs, endMs, userIDs)

	var (
		order   []taskKey
		grouped = make(map[taskKey][]Entry)
		summary Summary
	)

	for _, raw := range batch.Entries {
		entry := a.buildEntry(raw)

		summary.Total++
		switch entry.severity {
		case fraud.Fraud:
			summary.Fraud++
		case fraud.PotentialFraud:
			summary.Potential++
		default:
			summary.Clean++
		}

		key := taskKey{name: "No Task", id: "N/A"}
		if raw.Task != nil {
			key = taskKey{name: raw.Task.Name, id: raw.Task.ID}
		}
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], entry)
	}

	tasks := make([]TaskGroup, 0, len(order))
	for _, key := range order {
		entries := grouped[key]

		status := fraud.Clean
		for _, entry := range entries {
			if entry.severity > status {
				status = entry.severity
			}
		}

		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].severity > entries[j].severity
		})

		tasks = append(tasks, TaskGroup{
			TaskName: key.name,
			TaskID:   key.id,
			Status:   statusLabel(status),
			Entries:  entries,
			severity: status,
		})
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].severity > tasks[j].severity
	})

	report := &Report{
		Success:   true,
		RunID:     runID,
		Timestamp: end.Format(time.RFC3339),
		AuditPeriod: Period{
			Start: timefmt.FormatTimestamp(&start),
			End:   timefmt.FormatTimestamp(&end),
			Hours: hours,
		},
		Summary:       summary,
		DegradedCalls: batch.DegradedCalls,
		Tasks:         tasks,
	}

	metrics.RecordAudit("ok", time.Since(began))
	log.Printf("audit %s: %d entries, %d fraud, %d potential, %d clean, %d degraded calls",
		runID, summary.Total, summary.Fraud, summary.Potential, summary.Clean, batch.DegradedCalls)

	return report, nil
}

func (a *Auditor) buildEntry(raw clickup.TimeEntry) Entry {
	username := "Unknown User"
	email := ""
	if raw.User != nil {
		if raw.User.Username != "" {
			username = raw.User.Username
		}
		email = raw.User.Email
	}

	durationMs := int64(raw.Duration)
	verdict := a.classifier.Classify(durationMs)
	metrics.RecordVerdict(verdict.Severity.String())

	var loggedAt *time.Time
	if t, ok := timefmt.EpochMillisToLocal(raw.Start); ok {
		loggedAt = &t
	}

	return Entry{
		User:       username,
		Email:      email,
		Duration:   timefmt.MillisToDuration(durationMs),
		DurationMs: durationMs,
		LoggedAt:   timefmt.FormatTimestamp(loggedAt),
		Verdict:    verdict.Label,
		severity:   verdict.Severity,
	}
}
