// Package fraud classifies a single time entry's duration against the two
// audit heuristics. Severity is computed once here and carried as a tagged
// value beside the display label; nothing downstream re-derives it from text.
package fraud

import "strings"

type Severity int

// Ordered so that the most severe verdict wins a numeric comparison.
const (
	Clean Severity = iota
	PotentialFraud
	Fraud
)

func (s Severity) String() string {
	switch s {
	case Fraud:
		return "FRAUD"
	case PotentialFraud:
		return "POTENTIAL_FRAUD"
	default:
		return "CLEAN"
	}
}

const (
	labelZeroSeconds = "🚨 FRAUD (0s Signature)"
	labelShortTask   = "⚠️ POTENTIAL FRAUD (Short Duration)"
	labelClean       = "✅ CLEAN"
)

// Verdict pairs the machine-readable severity with the label shown in reports.
type Verdict struct {
	Severity Severity
	Label    string
}

type Classifier struct {
	// ShortTaskThresholdMinutes is the minimum duration considered meaningful
	// work; anything strictly shorter is flagged.
	ShortTaskThresholdMinutes int
}

func NewClassifier(shortTaskThresholdMinutes int) *Classifier {
	return &Classifier{ShortTaskThresholdMinutes: shortTaskThresholdMinutes}
}

// Classify evaluates both heuristics against a duration in milliseconds.
// The zero-seconds trap alone decides the FRAUD severity; the short-task flag
// only ever raises CLEAN to POTENTIAL_FRAUD, though its label is still
// appended when both fire.
func (c *Classifier) Classify(durationMs int64) Verdict {
	var labels []string
	severity := Clean

	if zeroSecondsTrap(durationMs) {
		labels = append(labels, labelZeroSeconds)
		severity = Fraud
	}
	if c.shortTask(durationMs) {
		labels = append(labels, labelShortTask)
		if severity < PotentialFraud {
			severity = PotentialFraud
		}
	}

	if len(labels) == 0 {
		return Verdict{Severity: Clean, Label: labelClean}
	}

	return Verdict{Severity: severity, Label: strings.Join(labels, " | ")}
}

// zeroSecondsTrap fires on durations landing exactly on a minute boundary.
// Humans backfill round minutes; trackers almost never do. Zero itself is
// excluded.
func zeroSecondsTrap(durationMs int64) bool {
	totalSeconds := durationMs / 1000
	return totalSeconds%60 == 0 && durationMs > 0
}

func (c *Classifier) shortTask(durationMs int64) bool {
	return float64(durationMs)/60000 < float64(c.ShortTaskThresholdMinutes)
}
