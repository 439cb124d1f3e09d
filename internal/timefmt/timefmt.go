// Package timefmt converts millisecond durations and epoch timestamps into the
// human-readable strings used throughout audit reports.
package timefmt

import (
	"strconv"
	"strings"
	"time"
)

// MillisToDuration renders a millisecond duration as "1h 30m 0s". Hours and
// minutes are omitted when zero; seconds are always present, so 0 yields "0s".
func MillisToDuration(durationMs int64) string {
	totalSeconds := durationMs / 1000
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, strconv.FormatInt(hours, 10)+"h")
	}
	if minutes > 0 {
		parts = append(parts, strconv.FormatInt(minutes, 10)+"m")
	}
	parts = append(parts, strconv.FormatInt(seconds, 10)+"s")

	return strings.Join(parts, " ")
}

// EpochMillisToLocal parses an epoch-millisecond string into a local-zone time.
// The second return value is false when the input is empty or unparsable.
func EpochMillisToLocal(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}

	return time.UnixMilli(ms), true
}

// FormatTimestamp renders a wall-clock time as "2006-01-02 15:04:05", or "N/A"
// for nil.
func FormatTimestamp(t *time.Time) string {
	if t == nil {
		return "N/A"
	}

	return t.Format("2006-01-02 15:04:05")
}
