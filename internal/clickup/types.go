package clickup

import (
	"bytes"
	"strconv"
)

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TimeEntry is the raw provider record for one logged interval. User and Task
// are optional in the payload; Duration arrives as a string or a number of
// milliseconds depending on the endpoint version.
type TimeEntry struct {
	User     *EntryUser `json:"user"`
	Task     *EntryTask `json:"task"`
	Duration Millis     `json:"duration"`
	Start    string     `json:"start"`
}

type EntryUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type EntryTask struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MembersPage is the outcome of one team-members fetch. Degraded marks a
// transient provider failure that was absorbed as an empty result, so callers
// can tell "no members" apart from "fetch failed" even though both are empty.
type MembersPage struct {
	Users    []User
	Degraded bool
}

// EntriesPage is the outcome of one per-user time-entries fetch, with the same
// Degraded semantics as MembersPage.
type EntriesPage struct {
	Entries  []TimeEntry
	Degraded bool
}

// EntriesBatch concatenates the per-user pages of a fan-out fetch.
type EntriesBatch struct {
	Entries       []TimeEntry
	DegradedCalls int
}

// Millis decodes a millisecond count that the provider serializes either as a
// JSON number or as a quoted string. Missing or unparsable values decode to 0
// rather than failing the whole payload.
type Millis int64

func (m *Millis) UnmarshalJSON(data []byte) error {
	*m = 0

	s := string(bytes.Trim(data, `"`))
	if s == "" || s == "null" {
		return nil
	}

	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*m = Millis(v)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*m = Millis(int64(f))
	}

	return nil
}

// flexID accepts the numeric ids the members endpoint returns and the string
// ids everything else uses.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	*f = flexID(bytes.Trim(data, `"`))
	return nil
}

type teamResponse struct {
	Team struct {
		Members []struct {
			User struct {
				ID       flexID `json:"id"`
				Username string `json:"username"`
				Email    string `json:"email"`
			} `json:"user"`
		} `json:"members"`
	} `json:"team"`
}

type entriesResponse struct {
	Data []TimeEntry `json:"data"`
}
