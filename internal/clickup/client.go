// Package clickup implements the read-only client for the ClickUp v2 API.
//
// Every fetch follows a fail-to-empty contract: transport errors, non-2xx
// statuses and malformed payloads are logged and absorbed as an empty result
// with the Degraded flag set, never propagated. The one exception is Ping,
// which reports failures so the health endpoint can expose them.
package clickup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/nadmax/timecop/internal/config"
	"github.com/nadmax/timecop/internal/metrics"
)

// ErrUnexpectedStatus is returned by Ping when the provider answered but not
// with 200, letting the health check distinguish "error" from "disconnected".
var ErrUnexpectedStatus = errors.New("unexpected status from provider")

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	teamID     string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		teamID:     cfg.TeamID,
	}
}

// GetTeamMembers fetches every member of the configured workspace.
func (c *Client) GetTeamMembers(ctx context.Context) MembersPage {
	var resp teamResponse
	if err := c.getJSON(ctx, "team", c.baseURL+"/team/"+c.teamID, &resp); err != nil {
		log.Printf("Error fetching users: %v", err)
		metrics.RecordDegradedFetch()
		return MembersPage{Degraded: true}
	}

	users := make([]User, 0, len(resp.Team.Members))
	for _, member := range resp.Team.Members {
		username := member.User.Username
		if username == "" {
			username = "Unknown"
		}
		users = append(users, User{
			ID:       string(member.User.ID),
			Username: username,
			Email:    member.User.Email,
		})
	}

	return MembersPage{Users: users}
}

// GetTimeEntries fetches one user's time entries inside the epoch-millisecond
// window.
func (c *Client) GetTimeEntries(ctx context.Context, userID string, startMs, endMs int64) EntriesPage {
	params := url.Values{}
	params.Set("start_date", strconv.FormatInt(startMs, 10))
	params.Set("end_date", strconv.FormatInt(endMs, 10))
	params.Set("assignee", userID)

	endpoint := c.baseURL + "/team/" + c.teamID + "/time_entries?" + params.Encode()

	var resp entriesResponse
	if err := c.getJSON(ctx, "time_entries", endpoint, &resp); err != nil {
		log.Printf("Error fetching entries for user %s: %v", userID, err)
		metrics.RecordDegradedFetch()
		return EntriesPage{Degraded: true}
	}

	return EntriesPage{Entries: resp.Data}
}

// GetAllTimeEntries fans out one GetTimeEntries call per user concurrently and
// concatenates the results in user order. Each goroutine writes only its own
// slot, so the barrier needs no locking, and a failing user degrades to an
// empty page without aborting the others.
func (c *Client) GetAllTimeEntries(ctx context.Context, startMs, endMs int64, userIDs []string) EntriesBatch {
	pages := make([]EntriesPage, len(userIDs))

	var wg sync.WaitGroup
	for i, userID := range userIDs {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			pages[i] = c.GetTimeEntries(ctx, userID, startMs, endMs)
		}(i, userID)
	}
	wg.Wait()

	var batch EntriesBatch
	for _, page := range pages {
		batch.Entries = append(batch.Entries, page.Entries...)
		if page.Degraded {
			batch.DegradedCalls++
		}
	}

	return batch
}

// Ping issues a lightweight probe against the team endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/team/"+c.teamID, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("failed to close probe response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, rawURL string, target any) error {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordProviderRequest(endpoint, "transport_error", time.Since(start))
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("failed to close response body: %v", err)
		}
	}()

	metrics.RecordProviderRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}

	return nil
}
