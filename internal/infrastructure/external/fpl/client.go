package fpl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/podscout/podscout/internal/infrastructure/cache"
	"github.com/podscout/podscout/internal/usecase/schedule"
)

const defaultBaseURL = "https://fantasy.premierleague.com"

// The bootstrap document only changes at gameweek deadlines; a short
// TTL keeps one pipeline run from fetching it more than once.
const bootstrapCacheKey = "fpl:bootstrap-events"
const bootstrapCacheTTL = 15 * time.Minute

// Client reads gameweek boundaries from the FPL bootstrap API. It is
// the external_epoch collaborator for the window resolver.
type Client struct {
	baseURL string
	client  *http.Client
	cache   *cache.MemoryStore
}

// NewClient creates an FPL API client.
func NewClient() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		cache:   cache.NewMemoryStore(),
	}
}

// NewClientWithBaseURL creates a client against a non-default endpoint.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

// event mirrors one entry of the bootstrap-static events array.
type event struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	DeadlineTime time.Time `json:"deadline_time"`
	IsCurrent    bool      `json:"is_current"`
	IsNext       bool      `json:"is_next"`
	Finished     bool      `json:"finished"`
}

type bootstrapResponse struct {
	Events []event `json:"events"`
}

// Current implements schedule.EpochSource. The epoch start is the
// previous gameweek's deadline; for gameweek 1 the start is nil.
func (c *Client) Current(ctx context.Context) (*schedule.Epoch, error) {
	events, err := c.fetchEvents(ctx)
	if err != nil {
		return nil, err
	}

	var current *event
	for i := range events {
		if events[i].IsCurrent {
			current = &events[i]
			break
		}
	}
	if current == nil {
		return nil, fmt.Errorf("no current gameweek in bootstrap data")
	}

	epoch := &schedule.Epoch{Label: fmt.Sprintf("GW%d", current.ID)}
	for i := range events {
		if events[i].ID == current.ID-1 {
			deadline := events[i].DeadlineTime
			epoch.Start = &deadline
			break
		}
	}
	return epoch, nil
}

func (c *Client) fetchEvents(ctx context.Context) ([]event, error) {
	if raw, ok := c.cache.Get(bootstrapCacheKey); ok {
		var events []event
		if err := json.Unmarshal([]byte(raw), &events); err == nil {
			return events, nil
		}
		c.cache.Delete(bootstrapCacheKey)
	}

	endpoint := c.baseURL + "/api/bootstrap-static/"
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "podscout/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fpl api returned status %d", resp.StatusCode)
	}

	var br bootstrapResponse
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(br.Events); err == nil {
		c.cache.Set(bootstrapCacheKey, string(raw), bootstrapCacheTTL)
	}
	return br.Events, nil
}
