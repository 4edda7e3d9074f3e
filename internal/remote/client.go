package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	sessionDomain "github.com/amble-mobility/offline-engine/internal/domain/session"
	"github.com/amble-mobility/offline-engine/internal/domain/shared"
	"github.com/google/uuid"
)

// sessionPayload is the wire format for one session submission.
type sessionPayload struct {
	ID           uuid.UUID           `json:"id"`
	StartedAt    time.Time           `json:"started_at"`
	EndedAt      time.Time           `json:"ended_at"`
	DistanceM    float64             `json:"distance_m"`
	RewardPoints int64               `json:"reward_points"`
	Path         []shared.Coordinate `json:"path"`
}

// Client submits pending sessions to the rewards backend. Any 2xx response is
// the only acceptable acknowledgment; everything else (non-2xx, transport
// error, timeout) is a SyncDeliveryError. The backend de-duplicates
// resubmissions by session ID.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a Client for the given sync endpoint URL.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{},
	}
}

// SubmitSession delivers one session. Bound the call with a context deadline;
// a timeout is treated identically to any other delivery failure.
func (c *Client) SubmitSession(ctx context.Context, s *sessionDomain.PendingSession) error {
	body, err := json.Marshal(sessionPayload{
		ID:           s.ID(),
		StartedAt:    s.StartedAt(),
		EndedAt:      s.EndedAt(),
		DistanceM:    s.DistanceM(),
		RewardPoints: s.RewardPoints(),
		Path:         s.Path(),
	})
	if err != nil {
		return shared.NewSyncDeliveryError(s.ID().String(), 0, fmt.Errorf("failed to encode session: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return shared.NewSyncDeliveryError(s.ID().String(), 0, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return shared.NewSyncDeliveryError(s.ID().String(), 0, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return shared.NewSyncDeliveryError(s.ID().String(), resp.StatusCode, nil)
	}
	return nil
}
