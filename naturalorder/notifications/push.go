package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PushClient talks to the push gateway that fans messages out to the web
// push subscriptions of a user's devices.
type PushClient struct {
	gatewayURL string
	authToken  string
	httpClient *http.Client
}

func NewPushClient(gatewayURL, authToken string) *PushClient {
	return &PushClient{
		gatewayURL: gatewayURL,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type pushPayload struct {
	Token   string `json:"token"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	MatchID string `json:"match_id"`
}

func (c *PushClient) Send(ctx context.Context, token, title, body, matchID string) error {
	if c.gatewayURL == "" {
		return fmt.Errorf("push gateway not configured")
	}

	payload, err := json.Marshal(pushPayload{
		Token:   token,
		Title:   title,
		Body:    body,
		MatchID: matchID,
	})
	if err != nil {
		return fmt.Errorf("failed to encode push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway returned %d", resp.StatusCode)
	}
	return nil
}
