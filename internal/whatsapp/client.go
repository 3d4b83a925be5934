package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/models"
)

// Client talks to the companion messaging service, a separate local process
// that holds the authenticated WhatsApp session. The service exposes three
// endpoints: GET /health (ready/QR state), GET /messages (pending inbound
// events), and POST /send.
type Client struct {
	baseURL string
	http    *http.Client
}

// Health is the companion service's readiness report. Ready means the session
// is linked and messages can flow; HasQR means the service is waiting for a
// QR scan to pair.
type Health struct {
	Ready bool `json:"ready"`
	HasQR bool `json:"hasQR"`
}

// NewClient builds a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// HealthCheck probes the service. A connection failure is returned as an
// error; callers treat it as "service not running".
func (c *Client) HealthCheck(ctx context.Context) (Health, error) {
	var h Health
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return h, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return h, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return h, fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return h, err
	}
	return h, nil
}

// PendingMessages fetches the current list of inbound events. The service
// owns the pending buffer; the bridge only reads it.
func (c *Client) PendingMessages(ctx context.Context) ([]models.NotificationEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/messages", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("messages fetch returned %d", resp.StatusCode)
	}
	var body struct {
		Messages []models.NotificationEvent `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Messages, nil
}

// Send delivers a message via the service. Non-2xx responses are definitive
// failures.
func (c *Client) Send(ctx context.Context, to, message string) error {
	payload, err := json.Marshal(map[string]string{"to": to, "message": message})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("send returned %d", resp.StatusCode)
	}
	return nil
}
