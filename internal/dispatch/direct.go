package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/models"
)

// DirectTransport delivers envelopes with a synchronous HTTP call straight to
// the bridge's inbound endpoint. It probes GET /health first and refuses to
// attempt the command when the probe fails, so an offline bridge is reported
// as such instead of a generic connection error.
type DirectTransport struct {
	baseURL string
	http    *http.Client
}

// NewDirectTransport builds the transport for a bridge at baseURL.
func NewDirectTransport(baseURL string) *DirectTransport {
	return &DirectTransport{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 35 * time.Second},
	}
}

func (t *DirectTransport) Name() string { return "direct" }

// commandResponse is the bridge's wire shape for POST /command.
type commandResponse struct {
	Status string `json:"status"`
	Result string `json:"result"`
}

func (t *DirectTransport) Send(ctx context.Context, env models.CommandEnvelope) (models.ExecutionResult, error) {
	if err := t.probe(ctx); err != nil {
		return models.ExecutionResult{}, fmt.Errorf("%w: %v", ErrBridgeOffline, err)
	}

	body, err := json.Marshal(env)
	if err != nil {
		return models.ExecutionResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/command", bytes.NewReader(body))
	if err != nil {
		return models.ExecutionResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return models.ExecutionResult{}, fmt.Errorf("%w: %v", ErrBridgeOffline, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var cr commandResponse
		if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
			return models.ExecutionResult{}, fmt.Errorf("malformed bridge response: %w", err)
		}
		return models.ExecutionResult{Status: cr.Status, Message: cr.Result}, nil
	case http.StatusUnauthorized:
		return models.ExecutionResult{}, ErrUnauthorized
	default:
		return models.ExecutionResult{}, fmt.Errorf("bridge returned %d", resp.StatusCode)
	}
}

// probe is the liveness check used before every command attempt.
func (t *DirectTransport) probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := t.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health probe returned %d", resp.StatusCode)
	}
	return nil
}
