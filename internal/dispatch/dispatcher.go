package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/models"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/utils"
)

// Failure taxonomy surfaced to the dispatcher's caller. The conversational
// agent needs to distinguish these to phrase a sensible spoken response.
var (
	// ErrBridgeOffline marks transport-level failures: probe rejected,
	// connection refused, timeout.
	ErrBridgeOffline = errors.New("bridge offline")
	// ErrUnauthorized marks a shared-secret mismatch reported by the bridge.
	ErrUnauthorized = errors.New("bridge rejected the secret")
)

// Transport carries a Command Envelope to the bridge. The transport is picked
// once at configuration time; no per-call fallback exists between transports.
type Transport interface {
	Name() string
	Send(ctx context.Context, env models.CommandEnvelope) (models.ExecutionResult, error)
}

// Dispatcher converts an agent-decided intent into a Command Envelope and
// delivers it over the configured transport.
type Dispatcher struct {
	transport Transport
	secret    string
	timeout   time.Duration
	log       *utils.Logger
}

// NewDispatcher builds a dispatcher bound to one transport.
func NewDispatcher(transport Transport, secret string, timeout time.Duration, log *utils.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{transport: transport, secret: secret, timeout: timeout, log: log}
}

// Dispatch sends one command and returns the bridge's execution result.
// Transport failures come back as errors (ErrBridgeOffline, ErrUnauthorized);
// executor-level failures come back as an error-status result, not an error.
func (d *Dispatcher) Dispatch(ctx context.Context, command string, params map[string]any) (models.ExecutionResult, error) {
	env := models.CommandEnvelope{
		Secret:  d.secret,
		Command: command,
		Params:  params,
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	result, err := d.transport.Send(ctx, env)
	if err != nil {
		if d.log != nil {
			d.log.Writef("dispatch of %s over %s failed: %v", command, d.transport.Name(), err)
		}
		return models.ExecutionResult{}, fmt.Errorf("dispatch %s: %w", command, err)
	}
	return result, nil
}
