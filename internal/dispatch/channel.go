package dispatch

import (
	"context"
	"fmt"

	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/models"
)

// Publisher pushes a payload on a named topic of the session channel. Both
// the hub (agent-side) and a session client satisfy this.
type Publisher interface {
	Publish(topic string, payload any) error
}

// ChannelTransport publishes envelopes on the session channel's command
// topic; a relay co-located with the bridge re-issues them as direct calls.
// Delivery is acknowledged, not awaited: the returned result confirms the
// command left for the PC. The channel's join token authenticates the frame,
// so the envelope is published without the secret.
type ChannelTransport struct {
	publisher Publisher
}

// NewChannelTransport wraps a session publisher as a command transport.
func NewChannelTransport(publisher Publisher) *ChannelTransport {
	return &ChannelTransport{publisher: publisher}
}

func (t *ChannelTransport) Name() string { return "channel" }

func (t *ChannelTransport) Send(ctx context.Context, env models.CommandEnvelope) (models.ExecutionResult, error) {
	env.Secret = ""
	if err := t.publisher.Publish(models.TopicLocalCommands, env); err != nil {
		return models.ExecutionResult{}, fmt.Errorf("%w: %v", ErrBridgeOffline, err)
	}
	return models.OKResult("Command sent to your PC: " + env.Command), nil
}
