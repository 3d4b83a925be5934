package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/models"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/utils"
)

var validate = validator.New()

// CommandRunner executes an already-authorized envelope. The bridge core
// satisfies it.
type CommandRunner interface {
	Execute(ctx context.Context, env models.CommandEnvelope) models.ExecutionResult
}

// Relay is Channel Transport's receiving half: it subscribes to the command
// topic on the session channel and hands each envelope straight to the bridge
// core. The channel itself is authenticated by the join token, so frames carry
// no secret and none is checked here; the configured secret only guards the
// HTTP endpoint, where it may be stored as a bcrypt hash.
type Relay struct {
	client *Client
	runner CommandRunner
	log    *utils.Logger
}

// NewRelay wires a relay over an established session client.
func NewRelay(client *Client, runner CommandRunner, log *utils.Logger) *Relay {
	return &Relay{client: client, runner: runner, log: log}
}

// Start subscribes to the command topic. Each valid frame becomes one
// execution; failures are logged and dropped, never retried.
func (r *Relay) Start() {
	r.client.Subscribe(models.TopicLocalCommands, func(msg Message) {
		go r.forward(msg)
	})
}

func (r *Relay) forward(msg Message) {
	var env models.CommandEnvelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		r.logf("relay: malformed command frame: %v", err)
		return
	}
	if err := validate.Struct(env); err != nil {
		r.logf("relay: invalid command frame: %v", err)
		return
	}

	result := r.runner.Execute(context.Background(), env)
	if result.Status != models.StatusOK {
		r.logf("relay: command %s failed: %s", env.Command, result.Message)
	}
}

func (r *Relay) logf(format string, args ...any) {
	if r.log != nil {
		r.log.Write(fmt.Sprintf(format, args...))
	}
}
