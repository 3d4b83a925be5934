package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/executor"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/middleware"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/models"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/utils"
)

// Bridge is the single always-on process that can act on the local machine on
// behalf of the remote agent. It authenticates envelopes, dispatches them to
// the executor registry, and converts every failure into an error-status
// result — no envelope can take the process down.
type Bridge struct {
	registry *executor.Registry
	guard    *middleware.SecretGuard
	log      *utils.Logger
	timeout  time.Duration
}

// New builds a bridge over the given registry and secret guard.
func New(registry *executor.Registry, guard *middleware.SecretGuard, log *utils.Logger, timeout time.Duration) *Bridge {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Bridge{registry: registry, guard: guard, log: log, timeout: timeout}
}

// Authorize checks the envelope's shared secret. It fails closed.
func (b *Bridge) Authorize(env models.CommandEnvelope) bool {
	return b.guard.Verify(env.Secret)
}

// HandleCommand authenticates and executes one envelope. The result is always
// well-formed: unauthorized, unknown command, and executor failures all come
// back as error-status results rather than errors.
func (b *Bridge) HandleCommand(ctx context.Context, env models.CommandEnvelope) models.ExecutionResult {
	if !b.Authorize(env) {
		b.logf("rejected command %q: secret mismatch", env.Command)
		return models.ErrorResult(middleware.UnauthorizedMessage)
	}
	return b.Execute(ctx, env)
}

// Execute dispatches an already-authorized envelope to its executor, bounded
// by the command timeout. There is no mid-command cancellation beyond it:
// once dispatched, an executor runs to completion or its own timeout.
func (b *Bridge) Execute(ctx context.Context, env models.CommandEnvelope) models.ExecutionResult {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	result, err := b.registry.Execute(ctx, env.Command, env.Params)
	if err != nil {
		if errors.Is(err, executor.ErrUnknownCommand) {
			b.logf("unknown command %q", env.Command)
		} else {
			b.logf("command %q failed: %v", env.Command, err)
		}
		return models.ErrorResult(err.Error())
	}

	b.logf("command %q completed: %s", env.Command, result)
	return models.OKResult(result)
}

func (b *Bridge) logf(format string, args ...any) {
	if b.log != nil {
		b.log.Writef(format, args...)
	}
}
