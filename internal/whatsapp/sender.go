package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/utils"
)

// SendTier is one delivery strategy. Tiers are tried in order; the first
// success short-circuits. A tier signals "try the next one" by returning an
// error.
type SendTier interface {
	Name() string
	Send(ctx context.Context, recipient, message string) error
}

// Sender delivers a message through an ordered list of tiers: the API-backed
// path first, the slower simulated-input path only on a definitive negative
// signal from the tier before it.
type Sender struct {
	tiers []SendTier
	log   *utils.Logger
}

// NewSender builds a sender over the given tiers, tried in order.
func NewSender(log *utils.Logger, tiers ...SendTier) *Sender {
	return &Sender{tiers: tiers, log: log}
}

// Send tries each tier in order and returns the name of the tier that
// delivered the message. When every tier fails, the last error is returned.
func (s *Sender) Send(ctx context.Context, recipient, message string) (string, error) {
	var lastErr error
	for _, tier := range s.tiers {
		err := tier.Send(ctx, recipient, message)
		if err == nil {
			return tier.Name(), nil
		}
		lastErr = err
		if s.log != nil {
			s.log.Writef("send via %s failed, trying next tier: %v", tier.Name(), err)
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no send tiers configured")
	}
	return "", lastErr
}

// APITier delivers through the companion service. The health probe runs
// first: a not-ready flag or connection failure is a definitive negative and
// fails the tier immediately. A timed-out send is ambiguous, so it is retried
// exactly once before the tier gives up.
type APITier struct {
	client *Client
}

// NewAPITier wraps the companion service client as the preferred tier.
func NewAPITier(client *Client) *APITier {
	return &APITier{client: client}
}

func (t *APITier) Name() string { return "api" }

func (t *APITier) Send(ctx context.Context, recipient, message string) error {
	health, err := t.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("service unreachable: %w", err)
	}
	if !health.Ready {
		return errors.New("service not ready")
	}

	err = t.client.Send(ctx, recipient, message)
	if err == nil {
		return nil
	}
	if isTimeout(err) {
		// Ambiguous: the service may have been momentarily busy. One retry,
		// never a backoff loop.
		if retryErr := t.client.Send(ctx, recipient, message); retryErr == nil {
			return nil
		}
	}
	return err
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// TierFunc adapts a function to SendTier, used for the automation fallback
// and in tests.
type TierFunc struct {
	TierName string
	Fn       func(ctx context.Context, recipient, message string) error
}

func (t TierFunc) Name() string { return t.TierName }

func (t TierFunc) Send(ctx context.Context, recipient, message string) error {
	return t.Fn(ctx, recipient, message)
}
