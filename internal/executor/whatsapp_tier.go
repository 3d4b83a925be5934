package executor

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// AutomationSendTier is the slow fallback for message delivery: open the
// desktop app with a pre-filled draft via its URI scheme, wait for the window,
// and press Enter. It is inherently racy against the real UI, which is why the
// API tier is always tried first.
type AutomationSendTier struct {
	// OpenDelay is how long to wait for the app window before sending the
	// keystroke. The desktop app is slow to restore a chat.
	OpenDelay time.Duration
}

// NewAutomationSendTier returns the fallback tier with the default open delay.
func NewAutomationSendTier() *AutomationSendTier {
	return &AutomationSendTier{OpenDelay: 4 * time.Second}
}

func (t *AutomationSendTier) Name() string { return "automation" }

// Send drives the desktop app. The recipient must be a phone number for the
// URI scheme to resolve a chat; contact names cannot be addressed this way.
func (t *AutomationSendTier) Send(ctx context.Context, recipient, message string) error {
	phone := digitsOnly(recipient)
	if phone == "" {
		return fmt.Errorf("automation tier needs a phone number, got %q", recipient)
	}

	uri := fmt.Sprintf("whatsapp://send?phone=%s&text=%s", phone, url.QueryEscape(message))
	if err := launch(ctx, uri); err != nil {
		return fmt.Errorf("failed to open messaging app: %w", err)
	}

	select {
	case <-time.After(t.OpenDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := pressKey(ctx, "enter"); err != nil {
		return fmt.Errorf("failed to confirm send: %w", err)
	}
	return nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
