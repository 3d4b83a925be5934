package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/models"
)

type stubSource struct {
	events []models.NotificationEvent
	err    error
}

func (s *stubSource) PendingMessages(ctx context.Context) ([]models.NotificationEvent, error) {
	return s.events, s.err
}

type recordingPublisher struct {
	topics   []string
	payloads []any
	err      error
}

func (p *recordingPublisher) Publish(topic string, payload any) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return nil
}

func TestPollOnceForwardsNewEventsOnly(t *testing.T) {
	source := &stubSource{events: []models.NotificationEvent{
		{ID: "m1", Sender: "Alice", Body: "hi"},
		{ID: "m2", Sender: "Bob", Body: "yo"},
	}}
	pub := &recordingPublisher{}
	f := NewForwarder(source, pub, time.Second, nil)

	if got := f.PollOnce(context.Background()); got != 2 {
		t.Fatalf("expected 2 forwarded on first poll, got %d", got)
	}
	// The integration keeps returning the same pending events until they age
	// out; the second poll must forward nothing.
	if got := f.PollOnce(context.Background()); got != 0 {
		t.Fatalf("expected 0 forwarded on second poll, got %d", got)
	}
	if len(pub.topics) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(pub.topics))
	}
	if pub.topics[0] != models.TopicNotifications {
		t.Fatalf("expected topic %q, got %q", models.TopicNotifications, pub.topics[0])
	}
	first, ok := pub.payloads[0].(announcement)
	if !ok {
		t.Fatalf("expected an announcement payload, got %T", pub.payloads[0])
	}
	if first.Spoken != "Alice: hi" {
		t.Fatalf("expected spoken form %q, got %q", "Alice: hi", first.Spoken)
	}
}

func TestPollOnceSkipsEmptyIDs(t *testing.T) {
	source := &stubSource{events: []models.NotificationEvent{
		{ID: "", Sender: "Ghost", Body: "no id"},
		{ID: "m1", Sender: "Alice", Body: "hi"},
	}}
	pub := &recordingPublisher{}
	f := NewForwarder(source, pub, time.Second, nil)

	if got := f.PollOnce(context.Background()); got != 1 {
		t.Fatalf("expected 1 forwarded, got %d", got)
	}
}

func TestPollOnceSourceErrorIsSkipped(t *testing.T) {
	source := &stubSource{err: errors.New("service down")}
	pub := &recordingPublisher{}
	f := NewForwarder(source, pub, time.Second, nil)

	if got := f.PollOnce(context.Background()); got != 0 {
		t.Fatalf("expected 0 forwarded on source error, got %d", got)
	}

	// Next tick recovers once the source does.
	source.err = nil
	source.events = []models.NotificationEvent{{ID: "m1", Sender: "Alice", Body: "hi"}}
	if got := f.PollOnce(context.Background()); got != 1 {
		t.Fatalf("expected 1 forwarded after recovery, got %d", got)
	}
}

func TestForwarderStartStop(t *testing.T) {
	source := &stubSource{events: []models.NotificationEvent{{ID: "m1", Sender: "Alice", Body: "hi"}}}
	pub := &recordingPublisher{}
	f := NewForwarder(source, pub, 10*time.Millisecond, nil)

	f.Start()
	f.Start() // second Start is a no-op
	time.Sleep(50 * time.Millisecond)
	f.Stop()

	if len(pub.topics) != 1 {
		t.Fatalf("expected the event forwarded exactly once across ticks, got %d", len(pub.topics))
	}
}
