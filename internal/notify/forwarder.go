package notify

import (
	"context"
	"sync"
	"time"

	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/models"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/utils"
)

// Source yields the current list of pending inbound events. The messaging
// integration owns the buffer; the forwarder only reads it.
type Source interface {
	PendingMessages(ctx context.Context) ([]models.NotificationEvent, error)
}

// Publisher pushes a payload to the remote agent on a named topic. Publishing
// is fire-and-forget from the forwarder's point of view.
type Publisher interface {
	Publish(topic string, payload any) error
}

// announcement is the forwarded wire shape: the raw event plus its one-line
// spoken form.
type announcement struct {
	models.NotificationEvent
	Spoken string `json:"spoken"`
}

// Forwarder polls the messaging integration on a fixed interval and forwards
// genuinely new events, one outbound message per event. Polling failures are
// logged and skipped for that tick; the loop never stops on its own.
type Forwarder struct {
	source    Source
	publisher Publisher
	cache     *DedupCache
	interval  time.Duration
	log       *utils.Logger

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewForwarder wires a forwarder over the given source and publisher.
func NewForwarder(source Source, publisher Publisher, interval time.Duration, log *utils.Logger) *Forwarder {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Forwarder{
		source:    source,
		publisher: publisher,
		cache:     NewDedupCache(DefaultDedupCap),
		interval:  interval,
		log:       log,
	}
}

// Start launches the polling loop. Calling Start on a running forwarder is a
// no-op.
func (f *Forwarder) Start() {
	f.mu.Lock()
	if f.stop != nil {
		f.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	f.stop = stop
	f.mu.Unlock()

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		ctx := context.Background()
		for {
			select {
			case <-ticker.C:
				f.PollOnce(ctx)
			case <-stop:
				return
			}
		}
	}()
}

// Stop signals the loop and waits for it to exit. The dedup cache is kept so
// a later Start does not re-forward events seen in this process.
func (f *Forwarder) Stop() {
	f.mu.Lock()
	stop := f.stop
	f.stop = nil
	f.mu.Unlock()
	if stop != nil {
		close(stop)
	}
	f.wg.Wait()
}

// PollOnce runs a single tick: fetch, dedup, forward. It returns the number
// of events forwarded. Events are forwarded in the order the integration
// returned them; nothing is guaranteed across ticks.
func (f *Forwarder) PollOnce(ctx context.Context) int {
	events, err := f.source.PendingMessages(ctx)
	if err != nil {
		if f.log != nil {
			f.log.Writef("notification poll failed: %v", err)
		}
		return 0
	}

	forwarded := 0
	for _, ev := range events {
		if ev.ID == "" || f.cache.Seen(ev.ID) {
			continue
		}
		f.cache.Add(ev.ID)
		// The spoken form rides along so the agent can announce the message
		// without re-deriving the sender/group prefix.
		payload := announcement{NotificationEvent: ev, Spoken: ev.Summary()}
		if err := f.publisher.Publish(models.TopicNotifications, payload); err != nil {
			if f.log != nil {
				f.log.Writef("notification forward failed for %s: %v", ev.ID, err)
			}
			continue
		}
		forwarded++
	}
	return forwarded
}
