package executor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/whatsapp"
)

func TestExecuteUnknownCommand(t *testing.T) {
	r := NewRegistry()
	_, err := r.Execute(context.Background(), "does_not_exist", nil)
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestExecutePanicRecovered(t *testing.T) {
	r := NewRegistry()
	r.RegisterFunc("boom", ClassPlain, func(ctx context.Context, params map[string]any) (string, error) {
		panic("kaboom")
	})

	_, err := r.Execute(context.Background(), "boom", nil)
	if err == nil {
		t.Fatal("expected an error from a panicking executor")
	}
}

func TestAutomationExecutorsNeverInterleave(t *testing.T) {
	r := NewRegistry()

	var active int32
	var overlaps int32
	r.RegisterFunc("type", ClassAutomation, func(ctx context.Context, params map[string]any) (string, error) {
		if atomic.AddInt32(&active, 1) > 1 {
			atomic.AddInt32(&overlaps, 1)
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return "ok", nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Execute(context.Background(), "type", nil); err != nil {
				t.Errorf("execute failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if overlaps != 0 {
		t.Fatalf("expected no interleaving, got %d overlaps", overlaps)
	}
}

func TestParamHelpers(t *testing.T) {
	params := map[string]any{
		"name":  "notepad",
		"level": float64(40), // JSON numbers decode as float64
	}

	if got := StringParam(params, "name"); got != "notepad" {
		t.Fatalf("expected notepad, got %q", got)
	}
	if got := StringParam(params, "missing"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
	if got := IntParam(params, "level", 50); got != 40 {
		t.Fatalf("expected 40, got %d", got)
	}
	if got := IntParam(params, "missing", 50); got != 50 {
		t.Fatalf("expected fallback 50, got %d", got)
	}
	if got := IntParam(nil, "level", 50); got != 50 {
		t.Fatalf("expected fallback 50 for nil params, got %d", got)
	}
}

func TestDefaultRegistryCommandSet(t *testing.T) {
	r := NewDefaultRegistry(Deps{Sender: whatsapp.NewSender(nil)})

	for _, name := range []string{
		"open_app", "open_url", "open_maps", "play_youtube", "open_notes",
		"type_text", "press_key", "screenshot", "set_volume", "lock_pc",
		"shutdown", "cancel_shutdown", "system_info",
		"send_whatsapp", "send_whatsapp_contact",
	} {
		if !r.Has(name) {
			t.Fatalf("expected command %q to be registered", name)
		}
	}
}
