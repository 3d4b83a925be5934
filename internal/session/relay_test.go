package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/bridge"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/executor"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/middleware"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/models"
)

type recordingRunner struct {
	calls []models.CommandEnvelope
}

func (r *recordingRunner) Execute(ctx context.Context, env models.CommandEnvelope) models.ExecutionResult {
	r.calls = append(r.calls, env)
	return models.OKResult("PC locked")
}

func TestMessageRoundTrip(t *testing.T) {
	frame, err := Encode(models.TopicSystemAlert, models.SystemAlert{Message: "CPU usage is at 95%."})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	msg, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if msg.Topic != models.TopicSystemAlert {
		t.Fatalf("expected topic %q, got %q", models.TopicSystemAlert, msg.Topic)
	}

	var alert models.SystemAlert
	if err := json.Unmarshal(msg.Data, &alert); err != nil {
		t.Fatalf("payload unmarshal failed: %v", err)
	}
	if alert.Message != "CPU usage is at 95%." {
		t.Fatalf("unexpected payload: %q", alert.Message)
	}
}

func TestRelayExecutesCommands(t *testing.T) {
	runner := &recordingRunner{}
	relay := NewRelay(nil, runner, nil)

	data, _ := json.Marshal(models.CommandEnvelope{Command: "lock_pc"})
	relay.forward(Message{Topic: models.TopicLocalCommands, Data: data})

	if len(runner.calls) != 1 {
		t.Fatalf("expected 1 execution, got %d", len(runner.calls))
	}
	if runner.calls[0].Command != "lock_pc" {
		t.Fatalf("expected lock_pc, got %q", runner.calls[0].Command)
	}
}

func TestRelayDropsInvalidFrames(t *testing.T) {
	runner := &recordingRunner{}
	relay := NewRelay(nil, runner, nil)

	relay.forward(Message{Topic: models.TopicLocalCommands, Data: []byte(`{not json`)})
	// Missing command name fails validation before reaching the bridge core.
	data, _ := json.Marshal(models.CommandEnvelope{Params: map[string]any{"app": "notepad"}})
	relay.forward(Message{Topic: models.TopicLocalCommands, Data: data})

	if len(runner.calls) != 0 {
		t.Fatalf("expected no executions for invalid frames, got %d", len(runner.calls))
	}
}

func TestRelayWorksWithHashedSecret(t *testing.T) {
	hash, err := middleware.HashSecret("roomsecret")
	if err != nil {
		t.Fatalf("HashSecret failed: %v", err)
	}

	ran := 0
	registry := executor.NewRegistry()
	registry.RegisterFunc("lock_pc", executor.ClassPlain, func(ctx context.Context, params map[string]any) (string, error) {
		ran++
		return "PC locked", nil
	})

	b := bridge.New(registry, middleware.NewSecretGuard(hash), nil, time.Second)
	relay := NewRelay(nil, b, nil)

	// Channel frames never carry a secret; the join token already vouched
	// for the sender, so the hashed-at-rest secret must not block execution.
	data, _ := json.Marshal(models.CommandEnvelope{Command: "lock_pc"})
	relay.forward(Message{Topic: models.TopicLocalCommands, Data: data})

	if ran != 1 {
		t.Fatalf("expected the command to run once, got %d", ran)
	}
}
