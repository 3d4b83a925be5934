package monitor

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/models"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(topic string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func (p *recordingPublisher) count(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, t := range p.topics {
		if t == topic {
			n++
		}
	}
	return n
}

type recordingSpeaker struct {
	texts []string
}

func (s *recordingSpeaker) Speak(ctx context.Context, text string) error {
	s.texts = append(s.texts, text)
	return nil
}

func defaultThresholds() Thresholds {
	return Thresholds{CPU: 90, RAM: 90, Disk: 90, ProcessCPU: 80}
}

func TestEvaluateBelowThresholdsIsQuiet(t *testing.T) {
	pub := &recordingPublisher{}
	m := New(Options{Thresholds: defaultThresholds(), Publisher: pub})

	snap := models.MetricSnapshot{CPUPercent: 40, RAMPercent: 50, DiskPercent: 60}
	if m.Evaluate(context.Background(), snap, nil) {
		t.Fatal("expected no alert below thresholds")
	}
	if got := pub.count(models.TopicSystemAlert); got != 0 {
		t.Fatalf("expected 0 alerts published, got %d", got)
	}
}

func TestEvaluateSingleBreach(t *testing.T) {
	pub := &recordingPublisher{}
	spk := &recordingSpeaker{}
	m := New(Options{Thresholds: defaultThresholds(), Publisher: pub, Speaker: spk})

	snap := models.MetricSnapshot{CPUPercent: 95, RAMPercent: 50, DiskPercent: 60}
	if !m.Evaluate(context.Background(), snap, nil) {
		t.Fatal("expected an alert for breached CPU")
	}
	if len(spk.texts) != 1 {
		t.Fatalf("expected 1 speech request, got %d", len(spk.texts))
	}
	if spk.texts[0] != "CPU usage is at 95%." {
		t.Fatalf("unexpected alert text: %q", spk.texts[0])
	}
}

func TestEvaluateCombinesBreaches(t *testing.T) {
	pub := &recordingPublisher{}
	spk := &recordingSpeaker{}
	m := New(Options{Thresholds: defaultThresholds(), Publisher: pub, Speaker: spk})

	snap := models.MetricSnapshot{CPUPercent: 95, RAMPercent: 93, DiskPercent: 97}
	hog := &models.ProcessUsage{PID: 4242, Name: "chrome.exe", CPUPercent: 88}
	if !m.Evaluate(context.Background(), snap, hog) {
		t.Fatal("expected a combined alert")
	}

	msg := spk.texts[0]
	for _, clause := range []string{
		"CPU usage is at 95%.",
		"RAM usage is at 93%.",
		"Disk is almost full at 97%.",
		"chrome.exe is using 88% CPU.",
	} {
		if !strings.Contains(msg, clause) {
			t.Fatalf("alert %q missing clause %q", msg, clause)
		}
	}
}

func TestEvaluateCooldown(t *testing.T) {
	pub := &recordingPublisher{}
	m := New(Options{Thresholds: defaultThresholds(), Cooldown: time.Minute, Publisher: pub})

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	snap := models.MetricSnapshot{CPUPercent: 95}
	if !m.Evaluate(context.Background(), snap, nil) {
		t.Fatal("expected the first alert to fire")
	}

	clock = clock.Add(30 * time.Second)
	if m.Evaluate(context.Background(), snap, nil) {
		t.Fatal("expected the cooldown to suppress a second alert")
	}

	clock = clock.Add(31 * time.Second)
	if !m.Evaluate(context.Background(), snap, nil) {
		t.Fatal("expected the alert to fire again after the cooldown")
	}

	if got := pub.count(models.TopicSystemAlert); got != 2 {
		t.Fatalf("expected 2 alerts published, got %d", got)
	}
}

func TestExclusionsAreCaseInsensitive(t *testing.T) {
	m := New(Options{
		Thresholds: defaultThresholds(),
		Publisher:  &recordingPublisher{},
		Exclusions: []string{"Vyaas-Bridge.exe"},
	})

	if !m.excluded("vyaas-bridge.exe") {
		t.Fatal("expected exclusion match to ignore case")
	}
	if m.excluded("chrome.exe") {
		t.Fatal("expected non-excluded process to not match")
	}
}

func TestSampleEmptyCPUReading(t *testing.T) {
	orig := sampleCPU
	sampleCPU = func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error) {
		return nil, nil
	}
	defer func() { sampleCPU = orig }()

	m := New(Options{Thresholds: defaultThresholds(), Publisher: &recordingPublisher{}})
	_, _, err := m.Sample(context.Background())
	if err == nil {
		t.Fatal("expected an error for an empty cpu reading")
	}
	if !strings.Contains(err.Error(), "empty sample") {
		t.Fatalf("unexpected error: %v", err)
	}
}
