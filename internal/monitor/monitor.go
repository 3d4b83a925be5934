package monitor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/models"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/utils"
)

// Publisher broadcasts payloads on the session channel. Broadcast failures
// are swallowed; telemetry is best-effort.
type Publisher interface {
	Publish(topic string, payload any) error
}

// Speaker asks the conversational agent to voice an alert.
type Speaker interface {
	Speak(ctx context.Context, message string) error
}

// Thresholds are the fixed breach limits, in percent. ProcessCPU applies to a
// single process's CPU normalized by core count.
type Thresholds struct {
	CPU        float64
	RAM        float64
	Disk       float64
	ProcessCPU float64
}

const topProcessCount = 5

// Monitor samples host resource usage on a fixed period, broadcasts a metric
// snapshot every tick, and raises a combined alert when thresholds are
// breached, gated by a cooldown. There is no hysteresis and no resolved
// notification: an alert re-fires as soon as the cooldown elapses if the
// condition persists.
type Monitor struct {
	interval   time.Duration
	thresholds Thresholds
	cooldown   time.Duration
	exclusions map[string]struct{}
	diskPath   string

	publisher Publisher
	speaker   Speaker
	log       *utils.Logger

	lastAlert time.Time
	now       func() time.Time

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

// Options configures a Monitor.
type Options struct {
	Interval   time.Duration
	Thresholds Thresholds
	Cooldown   time.Duration
	// Exclusions are process names ignored by the per-process check,
	// case-insensitive exact match.
	Exclusions []string
	DiskPath   string
	Publisher  Publisher
	Speaker    Speaker
	Log        *utils.Logger
}

// New builds a monitor. Publisher is required; Speaker may be nil when the
// agent session has no voice output.
func New(opts Options) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = 2 * time.Second
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 60 * time.Second
	}
	excl := make(map[string]struct{}, len(opts.Exclusions))
	for _, name := range opts.Exclusions {
		excl[strings.ToLower(name)] = struct{}{}
	}
	return &Monitor{
		interval:   opts.Interval,
		thresholds: opts.Thresholds,
		cooldown:   opts.Cooldown,
		exclusions: excl,
		diskPath:   opts.DiskPath,
		publisher:  opts.Publisher,
		speaker:    opts.Speaker,
		log:        opts.Log,
		now:        time.Now,
	}
}

// Start launches the sampling loop.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.stop != nil {
		m.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	m.stop = stop
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		ctx := context.Background()
		for {
			select {
			case <-ticker.C:
				m.Tick(ctx)
			case <-stop:
				return
			}
		}
	}()
}

// Stop signals the loop and waits for shutdown.
func (m *Monitor) Stop() {
	m.mu.Lock()
	stop := m.stop
	m.stop = nil
	m.mu.Unlock()
	if stop != nil {
		close(stop)
	}
	m.wg.Wait()
}

// Tick runs one sampling pass: broadcast telemetry, evaluate thresholds,
// maybe alert. Sampling failures are logged and skipped for this tick only.
func (m *Monitor) Tick(ctx context.Context) {
	snapshot, hog, err := m.Sample(ctx)
	if err != nil {
		if m.log != nil {
			m.log.Writef("metric sample failed: %v", err)
		}
		return
	}

	// Telemetry is best-effort; a dead channel must not stop alerting.
	_ = m.publisher.Publish(models.TopicSystemMetrics, snapshot)

	m.Evaluate(ctx, snapshot, hog)
}

// sampleCPU is the host CPU probe, swappable in tests.
var sampleCPU = cpu.PercentWithContext

// Sample collects a metric snapshot plus the worst offending process above
// the per-process threshold (nil when none).
func (m *Monitor) Sample(ctx context.Context) (models.MetricSnapshot, *models.ProcessUsage, error) {
	percents, err := sampleCPU(ctx, 0, false)
	if err != nil {
		return models.MetricSnapshot{}, nil, fmt.Errorf("cpu: %w", err)
	}
	if len(percents) == 0 {
		return models.MetricSnapshot{}, nil, errors.New("cpu: empty sample")
	}
	cpuPercent := percents[0]

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return models.MetricSnapshot{}, nil, fmt.Errorf("memory: %w", err)
	}

	usage, err := disk.UsageWithContext(ctx, m.diskPath)
	if err != nil {
		return models.MetricSnapshot{}, nil, fmt.Errorf("disk %s: %w", m.diskPath, err)
	}

	cores, _ := cpu.CountsWithContext(ctx, true)
	if cores <= 0 {
		cores = 1
	}

	procs, _ := process.ProcessesWithContext(ctx)
	all := make([]models.ProcessUsage, 0, len(procs))
	var hog *models.ProcessUsage
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		rawCPU, err := p.CPUPercentWithContext(ctx)
		if err != nil {
			continue
		}
		memPct, _ := p.MemoryPercentWithContext(ctx)

		// Normalize so one saturated core cannot read above 100/N.
		normalized := rawCPU / float64(cores)
		pu := models.ProcessUsage{
			PID:        p.Pid,
			Name:       name,
			CPUPercent: normalized,
			MemPercent: float64(memPct),
		}
		all = append(all, pu)

		if normalized > m.thresholds.ProcessCPU && !m.excluded(name) {
			if hog == nil || normalized > hog.CPUPercent {
				copied := pu
				hog = &copied
			}
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].CPUPercent > all[j].CPUPercent })
	if len(all) > topProcessCount {
		all = all[:topProcessCount]
	}

	snapshot := models.MetricSnapshot{
		CPUPercent:   cpuPercent,
		RAMPercent:   vm.UsedPercent,
		DiskPercent:  usage.UsedPercent,
		TopProcesses: all,
		SampledAt:    m.now(),
	}
	return snapshot, hog, nil
}

// Evaluate composes a combined alert for every breached condition and emits
// it if the cooldown has elapsed. It returns true when an alert was emitted.
func (m *Monitor) Evaluate(ctx context.Context, snapshot models.MetricSnapshot, hog *models.ProcessUsage) bool {
	msg := m.composeAlert(snapshot, hog)
	if msg == "" {
		return false
	}

	now := m.now()
	if now.Sub(m.lastAlert) < m.cooldown {
		return false
	}
	m.lastAlert = now

	alert := models.SystemAlert{Message: msg, RaisedAt: now}
	if err := m.publisher.Publish(models.TopicSystemAlert, alert); err != nil && m.log != nil {
		m.log.Writef("alert broadcast failed: %v", err)
	}
	if m.speaker != nil {
		if err := m.speaker.Speak(ctx, msg); err != nil && m.log != nil {
			m.log.Writef("alert speech request failed: %v", err)
		}
	}
	if m.log != nil {
		m.log.Writef("system alert: %s", msg)
	}
	return true
}

// composeAlert builds one message covering every breached condition, or ""
// when nothing is breached.
func (m *Monitor) composeAlert(snapshot models.MetricSnapshot, hog *models.ProcessUsage) string {
	var b strings.Builder
	if snapshot.CPUPercent > m.thresholds.CPU {
		fmt.Fprintf(&b, "CPU usage is at %.0f%%. ", snapshot.CPUPercent)
	}
	if snapshot.RAMPercent > m.thresholds.RAM {
		fmt.Fprintf(&b, "RAM usage is at %.0f%%. ", snapshot.RAMPercent)
	}
	if snapshot.DiskPercent > m.thresholds.Disk {
		fmt.Fprintf(&b, "Disk is almost full at %.0f%%. ", snapshot.DiskPercent)
	}
	if hog != nil {
		fmt.Fprintf(&b, "%s is using %.0f%% CPU. ", hog.Name, hog.CPUPercent)
	}
	return strings.TrimSpace(b.String())
}

func (m *Monitor) excluded(name string) bool {
	_, ok := m.exclusions[strings.ToLower(name)]
	return ok
}
