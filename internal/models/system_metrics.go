package models

import "time"

// ProcessUsage is one entry in the snapshot's top-process list. CPUPercent is
// normalized by core count so a single busy core reads as 100/N on an N-core
// host, matching the per-process alert threshold.
type ProcessUsage struct {
	PID        int32   `json:"pid"`
	Name       string  `json:"name"`
	CPUPercent float64 `json:"cpu_percent"`
	MemPercent float64 `json:"memory_percent"`
}

// MetricSnapshot captures host-level resource usage sampled each monitor tick.
// Snapshots are broadcast best-effort and never persisted.
type MetricSnapshot struct {
	CPUPercent   float64        `json:"cpu"`
	RAMPercent   float64        `json:"memory"`
	DiskPercent  float64        `json:"disk"`
	TopProcesses []ProcessUsage `json:"processes"`
	SampledAt    time.Time      `json:"sampled_at"`
}

// SystemAlert is the payload published on the alert topic when one or more
// thresholds are breached and the cooldown has elapsed.
type SystemAlert struct {
	Message  string    `json:"message"`
	RaisedAt time.Time `json:"raised_at"`
}
