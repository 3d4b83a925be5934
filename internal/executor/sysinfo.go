package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

const gb = 1024 * 1024 * 1024

// systemInfoReport builds the spoken system status summary: CPU, RAM, and
// disk for the configured volume.
func systemInfoReport(ctx context.Context, diskPath string) (string, error) {
	percents, err := cpu.PercentWithContext(ctx, time.Second, false)
	if err != nil {
		return "", fmt.Errorf("cpu sample failed: %w", err)
	}
	if len(percents) == 0 {
		return "", errors.New("cpu sample failed: empty sample")
	}
	cores, _ := cpu.CountsWithContext(ctx, true)

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("memory sample failed: %w", err)
	}

	usage, err := disk.UsageWithContext(ctx, diskPath)
	if err != nil {
		return "", fmt.Errorf("disk sample failed: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "System status: CPU %.0f%% (%d cores). ", percents[0], cores)
	fmt.Fprintf(&b, "RAM %.1fGB of %.1fGB (%.0f%%). ", float64(vm.Used)/gb, float64(vm.Total)/gb, vm.UsedPercent)
	fmt.Fprintf(&b, "Disk %.0fGB of %.0fGB (%.0f%%).", float64(usage.Used)/gb, float64(usage.Total)/gb, usage.UsedPercent)
	return b.String(), nil
}
