// Package monitor logs process resource usage next to loader counters.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// Counters exposes loader activity totals.
type Counters interface {
	Loads() int64
	Documents() int64
	Missing() int64
	Includes() int64
}

// Monitor tracks process resource usage and loader activity.
type Monitor struct {
	interval time.Duration
	counters Counters
	logger   *slog.Logger
	wg       sync.WaitGroup
	proc     *process.Process
}

// New creates a new monitor with specified collection interval.
func New(interval time.Duration, counters Counters, logger *slog.Logger) (*Monitor, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("failed to get process handle: %w", err)
	}

	return &Monitor{
		interval: interval,
		counters: counters,
		logger:   logger,
		proc:     proc,
	}, nil
}

// Run starts the monitoring loop in a background goroutine.
// The loop stops when ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.wg.Go(func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		// Immediate first collection
		m.collect(ctx)

		for {
			select {
			case <-ctx.Done():
				m.logger.Info("monitor shutdown complete")
				return
			case <-ticker.C:
				m.collect(ctx)
			}
		}
	})
}

// Wait blocks until the monitor goroutine exits.
func (m *Monitor) Wait() {
	m.wg.Wait()
}

// collect reads current usage and logs it in one line.
func (m *Monitor) collect(ctx context.Context) {
	processCPU, err := m.proc.CPUPercentWithContext(ctx)
	if err != nil {
		m.logger.Warn("failed to get CPU percent", "error", err)
		processCPU = 0
	}

	var rss uint64
	if mem, err := m.proc.MemoryInfoWithContext(ctx); err != nil {
		m.logger.Warn("failed to get memory info", "error", err)
	} else {
		rss = mem.RSS
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	mb := func(b uint64) float64 {
		return float64(b) / (1024 * 1024)
	}

	attrs := []slog.Attr{
		slog.String("cpu", fmt.Sprintf("%.4f%%", processCPU)),
		slog.String("mem", fmt.Sprintf("rss:%.2fMB alloc:%.2fMB", mb(rss), mb(ms.HeapAlloc))),
		slog.Int("gor", runtime.NumGoroutine()),
		slog.Uint64("gc", uint64(ms.NumGC)),
	}
	if m.counters != nil {
		attrs = append(attrs,
			slog.Int64("loads", m.counters.Loads()),
			slog.Int64("docs", m.counters.Documents()),
			slog.Int64("missing", m.counters.Missing()),
			slog.Int64("includes", m.counters.Includes()),
		)
	}

	m.logger.LogAttrs(ctx, slog.LevelInfo, "resource", attrs...)
}
