package workers

import (
	"context"
	"log/slog"
	"os"
	"socket-deva/contract"
	"time"

	"github.com/shirou/gopsutil/process"
)

var _ contract.Worker = (*HealthMonitoringWorker)(nil)

// Stats is one health sample of the relay process.
type Stats struct {
	Connections int
	RSS         uint64
	CPUPercent  float64
	Status      string
}

// HealthMonitoringWorker samples the relay process and its live connection
// count every interval.
type HealthMonitoringWorker struct {
	log            *slog.Logger
	registry       contract.IRegistry
	metricInterval time.Duration
	onSample       func(Stats)
}

func NewHealthMonitoringWorker(log *slog.Logger, registry contract.IRegistry, metricInterval time.Duration) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{log: log, registry: registry, metricInterval: metricInterval}
}

// OnSample registers a callback receiving every sample.
func (w *HealthMonitoringWorker) OnSample(fn func(Stats)) *HealthMonitoringWorker {
	w.onSample = fn
	return w
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health monitoring")
			return nil
		case <-ticker.C:
			stats, err := w.sample(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			w.log.Debug("Relay health",
				"connections", stats.Connections,
				"rss", stats.RSS,
				"cpu", stats.CPUPercent,
				"status", stats.Status)
			if w.onSample != nil {
				w.onSample(stats)
			}
		}
	}
}

func (w *HealthMonitoringWorker) sample(p *process.Process) (Stats, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return Stats{}, err
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return Stats{}, err
	}
	status, err := p.Status()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Connections: w.registry.Count(),
		RSS:         memInfo.RSS,
		CPUPercent:  cpu,
		Status:      status,
	}, nil
}
