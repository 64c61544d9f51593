package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"driftway/contract"
	"driftway/runtime"

	_ "github.com/shirou/gopsutil"
	"github.com/shirou/gopsutil/process"
)

var _ contract.Worker = (*HealthMonitoringWorker)(nil)

// HealthMonitoringWorker periodically reports the process's own CPU and
// memory usage together with the registry gauges (live connections,
// rooms, typers). Purely observational; it never touches state.
type HealthMonitoringWorker struct {
	log            *slog.Logger
	registry       *runtime.Registry
	metricInterval time.Duration
}

func NewHealthMonitoringWorker(log *slog.Logger, registry *runtime.Registry, metricInterval time.Duration) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{log: log, registry: registry, metricInterval: metricInterval}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		w.log.Error("Error while retrieving own process", "err", err)
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
			cpu, err := proc.CPUPercent()
			if err != nil {
				w.log.Error("Error while finding process cpu usage", "err", err)
				continue
			}
			ram, err := proc.MemoryPercent()
			if err != nil {
				w.log.Error("Error while finding process ram usage", "err", err)
				continue
			}
			connections, rooms, typers := w.registry.Gauges()
			w.log.Info("Health report",
				"cpu_percent", cpu,
				"ram_percent", ram,
				"connections", connections,
				"rooms", rooms,
				"typers", typers,
			)
		}
	}
}
