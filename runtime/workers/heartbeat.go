package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"sala-chat/repositories"
)

// Heartbeat periodically logs process health (CPU, RAM, status) alongside the
// current room occupancy. It is the operational pulse of a single-node
// deployment where no external monitoring scrapes the process.
type Heartbeat struct {
	participants repositories.IParticipantRepository
	interval     time.Duration
	log          *slog.Logger
}

func NewHeartbeat(
	participants repositories.IParticipantRepository,
	interval time.Duration,
	log *slog.Logger,
) *Heartbeat {
	return &Heartbeat{participants: participants, interval: interval, log: log}
}

// Run logs a health line on every tick until the context is canceled.
func (w *Heartbeat) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, status, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			occupancy := -1
			if listed, err := w.participants.List(); err == nil {
				occupancy = len(listed)
			}

			w.log.Info("Heartbeat",
				"pid", os.Getpid(),
				"status", status,
				"cpu_percent", cpu,
				"ram_bytes", rss,
				"participants", occupancy)
		}
	}
}

// selfStats retrieves technical metrics (Memory, CPU, and OS Status) for the given process.
func selfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}

	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
