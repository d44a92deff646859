package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"sala-chat/domain"
	"sala-chat/repositories"
)

// Reaper evicts participants whose liveness stamp fell behind the staleness
// window and announces each departure with a broadcast status notice. The
// interval and the window form one tunable pair: the interval bounds how
// late an eviction can be, the window is what a client must beat with its
// pings to stay in the room.
type Reaper struct {
	participants repositories.IParticipantRepository
	evictions    repositories.IEvictionRepository
	interval     time.Duration
	window       time.Duration
	log          *slog.Logger
	now          func() time.Time
}

func NewReaper(
	participants repositories.IParticipantRepository,
	evictions repositories.IEvictionRepository,
	interval, window time.Duration,
	log *slog.Logger,
) *Reaper {
	return &Reaper{
		participants: participants,
		evictions:    evictions,
		interval:     interval,
		window:       window,
		log:          log,
		now:          time.Now,
	}
}

// Run sweeps on every tick until the context is canceled. A failed sweep is
// logged and retried on the next tick.
func (r *Reaper) Run(ctx context.Context) error {
	r.log.Info("Starting inactivity reaper", "interval", r.interval, "window", r.window)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Sweep(); err != nil {
				r.log.Error("Reaper sweep failed", "error", err)
			}
		}
	}
}

// Sweep evicts every participant stale at the time of the call. Deletions
// and departure notices commit in one transaction, so a failed sweep leaves
// the room untouched and the next tick retries it whole.
func (r *Reaper) Sweep() error {
	now := r.now().UTC()
	threshold := now.Add(-r.window)

	stale, err := r.participants.ListStaleBefore(threshold)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	names := lo.Map(stale, func(p domain.Participant, _ int) string {
		return p.Name
	})
	notices := lo.Map(stale, func(p domain.Participant, _ int) domain.Message {
		return domain.Message{
			ID:   uuid.New(),
			From: p.Name,
			To:   domain.Broadcast,
			Text: domain.LeftRoomText,
			Type: domain.KindStatus,
			At:   now,
		}
	})
	if err := r.evictions.Evict(names, notices); err != nil {
		return err
	}

	r.log.Info("Evicted stale participants", "count", len(stale), "threshold", threshold)
	return nil
}
