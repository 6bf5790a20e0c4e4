package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionSweeper is the slice of the session repository the janitor uses.
// Satisfied by repo.SessionRepo.
type SessionSweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// KeySweeper is the slice of the task repository the janitor uses.
// Satisfied by repo.TaskRepo.
type KeySweeper interface {
	DeleteStaleIdempotencyKeys(ctx context.Context, before time.Time) (int64, error)
}

// Janitor periodically sweeps expired refresh sessions and stale idempotency
// keys. It never touches task rows.
type Janitor struct {
	sessions SessionSweeper
	keys     KeySweeper
	logger   *zap.Logger
	interval time.Duration
	now      func() time.Time
	wg       sync.WaitGroup
	stop     chan struct{}
}

// Idempotency keys are only useful for the retry window of a single create
// request, one day is generous.
const idempotencyKeyTTL = 24 * time.Hour

func NewJanitor(sessions SessionSweeper, keys KeySweeper, logger *zap.Logger, interval time.Duration, now func() time.Time) *Janitor {
	if now == nil {
		now = time.Now
	}
	return &Janitor{
		sessions: sessions,
		keys:     keys,
		logger:   logger,
		interval: interval,
		now:      now,
		stop:     make(chan struct{}),
	}
}

func (j *Janitor) Start(ctx context.Context) {
	j.logger.Info("Starting janitor", zap.Duration("interval", j.interval))

	j.wg.Add(1)
	go j.run(ctx)
}

func (j *Janitor) Stop() {
	j.logger.Info("Stopping janitor...")
	close(j.stop)
	j.wg.Wait()
	j.logger.Info("Janitor stopped")
}

func (j *Janitor) run(ctx context.Context) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.sweep(ctx); err != nil {
				j.logger.Error("janitor sweep failed", zap.Error(err))
			}
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) error {
	now := j.now()

	sessions, err := j.sessions.DeleteExpired(ctx, now)
	if err != nil {
		return err
	}

	keys, err := j.keys.DeleteStaleIdempotencyKeys(ctx, now.Add(-idempotencyKeyTTL))
	if err != nil {
		return err
	}

	if sessions > 0 || keys > 0 {
		j.logger.Info("Janitor sweep",
			zap.Int64("expired_sessions", sessions),
			zap.Int64("stale_idempotency_keys", keys),
		)
	}
	return nil
}
