package worker

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

type SyncEventPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SyncEventRetentionWorker deletes journal rows older than the retention
// window, once at start and then on every tick.
type SyncEventRetentionWorker struct {
	repo         SyncEventPruner
	retention    time.Duration
	tickInterval time.Duration
	clock        clock.Clock
	logger       *zap.Logger
}

func NewSyncEventRetentionWorker(repo SyncEventPruner, retention time.Duration, clk clock.Clock, logger *zap.Logger) *SyncEventRetentionWorker {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncEventRetentionWorker{
		repo:         repo,
		retention:    retention,
		tickInterval: time.Hour,
		clock:        clk,
		logger:       logger,
	}
}

func (w *SyncEventRetentionWorker) Start(ctx context.Context) {
	w.logger.Info("sync event retention worker started", zap.Duration("retention", w.retention))

	ticker := w.clock.Ticker(w.tickInterval)
	defer ticker.Stop()

	w.prune(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("sync event retention worker stopped")
			return
		case <-ticker.C:
			w.prune(ctx)
		}
	}
}

func (w *SyncEventRetentionWorker) prune(ctx context.Context) {
	cutoff := w.clock.Now().Add(-w.retention)

	deleted, err := w.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		w.logger.Error("sync event prune failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		w.logger.Info("sync events pruned", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	}
}
