package reputation

import (
	"context"
	"log/slog"
	"time"

	"github.com/vindexchain/ai-module/internal/history"
	"github.com/vindexchain/ai-module/internal/metrics"
)

// Worker periodically snapshots reputation assessments for every
// address seen in the transaction history.
type Worker struct {
	service  *Service
	history  history.Store
	store    SnapshotStore
	interval time.Duration
	logger   *slog.Logger
	stop     chan struct{}
}

// NewWorker creates a reputation snapshot worker.
// interval is typically 15 minutes in production, a few seconds in demo mode.
func NewWorker(service *Service, hist history.Store, store SnapshotStore, interval time.Duration, logger *slog.Logger) *Worker {
	return &Worker{
		service:  service,
		history:  hist,
		store:    store,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Start begins the snapshot loop. Call in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Run once immediately on start
	w.snapshot(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			w.snapshot(ctx)
		}
	}
}

// Stop signals the worker to stop.
func (w *Worker) Stop() {
	select {
	case w.stop <- struct{}{}:
	default:
	}
}

const (
	snapshotLookback     = 30 * 24 * time.Hour
	snapshotAddressLimit = 10000
)

func (w *Worker) snapshot(ctx context.Context) {
	addresses, err := w.history.ListActiveAddresses(ctx, time.Now().Add(-snapshotLookback), snapshotAddressLimit)
	if err != nil {
		metrics.SnapshotRunsTotal.WithLabelValues("error").Inc()
		w.logger.Warn("snapshot run failed to list addresses", "error", err)
		return
	}

	if len(addresses) == 0 {
		metrics.SnapshotRunsTotal.WithLabelValues("ok").Inc()
		return
	}

	var snaps []*Snapshot
	for _, addr := range addresses {
		if ctx.Err() != nil {
			return
		}
		a, err := w.service.Assess(ctx, addr, true)
		if err != nil {
			w.logger.Warn("snapshot assessment failed", "address", addr, "error", err)
			continue
		}
		snaps = append(snaps, SnapshotFromAssessment(a))
	}

	if len(snaps) == 0 {
		metrics.SnapshotRunsTotal.WithLabelValues("error").Inc()
		return
	}

	if err := w.store.SaveBatch(ctx, snaps); err != nil {
		metrics.SnapshotRunsTotal.WithLabelValues("error").Inc()
		w.logger.Warn("snapshot save failed", "error", err, "count", len(snaps))
		return
	}

	metrics.SnapshotRunsTotal.WithLabelValues("ok").Inc()
	w.logger.Info("reputation snapshot completed", "addresses", len(snaps))
}
