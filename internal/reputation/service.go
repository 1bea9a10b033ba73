package reputation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vindexchain/ai-module/internal/circuitbreaker"
	"github.com/vindexchain/ai-module/internal/history"
	"github.com/vindexchain/ai-module/internal/metrics"
	"github.com/vindexchain/ai-module/internal/signals"
	"github.com/vindexchain/ai-module/internal/traces"
)

const historyBreakerKey = "history"

// EventSink receives completed assessments for fan-out to subscribers.
type EventSink interface {
	PublishAssessment(a *Assessment)
}

// Service is the entry point for reputation assessment. It fetches
// transaction history, runs signal checks, scores through the engine,
// and caches full assessments through the gateway.
type Service struct {
	engine       *Engine
	history      history.Store
	historyLimit int
	signals      *signals.Set
	gateway      *Gateway
	breaker      *circuitbreaker.Breaker
	sink         EventSink
	logger       *slog.Logger
}

// NewService wires the assessment pipeline. gateway may be nil to
// disable caching; breaker and sink are optional.
func NewService(engine *Engine, hist history.Store, sigs *signals.Set, gateway *Gateway, logger *slog.Logger) *Service {
	if sigs == nil {
		sigs = signals.NewSet()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		engine:       engine,
		history:      hist,
		historyLimit: history.MaxQueryLimit,
		signals:      sigs,
		gateway:      gateway,
		logger:       logger,
	}
}

// WithHistoryLimit caps how many transactions each assessment fetches.
// Values outside (0, history.MaxQueryLimit] fall back to the cap.
func (s *Service) WithHistoryLimit(limit int) *Service {
	if limit > 0 && limit <= history.MaxQueryLimit {
		s.historyLimit = limit
	}
	return s
}

// WithBreaker guards history fetches with a circuit breaker.
func (s *Service) WithBreaker(b *circuitbreaker.Breaker) *Service {
	s.breaker = b
	return s
}

// WithEventSink publishes every freshly computed assessment to sink.
func (s *Service) WithEventSink(sink EventSink) *Service {
	s.sink = sink
	return s
}

// Assess returns the reputation assessment for an address.
//
// Full assessments (includeHistory true) go through the cache gateway
// under the address key. Signal-only assessments skip the cache rather
// than share a key with full ones, so a cached entry always reflects
// the complete scoring pipeline.
func (s *Service) Assess(ctx context.Context, address string, includeHistory bool) (*Assessment, error) {
	ctx, span := traces.StartSpan(ctx, "reputation.Assess", traces.Address(address))
	defer span.End()

	start := time.Now()
	var (
		a   *Assessment
		hit bool
		err error
	)

	if includeHistory && s.gateway != nil {
		a, hit, err = s.gateway.GetOrCompute(ctx, address, func(ctx context.Context) (*Assessment, error) {
			return s.compute(ctx, address, true)
		})
	} else {
		a, err = s.compute(ctx, address, includeHistory)
	}

	if err != nil {
		metrics.ReputationRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.ReputationRequestsTotal.WithLabelValues("ok").Inc()
	metrics.ReputationScoreDuration.Observe(time.Since(start).Seconds())
	metrics.ReputationTierTotal.WithLabelValues(string(a.RiskTier)).Inc()
	span.SetAttributes(traces.Score(a.Score), traces.RiskTier(string(a.RiskTier)), traces.CacheHit(hit))

	if !hit && s.sink != nil {
		s.sink.PublishAssessment(a)
	}
	return a, nil
}

// History returns stored snapshots for an address.
func (s *Service) History(ctx context.Context, q HistoryQuery, store SnapshotStore) ([]*Snapshot, error) {
	if store == nil {
		return nil, errors.New("no snapshot store configured")
	}
	return store.Query(ctx, q)
}

// compute runs the full pipeline without consulting the cache.
func (s *Service) compute(ctx context.Context, address string, includeHistory bool) (*Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	txns := s.fetchHistory(ctx, address)
	sig := s.signals.Run(ctx, address, txns)

	if err := ctx.Err(); err != nil {
		// Cancelled mid-pipeline: discard rather than score partial data.
		return nil, err
	}
	return s.engine.Assess(address, txns, sig, includeHistory), nil
}

// fetchHistory loads transaction history, degrading to an empty slice
// when the store is unavailable. A history outage lowers fidelity but
// never fails the request.
func (s *Service) fetchHistory(ctx context.Context, address string) []history.Transaction {
	if s.history == nil {
		return nil
	}

	if s.breaker != nil && !s.breaker.Allow(historyBreakerKey) {
		s.logger.Warn("history store circuit open, assessing without history", "address", address)
		return nil
	}

	txns, err := s.history.ListByAddress(ctx, address, s.historyLimit)
	if err != nil {
		if s.breaker != nil {
			s.breaker.RecordFailure(historyBreakerKey)
		}
		s.logger.Warn("history fetch failed, assessing without history",
			"address", address, "error", err)
		return nil
	}
	if s.breaker != nil {
		s.breaker.RecordSuccess(historyBreakerKey)
	}
	return txns
}
