// Package predictions produces placeholder market price forecasts for
// VindexChain tokens. The model is a simulated random walk over synthetic
// market data; results carry a disclaimer and are cached per denom and
// timeframe.
package predictions

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/vindexchain/ai-module/internal/cache"
	"github.com/vindexchain/ai-module/internal/metrics"
	"github.com/vindexchain/ai-module/internal/traces"
)

var (
	ErrUnknownTimeframe = errors.New("unknown timeframe")
	ErrNoMarketData     = errors.New("no market data")
)

// Disclaimer is attached to every forecast.
const Disclaimer = "This is not financial advice. Cryptocurrency investments are highly volatile."

// DefaultCacheTTL is how long a forecast stays fresh.
const DefaultCacheTTL = 300 * time.Second

// Timeframes supported by the predictor.
var Timeframes = []string{"1h", "24h", "7d", "30d"}

// Trend is the predicted price direction.
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

// Request asks for a price forecast.
type Request struct {
	TokenDenom       string `json:"token_denom" binding:"required"`
	Timeframe        string `json:"timeframe"`
	IncludeSentiment *bool  `json:"include_sentiment"`
}

// Forecast is a price prediction for one token.
type Forecast struct {
	TokenDenom          string    `json:"token_denom"`
	CurrentPrice        float64   `json:"current_price"`
	PredictedPrice      float64   `json:"predicted_price"`
	Confidence          float64   `json:"confidence"`       // 0-1
	Trend               Trend     `json:"trend"`            // bullish, bearish, neutral
	VolatilityScore     float64   `json:"volatility_score"` // 0-100
	SentimentScore      float64   `json:"sentiment_score"`  // -1 to 1
	PredictionTimestamp time.Time `json:"prediction_timestamp"`
	Disclaimer          string    `json:"disclaimer"`
}

// MarketPoint is one observation of simulated or real market data.
type MarketPoint struct {
	Timestamp  time.Time `json:"timestamp"`
	Price      float64   `json:"price"`
	Volume     float64   `json:"volume"`
	Volatility float64   `json:"volatility"` // 0-1
}

// MarketDataSource supplies the price series a forecast is built on.
type MarketDataSource interface {
	Snapshot(ctx context.Context, denom, timeframe string) ([]MarketPoint, error)
}

// SimulatedSource generates synthetic market data: 100 hourly points
// with prices in [0.5, 2.0) and volatility in [0.1, 0.5).
type SimulatedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedSource creates a simulated source. seed 0 uses the clock.
func NewSimulatedSource(seed int64) *SimulatedSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SimulatedSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *SimulatedSource) Snapshot(_ context.Context, _, _ string) ([]MarketPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	points := make([]MarketPoint, 100)
	for i := range points {
		points[i] = MarketPoint{
			Timestamp:  now.Add(time.Duration(i-99) * time.Hour),
			Price:      0.5 + s.rng.Float64()*1.5,
			Volume:     1000 + s.rng.Float64()*9000,
			Volatility: 0.1 + s.rng.Float64()*0.4,
		}
	}
	return points, nil
}

// EventSink receives freshly computed forecasts for fan-out to
// subscribers. Cache hits are not republished.
type EventSink interface {
	PublishForecast(f *Forecast)
}

// Service builds and caches forecasts.
type Service struct {
	source MarketDataSource
	store  cache.Store
	ttl    time.Duration
	sink   EventSink
	logger *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService creates a prediction service. store may be nil to disable
// caching; seed 0 uses the clock.
func NewService(source MarketDataSource, store cache.Store, ttl time.Duration, logger *slog.Logger, seed int64) *Service {
	if source == nil {
		source = NewSimulatedSource(0)
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Service{
		source: source,
		store:  store,
		ttl:    ttl,
		logger: logger,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// WithEventSink publishes every freshly computed forecast to sink.
func (s *Service) WithEventSink(sink EventSink) *Service {
	s.sink = sink
	return s
}

// CacheKey returns the cache key for a denom and timeframe.
func CacheKey(denom, timeframe string) string {
	return "prediction:" + denom + ":" + timeframe
}

// ValidTimeframe reports whether tf is a supported timeframe.
func ValidTimeframe(tf string) bool {
	for _, t := range Timeframes {
		if t == tf {
			return true
		}
	}
	return false
}

// Predict returns a forecast for the request, served from cache when a
// fresh one exists. include_sentiment=false zeroes the sentiment score
// on the returned copy; the cached forecast always carries it.
func (s *Service) Predict(ctx context.Context, req Request) (*Forecast, error) {
	ctx, span := traces.StartSpan(ctx, "predictions.Predict",
		traces.TokenDenom(req.TokenDenom), traces.Timeframe(req.Timeframe))
	defer span.End()

	if req.Timeframe == "" {
		req.Timeframe = "24h"
	}
	if !ValidTimeframe(req.Timeframe) {
		return nil, ErrUnknownTimeframe
	}

	f, err := s.cached(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.IncludeSentiment != nil && !*req.IncludeSentiment {
		out := *f
		out.SentimentScore = 0
		return &out, nil
	}
	return f, nil
}

func (s *Service) cached(ctx context.Context, req Request) (*Forecast, error) {
	if s.store == nil {
		f, err := s.compute(ctx, req)
		if err != nil {
			return nil, err
		}
		s.publish(f)
		return f, nil
	}

	key := CacheKey(req.TokenDenom, req.Timeframe)
	if raw, err := s.store.Get(ctx, key); err == nil {
		var f Forecast
		if jerr := json.Unmarshal(raw, &f); jerr == nil {
			metrics.CacheHitsTotal.WithLabelValues("prediction").Inc()
			return &f, nil
		}
		_ = s.store.Delete(ctx, key)
	} else if err != cache.ErrMiss {
		s.logger.Warn("prediction cache read failed", "key", key, "error", err)
	}
	metrics.CacheMissesTotal.WithLabelValues("prediction").Inc()

	f, err := s.compute(ctx, req)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(f); err == nil {
		if err := s.store.Set(ctx, key, raw, s.ttl); err != nil {
			metrics.CacheWriteFailuresTotal.WithLabelValues("prediction").Inc()
			s.logger.Warn("prediction cache write failed", "key", key, "error", err)
		}
	}
	s.publish(f)
	return f, nil
}

func (s *Service) publish(f *Forecast) {
	if s.sink != nil {
		s.sink.PublishForecast(f)
	}
}

func (s *Service) compute(ctx context.Context, req Request) (*Forecast, error) {
	points, err := s.source.Snapshot(ctx, req.TokenDenom, req.Timeframe)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, ErrNoMarketData
	}

	currentPrice := points[len(points)-1].Price

	var meanVolatility float64
	for i := range points {
		meanVolatility += points[i].Volatility
	}
	meanVolatility /= float64(len(points))
	volatilityScore := meanVolatility * 100

	confidence := 1.0 - volatilityScore/100
	if confidence < 0.1 {
		confidence = 0.1
	}

	s.mu.Lock()
	predictedChange := s.rng.Float64()*0.4 - 0.2 // uniform in [-20%, +20%)
	sentiment := s.rng.Float64() - 0.5           // uniform in [-0.5, 0.5)
	s.mu.Unlock()

	trend := TrendNeutral
	switch {
	case predictedChange > 0.05:
		trend = TrendBullish
	case predictedChange < -0.05:
		trend = TrendBearish
	}

	return &Forecast{
		TokenDenom:          req.TokenDenom,
		CurrentPrice:        currentPrice,
		PredictedPrice:      currentPrice * (1 + predictedChange),
		Confidence:          confidence,
		Trend:               trend,
		VolatilityScore:     volatilityScore,
		SentimentScore:      sentiment,
		PredictionTimestamp: time.Now(),
		Disclaimer:          Disclaimer,
	}, nil
}
