// Package signals runs the boolean risk and trust checks that feed an
// assessment: validator status, token creation, suspicious patterns,
// sanctions, and high-risk counterparties. Checks run concurrently and
// fail closed: an error or timeout counts as "no signal".
package signals

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vindexchain/ai-module/internal/history"
	"github.com/vindexchain/ai-module/internal/logging"
	"github.com/vindexchain/ai-module/internal/metrics"
)

// DefaultTimeout bounds each individual check.
const DefaultTimeout = 2 * time.Second

// Checker answers a single yes/no question about an address.
type Checker interface {
	Check(ctx context.Context, address string, txns []history.Transaction) (bool, error)
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context, address string, txns []history.Transaction) (bool, error)

func (f CheckerFunc) Check(ctx context.Context, address string, txns []history.Transaction) (bool, error) {
	return f(ctx, address, txns)
}

// Negative returns a Checker that always reports false. Used as the
// default until a real data source is plugged in.
func Negative() Checker {
	return CheckerFunc(func(context.Context, string, []history.Transaction) (bool, error) {
		return false, nil
	})
}

// Results holds the outcome of all checks for one address.
type Results struct {
	IsValidator             bool `json:"is_validator"`
	HasCreatedTokens        bool `json:"has_created_tokens"`
	HasSuspiciousPatterns   bool `json:"has_suspicious_patterns"`
	IsSanctioned            bool `json:"is_sanctioned"`
	HasHighRiskInteractions bool `json:"has_high_risk_interactions"`
}

// Set is the full collection of checkers. Zero-value fields fall back
// to Negative.
type Set struct {
	Validator            Checker
	TokenCreator         Checker
	SuspiciousPatterns   Checker
	Sanctions            Checker
	HighRiskInteractions Checker

	// Timeout bounds each individual check; DefaultTimeout if zero.
	Timeout time.Duration
}

// NewSet returns a Set with every checker defaulted to Negative.
func NewSet() *Set {
	return &Set{
		Validator:            Negative(),
		TokenCreator:         Negative(),
		SuspiciousPatterns:   Negative(),
		Sanctions:            Negative(),
		HighRiskInteractions: Negative(),
	}
}

// Run executes all checks concurrently and returns the combined results.
// Individual failures and timeouts are logged and counted, never
// propagated: a check that cannot answer reports false.
func (s *Set) Run(ctx context.Context, address string, txns []history.Transaction) Results {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var res Results
	g, gctx := errgroup.WithContext(ctx)

	type outcome struct {
		ok  bool
		err error
	}

	run := func(name string, c Checker, dst *bool) {
		g.Go(func() error {
			if c == nil {
				return nil
			}
			cctx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()

			// The check runs on its own goroutine so the deadline holds
			// even for checkers that never look at their context. An
			// abandoned checker finishes in the background and its
			// result is dropped.
			ch := make(chan outcome, 1)
			go func() {
				ok, err := c.Check(cctx, address, txns)
				ch <- outcome{ok: ok, err: err}
			}()

			select {
			case out := <-ch:
				if out.err != nil {
					metrics.SignalCheckFailuresTotal.WithLabelValues(name).Inc()
					logging.L(ctx).Warn("signal check failed",
						"signal", name, "address", address, "error", out.err)
					return nil
				}
				*dst = out.ok
			case <-cctx.Done():
				metrics.SignalCheckFailuresTotal.WithLabelValues(name).Inc()
				logging.L(ctx).Warn("signal check timed out",
					"signal", name, "address", address, "error", cctx.Err())
			}
			return nil
		})
	}

	run("validator", s.Validator, &res.IsValidator)
	run("token_creator", s.TokenCreator, &res.HasCreatedTokens)
	run("suspicious_patterns", s.SuspiciousPatterns, &res.HasSuspiciousPatterns)
	run("sanctions", s.Sanctions, &res.IsSanctioned)
	run("high_risk_interactions", s.HighRiskInteractions, &res.HasHighRiskInteractions)

	_ = g.Wait() // checks never return errors

	return res
}
