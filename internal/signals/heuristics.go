package signals

import (
	"context"
	"time"

	"github.com/vindexchain/ai-module/internal/history"
)

// RapidFireChecker flags addresses that emit bursts of transfers faster
// than organic usage. A burst is burstSize or more sent transactions
// inside the window.
type RapidFireChecker struct {
	BurstSize int
	Window    time.Duration
}

// NewRapidFireChecker returns a checker flagging 10+ sends within a minute.
func NewRapidFireChecker() *RapidFireChecker {
	return &RapidFireChecker{BurstSize: 10, Window: time.Minute}
}

func (c *RapidFireChecker) Check(_ context.Context, address string, txns []history.Transaction) (bool, error) {
	var sent []time.Time
	for _, tx := range txns {
		if tx.Sender == address {
			sent = append(sent, tx.Timestamp)
		}
	}
	if len(sent) < c.BurstSize {
		return false, nil
	}

	// txns arrive newest first, so sent is descending. Slide a window of
	// BurstSize over it and compare the span against Window.
	for i := 0; i+c.BurstSize <= len(sent); i++ {
		newest := sent[i]
		oldest := sent[i+c.BurstSize-1]
		if newest.Sub(oldest) <= c.Window {
			return true, nil
		}
	}
	return false, nil
}

// SelfDealingChecker flags addresses whose transfers mostly bounce
// between themselves and a single counterparty, a common wash pattern.
type SelfDealingChecker struct {
	// MinTransactions is the minimum history size before the check applies.
	MinTransactions int
	// Ratio is the fraction of transactions with one counterparty that
	// triggers the flag.
	Ratio float64
}

// NewSelfDealingChecker returns a checker flagging histories of 20+
// transactions where 90% share one counterparty.
func NewSelfDealingChecker() *SelfDealingChecker {
	return &SelfDealingChecker{MinTransactions: 20, Ratio: 0.9}
}

func (c *SelfDealingChecker) Check(_ context.Context, address string, txns []history.Transaction) (bool, error) {
	if len(txns) < c.MinTransactions {
		return false, nil
	}

	counts := make(map[string]int)
	for i := range txns {
		counts[txns[i].Counterparty(address)]++
	}

	for _, n := range counts {
		if float64(n) >= c.Ratio*float64(len(txns)) {
			return true, nil
		}
	}
	return false, nil
}
