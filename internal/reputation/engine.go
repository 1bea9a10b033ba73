package reputation

import (
	"time"

	"github.com/vindexchain/ai-module/internal/history"
	"github.com/vindexchain/ai-module/internal/signals"
)

// Scoring factors. All thresholds are strict: a value exactly at a
// threshold does not earn that bonus. The four factors are independent
// and strictly additive; signal results contribute indicators and
// warnings but never move the score.
const (
	baseScore = 50

	highVolumeTxns    = 100 // > 100 txns: +10
	mediumVolumeTxns  = 50  // > 50 txns: +5
	highVolumeBonus   = 10
	mediumVolumeBonus = 5

	matureAgeDays       = 365 // > 1 year: +15
	establishedAgeDays  = 90  // > 90 days: +10
	youngAgeDays        = 30  // > 30 days: +5
	matureAgeBonus      = 15
	establishedAgeBonus = 10
	youngAgeBonus       = 5

	highDiversityPeers   = 50 // > 50 unique addresses seen: +10
	mediumDiversityPeers = 20 // > 20: +5
	highDiversityBonus   = 10
	mediumDiversityBonus = 5

	recentActivityWindow = 30 * 24 * time.Hour
	recentActivityTxns   = 10 // > 10 txns in last 30 days: +5
	recentActivityBonus  = 5
)

// Trust indicator and warning flag strings surfaced to wallets.
const (
	IndicatorHighVolume   = "high transaction volume"
	IndicatorEstablished  = "established account"
	IndicatorValidator    = "network validator"
	IndicatorTokenCreator = "token creator"

	WarningSuspicious = "suspicious transaction patterns detected"
	WarningSanctioned = "sanctioned address"
	WarningHighRisk   = "high-risk counterparty interactions"
)

// Engine turns transaction history and signal results into an Assessment.
type Engine struct {
	thresholds Thresholds
	now        func() time.Time
}

// NewEngine creates an engine with default tier thresholds.
func NewEngine() *Engine {
	return NewEngineWithThresholds(DefaultThresholds)
}

// NewEngineWithThresholds creates an engine with custom tier cut points.
func NewEngineWithThresholds(t Thresholds) *Engine {
	return &Engine{thresholds: t, now: time.Now}
}

// Assess scores an address. txns is the address's transaction history,
// newest first. When includeHistory is false the history-derived factors
// and indicators are skipped; signal indicators and warnings are still
// evaluated, since checkers like a sanctions list do not depend on
// stored history.
func (e *Engine) Assess(address string, txns []history.Transaction, sig signals.Results, includeHistory bool) *Assessment {
	now := e.now()
	score := baseScore

	indicators := []string{}
	warnings := []string{}

	txCount := len(txns)
	ageDays := accountAgeDays(txns, now)

	if includeHistory {
		// Transaction volume
		switch {
		case txCount > highVolumeTxns:
			score += highVolumeBonus
			indicators = append(indicators, IndicatorHighVolume)
		case txCount > mediumVolumeTxns:
			score += mediumVolumeBonus
		}

		// Account age
		switch {
		case ageDays > matureAgeDays:
			score += matureAgeBonus
			indicators = append(indicators, IndicatorEstablished)
		case ageDays > establishedAgeDays:
			score += establishedAgeBonus
		case ageDays > youngAgeDays:
			score += youngAgeBonus
		}

		// Counterparty diversity: unique addresses seen on either side
		switch unique := uniqueAddresses(txns); {
		case unique > highDiversityPeers:
			score += highDiversityBonus
		case unique > mediumDiversityPeers:
			score += mediumDiversityBonus
		}

		// Recent activity
		if recentCount(txns, now.Add(-recentActivityWindow)) > recentActivityTxns {
			score += recentActivityBonus
		}
	}

	// Signal indicators and warnings, independent of history
	if sig.IsValidator {
		indicators = append(indicators, IndicatorValidator)
	}
	if sig.HasCreatedTokens {
		indicators = append(indicators, IndicatorTokenCreator)
	}
	if sig.HasSuspiciousPatterns {
		warnings = append(warnings, WarningSuspicious)
	}
	if sig.IsSanctioned {
		warnings = append(warnings, WarningSanctioned)
	}
	if sig.HasHighRiskInteractions {
		warnings = append(warnings, WarningHighRisk)
	}

	// Clamp to 0-100
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	tier, color := e.thresholds.Classify(score)

	return &Assessment{
		Address:          address,
		Score:            score,
		RiskTier:         tier,
		ColorCode:        color,
		TrustIndicators:  indicators,
		WarningFlags:     warnings,
		TransactionCount: txCount,
		AccountAgeDays:   ageDays,
		ComputedAt:       now,
	}
}

// accountAgeDays measures from the oldest known transaction. Empty
// history means a brand-new account: zero days.
func accountAgeDays(txns []history.Transaction, now time.Time) int {
	if len(txns) == 0 {
		return 0
	}
	oldest := txns[0].Timestamp
	for i := range txns {
		if txns[i].Timestamp.Before(oldest) {
			oldest = txns[i].Timestamp
		}
	}
	days := int(now.Sub(oldest).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// uniqueAddresses counts distinct senders and recipients across the
// history, the scored address included.
func uniqueAddresses(txns []history.Transaction) int {
	seen := make(map[string]bool)
	for i := range txns {
		seen[txns[i].Sender] = true
		seen[txns[i].Recipient] = true
	}
	return len(seen)
}

func recentCount(txns []history.Transaction, since time.Time) int {
	n := 0
	for i := range txns {
		if txns[i].Timestamp.After(since) {
			n++
		}
	}
	return n
}
