// Package reputation implements address reputation scoring for VindexChain.
//
// An assessment is computed from on-chain behavior:
// - Transaction count
// - Account age
// - Counterparty diversity
// - Recent activity
//
// plus boolean trust and risk signals (validator status, token creation,
// suspicious patterns, sanctions, high-risk counterparties). Scores start
// from a neutral base and move with additive factors, then classify into
// a risk tier with a wallet-facing color code.
package reputation

import (
	"time"
)

// RiskTier buckets a score into a coarse risk level.
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// ColorCode is the wallet UI color paired with a risk tier.
type ColorCode string

const (
	ColorGreen  ColorCode = "green"
	ColorYellow ColorCode = "yellow"
	ColorRed    ColorCode = "red"
)

// Assessment is the full reputation verdict for an address.
type Assessment struct {
	Address          string    `json:"address"`
	Score            int       `json:"score"` // 0-100
	RiskTier         RiskTier  `json:"risk_tier"`
	ColorCode        ColorCode `json:"color_code"`
	TrustIndicators  []string  `json:"trust_indicators"`
	WarningFlags     []string  `json:"warning_flags"`
	TransactionCount int       `json:"transaction_count"`
	AccountAgeDays   int       `json:"account_age_days"`
	ComputedAt       time.Time `json:"computed_at"`
}

// Thresholds holds the tier cut points. A score at or above Low is low
// risk, at or above Medium is medium risk, below is high risk.
type Thresholds struct {
	Low    int
	Medium int
}

// DefaultThresholds are the production cut points.
var DefaultThresholds = Thresholds{Low: 70, Medium: 40}

// Classify maps a score to its risk tier and color code. The two are
// always derived together so they cannot drift apart.
func (t Thresholds) Classify(score int) (RiskTier, ColorCode) {
	switch {
	case score >= t.Low:
		return RiskLow, ColorGreen
	case score >= t.Medium:
		return RiskMedium, ColorYellow
	default:
		return RiskHigh, ColorRed
	}
}
