package reputation

import "time"

// Snapshot is a point-in-time reputation assessment stored for history.
type Snapshot struct {
	ID               int       `json:"id"`
	Address          string    `json:"address"`
	Score            int       `json:"score"`
	RiskTier         RiskTier  `json:"risk_tier"`
	ColorCode        ColorCode `json:"color_code"`
	TrustIndicators  []string  `json:"trust_indicators"`
	WarningFlags     []string  `json:"warning_flags"`
	TransactionCount int       `json:"transaction_count"`
	AccountAgeDays   int       `json:"account_age_days"`
	CreatedAt        time.Time `json:"created_at"`
}

// SnapshotFromAssessment creates a Snapshot from an assessment.
func SnapshotFromAssessment(a *Assessment) *Snapshot {
	return &Snapshot{
		Address:          a.Address,
		Score:            a.Score,
		RiskTier:         a.RiskTier,
		ColorCode:        a.ColorCode,
		TrustIndicators:  a.TrustIndicators,
		WarningFlags:     a.WarningFlags,
		TransactionCount: a.TransactionCount,
		AccountAgeDays:   a.AccountAgeDays,
		CreatedAt:        a.ComputedAt,
	}
}

// HistoryQuery holds query parameters for historical assessments.
type HistoryQuery struct {
	Address string
	From    time.Time
	To      time.Time
	Limit   int
}
