package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers holds the handler functions for each MCP tool.
type Handlers struct {
	client *APIClient
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client *APIClient) *Handlers {
	return &Handlers{client: client}
}

// HandleAssessReputation scores an address on demand.
func (h *Handlers) HandleAssessReputation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address := req.GetString("address", "")
	if address == "" {
		return mcp.NewToolResultError("address is required"), nil
	}
	includeHistory := req.GetBool("include_history", true)

	raw, err := h.client.AssessReputation(ctx, address, includeHistory)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to assess reputation: %v", err)), nil
	}

	text, err := formatAssessment(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse assessment: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleReputationHistory returns recorded score snapshots.
func (h *Handlers) HandleReputationHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address := req.GetString("address", "")
	if address == "" {
		return mcp.NewToolResultError("address is required"), nil
	}
	limit := req.GetInt("limit", 20)

	raw, err := h.client.GetReputationHistory(ctx, address, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get reputation history: %v", err)), nil
	}

	text, err := formatHistory(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse history: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandlePredictMarket returns a market forecast for a token.
func (h *Handlers) HandlePredictMarket(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	denom := req.GetString("token_denom", "")
	if denom == "" {
		return mcp.NewToolResultError("token_denom is required"), nil
	}
	timeframe := req.GetString("timeframe", "")
	includeSentiment := req.GetBool("include_sentiment", true)

	raw, err := h.client.PredictMarket(ctx, denom, timeframe, includeSentiment)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to predict market: %v", err)), nil
	}

	text, err := formatForecast(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse forecast: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleChat asks the assistant a question.
func (h *Handlers) HandleChat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message := req.GetString("message", "")
	if message == "" {
		return mcp.NewToolResultError("message is required"), nil
	}
	language := req.GetString("language", "")

	raw, err := h.client.Chat(ctx, message, language)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Chat failed: %v", err)), nil
	}

	text, err := formatChat(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse chat response: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// --- Formatting helpers ---

func formatAssessment(raw json.RawMessage) (string, error) {
	var a struct {
		Address          string   `json:"address"`
		Score            int      `json:"score"`
		RiskTier         string   `json:"risk_tier"`
		ColorCode        string   `json:"color_code"`
		TrustIndicators  []string `json:"trust_indicators"`
		WarningFlags     []string `json:"warning_flags"`
		TransactionCount int      `json:"transaction_count"`
		AccountAgeDays   int      `json:"account_age_days"`
	}
	if err := json.Unmarshal(raw, &a); err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Reputation for %s:\n", a.Address)
	fmt.Fprintf(&sb, "  Score: %d/100\n", a.Score)
	fmt.Fprintf(&sb, "  Risk: %s (%s)\n", a.RiskTier, a.ColorCode)
	fmt.Fprintf(&sb, "  Transactions: %d | Account age: %d days\n", a.TransactionCount, a.AccountAgeDays)
	if len(a.TrustIndicators) > 0 {
		fmt.Fprintf(&sb, "  Trust indicators: %s\n", strings.Join(a.TrustIndicators, ", "))
	}
	if len(a.WarningFlags) > 0 {
		fmt.Fprintf(&sb, "  Warnings: %s\n", strings.Join(a.WarningFlags, ", "))
	}
	return sb.String(), nil
}

func formatHistory(raw json.RawMessage) (string, error) {
	var resp struct {
		Address   string `json:"address"`
		Count     int    `json:"count"`
		Snapshots []struct {
			Score     int    `json:"score"`
			RiskTier  string `json:"risk_tier"`
			CreatedAt string `json:"created_at"`
		} `json:"snapshots"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}

	if len(resp.Snapshots) == 0 {
		return fmt.Sprintf("No reputation history recorded for %s yet.", resp.Address), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Reputation history for %s (%d snapshot(s), newest first):\n", resp.Address, resp.Count)
	for _, s := range resp.Snapshots {
		fmt.Fprintf(&sb, "  %s  score %d (%s)\n", s.CreatedAt, s.Score, s.RiskTier)
	}
	return sb.String(), nil
}

func formatForecast(raw json.RawMessage) (string, error) {
	var f struct {
		TokenDenom      string  `json:"token_denom"`
		CurrentPrice    float64 `json:"current_price"`
		PredictedPrice  float64 `json:"predicted_price"`
		Confidence      float64 `json:"confidence"`
		Trend           string  `json:"trend"`
		VolatilityScore float64 `json:"volatility_score"`
		SentimentScore  float64 `json:"sentiment_score"`
		Disclaimer      string  `json:"disclaimer"`
	}
	if err := json.Unmarshal(raw, &f); err != nil {
		return "", err
	}

	change := 0.0
	if f.CurrentPrice != 0 {
		change = (f.PredictedPrice - f.CurrentPrice) / f.CurrentPrice * 100
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Market forecast for %s:\n", f.TokenDenom)
	fmt.Fprintf(&sb, "  Trend: %s\n", f.Trend)
	fmt.Fprintf(&sb, "  Current price: %.4f | Predicted: %.4f (%+.1f%%)\n", f.CurrentPrice, f.PredictedPrice, change)
	fmt.Fprintf(&sb, "  Confidence: %.0f%% | Volatility: %.0f/100\n", f.Confidence*100, f.VolatilityScore)
	fmt.Fprintf(&sb, "  Sentiment: %.2f\n", f.SentimentScore)
	if f.Disclaimer != "" {
		fmt.Fprintf(&sb, "\n%s\n", f.Disclaimer)
	}
	return sb.String(), nil
}

func formatChat(raw json.RawMessage) (string, error) {
	var r struct {
		Response         string   `json:"response"`
		Sources          []string `json:"sources"`
		SuggestedActions []string `json:"suggested_actions"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(r.Response)
	if len(r.SuggestedActions) > 0 {
		sb.WriteString("\n\nSuggested actions:\n")
		for _, a := range r.SuggestedActions {
			fmt.Fprintf(&sb, "  - %s\n", a)
		}
	}
	if len(r.Sources) > 0 {
		sb.WriteString("\nSources:\n")
		for _, s := range r.Sources {
			fmt.Fprintf(&sb, "  - %s\n", s)
		}
	}
	return sb.String(), nil
}
