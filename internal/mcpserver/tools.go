package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the VindexChain AI MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

var ToolAssessReputation = mcp.NewTool("assess_reputation",
	mcp.WithDescription(
		"Assess the reputation of a VindexChain address. "+
			"Returns a 0-100 trust score, a risk tier (low/medium/high) with a color code, "+
			"trust indicators, and warning flags. "+
			"Use this to evaluate an address before transacting with it."),
	mcp.WithString("address",
		mcp.Required(),
		mcp.Description("The VindexChain address to assess (bech32, e.g. 'vindex1...')")),
	mcp.WithBoolean("include_history",
		mcp.Description("Include transaction-history factors in the score (default true). "+
			"Set false for a faster signals-only assessment.")),
)

var ToolReputationHistory = mcp.NewTool("reputation_history",
	mcp.WithDescription(
		"Retrieve historical reputation snapshots for a VindexChain address. "+
			"Shows how the trust score has changed over time, newest first."),
	mcp.WithString("address",
		mcp.Required(),
		mcp.Description("The VindexChain address (bech32, e.g. 'vindex1...')")),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of snapshots to return (default 20)")),
)

var ToolPredictMarket = mcp.NewTool("predict_market",
	mcp.WithDescription(
		"Generate a market forecast for a VindexChain token. "+
			"Returns trend direction (bullish/bearish/neutral), predicted price change, "+
			"confidence, volatility score, and a sentiment reading. "+
			"Forecasts are informational only, not financial advice."),
	mcp.WithString("token_denom",
		mcp.Required(),
		mcp.Description("Token denomination to forecast (e.g. 'vdx')")),
	mcp.WithString("timeframe",
		mcp.Description("Forecast horizon (default '24h')"),
		mcp.Enum("1h", "24h", "7d", "30d")),
	mcp.WithBoolean("include_sentiment",
		mcp.Description("Include the market sentiment reading (default true)")),
)

var ToolChat = mcp.NewTool("chat",
	mcp.WithDescription(
		"Ask the VindexChain assistant about wallets, staking, the BurnSwap DEX, "+
			"token creation, or .vindex domains. "+
			"Returns an answer with suggested actions and documentation links."),
	mcp.WithString("message",
		mcp.Required(),
		mcp.Description("The question to ask")),
	mcp.WithString("language",
		mcp.Description("Response language, 'en' or 'es' (default 'en')"),
		mcp.Enum("en", "es")),
)
