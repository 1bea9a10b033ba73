package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer creates a configured MCP server with all AI module tools registered.
func NewMCPServer(cfg Config) *server.MCPServer {
	s := server.NewMCPServer("vindexchain-ai", "1.0.0")
	client := NewAPIClient(cfg)
	h := NewHandlers(client)

	s.AddTool(ToolAssessReputation, h.HandleAssessReputation)
	s.AddTool(ToolReputationHistory, h.HandleReputationHistory)
	s.AddTool(ToolPredictMarket, h.HandlePredictMarket)
	s.AddTool(ToolChat, h.HandleChat)

	return s
}
