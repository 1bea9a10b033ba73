package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Config holds the configuration for connecting to the AI module API.
type Config struct {
	APIURL string // Base URL, e.g. "http://localhost:8000"
}

// APIClient is a pure HTTP client for the AI module API.
type APIClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewAPIClient creates a new client for the AI module API.
func NewAPIClient(cfg Config) *APIClient {
	return &APIClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiError represents an error response from the API.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// doRequest makes an HTTP request to the API and returns the response body.
func (c *APIClient) doRequest(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	u, err := url.Parse(c.cfg.APIURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	return json.RawMessage(respBody), nil
}

// AssessReputation scores a VindexChain address, optionally skipping the
// history-based factors.
func (c *APIClient) AssessReputation(ctx context.Context, address string, includeHistory bool) (json.RawMessage, error) {
	body := map[string]any{
		"address":         address,
		"include_history": includeHistory,
	}
	return c.doRequest(ctx, http.MethodPost, "/api/v1/reputation/assess", nil, body)
}

// GetReputation returns the current assessment for an address.
func (c *APIClient) GetReputation(ctx context.Context, address string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/api/v1/reputation/"+address, nil, nil)
}

// GetReputationHistory returns recorded score snapshots for an address.
func (c *APIClient) GetReputationHistory(ctx context.Context, address string, limit int) (json.RawMessage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.doRequest(ctx, http.MethodGet, "/api/v1/reputation/"+address+"/history", q, nil)
}

// PredictMarket returns a market forecast for a token denom and timeframe.
func (c *APIClient) PredictMarket(ctx context.Context, denom, timeframe string, includeSentiment bool) (json.RawMessage, error) {
	body := map[string]any{
		"token_denom":       denom,
		"include_sentiment": includeSentiment,
	}
	if timeframe != "" {
		body["timeframe"] = timeframe
	}
	return c.doRequest(ctx, http.MethodPost, "/api/v1/predict", nil, body)
}

// Chat sends a message to the assistant and returns its response.
func (c *APIClient) Chat(ctx context.Context, message, language string) (json.RawMessage, error) {
	body := map[string]any{
		"message": message,
	}
	if language != "" {
		body["language"] = language
	}
	return c.doRequest(ctx, http.MethodPost, "/api/v1/chat", nil, body)
}
