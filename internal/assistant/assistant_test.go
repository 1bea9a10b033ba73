package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordResponder(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		language string
		wantWord string
	}{
		{"wallet en", "How do I set up a wallet?", "en", "VindexWallet"},
		{"wallet es keyword", "Cómo configuro mi billetera?", "es", "VindexWallet"},
		{"staking", "what are the staking rewards", "en", "stake"},
		{"dex", "where can I swap tokens", "en", "BurnSwap"},
		{"dex es", "dónde hago un intercambio", "es", "BurnSwap"},
		{"default", "tell me about the weather", "en", "docs.vindexchain.com"},
		{"unknown language falls back to english", "hello", "fr", "Thank you"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			text, confidence, err := KeywordResponder{}.Respond(context.Background(), Request{
				Message:  tc.message,
				Language: tc.language,
			})
			if err != nil {
				t.Fatalf("Respond: %v", err)
			}
			if !strings.Contains(text, tc.wantWord) {
				t.Errorf("response %q missing %q", text, tc.wantWord)
			}
			if confidence != 0.85 {
				t.Errorf("confidence = %f, want 0.85", confidence)
			}
		})
	}
}

func TestChatSuggestedActionsAndSources(t *testing.T) {
	svc := NewService(nil, nil)

	resp := svc.Chat(context.Background(), Request{
		Message:  "I want to create a wallet and stake",
		Language: "en",
	})

	assert.Contains(t, resp.SuggestedActions, "Download VindexWallet extension")
	assert.Contains(t, resp.SuggestedActions, "Start staking in VindexWallet")
	assert.Contains(t, resp.Sources, "https://docs.vindexchain.com")
	assert.Contains(t, resp.Sources, "https://docs.vindexchain.com/wallet")
}

func TestChatNoActionsForPlainQuestion(t *testing.T) {
	svc := NewService(nil, nil)

	resp := svc.Chat(context.Background(), Request{Message: "what is the block time"})

	assert.NotNil(t, resp.SuggestedActions)
	assert.Empty(t, resp.SuggestedActions)
	assert.Equal(t, []string{"https://docs.vindexchain.com"}, resp.Sources)
}

type failingResponder struct{}

func (failingResponder) Respond(context.Context, Request) (string, float64, error) {
	return "", 0, errors.New("model unavailable")
}

func TestChatResponderFailureDegrades(t *testing.T) {
	svc := NewService(failingResponder{}, nil)

	for _, lang := range []string{"en", "es"} {
		resp := svc.Chat(context.Background(), Request{Message: "hello", Language: lang})

		assert.Equal(t, apology[lang], resp.Response)
		assert.Zero(t, resp.Confidence)
		assert.Empty(t, resp.Sources)
		assert.Empty(t, resp.SuggestedActions)
	}
}

func newChatRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestChatEndpoint(t *testing.T) {
	r := newChatRouter(NewService(nil, nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/chat",
		strings.NewReader(`{"message":"how do I use the wallet","language":"en"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Response, "VindexWallet")
	assert.Equal(t, 0.85, resp.Confidence)
	assert.NotEmpty(t, resp.Sources)
}

func TestChatEndpointValidation(t *testing.T) {
	r := newChatRouter(NewService(nil, nil))

	long := strings.Repeat("a", maxMessageLength+1)
	tests := []struct {
		body    string
		wantErr string
	}{
		{`{}`, "invalid_request"},
		{`{"message":"   "}`, "invalid_request"},
		{`{"message":"` + long + `"}`, "message_too_long"},
	}

	for _, tc := range tests {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/chat", strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), tc.wantErr)
	}
}
