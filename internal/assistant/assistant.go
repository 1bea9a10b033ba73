// Package assistant answers ecosystem questions for wallet users. The
// built-in responder is keyword matching over canned English and Spanish
// answers; a language-model backend can be plugged in through the
// Responder interface.
package assistant

import (
	"context"
	"log/slog"
	"strings"
)

// DefaultLanguage is used when a request omits or mislabels one.
const DefaultLanguage = "en"

// Request is a single chat turn.
type Request struct {
	Message  string `json:"message" binding:"required"`
	Context  string `json:"context,omitempty"`
	Language string `json:"language"`
}

// Response is the assistant's answer.
type Response struct {
	Response         string   `json:"response"`
	Confidence       float64  `json:"confidence"`
	Sources          []string `json:"sources"`
	SuggestedActions []string `json:"suggested_actions"`
}

// Responder generates the answer text for a message.
type Responder interface {
	Respond(ctx context.Context, req Request) (string, float64, error)
}

// apology is returned when the responder fails.
var apology = map[string]string{
	"en": "I'm sorry, I'm experiencing technical difficulties. Please try again later.",
	"es": "Lo siento, estoy experimentando dificultades técnicas. Por favor, inténtalo de nuevo más tarde.",
}

var cannedResponses = map[string]map[string]string{
	"en": {
		"default": "Thank you for your question about VindexChain. For detailed information, please visit our documentation at docs.vindexchain.com or explore our ecosystem at vindexchain.com.",
		"wallet":  "VindexWallet is our secure browser extension and mobile app for managing your OC$ tokens and interacting with the VindexChain ecosystem.",
		"staking": "You can stake your OC$ tokens to help secure the network and earn rewards. Visit VindexWallet to start staking.",
		"dex":     "BurnSwap is our native DEX where you can trade tokens with ultra-low fees and benefit from our auto-burn mechanism.",
	},
	"es": {
		"default": "Gracias por tu pregunta sobre VindexChain. Para información detallada, visita nuestra documentación en docs.vindexchain.com o explora nuestro ecosistema en vindexchain.com.",
		"wallet":  "VindexWallet es nuestra extensión de navegador y aplicación móvil segura para gestionar tus tokens OC$ e interactuar con el ecosistema VindexChain.",
		"staking": "Puedes hacer staking de tus tokens OC$ para ayudar a asegurar la red y ganar recompensas. Visita VindexWallet para comenzar.",
		"dex":     "BurnSwap es nuestro DEX nativo donde puedes intercambiar tokens con comisiones ultra bajas y beneficiarte de nuestro mecanismo de quema automática.",
	},
}

// KeywordResponder is the fallback responder: keyword matching over the
// canned response tables.
type KeywordResponder struct{}

func (KeywordResponder) Respond(_ context.Context, req Request) (string, float64, error) {
	lang := normalizeLanguage(req.Language)
	table := cannedResponses[lang]

	msg := strings.ToLower(req.Message)
	switch {
	case containsAny(msg, "wallet", "billetera"):
		return table["wallet"], 0.85, nil
	case containsAny(msg, "staking", "stake"):
		return table["staking"], 0.85, nil
	case containsAny(msg, "dex", "swap", "trade", "intercambio"):
		return table["dex"], 0.85, nil
	default:
		return table["default"], 0.85, nil
	}
}

// Service answers chat requests.
type Service struct {
	responder Responder
	logger    *slog.Logger
}

// NewService creates an assistant. responder nil falls back to keyword
// matching.
func NewService(responder Responder, logger *slog.Logger) *Service {
	if responder == nil {
		responder = KeywordResponder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{responder: responder, logger: logger}
}

// Chat answers one message. A responder failure degrades to the apology
// response with zero confidence instead of an error.
func (s *Service) Chat(ctx context.Context, req Request) *Response {
	lang := normalizeLanguage(req.Language)

	text, confidence, err := s.responder.Respond(ctx, req)
	if err != nil {
		s.logger.Warn("responder failed", "language", lang, "error", err)
		return &Response{
			Response:         apology[lang],
			Confidence:       0,
			Sources:          []string{},
			SuggestedActions: []string{},
		}
	}

	return &Response{
		Response:         text,
		Confidence:       confidence,
		Sources:          relevantSources(req.Message),
		SuggestedActions: suggestedActions(req.Message),
	}
}

func normalizeLanguage(lang string) string {
	if _, ok := cannedResponses[lang]; ok {
		return lang
	}
	return DefaultLanguage
}

func suggestedActions(message string) []string {
	actions := []string{}
	msg := strings.ToLower(message)

	if containsAny(msg, "wallet", "create", "setup") {
		actions = append(actions, "Download VindexWallet extension")
	}
	if containsAny(msg, "stake", "staking", "rewards") {
		actions = append(actions, "Start staking in VindexWallet")
	}
	if containsAny(msg, "trade", "swap", "dex") {
		actions = append(actions, "Visit BurnSwap DEX")
	}
	if containsAny(msg, "token", "create", "factory") {
		actions = append(actions, "Use Token Factory")
	}
	if containsAny(msg, "domain", "register", ".vindex") {
		actions = append(actions, "Register .vindex domain")
	}

	return actions
}

func relevantSources(message string) []string {
	sources := []string{"https://docs.vindexchain.com"}
	msg := strings.ToLower(message)

	if containsAny(msg, "wallet") {
		sources = append(sources, "https://docs.vindexchain.com/wallet")
	}
	if containsAny(msg, "staking") {
		sources = append(sources, "https://docs.vindexchain.com/staking")
	}
	if containsAny(msg, "dex", "swap") {
		sources = append(sources, "https://docs.vindexchain.com/burnswap")
	}

	return sources
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
