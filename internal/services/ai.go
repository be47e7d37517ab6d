package services

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const hrSystemPrompt = `Tu es un assistant RH intelligent pour l'entreprise. Tu as accès aux informations suivantes :

- Gestion des congés (soldes, demandes, historique)
- Bulletins de paie et informations salariales
- Catalogue de formations et inscriptions
- Procédures et politiques RH

Règles importantes :
1. Sois professionnel mais amical
2. Donne des réponses concises et précises
3. Si tu n'as pas l'information, propose de contacter les RH
4. Respecte la confidentialité des données`

// Completer generates free text for utterances no deterministic branch
// covers. Implemented by AIService; faked in tests.
type Completer interface {
	Complete(ctx context.Context, userText string) (string, error)
}

// AIService calls an OpenRouter-compatible completion endpoint. It is the
// last-resort text producer of the response generator, never a routing or
// classification authority.
type AIService struct {
	client *openai.Client
	model  string
}

type headerTransport struct {
	rt      http.RoundTripper
	headers http.Header
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cl := req.Clone(req.Context())
	for k, vs := range t.headers {
		for _, v := range vs {
			cl.Header.Add(k, v)
		}
	}
	return t.rt.RoundTrip(cl)
}

// NewAIService creates a completion client. Referrer and title are the
// optional attribution headers OpenRouter expects.
func NewAIService(apiKey, baseURL, model, referrer, title string) *AIService {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if referrer != "" || title != "" {
		h := http.Header{}
		if referrer != "" {
			h.Set("HTTP-Referer", referrer)
		}
		if title != "" {
			h.Set("X-Title", title)
		}
		config.HTTPClient = &http.Client{Transport: headerTransport{rt: http.DefaultTransport, headers: h}}
	}
	return &AIService{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Complete sends the utterance with the HR system prompt and returns the
// generated reply. The caller bounds the call with a context deadline; on
// expiry the request is abandoned, not retried.
func (s *AIService) Complete(ctx context.Context, userText string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: hrSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
