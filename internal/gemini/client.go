// Package gemini wraps the Gemini SDK chat surface. A Session owns the
// accumulating conversation history inside the SDK chat object; callers only
// append turns through Send.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-1.5-pro"

// GenerationConfig is the static, process-wide sampling configuration
// applied to every chat session.
type GenerationConfig struct {
	Temperature      float32
	TopP             float32
	TopK             float32
	MaxOutputTokens  int32
	ResponseMIMEType string
}

func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:      1,
		TopP:             0.95,
		TopK:             64,
		MaxOutputTokens:  8192,
		ResponseMIMEType: "text/plain",
	}
}

func (c GenerationConfig) toGenAI() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(c.Temperature),
		TopP:             genai.Ptr(c.TopP),
		TopK:             genai.Ptr(c.TopK),
		MaxOutputTokens:  c.MaxOutputTokens,
		ResponseMIMEType: c.ResponseMIMEType,
	}
}

type Client struct {
	client *genai.Client
	model  string
	cfg    GenerationConfig
}

func NewClient(ctx context.Context, apiKey, model string, cfg GenerationConfig) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Client{client: client, model: model, cfg: cfg}, nil
}

// NewSession opens a chat with empty history and the client's static
// generation configuration.
func (c *Client) NewSession(ctx context.Context) (*Session, error) {
	chat, err := c.client.Chats.Create(ctx, c.model, c.cfg.toGenAI(), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini: create chat: %w", err)
	}
	return &Session{chat: chat}, nil
}

// Session is one conversation. Not safe for concurrent Send calls; the relay
// serializes per chat.
type Session struct {
	chat *genai.Chat
}

// Send appends text as a user turn, generates the model reply, and returns
// its text. The SDK records both turns in the chat history.
func (s *Session) Send(ctx context.Context, text string) (string, error) {
	resp, err := s.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		return "", err
	}
	reply := resp.Text()
	if strings.TrimSpace(reply) == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return reply, nil
}
