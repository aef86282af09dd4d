package providers

import (
	"context"
	"strings"

	"github.com/parlaylab/sports-mcp/internal/models"
)

const defaultLLMBaseURL = "https://api.anthropic.com/v1"

// LLMClient talks to an Anthropic-compatible messages endpoint. Persona
// requests from the analysis tools ride the same retry policy and outbound
// semaphore as every other upstream call.
type LLMClient struct {
	client  *Client
	baseURL string
	model   string
}

func NewLLMClient(apiKey, baseURL, model string, opts ClientOptions) *LLMClient {
	if opts.Headers == nil {
		opts.Headers = map[string]string{}
	}
	if apiKey != "" {
		opts.Headers["x-api-key"] = apiKey
	}
	opts.Headers["anthropic-version"] = "2023-06-01"
	if baseURL == "" {
		baseURL = defaultLLMBaseURL
	}
	return &LLMClient{
		client:  NewClient("llm", opts),
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
	}
}

func (l *LLMClient) SetBaseURL(base string) { l.baseURL = strings.TrimRight(base, "/") }

// Model reports the configured model identifier.
func (l *LLMClient) Model() string { return l.model }

type llmMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type llmRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system,omitempty"`
	Messages  []llmMessage `json:"messages"`
}

type llmResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// Complete sends one persona prompt and returns the concatenated text blocks.
func (l *LLMClient) Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	req := llmRequest{
		Model:     l.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []llmMessage{{Role: "user", Content: prompt}},
	}
	var resp llmResponse
	if err := l.client.PostJSON(ctx, l.baseURL+"/messages", req, &resp); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", &models.UpstreamDecodeError{Reason: "llm response contained no text blocks"}
	}
	return text, nil
}
