package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/meltforce/repforge/internal/models"
)

// CompletionRequest is a single generation call to the model provider.
type CompletionRequest struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completion is the provider's answer plus token accounting.
type Completion struct {
	Text  string
	Usage models.TokenUsage
}

// Client abstracts the generative model provider so the orchestrator can
// be unit-tested with a stub.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// OpenAIClient calls an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// Compile-time check: OpenAIClient satisfies Client.
var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient creates a client for the given endpoint. The timeout
// bounds each model call; an expired call is surfaced as a transport
// error, never retried.
func NewOpenAIClient(baseURL, apiKey, model string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the prompt as a single user message constrained to JSON
// output and returns the raw response text with token usage.
func (c *OpenAIClient) Complete(ctx context.Context, cr CompletionRequest) (*Completion, error) {
	payload := chatRequest{
		Model:          c.model,
		Messages:       []chatMessage{{Role: "user", Content: cr.Prompt}},
		Temperature:    cr.Temperature,
		MaxTokens:      cr.MaxTokens,
		ResponseFormat: &respFormat{Type: "json_object"},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling model: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading model response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model returned %d: %s", resp.StatusCode, truncate(string(body), 300))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding model response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("model error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}

	return &Completion{
		Text: parsed.Choices[0].Message.Content,
		Usage: models.TokenUsage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
		},
	}, nil
}

// MaxTokensFor scales the completion budget with the requested exercise
// count, capped at 4000.
func MaxTokensFor(exerciseCount int) int {
	n := 1000 + 200*exerciseCount
	if n > 4000 {
		return 4000
	}
	return n
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
