package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/getzenaf/zencoach/internal/reliability"
)

// OpenAIConfig configures the chat completions client. BaseURL accepts any
// OpenAI-compatible endpoint.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
}

type OpenAIClient struct {
	cfg    OpenAIConfig
	client *http.Client
}

func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	return &OpenAIClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type openAIChatRequest struct {
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	payload, err := json.Marshal(openAIChatRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	res, err := c.client.Do(httpReq)
	if err != nil {
		return CompletionResponse{}, reliability.Upstreamf("chat request failed: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		detail := strings.TrimSpace(string(body))
		if detail == "" {
			detail = fmt.Sprintf("status %d", res.StatusCode)
		}
		return CompletionResponse{}, reliability.Upstream(detail)
	}

	var decoded openAIChatResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		// Success status with a body we cannot read; the orchestrator turns the
		// empty reply into its placeholder rather than failing the user.
		return CompletionResponse{}, nil
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return CompletionResponse{}, reliability.Upstream(decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 {
		return CompletionResponse{}, nil
	}
	return CompletionResponse{Reply: decoded.Choices[0].Message.Content}, nil
}
