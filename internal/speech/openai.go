package speech

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

// OpenAIConfig configures the HTTP text-to-speech client.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Voice   string
}

// OpenAISynthesizer calls the OpenAI audio/speech endpoint and returns MP3 bytes.
type OpenAISynthesizer struct {
	cfg    OpenAIConfig
	client *http.Client
}

func NewOpenAISynthesizer(cfg OpenAIConfig) *OpenAISynthesizer {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "tts-1"
	}
	if strings.TrimSpace(cfg.Voice) == "" {
		cfg.Voice = "alloy"
	}
	return &OpenAISynthesizer{
		cfg: cfg,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type openAISpeechRequest struct {
	Model  string `json:"model"`
	Voice  string `json:"voice"`
	Input  string `json:"input"`
	Format string `json:"format"`
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(openAISpeechRequest{
		Model:  s.cfg.Model,
		Voice:  s.cfg.Voice,
		Input:  text,
		Format: "mp3",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(s.cfg.BaseURL, "/") + "/audio/speech"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	res, err := s.client.Do(req)
	if err != nil {
		return nil, reliability.Upstreamf("tts request failed: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		detail := strings.TrimSpace(string(body))
		if detail == "" {
			detail = fmt.Sprintf("TTS failed with status %d", res.StatusCode)
		}
		return nil, reliability.Upstream(detail)
	}

	audio, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, reliability.Upstreamf("read audio: %v", err)
	}
	return audio, nil
}
