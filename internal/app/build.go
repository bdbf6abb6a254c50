package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/getzenaf/zencoach/internal/chat"
	"github.com/getzenaf/zencoach/internal/config"
	"github.com/getzenaf/zencoach/internal/httpapi"
	"github.com/getzenaf/zencoach/internal/observability"
	"github.com/getzenaf/zencoach/internal/speech"
	"github.com/getzenaf/zencoach/internal/usage"
)

// BuildResult bundles the wired service and the handles main needs.
type BuildResult struct {
	Config  config.Config
	API     *httpapi.Server
	Metrics *observability.Metrics

	// Cleanup should be called on shutdown to release external resources.
	Cleanup func() error
}

// Build resolves providers and stores from configuration and wires the server.
func Build(ctx context.Context, cfg config.Config) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	usageStore, err := usage.NewStore(ctx, cfg.DatabaseURL, cfg.RedisAddr, cfg.UsageFilePath)
	if err != nil {
		return nil, fmt.Errorf("usage store init failed: %w", err)
	}
	tracker := usage.NewTracker(usageStore, cfg.AudioMonthlyCap)

	chatClient, chatProvider, err := resolveChatClient(cfg)
	if err != nil {
		_ = usageStore.Close()
		return nil, err
	}
	cfg.ChatProvider = chatProvider

	synth, speechProvider, err := resolveSynthesizer(cfg)
	if err != nil {
		_ = usageStore.Close()
		return nil, err
	}
	cfg.SpeechProvider = speechProvider

	chatOrch := chat.NewOrchestrator(chatClient, chat.ModelParams{
		Model:       cfg.OpenAIChatModel,
		Temperature: cfg.OpenAIChatTemperature,
		MaxTokens:   cfg.OpenAIChatMaxTokens,
	})
	speechOrch := speech.NewOrchestrator(synth, cfg.SpeechWordBudget)

	api := httpapi.New(cfg, chatOrch, speechOrch, tracker, metrics)

	return &BuildResult{
		Config:  cfg,
		API:     api,
		Metrics: metrics,
		Cleanup: usageStore.Close,
	}, nil
}

// resolveChatClient picks the chat backend. "auto" uses OpenAI when the key is
// present and otherwise leaves the orchestrator unconfigured so requests fail
// with the configuration fault instead of failing startup.
func resolveChatClient(cfg config.Config) (chat.Client, string, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.ChatProvider))
	if mode == "" {
		mode = "auto"
	}
	switch mode {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, "", fmt.Errorf("CHAT_PROVIDER=openai but OPENAI_API_KEY is not set")
		}
		return chat.NewOpenAIClient(chat.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL}), "openai", nil
	case "mock":
		log.Printf("chat provider: mock")
		return chat.NewMockClient("You've got this. One small step at a time."), "mock", nil
	case "auto":
		if cfg.OpenAIAPIKey != "" {
			log.Printf("chat provider: openai")
			return chat.NewOpenAIClient(chat.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL}), "openai", nil
		}
		log.Printf("chat provider: unconfigured (no OPENAI_API_KEY)")
		return nil, "unconfigured", nil
	default:
		return nil, "", fmt.Errorf("invalid CHAT_PROVIDER: %q (expected auto|openai|mock)", cfg.ChatProvider)
	}
}

// resolveSynthesizer picks the speech backend. The two real providers are
// interchangeable; selection is configuration, never a runtime guess.
func resolveSynthesizer(cfg config.Config) (speech.Synthesizer, string, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.SpeechProvider))
	if mode == "" {
		mode = "auto"
	}
	switch mode {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, "", fmt.Errorf("SPEECH_PROVIDER=openai but OPENAI_API_KEY is not set")
		}
		return newOpenAISynth(cfg), "openai", nil
	case "elevenlabs":
		if cfg.ElevenLabsAPIKey == "" {
			return nil, "", fmt.Errorf("SPEECH_PROVIDER=elevenlabs but ELEVENLABS_API_KEY is not set")
		}
		return newElevenLabsSynth(cfg), "elevenlabs", nil
	case "mock":
		log.Printf("speech provider: mock")
		return speech.NewMockSynthesizer(), "mock", nil
	case "auto":
		if cfg.OpenAIAPIKey != "" {
			log.Printf("speech provider: openai (%s/%s)", cfg.OpenAITTSModel, cfg.OpenAITTSVoice)
			return newOpenAISynth(cfg), "openai", nil
		}
		if cfg.ElevenLabsAPIKey != "" {
			log.Printf("speech provider: elevenlabs (%s)", cfg.ElevenLabsVoiceID)
			return newElevenLabsSynth(cfg), "elevenlabs", nil
		}
		log.Printf("speech provider: unconfigured (no provider key)")
		return nil, "unconfigured", nil
	default:
		return nil, "", fmt.Errorf("invalid SPEECH_PROVIDER: %q (expected auto|openai|elevenlabs|mock)", cfg.SpeechProvider)
	}
}

func newOpenAISynth(cfg config.Config) speech.Synthesizer {
	return speech.NewOpenAISynthesizer(speech.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAITTSModel,
		Voice:   cfg.OpenAITTSVoice,
	})
}

func newElevenLabsSynth(cfg config.Config) speech.Synthesizer {
	return speech.NewElevenLabsSynthesizer(speech.ElevenLabsConfig{
		APIKey:       cfg.ElevenLabsAPIKey,
		WSBaseURL:    cfg.ElevenLabsWSBaseURL,
		VoiceID:      cfg.ElevenLabsVoiceID,
		ModelID:      cfg.ElevenLabsTTSModel,
		OutputFormat: cfg.ElevenLabsTTSOutputFormat,
	})
}
