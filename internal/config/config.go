package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the coaching chat service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	ChatProvider   string
	SpeechProvider string

	OpenAIAPIKey          string
	OpenAIBaseURL         string
	OpenAIChatModel       string
	OpenAIChatTemperature float64
	OpenAIChatMaxTokens   int
	OpenAITTSModel        string
	OpenAITTSVoice        string

	ElevenLabsAPIKey          string
	ElevenLabsWSBaseURL       string
	ElevenLabsVoiceID         string
	ElevenLabsTTSModel        string
	ElevenLabsTTSOutputFormat string

	SpeechWordBudget int
	AudioMonthlyCap  int

	DatabaseURL   string
	RedisAddr     string
	UsageFilePath string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "zencoach"),
		ChatProvider:     envOrDefault("CHAT_PROVIDER", "auto"),
		SpeechProvider:   envOrDefault("SPEECH_PROVIDER", "auto"),
		OpenAIAPIKey:     stringsTrimSpace("OPENAI_API_KEY"),
		OpenAIBaseURL:    envOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIChatModel:  envOrDefault("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		// Warm but steady: coaching replies should vary without rambling.
		OpenAIChatTemperature: 0.8,
		OpenAIChatMaxTokens:   1200,
		OpenAITTSModel:        envOrDefault("OPENAI_TTS_MODEL", "tts-1"),
		OpenAITTSVoice:        envOrDefault("OPENAI_TTS_VOICE", "alloy"),
		ElevenLabsAPIKey:      stringsTrimSpace("ELEVENLABS_API_KEY"),
		ElevenLabsWSBaseURL:   envOrDefault("ELEVENLABS_WS_BASE_URL", "wss://api.elevenlabs.io"),
		// Default to a warm female premade voice for coaching audio.
		ElevenLabsVoiceID:  envOrDefault("ELEVENLABS_VOICE_ID", "cgSgspJ2msm6clMCkdW9"),
		ElevenLabsTTSModel: envOrDefault("ELEVENLABS_TTS_MODEL_ID", "eleven_multilingual_v2"),
		// MP3 end to end; the UI downloads the clip as a file.
		ElevenLabsTTSOutputFormat: envOrDefault("ELEVENLABS_TTS_OUTPUT_FORMAT", "mp3_44100_128"),
		// ~5 minutes of spoken text is roughly 900 words.
		SpeechWordBudget: 900,
		AudioMonthlyCap:  1,
		DatabaseURL:      stringsTrimSpace("DATABASE_URL"),
		RedisAddr:        stringsTrimSpace("REDIS_ADDR"),
		UsageFilePath:    stringsTrimSpace("USAGE_FILE_PATH"),
		ShutdownTimeout:  15 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.OpenAIChatTemperature, err = floatFromEnv("OPENAI_CHAT_TEMPERATURE", cfg.OpenAIChatTemperature)
	if err != nil {
		return Config{}, err
	}
	cfg.OpenAIChatMaxTokens, err = intFromEnv("OPENAI_CHAT_MAX_TOKENS", cfg.OpenAIChatMaxTokens)
	if err != nil {
		return Config{}, err
	}
	cfg.SpeechWordBudget, err = intFromEnv("SPEECH_WORD_BUDGET", cfg.SpeechWordBudget)
	if err != nil {
		return Config{}, err
	}
	cfg.AudioMonthlyCap, err = intFromEnv("AUDIO_MONTHLY_CAP", cfg.AudioMonthlyCap)
	if err != nil {
		return Config{}, err
	}

	if cfg.SpeechWordBudget <= 0 {
		return Config{}, fmt.Errorf("SPEECH_WORD_BUDGET must be positive")
	}
	if cfg.AudioMonthlyCap <= 0 {
		return Config{}, fmt.Errorf("AUDIO_MONTHLY_CAP must be positive")
	}
	if cfg.OpenAIChatMaxTokens <= 0 {
		return Config{}, fmt.Errorf("OPENAI_CHAT_MAX_TOKENS must be positive")
	}
	if cfg.OpenAIChatTemperature < 0 || cfg.OpenAIChatTemperature > 2 {
		return Config{}, fmt.Errorf("OPENAI_CHAT_TEMPERATURE must be between 0 and 2")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}
