package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/getzenaf/zencoach/internal/reliability"
)

// ElevenLabsConfig configures the stream-input websocket client. The voice is
// fixed per deployment; stability and similarity carry the provider's
// recommended coaching-voice defaults when left at zero.
type ElevenLabsConfig struct {
	APIKey          string
	WSBaseURL       string
	VoiceID         string
	ModelID         string
	OutputFormat    string
	Stability       float64
	SimilarityBoost float64
}

// ElevenLabsSynthesizer speaks text through the ElevenLabs stream-input
// websocket and buffers the chunked audio into one MP3 clip.
type ElevenLabsSynthesizer struct {
	cfg ElevenLabsConfig
}

func NewElevenLabsSynthesizer(cfg ElevenLabsConfig) *ElevenLabsSynthesizer {
	if strings.TrimSpace(cfg.WSBaseURL) == "" {
		cfg.WSBaseURL = "wss://api.elevenlabs.io"
	}
	if strings.TrimSpace(cfg.ModelID) == "" {
		cfg.ModelID = "eleven_multilingual_v2"
	}
	if strings.TrimSpace(cfg.OutputFormat) == "" {
		cfg.OutputFormat = "mp3_44100_128"
	}
	if cfg.Stability <= 0 {
		cfg.Stability = 0.42
	}
	if cfg.SimilarityBoost <= 0 {
		cfg.SimilarityBoost = 0.85
	}
	cfg.Stability = clamp01(cfg.Stability)
	cfg.SimilarityBoost = clamp01(cfg.SimilarityBoost)
	return &ElevenLabsSynthesizer{cfg: cfg}
}

func (s *ElevenLabsSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(s.cfg.VoiceID) == "" {
		return nil, reliability.Configuration("missing ELEVENLABS_VOICE_ID")
	}

	u, err := url.Parse(strings.TrimRight(s.cfg.WSBaseURL, "/") + "/v1/text-to-speech/" + url.PathEscape(s.cfg.VoiceID) + "/stream-input")
	if err != nil {
		return nil, reliability.Upstreamf("bad websocket url: %v", err)
	}
	q := u.Query()
	q.Set("model_id", s.cfg.ModelID)
	q.Set("output_format", s.cfg.OutputFormat)
	q.Set("auto_mode", "true")
	u.RawQuery = q.Encode()

	headers := http.Header{}
	headers.Set("xi-api-key", s.cfg.APIKey)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), headers)
	if err != nil {
		return nil, reliability.Upstreamf("dial tts websocket: %v", err)
	}
	defer conn.Close()

	// Prime the stream as documented for TTS websocket flows.
	prime := map[string]any{
		"text": " ",
		"voice_settings": map[string]any{
			"stability":        s.cfg.Stability,
			"similarity_boost": s.cfg.SimilarityBoost,
		},
	}
	if err := conn.WriteJSON(prime); err != nil {
		return nil, reliability.Upstreamf("prime tts stream: %v", err)
	}
	if err := conn.WriteJSON(map[string]any{"text": text, "try_trigger_generation": true}); err != nil {
		return nil, reliability.Upstreamf("send tts text: %v", err)
	}
	// Empty text closes input and flushes the remaining audio.
	if err := conn.WriteJSON(map[string]any{"text": ""}); err != nil {
		return nil, reliability.Upstreamf("close tts input: %v", err)
	}

	var out bytes.Buffer
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if out.Len() > 0 {
				// Stream closed after the final chunk; some gateways skip isFinal.
				return out.Bytes(), nil
			}
			return nil, reliability.Upstreamf("tts stream closed: %v", err)
		}

		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			continue
		}
		if errMsg := asString(raw["error"]); errMsg != "" {
			return nil, reliability.Upstream(errMsg)
		}
		if audio := asString(raw["audio"]); audio != "" {
			chunk, err := base64.StdEncoding.DecodeString(audio)
			if err != nil {
				return nil, reliability.Upstreamf("decode audio chunk: %v", err)
			}
			_, _ = out.Write(chunk)
		}
		if asBool(raw["isFinal"]) || asBool(raw["is_final"]) {
			return out.Bytes(), nil
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func asBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}
