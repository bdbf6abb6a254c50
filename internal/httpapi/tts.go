package httpapi

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/getzenaf/zencoach/internal/persona"
	"github.com/getzenaf/zencoach/internal/reliability"
)

// ttsRequestBody is lenient like the chat body: a malformed payload reads as
// empty and fails on the missing-text validation, never on shape.
type ttsRequestBody struct {
	Text string `json:"text"`
	Mode string `json:"mode"`
}

type quotaNotice struct {
	QuotaExceeded bool   `json:"quota_exceeded"`
	Notice        string `json:"notice"`
	ResetsOn      string `json:"resets_on"`
}

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	if s.speech == nil {
		http.Error(w, "speech orchestrator not configured", http.StatusNotImplemented)
		return
	}

	raw, err := readBody(r)
	if err != nil && err != errEmptyBody {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		s.metrics.SpeechRequests.WithLabelValues("error").Inc()
		return
	}

	var body ttsRequestBody
	_ = json.Unmarshal(raw, &body)
	mode := persona.Parse(body.Mode)

	clientID := s.clientID(w, r)
	allowed, err := s.usage.Allow(r.Context(), clientID)
	if err != nil {
		// A broken counter store should not block audio; the cap is advisory.
		log.Printf("usage check failed for %s: %v", clientID, err)
		allowed = true
	}
	if !allowed {
		resetsOn := s.usage.ResetsOn().Format("2006-01-02")
		s.metrics.QuotaBlocks.Inc()
		s.metrics.SpeechRequests.WithLabelValues("quota_blocked").Inc()
		// Not a failure: the UI shows this as a friendly notice.
		respondJSON(w, http.StatusOK, quotaNotice{
			QuotaExceeded: true,
			Notice:        fmt.Sprintf("You've used this month's audio generation. It resets on %s.", resetsOn),
			ResetsOn:      resetsOn,
		})
		return
	}

	start := time.Now()
	clip, err := s.speech.Synthesize(r.Context(), body.Text, mode)
	s.metrics.ObserveUpstreamLatency("speech", time.Since(start))
	if err != nil {
		kind := reliability.KindOf(err)
		s.metrics.SpeechRequests.WithLabelValues(string(kind)).Inc()
		s.metrics.ProviderErrors.WithLabelValues("speech", string(kind)).Inc()
		// Speech failures surface as a plain-text body; the UI shows a notice.
		http.Error(w, reliability.DetailOf(err), reliability.HTTPStatus(kind))
		return
	}

	if err := s.usage.RecordSuccess(r.Context(), clientID); err != nil {
		log.Printf("usage record failed for %s: %v", clientID, err)
	}

	s.metrics.SpeechRequests.WithLabelValues("ok").Inc()
	w.Header().Set("Content-Type", clip.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+clip.Filename+`"`)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(len(clip.Audio)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(clip.Audio)
}
