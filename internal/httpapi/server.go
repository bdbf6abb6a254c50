package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/getzenaf/zencoach/internal/chat"
	"github.com/getzenaf/zencoach/internal/config"
	"github.com/getzenaf/zencoach/internal/observability"
	"github.com/getzenaf/zencoach/internal/speech"
	"github.com/getzenaf/zencoach/internal/usage"
)

// maxBodyBytes bounds inbound request bodies; a full conversation plus a long
// script stays well under this.
const maxBodyBytes = 1 << 20

const clientCookieName = "gzaf_client_id"

type Server struct {
	cfg     config.Config
	chat    *chat.Orchestrator
	speech  *speech.Orchestrator
	usage   *usage.Tracker
	metrics *observability.Metrics
	static  http.Handler
}

func New(cfg config.Config, chatOrch *chat.Orchestrator, speechOrch *speech.Orchestrator, tracker *usage.Tracker, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:     cfg,
		chat:    chatOrch,
		speech:  speechOrch,
		usage:   tracker,
		metrics: metrics,
		static:  newStaticHandler(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/", http.StatusTemporaryRedirect)
	})
	r.Get("/ui", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/", http.StatusTemporaryRedirect)
	})
	r.Handle("/ui/*", http.StripPrefix("/ui/", s.static))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/chat", s.handleChat)
	r.Post("/v1/tts", s.handleTTS)
	r.Get("/v1/usage", s.handleUsage)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"chat_provider":   s.cfg.ChatProvider,
		"speech_provider": s.cfg.SpeechProvider,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

// clientID reads the device cookie, minting one on first contact. The quota is
// tracked per client device, not per identity.
func (s *Server) clientID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(clientCookieName); err == nil && strings.TrimSpace(c.Value) != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     clientCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   3600 * 24 * 400,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

var errEmptyBody = errors.New("empty body")

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, errEmptyBody
	}
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, kind, detail string) {
	respondJSON(w, status, errorResponse{Error: kind, Detail: detail})
}
