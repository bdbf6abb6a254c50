package httpapi

import (
	"net/http"
	"time"

	"github.com/getzenaf/zencoach/internal/reliability"
)

type chatResponse struct {
	Reply string `json:"reply"`
	Mode  string `json:"mode"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "chat orchestrator not configured")
		return
	}

	body, err := readBody(r)
	if err != nil && err != errEmptyBody {
		// Body read problems are the transport's fault, not the client's shape.
		respondError(w, http.StatusInternalServerError, string(reliability.KindUnexpected), err.Error())
		s.metrics.ChatRequests.WithLabelValues("error").Inc()
		return
	}

	start := time.Now()
	reply, mode, err := s.chat.Handle(r.Context(), body)
	s.metrics.ObserveUpstreamLatency("chat", time.Since(start))
	if err != nil {
		kind := reliability.KindOf(err)
		s.metrics.ChatRequests.WithLabelValues(string(kind)).Inc()
		s.metrics.ProviderErrors.WithLabelValues("chat", string(kind)).Inc()
		respondError(w, reliability.HTTPStatus(kind), string(kind), reliability.DetailOf(err))
		return
	}

	s.metrics.ChatRequests.WithLabelValues("ok").Inc()
	respondJSON(w, http.StatusOK, chatResponse{Reply: reply, Mode: string(mode)})
}
