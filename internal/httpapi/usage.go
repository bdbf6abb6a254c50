package httpapi

import "net/http"

type usageResponse struct {
	Month    string `json:"month"`
	Count    int    `json:"count"`
	Cap      int    `json:"cap"`
	ResetsOn string `json:"resets_on"`
}

// handleUsage lets the UI render the quota notice without spending a request.
func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	clientID := s.clientID(w, r)
	rec, err := s.usage.Usage(r.Context(), clientID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unexpected_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, usageResponse{
		Month:    rec.Month,
		Count:    rec.Count,
		Cap:      s.usage.Cap(),
		ResetsOn: s.usage.ResetsOn().Format("2006-01-02"),
	})
}
