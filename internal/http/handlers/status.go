package handlers

import "net/http"

// ConnectionStatus reports whether the chat transport is ready to send.
// The probe is injected so tests and main can decide what "connected"
// means (credentials present, client reachable).
func ConnectionStatus(probe func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]bool{"connected": probe != nil && probe()})
	}
}
