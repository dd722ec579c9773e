package api

import (
	"net/http"

	"github.com/seenimoa/stonks/internal/config"
)

// handleGetConfig returns the running configuration. Provider keys are
// excluded via json:"-" tags.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if s.cfg == nil {
		s.writeError(w, http.StatusServiceUnavailable, "configuration not loaded")
		return
	}
	s.writeData(w, s.cfg)
}

// handleGetConfigKeys reports which provider keys are set and the
// fallback used for the missing ones.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	cfg := s.cfg
	if cfg == nil {
		cfg = &config.Config{}
	}
	s.writeData(w, config.CheckAPIKeys(cfg))
}

// handleProviders lists the registered data providers and the models
// each one serves.
func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, s.dash.Providers())
}
