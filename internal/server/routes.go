package server

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	v1 "github.com/gosuda/orderfacts/internal/api/v1"
)

func registerAPIRoutes(api huma.API, facts v1.FactService) {
	v1.RegisterOrderFactRoutes(api, facts)
}

type readyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// handleReady runs every readiness check. Any failure turns the endpoint 503.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := readyResponse{Status: "ok"}
	status := http.StatusOK

	names := make([]string, 0, len(s.ready))
	for name := range s.ready {
		names = append(names, name)
	}
	slices.Sort(names)

	if len(names) > 0 {
		resp.Checks = make(map[string]string, len(names))
	}
	for _, name := range names {
		if err := s.ready[name](r.Context()); err != nil {
			log.Warn().Err(err).Str("check", name).Msg("server: readiness check failed")
			resp.Checks[name] = "unavailable"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
