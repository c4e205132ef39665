// README: API gateway; wires middleware and registers module handlers on a gin engine.
package http

import (
	"net/http"

	"go.uber.org/zap"

	"nursecare/internal/infra"
	"nursecare/internal/modules/booking"
	"nursecare/internal/modules/location"
	"nursecare/internal/modules/pricing"
)

type ServerDeps struct {
	Pricing  *pricing.Service
	Location *location.Service
	// Booking and Verifier are optional; authenticated routes are only
	// mounted when both are set.
	Booking  *booking.Service
	Verifier infra.TokenVerifier
	Log      *zap.Logger

	QuoteRPS       float64
	QuoteBurst     int
	NearbyRadiusKm float64
	NearbyLimit    int
}

type Server struct {
	deps ServerDeps
	log  *zap.Logger
}

func NewServer(deps ServerDeps) *Server {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{deps: deps, log: log.Named("http")}
}

func (s *Server) Routes() http.Handler {
	return NewRouter(s.deps, s.log)
}
