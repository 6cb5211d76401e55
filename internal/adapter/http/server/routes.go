package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/yerzhank/ride-dispatch/internal/adapter/http/middleware"
	"github.com/yerzhank/ride-dispatch/internal/domain/types"
)

// setupRoutes wires every endpoint of the coordinator.
func setupRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	// System
	mux.HandleFunc("/health", routes.health.HealthCheck)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/swagger/", httpSwagger.Handler())

	// Token provisioning (guarded by the provisioning secret, not a bearer token)
	mux.HandleFunc("POST /auth/token", routes.auth.IssueToken)

	// Participant
	mux.Handle("GET /profile", m.RequireRoles(routes.auth.Profile))
	mux.Handle("GET /ws", m.RequireRoles(routes.ws.Connect))

	// Rides
	mux.Handle("POST /rides/", m.RequireRoles(routes.ride.Create, types.RiderRole))
	mux.Handle("GET /rides/{ride_id}", m.RequireRoles(routes.ride.Get))
	mux.Handle("POST /rides/{ride_id}/cancel", m.RequireRoles(routes.ride.Cancel, types.RiderRole))
	mux.Handle("POST /rides/{ride_id}/respond", m.RequireRoles(routes.ride.Respond, types.DriverRole))
}
