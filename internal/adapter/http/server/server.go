package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/yerzhank/ride-dispatch/config"
	"github.com/yerzhank/ride-dispatch/internal/adapter/http/handler"
	"github.com/yerzhank/ride-dispatch/internal/adapter/http/middleware"
	"github.com/yerzhank/ride-dispatch/internal/ledger"
	"github.com/yerzhank/ride-dispatch/pkg/logger"
	wrap "github.com/yerzhank/ride-dispatch/pkg/logger/wrapper"
	ws "github.com/yerzhank/ride-dispatch/pkg/wsHub"
)

const serviceName = "dispatch"

type API struct {
	mux    *http.Server
	routes *handlers
	m      *middleware.Middleware

	addr string
	cfg  config.Config
	log  logger.Logger
}

type handlers struct {
	health *handler.Health
	auth   *handler.Auth
	ride   *handler.Ride
	ws     *handler.WebSocket
}

func New(
	cfg config.Config,
	rideService handler.RideService,
	dispatchService handler.DispatchService,
	authService handler.AuthService,
	hub *ws.ConnectionHub,
	l *ledger.Ledger,
	wsDispatch handler.WSDispatch,
	log logger.Logger,
) (*API, error) {
	if authService == nil {
		return nil, errors.New("auth service is required")
	}

	routes := &handlers{
		health: handler.NewHealth(serviceName, log),
		auth:   handler.NewAuth(authService, l, log),
		ride:   handler.NewRide(rideService, dispatchService, log),
		ws:     handler.NewWebSocket(hub, wsDispatch, log),
	}

	mid := middleware.NewMiddleware(authService, log)

	api := &API{
		routes: routes,
		m:      mid,
		addr:   fmt.Sprintf("0.0.0.0:%s", cfg.Server.Port),
		cfg:    cfg,
		log:    log,
	}

	mux := http.NewServeMux()
	setupRoutes(mux, routes, mid)

	api.mux = &http.Server{
		Addr:         api.addr,
		Handler:      api.withMiddleware(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return api, nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.mux.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server", "address", a.addr)
	if err := a.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

// withMiddleware applies the outer middleware chain to the mux.
func (a *API) withMiddleware(mux http.Handler) http.Handler {
	return a.m.Recover(a.m.RequestID(a.m.Metrics(serviceName)(a.m.Logging(a.m.Auth(mux)))))
}
