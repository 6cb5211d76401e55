package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yerzhank/ride-dispatch/config"
	"github.com/yerzhank/ride-dispatch/internal/adapter/http/server"
	repo "github.com/yerzhank/ride-dispatch/internal/adapter/postgres"
	"github.com/yerzhank/ride-dispatch/internal/adapter/rabbit"
	"github.com/yerzhank/ride-dispatch/internal/adapter/routing"
	"github.com/yerzhank/ride-dispatch/internal/ledger"
	"github.com/yerzhank/ride-dispatch/internal/service/auth"
	"github.com/yerzhank/ride-dispatch/internal/service/dispatch"
	"github.com/yerzhank/ride-dispatch/internal/service/ride"
	"github.com/yerzhank/ride-dispatch/pkg/logger"
	"github.com/yerzhank/ride-dispatch/pkg/postgres"
	rabbitmq "github.com/yerzhank/ride-dispatch/pkg/rabbit"
	"github.com/yerzhank/ride-dispatch/pkg/trm"
	ws "github.com/yerzhank/ride-dispatch/pkg/wsHub"
)

// App wires the dispatch coordinator together: ledger, session hub,
// dispatch and ride services, optional archive and event broker, and
// the HTTP server on top.
type App struct {
	httpServer *server.API
	hub        *ws.ConnectionHub
	dispatcher *dispatch.Service
	postgresDB *postgres.PostgreDB
	rabbitMQ   *rabbitmq.RabbitMQ

	cfg config.Config
	log logger.Logger
}

func New(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	rideLedger := ledger.New()
	hub := ws.NewConnHub(log)

	app := &App{
		hub: hub,
		cfg: cfg,
		log: log,
	}

	// Optional terminal-ride archive.
	var archiveRepo *repo.ArchiveRepo
	if cfg.Database.Enabled {
		postgresDB, err := postgres.New(ctx, cfg.Database)
		if err != nil {
			log.Error(ctx, "failed to setup database", err)
			return nil, err
		}
		app.postgresDB = postgresDB

		archiveRepo = repo.NewArchiveRepo(postgresDB.Pool, trm.New(postgresDB.Pool))
		if err := archiveRepo.EnsureSchema(ctx); err != nil {
			log.Error(ctx, "failed to ensure archive schema", err)
			return nil, err
		}
	}

	// Optional lifecycle event broker.
	var events dispatch.EventPublisher
	if cfg.RabbitMQ.Enabled {
		client, err := rabbitmq.New(ctx, cfg.RabbitMQ.GetDSN(), log)
		if err != nil {
			log.Error(ctx, "failed to setup rabbitmq", err)
			return nil, err
		}
		app.rabbitMQ = client

		broker := rabbit.NewRideBroker(client, log)
		if err := broker.Setup(ctx); err != nil {
			log.Error(ctx, "failed to declare rabbitmq topology", err)
			return nil, err
		}
		events = broker
	}

	var archiver dispatch.Archiver
	var rideArchive ride.Archive
	if archiveRepo != nil {
		archiver = archiveRepo
		rideArchive = archiveRepo
	}

	dispatcher := dispatch.NewService(rideLedger, hub, events, archiver, cfg.Dispatch, log)
	app.dispatcher = dispatcher

	router := routing.New(cfg.Routing)
	rideService := ride.NewService(rideLedger, router, dispatcher, rideArchive, cfg.Area, cfg.Pricing, log)
	tokenService := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.ProvisionSecret, cfg.Auth.TokenTTL, log)

	httpServer, err := server.New(cfg, rideService, dispatcher, tokenService, hub, rideLedger, dispatcher, log)
	if err != nil {
		log.Error(ctx, "failed to setup http server", err)
		return nil, err
	}
	app.httpServer = httpServer

	return app, nil
}

func (a *App) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)

	a.httpServer.Run(ctx, errCh)
	go a.dispatcher.StartSweeper(ctx)

	defer func() {
		a.close(ctx)
		a.log.Info(ctx, "dispatch coordinator closed")
	}()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	a.log.Info(ctx, "dispatch coordinator started")

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		a.log.Info(ctx, "shutting down application", "signal", sig.String())
		return nil
	}
}

func (a *App) close(ctx context.Context) {
	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.log.Warn(ctx, "failed to gracefully close http server", "error", err.Error())
		}
	}

	a.hub.Close()

	if a.rabbitMQ != nil {
		if err := a.rabbitMQ.Close(ctx); err != nil {
			a.log.Warn(ctx, "failed to gracefully close rabbitmq", "error", err.Error())
		}
	}

	if a.postgresDB != nil && a.postgresDB.Pool != nil {
		a.postgresDB.Pool.Close()
	}
}
