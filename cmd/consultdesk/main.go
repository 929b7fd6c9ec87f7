package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/consultdesk/internal/config"
	"github.com/deppfellow/consultdesk/internal/database"
	"github.com/deppfellow/consultdesk/internal/handler"
	"github.com/deppfellow/consultdesk/internal/logger"
	"github.com/deppfellow/consultdesk/internal/middleware"
	"github.com/deppfellow/consultdesk/internal/repository"
	"github.com/deppfellow/consultdesk/internal/router"
	"github.com/deppfellow/consultdesk/internal/server"
	"github.com/deppfellow/consultdesk/internal/service"
)

const DefaultContextTimeout = 30

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	migrateCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout*time.Second)
	if err := database.Migrate(migrateCtx, &log, cfg); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	cancel()

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	repos := repository.NewRepositories(srv)
	services, err := service.NewServices(srv, repos)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create services")
	}

	srv.Job.InitHandlers(repos.Sessions, srv.Blob)
	if err := srv.Job.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start job service")
	}

	bootstrapCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout*time.Second)
	if err := services.Auth.EnsureBootstrapAdmin(bootstrapCtx); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("failed to create bootstrap admin")
	}
	cancel()

	handlers := handler.NewHandlers(srv, services)
	middlewares := middleware.NewMiddlewares(srv, services.Auth)
	r := router.NewRouter(srv, handlers, middlewares)

	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
