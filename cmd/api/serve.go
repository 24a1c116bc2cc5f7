package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/coursereg/coursereg-go/internal/config"
	"github.com/coursereg/coursereg-go/internal/events"
	"github.com/coursereg/coursereg-go/internal/handler"
	"github.com/coursereg/coursereg-go/internal/server"
	"github.com/coursereg/coursereg-go/internal/service"
	"github.com/coursereg/coursereg-go/internal/session"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.StoreDriver).Msg("opening stores failed")
		return err
	}
	defer st.Close(context.Background())

	publisher := openPublisher(cfg, logger)
	defer publisher.Close()

	validate := service.NewValidator()

	if _, err := service.NewCatalogService(st.courses, validate, logger).Seed(ctx); err != nil {
		logger.Error().Err(err).Msg("seeding courses failed")
	}

	sessions := session.NewManager(st.sessions, session.Options{
		Secret:     cfg.Session.Secret,
		TTL:        cfg.Session.TTL,
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.CookieSecure,
	})

	authService := service.NewAuthService(st.users, validate)
	enrollmentService := service.NewEnrollmentService(st.courses, st.users, publisher, logger, service.EnrollmentOptions{
		Strategy: cfg.Enrollment.Strategy,
		Dedup:    cfg.Enrollment.Dedup,
	})

	srv := server.New(":"+cfg.Port, server.Handlers{
		Auth:     handler.NewAuthHandler(authService, sessions),
		Courses:  handler.NewCourseHandler(enrollmentService),
		Sessions: sessions,
	}, server.Options{
		CORSOrigins:    cfg.CORSOrigins,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
	}, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("store", cfg.StoreDriver).
			Str("strategy", cfg.Enrollment.Strategy).
			Msg("server starting")
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("server error")
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced shutdown")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}

func openPublisher(cfg config.Config, logger zerolog.Logger) events.Publisher {
	if cfg.AMQP.URL == "" {
		return events.Noop{}
	}

	publisher, err := events.NewRabbitMQPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
	if err != nil {
		logger.Warn().Err(err).Msg("rabbitmq unavailable, enrollment events disabled")
		return events.Noop{}
	}
	logger.Info().Str("queue", cfg.AMQP.Queue).Msg("publishing enrollment events")
	return publisher
}
