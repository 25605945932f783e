package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/medibook/booking-gateway/internal/config"
	"github.com/medibook/booking-gateway/internal/handler"
	authHandler "github.com/medibook/booking-gateway/internal/handler/auth"
	bookingHandler "github.com/medibook/booking-gateway/internal/handler/booking"
	catalogHandler "github.com/medibook/booking-gateway/internal/handler/catalog"
	hcsHandler "github.com/medibook/booking-gateway/internal/handler/hcs"
	notificationHandler "github.com/medibook/booking-gateway/internal/handler/notification"
	slotcheckHandler "github.com/medibook/booking-gateway/internal/handler/slotcheck"
	"github.com/medibook/booking-gateway/internal/middleware"
	"github.com/medibook/booking-gateway/internal/router"
	availabilityService "github.com/medibook/booking-gateway/internal/service/availability"
	bookingflowService "github.com/medibook/booking-gateway/internal/service/bookingflow"
	catalogService "github.com/medibook/booking-gateway/internal/service/catalog"
	notificationService "github.com/medibook/booking-gateway/internal/service/notification"
	sessionService "github.com/medibook/booking-gateway/internal/service/session"
	slotcheckService "github.com/medibook/booking-gateway/internal/service/slotcheck"
	"github.com/medibook/booking-gateway/internal/upstream/rest"
	"github.com/medibook/booking-gateway/pkg/logger"
	"github.com/medibook/booking-gateway/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Setup(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	m := metrics.NewMetrics("booking_gateway")

	// Upstream client shared by every service
	client := rest.NewClient(rest.Config{
		BaseURL:            cfg.Upstream.BaseURL,
		Timeout:            time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
		BreakerMaxFailures: cfg.Upstream.BreakerMaxFailures,
		BreakerReset:       time.Duration(cfg.Upstream.BreakerResetSeconds) * time.Second,
	}, m)

	sessionTTL := time.Duration(cfg.Session.TTLHours) * time.Hour
	sessionStore, err := newSessionStore(cfg.Session, sessionTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize session store")
	}

	// Services
	sessionSvc := sessionService.NewService(sessionStore, client, cfg.JWT.Secret, sessionTTL, m)
	notificationSvc := notificationService.NewService(sessionTTL, m)
	availabilitySvc := availabilityService.NewService(client)
	catalogSvc := catalogService.NewService(client)
	slotcheckSvc := slotcheckService.NewService(availabilitySvc, sessionTTL)
	flowSvc := bookingflowService.NewService(client, client, client, availabilitySvc, notificationSvc, sessionTTL, m)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(sessionSvc)
	h := handler.NewHandler()
	authH := authHandler.NewHandler(sessionSvc, client)
	catalogH := catalogHandler.NewHandler(catalogSvc)
	slotcheckH := slotcheckHandler.NewHandler(slotcheckSvc)
	bookingH := bookingHandler.NewHandler(flowSvc, client)
	hcsH := hcsHandler.NewHandler(client, client)
	notificationH := notificationHandler.NewHandler(notificationSvc)

	r := router.NewRouter(
		authMiddleware,
		authH,
		catalogH,
		slotcheckH,
		bookingH,
		hcsH,
		notificationH,
		h,
		router.Config{
			RateLimit:     rate.Limit(cfg.RateLimit.RPS),
			RateBurst:     cfg.RateLimit.Burst,
			Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "booking_gateway",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting booking gateway")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

func newSessionStore(cfg config.SessionConfig, ttl time.Duration) (sessionService.Store, error) {
	switch cfg.Store {
	case "redis":
		return sessionService.NewRedisStore(cfg.RedisURL, ttl)
	case "memory", "":
		return sessionService.NewMemoryStore(ttl), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}
