package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/ta-hiring-api/api/swagger"
	"github.com/noah-isme/ta-hiring-api/internal/clients"
	"github.com/noah-isme/ta-hiring-api/internal/handler"
	"github.com/noah-isme/ta-hiring-api/internal/repository"
	"github.com/noah-isme/ta-hiring-api/internal/router"
	"github.com/noah-isme/ta-hiring-api/internal/service"
	"github.com/noah-isme/ta-hiring-api/pkg/cache"
	"github.com/noah-isme/ta-hiring-api/pkg/config"
	"github.com/noah-isme/ta-hiring-api/pkg/database"
	"github.com/noah-isme/ta-hiring-api/pkg/export"
	"github.com/noah-isme/ta-hiring-api/pkg/jobs"
	"github.com/noah-isme/ta-hiring-api/pkg/logger"
)

// @title TA Hiring API
// @version 1.0.0
// @description Teaching-assistant applications, candidate ranking and selection
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	metrics := service.NewMetricsService()
	readiness := map[string]handler.Pinger{"postgres": db}

	remote := func(baseURL string) clients.Options {
		return clients.Options{
			BaseURL:     baseURL,
			InternalKey: cfg.Remote.InternalKey,
			Timeout:     cfg.Remote.Timeout,
			Retries:     cfg.Remote.Retries,
			Observer:    metrics,
		}
	}
	courses := clients.NewCourseClient(remote(cfg.Remote.CoursesURL))
	staffing := clients.NewStaffingClient(remote(cfg.Remote.StaffingURL))

	var notifier service.StatusNotifier
	switch cfg.Notifier.Driver {
	case config.NotifierKafka:
		kafkaNotifier, err := clients.NewKafkaNotifier(clients.KafkaNotifierConfig{
			Brokers:      cfg.Notifier.KafkaBrokers,
			Topic:        cfg.Notifier.KafkaTopic,
			WriteTimeout: cfg.Remote.Timeout,
			Observer:     metrics,
		})
		if err != nil {
			logr.Fatal("kafka notifier init failed", zap.Error(err))
		}
		defer kafkaNotifier.Close() //nolint:errcheck
		notifier = kafkaNotifier
	default:
		notifier = clients.NewHTTPNotifier(remote(cfg.Remote.NotificationsURL))
	}

	var (
		facts       service.CandidateFacts = staffing
		cachedFacts *service.CachedCandidateFacts
	)
	if cfg.FactsCache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, candidate facts will not be cached", zap.Error(err))
		} else {
			defer redisClient.Close()
			cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient), metrics, cfg.FactsCache.TTL, logr, true)
			cachedFacts = service.NewCachedCandidateFacts(staffing, cacheSvc)
			facts = cachedFacts
			readiness["redis"] = handler.PingFunc(func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			})
		}
	}

	applications := repository.NewApplicationRepository(db)
	eligibility := service.NewEligibilityService(courses, applications, logr)
	applicationSvc := service.NewApplicationService(applications, eligibility, courses, staffing, notifier, metrics, validator.New(), logr)
	if cachedFacts != nil {
		applicationSvc.SetFactsInvalidator(cachedFacts)
	}

	if cfg.Redelivery.Enabled {
		redelivery := service.NewNotificationRedelivery(notifier, jobs.QueueConfig{
			Workers:    cfg.Redelivery.Workers,
			MaxRetries: cfg.Redelivery.Retries,
			RetryDelay: cfg.Redelivery.Delay,
			Logger:     logr,
		}, metrics)
		redelivery.Start(ctx)
		defer redelivery.Stop()
		applicationSvc.SetRedeliverer(redelivery)
	}

	renderers := map[export.Format]service.Renderer{
		export.FormatCSV: export.NewCSVExporter(),
		export.FormatPDF: export.NewPDFExporter(),
	}
	recommendationSvc := service.NewRecommendationService(
		applicationSvc,
		service.NewRankingService(facts, cfg.Remote.FanOut, logr),
		service.NewFilterService(facts, cfg.Remote.FanOut, logr),
		renderers,
		logr,
	)

	handlers := &router.Handlers{
		Application:    handler.NewApplicationHandler(applicationSvc),
		Recommendation: handler.NewRecommendationHandler(recommendationSvc),
		Metrics:        handler.NewMetricsHandler(metrics, readiness),
	}
	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)
	r := router.SetupRouter(cfg, logr, tokens, metrics, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "notifier", cfg.Notifier.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
