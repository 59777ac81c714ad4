package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/VisaTrek/visa-trek-backend/config"
	"github.com/VisaTrek/visa-trek-backend/handlers"
	"github.com/VisaTrek/visa-trek-backend/internal/store/memory"
	redisstore "github.com/VisaTrek/visa-trek-backend/internal/store/redis"
	"github.com/VisaTrek/visa-trek-backend/logger"
	"github.com/VisaTrek/visa-trek-backend/models"
	"github.com/VisaTrek/visa-trek-backend/pkg/restcountries"
	"github.com/VisaTrek/visa-trek-backend/router"
	"github.com/VisaTrek/visa-trek-backend/rules"
	"github.com/VisaTrek/visa-trek-backend/services"
	"github.com/VisaTrek/visa-trek-backend/store"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// A missing .env file is fine; environment variables win either way.
	_ = godotenv.Load()

	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Rule table: embedded default, or an operator-supplied YAML override.
	var engine *rules.Engine
	if cfg.Rules.TablePath != "" {
		table, err := rules.LoadTableFile(cfg.Rules.TablePath)
		if err != nil {
			log.Fatalf("Failed to load rule table from %s: %v", cfg.Rules.TablePath, err)
		}
		engine = rules.NewEngine(table)
		log.Infow("Rule table loaded", "path", cfg.Rules.TablePath)
	} else {
		engine = rules.NewDefaultEngine()
	}

	// Store selection: Redis when enabled, otherwise in-memory.
	var (
		kv          store.KVStore
		redisClient *redis.Client
	)
	if cfg.Redis.Enabled {
		redisOptions := &redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		}
		if cfg.Redis.UseTLS {
			redisOptions.TLSConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
		}
		redisClient = redis.NewClient(redisOptions)
		kv = redisstore.New(redisClient)
		log.Infow("Using Redis store", "address", cfg.Redis.Address)
	} else {
		kv = memory.New()
		log.Info("Using in-memory store")
	}
	defer func() {
		if err := kv.Close(); err != nil {
			log.Errorw("Failed to close store", "error", err)
		}
	}()

	// Model and startup recovery of persisted applications.
	appModel := models.NewApplicationModel(engine, kv)
	restoreCtx, cancelRestore := context.WithTimeout(context.Background(), 10*time.Second)
	appModel.Restore(restoreCtx)
	cancelRestore()

	// Services
	countryClient := restcountries.NewClient(cfg.ExternalServices.CountriesAPIURL)
	countrySvc := services.NewCountryService(countryClient, redisClient)
	uploadSvc := services.NewUploadService(cfg.Upload.MaxBytes)
	extractionSvc := services.NewExtractionService(appModel, cfg.Extraction.Delay())
	defer extractionSvc.Close()
	tripSyncSvc := services.NewTripSyncService(cfg.ExternalServices.TripsAPIURL)
	healthSvc := services.NewHealthService(redisClient, cfg.Server.Version)

	r := router.SetupRouter(router.Dependencies{
		Config:             cfg,
		HealthHandler:      handlers.NewHealthHandler(healthSvc),
		CountryHandler:     handlers.NewCountryHandler(countrySvc),
		ApplicationHandler: handlers.NewApplicationHandler(appModel),
		TripHandler:        handlers.NewTripHandler(appModel, tripSyncSvc),
		ChecklistHandler:   handlers.NewChecklistHandler(appModel),
		UploadHandler:      handlers.NewUploadHandler(appModel, uploadSvc, extractionSvc),
		MappingHandler:     handlers.NewMappingHandler(appModel),
		Logger:             log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server shutdown failed", "error", err)
	}
	log.Info("Server stopped")
}
