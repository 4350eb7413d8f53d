package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	// Application
	applicationPort "github.com/dreschagin/perfci/internal/application/port"
	"github.com/dreschagin/perfci/internal/application/usecase"

	// Domain
	"github.com/dreschagin/perfci/internal/domain/service"

	// Collection
	"github.com/dreschagin/perfci/internal/collection"

	// Infrastructure
	redisCache "github.com/dreschagin/perfci/internal/infrastructure/cache/redis"
	natsInfra "github.com/dreschagin/perfci/internal/infrastructure/messaging/nats"
	wsInfra "github.com/dreschagin/perfci/internal/infrastructure/notification/websocket"
	"github.com/dreschagin/perfci/internal/infrastructure/persistence/postgres"
	"github.com/dreschagin/perfci/internal/infrastructure/scoring/psi"
	s3storage "github.com/dreschagin/perfci/internal/infrastructure/storage/s3"

	// Interfaces
	httpInterface "github.com/dreschagin/perfci/internal/interfaces/http"
	"github.com/dreschagin/perfci/internal/interfaces/http/handler"
	"github.com/dreschagin/perfci/internal/interfaces/http/middleware"

	// Shared
	"github.com/dreschagin/perfci/pkg/config"
	"github.com/dreschagin/perfci/pkg/logger"

	_ "github.com/lib/pq"
)

func main() {
	// 1. Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	collectionCfg, err := collection.LoadConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load collection config: %v\n", err)
		os.Exit(1)
	}

	// 2. Инициализируем logger
	log := logger.New(os.Getenv("LOG_LEVEL"))
	log.Info("Starting perfci server")

	// 3. Подключаемся к БД
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("Failed to connect to database", err)
		os.Exit(1)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	// Проверяем подключение
	if err := db.Ping(); err != nil {
		log.Error("Failed to ping database", err)
		os.Exit(1)
	}
	log.Info("Database connected successfully")

	// 4. Dependency Injection - Infrastructure Layer

	// Repositories
	projectRepository := postgres.NewPostgresProjectRepository(db)
	buildRepository := postgres.NewPostgresBuildRepository(db)
	runRepository := postgres.NewPostgresRunRepository(db)

	// Scoring client
	scoringClient, err := psi.NewClient(psi.Config{
		BaseURL: cfg.Scoring.BaseURL,
		Timeout: cfg.Scoring.Timeout,
	})
	if err != nil {
		log.Error("Failed to initialize scoring client", err)
		os.Exit(1)
	}

	// WebSocket Hub
	hub := wsInfra.NewHub(log)

	// Redis cache
	var cache applicationPort.Cache
	if cfg.Redis.Enabled {
		cacheImpl, initErr := redisCache.NewRedisCache(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.TTL,
			cfg.Redis.PoolSize,
			cfg.Redis.MinIdleConns,
			cfg.Redis.DialTimeout,
			cfg.Redis.ReadTimeout,
			cfg.Redis.WriteTimeout,
		)
		if initErr != nil {
			log.Warn("Failed to connect to Redis, continuing without cache", "error", initErr.Error())
		} else {
			cache = cacheImpl
			defer cache.Close()
			log.Info("Redis cache initialized")
		}
	} else {
		log.Warn("Redis cache is disabled")
	}

	// NATS Event Publisher
	var eventPublisher applicationPort.EventPublisher
	if cfg.NATS.Enabled {
		publisherImpl, initErr := natsInfra.NewNATSPublisher(cfg.NATS.URL, log)
		if initErr != nil {
			log.Warn("Failed to connect to NATS, continuing without event publishing", "error", initErr.Error())
		} else {
			eventPublisher = publisherImpl
			defer eventPublisher.Close()
			log.Info("NATS event publisher initialized", "url", cfg.NATS.URL)
		}
	} else {
		log.Warn("NATS event publishing is disabled")
	}

	// S3 report archive
	var reportArchive applicationPort.ReportArchive
	if cfg.S3.Enabled {
		storageImpl, initErr := s3storage.NewReportStorage(context.Background(), s3storage.Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
			URLMode:         s3storage.URLMode(cfg.S3.URLMode),
			PresignedTTL:    cfg.S3.PresignedTTL,
		})
		if initErr != nil {
			log.Error("Failed to initialize report storage", initErr)
			os.Exit(1)
		}
		reportArchive = storageImpl
		log.Info("S3 report archive initialized", "bucket", cfg.S3.Bucket)
	} else {
		log.Warn("S3 report archive is disabled")
	}

	// 5. Dependency Injection - Domain Layer
	buildSynthesizer := service.NewBuildSynthesizer()

	// 6. Dependency Injection - Application Layer (Use Cases)

	autocollectUC := usecase.NewAutocollectUseCase(
		projectRepository,
		buildRepository,
		runRepository,
		scoringClient,
		buildSynthesizer,
	)

	listProjectsUC := usecase.NewListProjectsUseCase(projectRepository, log)
	listBuildsUC := usecase.NewListBuildsUseCase(projectRepository, buildRepository, log)
	listBuildsCachedUC := usecase.NewListBuildsCachedUseCase(listBuildsUC, cache, log)
	getBuildRunsUC := usecase.NewGetBuildRunsUseCase(buildRepository, runRepository, log)

	var archiveUC *usecase.ArchiveBuildReportsUseCase
	if reportArchive != nil {
		archiveUC = usecase.NewArchiveBuildReportsUseCase(
			runRepository,
			reportArchive,
			usecase.ArchiveBuildReportsConfig{
				KeyPrefix: cfg.S3.KeyPrefix,
				Strict:    cfg.S3.Strict,
			},
			log,
		)
	}

	// 7. Collection runner

	sites, err := collection.LoadSites(collectionCfg.SitesFile)
	if err != nil {
		log.Warn("Failed to load sites file, scheduled collection disabled",
			"file", collectionCfg.SitesFile,
			"error", err.Error())
	}

	runnerDeps := collection.Deps{
		Collector: autocollectUC,
		Projects:  projectRepository,
		Events:    eventPublisher,
		Notifier:  hub,
		Cache:     listBuildsCachedUC,
	}
	if archiveUC != nil {
		runnerDeps.Archiver = archiveUC
	}

	runner := collection.NewRunner(runnerDeps, sites, log, collectionCfg)

	// 8. Dependency Injection - Interfaces Layer (HTTP Handlers)

	authConfig := middleware.AuthConfig{
		Enabled:     cfg.Security.AuthEnabled,
		BearerToken: cfg.Security.AuthToken,
	}

	collectAPIHandler := handler.NewCollectAPIHandler(autocollectUC, log)
	projectAPIHandler := handler.NewProjectAPIHandler(listProjectsUC, listBuildsCachedUC, getBuildRunsUC, log)
	collectionAPIHandler := handler.NewCollectionAPIHandler(runner, collectionCfg.SiteTimeout*2, log)
	authAPIHandler := handler.NewAuthAPIHandler(authConfig, log)
	websocketHandler := handler.NewWebSocketHandler(hub, cfg.Security.AllowedOrigins, authConfig, log)

	// Router
	router := httpInterface.NewRouter(
		collectAPIHandler,
		projectAPIHandler,
		collectionAPIHandler,
		authAPIHandler,
		websocketHandler,
		runner,
		cfg.Security,
		log,
	)

	// 9. Запускаем фоновые процессы

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запускаем WebSocket hub
	go hub.Run()
	log.Info("WebSocket hub started")

	// Запускаем автосбор по расписанию
	if len(sites) > 0 {
		go runner.Start(ctx)
		log.Info("Collection runner started",
			"interval", collectionCfg.Interval.String(),
			"sites", len(sites))
	}

	// 10. Настраиваем HTTP сервер

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Канал для получения сигналов ОС
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Запускаем сервер в отдельной goroutine
	go func() {
		log.Info("HTTP server starting", "port", cfg.Server.Port)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", err)
			os.Exit(1)
		}
	}()

	// 11. Ожидаем сигнал для graceful shutdown

	<-sigChan
	log.Info("Shutdown signal received, starting graceful shutdown...")

	// Останавливаем runner
	cancel()

	// Даем время на завершение текущих операций
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", err)
	}

	log.Info("Server stopped gracefully")
}
