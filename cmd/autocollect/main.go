package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/dreschagin/perfci/internal/application/usecase"
	"github.com/dreschagin/perfci/internal/collection"
	"github.com/dreschagin/perfci/internal/domain/service"
	"github.com/dreschagin/perfci/internal/infrastructure/persistence/postgres"
	"github.com/dreschagin/perfci/internal/infrastructure/scoring/psi"
	"github.com/dreschagin/perfci/pkg/config"
	"github.com/dreschagin/perfci/pkg/logger"

	_ "github.com/lib/pq"
)

// Одноразовый запуск цикла автосбора: для cron и ручной отладки.
// Возвращает ненулевой код выхода, если ни один сайт не удалось собрать.
func main() {
	baseCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base config: %v\n", err)
		os.Exit(1)
	}

	collectionCfg, err := collection.LoadConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load collection config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(os.Getenv("LOG_LEVEL"))
	log.Info("Starting one-shot autocollect",
		"sites_file", collectionCfg.SitesFile,
	)

	sites, err := collection.LoadSites(collectionCfg.SitesFile)
	if err != nil {
		log.Error("Failed to load sites file", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", baseCfg.Database.DSN())
	if err != nil {
		log.Error("Failed to connect to database", err)
		os.Exit(1)
	}
	defer db.Close()

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Error("Failed to ping database", err)
		os.Exit(1)
	}

	scoringClient, err := psi.NewClient(psi.Config{
		BaseURL: baseCfg.Scoring.BaseURL,
		Timeout: baseCfg.Scoring.Timeout,
	})
	if err != nil {
		log.Error("Failed to initialize scoring client", err)
		os.Exit(1)
	}

	projectRepository := postgres.NewPostgresProjectRepository(db)
	buildRepository := postgres.NewPostgresBuildRepository(db)
	runRepository := postgres.NewPostgresRunRepository(db)

	autocollectUC := usecase.NewAutocollectUseCase(
		projectRepository,
		buildRepository,
		runRepository,
		scoringClient,
		service.NewBuildSynthesizer(),
	)

	runner := collection.NewRunner(collection.Deps{
		Collector: autocollectUC,
		Projects:  projectRepository,
	}, sites, log, collectionCfg)

	ctx, cancel := context.WithTimeout(context.Background(), collectionCfg.SiteTimeout*time.Duration(len(sites)+1))
	defer cancel()

	summary, err := runner.RunOnce(ctx)
	if err != nil {
		log.Error("Autocollect cycle failed", err)
		os.Exit(1)
	}

	log.Info("Autocollect cycle finished",
		"sites_total", summary.SitesTotal,
		"collected_count", summary.CollectedCount,
		"failed_count", summary.FailedCount,
	)
}
