package collection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dreschagin/perfci/internal/application/dto"
	"github.com/dreschagin/perfci/internal/application/port"
	"github.com/dreschagin/perfci/internal/application/usecase"
	"github.com/dreschagin/perfci/internal/domain/entity"
	"github.com/dreschagin/perfci/internal/domain/repository"
	"github.com/dreschagin/perfci/internal/infrastructure/messaging/nats"
	"github.com/dreschagin/perfci/pkg/logger"
)

// Collector выполняет один цикл автосбора для сайта
type Collector interface {
	Execute(ctx context.Context, site *dto.SiteConfigDTO) (*entity.Build, error)
}

// Archiver копирует отчеты сборки в долговременный архив
type Archiver interface {
	Execute(ctx context.Context, projectID, buildID string) (*usecase.ArchiveBuildReportsResult, error)
}

// CacheInvalidator сбрасывает кешированные списки сборок проекта
type CacheInvalidator interface {
	Invalidate(ctx context.Context, projectID string)
}

// Deps — зависимости runner. Events, Notifier, Archiver и Cache опциональны:
// nil отключает соответствующий side effect
type Deps struct {
	Collector Collector
	Projects  repository.ProjectRepository
	Events    port.EventPublisher
	Notifier  port.NotificationService
	Archiver  Archiver
	Cache     CacheInvalidator
}

// Runner выполняет циклы автосбора по расписанию.
// Ошибка одного сайта логируется и не прерывает сбор остальных
type Runner struct {
	deps        Deps
	sites       []*dto.SiteConfigDTO
	log         *logger.Logger
	interval    time.Duration
	siteTimeout time.Duration

	runMu sync.Mutex

	mu          sync.RWMutex
	startedAt   time.Time
	lastRunAt   time.Time
	lastError   string
	lastSummary *CycleSummary
}

func NewRunner(deps Deps, sites []*dto.SiteConfigDTO, log *logger.Logger, cfg Config) *Runner {
	siteTimeout := cfg.SiteTimeout
	if siteTimeout <= 0 {
		siteTimeout = 10 * time.Minute
	}

	return &Runner{
		deps:        deps,
		sites:       sites,
		log:         log,
		interval:    cfg.Interval,
		siteTimeout: siteTimeout,
		startedAt:   time.Now(),
	}
}

func (r *Runner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				// RunOnce already stores error state and logs context.
				continue
			}
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce выполняет один цикл автосбора по всем сайтам.
// Возвращает ошибку только если ни один сайт не удалось собрать
func (r *Runner) RunOnce(ctx context.Context) (*CycleSummary, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	summary := &CycleSummary{
		GeneratedAt: time.Now(),
		SitesTotal:  len(r.sites),
		Results:     make([]SiteResult, 0, len(r.sites)),
	}

	for _, site := range r.sites {
		result := r.collectSite(ctx, site)
		summary.Results = append(summary.Results, result)

		if result.Error != "" {
			summary.FailedCount++
		} else {
			summary.CollectedCount++
		}
	}

	runAt := time.Now()

	if summary.SitesTotal > 0 && summary.CollectedCount == 0 {
		err := fmt.Errorf("collection cycle failed: all %d sites failed", summary.SitesTotal)
		r.updateFailure(runAt, err, summary)
		r.log.Error("Collection cycle failed", err)
		return nil, err
	}

	r.updateSuccess(runAt, summary)

	if summary.SitesTotal == 0 {
		r.log.Warn("Collection cycle completed with empty site list")
		return summary, nil
	}

	r.log.Info(
		"Collection cycle completed",
		"sites_total", summary.SitesTotal,
		"collected_count", summary.CollectedCount,
		"failed_count", summary.FailedCount,
	)

	return summary, nil
}

func (r *Runner) collectSite(ctx context.Context, site *dto.SiteConfigDTO) SiteResult {
	siteCtx, cancel := context.WithTimeout(ctx, r.siteTimeout)
	defer cancel()

	build, err := r.deps.Collector.Execute(siteCtx, site)
	if err != nil {
		r.log.Error("Autocollect failed for site", err, "site", site.Name)
		r.publishEvent(ctx, nats.SubjectBuildFailed, dto.NewBuildFailedEvent(site.Name, err))
		return SiteResult{Site: site.Name, Error: err.Error()}
	}

	numberOfRuns := site.NumberOfRuns
	if numberOfRuns <= 0 {
		numberOfRuns = usecase.DefaultNumberOfRuns
	}
	runCount := numberOfRuns * len(site.URLs)

	r.log.Info("Autocollect completed for site",
		"site", site.Name,
		"build_id", build.ID(),
		"branch", build.Branch(),
		"run_count", runCount,
	)

	project, err := r.deps.Projects.FindByID(ctx, build.ProjectID())
	if err != nil {
		r.log.Warn("Failed to load project for build event",
			"project_id", build.ProjectID(),
			"error", err.Error())
	}

	r.publishEvent(ctx, nats.SubjectBuildCollected, dto.NewBuildCollectedEvent(site.Name, project, build, runCount))

	if r.deps.Cache != nil {
		r.deps.Cache.Invalidate(ctx, build.ProjectID())
	}

	if r.deps.Archiver != nil {
		if _, err := r.deps.Archiver.Execute(ctx, build.ProjectID(), build.ID()); err != nil {
			// Archiving is best effort and never affects the persisted build.
			r.log.Warn("Failed to archive build reports",
				"build_id", build.ID(),
				"error", err.Error())
		}
	}

	return SiteResult{Site: site.Name, BuildID: build.ID(), RunCount: runCount}
}

func (r *Runner) publishEvent(ctx context.Context, subject string, event *dto.BuildEventDTO) {
	if r.deps.Notifier != nil {
		r.deps.Notifier.Broadcast(event)
	}

	if r.deps.Events == nil {
		return
	}
	if err := r.deps.Events.PublishEvent(ctx, subject, event); err != nil {
		r.log.Warn("Failed to publish build event",
			"subject", subject,
			"error", err.Error())
	}
}

func (r *Runner) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := Snapshot{
		StartedAt: r.startedAt,
		Interval:  r.interval,
		LastRunAt: r.lastRunAt,
		LastError: r.lastError,
	}

	if r.lastSummary != nil {
		copiedSummary := *r.lastSummary
		copiedSummary.Results = append([]SiteResult(nil), r.lastSummary.Results...)
		snapshot.LastSummary = &copiedSummary
	}

	return snapshot
}

func (r *Runner) updateFailure(runAt time.Time, err error, summary *CycleSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastRunAt = runAt
	r.lastError = err.Error()
	r.lastSummary = summary
}

func (r *Runner) updateSuccess(runAt time.Time, summary *CycleSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastRunAt = runAt
	r.lastError = ""
	r.lastSummary = summary
}
