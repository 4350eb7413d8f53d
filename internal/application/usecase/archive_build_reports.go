package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/dreschagin/perfci/internal/application/port"
	"github.com/dreschagin/perfci/internal/domain/repository"
	"github.com/dreschagin/perfci/pkg/logger"
)

type ArchivedReportItem struct {
	RunID string
	Key   string
	URL   string
}

type ArchiveBuildReportsResult struct {
	Items []ArchivedReportItem
}

type ArchiveBuildReportsConfig struct {
	KeyPrefix string
	// Strict aborts archiving on the first upload failure instead of
	// skipping the failed report.
	Strict bool
}

// ArchiveBuildReportsUseCase copies the raw scoring reports of a build into
// the long-term report archive. Runs after collection; archive failures never
// affect the persisted Build/Run records.
type ArchiveBuildReportsUseCase struct {
	runs    repository.RunRepository
	archive port.ReportArchive
	config  ArchiveBuildReportsConfig
	logger  *logger.Logger
}

func NewArchiveBuildReportsUseCase(
	runs repository.RunRepository,
	archive port.ReportArchive,
	config ArchiveBuildReportsConfig,
	log *logger.Logger,
) *ArchiveBuildReportsUseCase {
	return &ArchiveBuildReportsUseCase{
		runs:    runs,
		archive: archive,
		config:  config,
		logger:  log,
	}
}

func (uc *ArchiveBuildReportsUseCase) Execute(ctx context.Context, projectID, buildID string) (*ArchiveBuildReportsResult, error) {
	if uc.archive == nil {
		return nil, fmt.Errorf("report archive is not configured")
	}

	runs, err := uc.runs.FindByBuild(ctx, projectID, buildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs for archiving: %w", err)
	}

	items := make([]ArchivedReportItem, 0, len(runs))
	for _, run := range runs {
		key := uc.buildArchiveKey(projectID, buildID, run.ID())

		url, err := uc.archive.PutReport(ctx, key, []byte(run.LHR()))
		if err != nil {
			uc.logger.Error("Failed to archive run report", err,
				"build_id", buildID,
				"run_id", run.ID(),
			)
			if uc.config.Strict {
				return nil, fmt.Errorf("failed to archive report %s: %w", run.ID(), err)
			}
			continue
		}

		items = append(items, ArchivedReportItem{
			RunID: run.ID(),
			Key:   key,
			URL:   url,
		})
	}

	uc.logger.Debug("Build reports archived",
		"build_id", buildID,
		"archived", len(items),
		"total", len(runs),
	)

	return &ArchiveBuildReportsResult{Items: items}, nil
}

func (uc *ArchiveBuildReportsUseCase) buildArchiveKey(projectID, buildID, runID string) string {
	prefix := strings.Trim(uc.config.KeyPrefix, "/")
	if prefix == "" {
		prefix = "reports"
	}

	return fmt.Sprintf("%s/%s/%s/%s.json", prefix, projectID, buildID, runID)
}
