package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dreschagin/perfci/internal/domain/entity"
	"github.com/dreschagin/perfci/pkg/logger"
)

type putReportCall struct {
	key  string
	body []byte
}

type mockReportArchive struct {
	calls []putReportCall
	errAt map[string]error
}

func (m *mockReportArchive) PutReport(_ context.Context, key string, body []byte) (string, error) {
	m.calls = append(m.calls, putReportCall{key: key, body: body})
	if err, ok := m.errAt[key]; ok {
		return "", err
	}
	return "https://archive.example.com/" + key, nil
}

type staticRunRepo struct {
	runs []*entity.Run
	err  error
}

func (r *staticRunRepo) Create(_ context.Context, run *entity.Run) (*entity.Run, error) {
	return run, nil
}

func (r *staticRunRepo) FindByBuild(_ context.Context, _, _ string) ([]*entity.Run, error) {
	return r.runs, r.err
}

func archivedRuns() []*entity.Run {
	createdAt := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	return []*entity.Run{
		entity.ReconstructRun("run-1", "project-1", "build-1", "https://example.com/", `{"a":1}`, createdAt),
		entity.ReconstructRun("run-2", "project-1", "build-1", "https://example.com/", `{"a":2}`, createdAt),
	}
}

func TestArchiveBuildReports_Success(t *testing.T) {
	archive := &mockReportArchive{}
	uc := NewArchiveBuildReportsUseCase(
		&staticRunRepo{runs: archivedRuns()},
		archive,
		ArchiveBuildReportsConfig{KeyPrefix: "reports"},
		logger.New("error"),
	)

	result, err := uc.Execute(context.Background(), "project-1", "build-1")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(result.Items) != 2 {
		t.Fatalf("archived items = %d, want 2", len(result.Items))
	}
	wantKey := "reports/project-1/build-1/run-1.json"
	if result.Items[0].Key != wantKey {
		t.Errorf("item[0] key = %q, want %q", result.Items[0].Key, wantKey)
	}
	if string(archive.calls[0].body) != `{"a":1}` {
		t.Errorf("item[0] body = %q, want run lhr payload", archive.calls[0].body)
	}
	if result.Items[0].URL == "" {
		t.Errorf("item[0] url is empty, want archive url")
	}
}

func TestArchiveBuildReports_LenientSkipsFailures(t *testing.T) {
	archive := &mockReportArchive{
		errAt: map[string]error{
			"reports/project-1/build-1/run-1.json": errors.New("upload failed"),
		},
	}
	uc := NewArchiveBuildReportsUseCase(
		&staticRunRepo{runs: archivedRuns()},
		archive,
		ArchiveBuildReportsConfig{},
		logger.New("error"),
	)

	result, err := uc.Execute(context.Background(), "project-1", "build-1")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("archived items = %d, want 1 (failed upload skipped)", len(result.Items))
	}
	if result.Items[0].RunID != "run-2" {
		t.Errorf("archived run = %q, want run-2", result.Items[0].RunID)
	}
}

func TestArchiveBuildReports_StrictAbortsOnFailure(t *testing.T) {
	archive := &mockReportArchive{
		errAt: map[string]error{
			"reports/project-1/build-1/run-1.json": errors.New("upload failed"),
		},
	}
	uc := NewArchiveBuildReportsUseCase(
		&staticRunRepo{runs: archivedRuns()},
		archive,
		ArchiveBuildReportsConfig{Strict: true},
		logger.New("error"),
	)

	if _, err := uc.Execute(context.Background(), "project-1", "build-1"); err == nil {
		t.Fatal("Execute() expected error in strict mode")
	}
	if len(archive.calls) != 1 {
		t.Errorf("archive calls = %d, want 1 (aborted after first failure)", len(archive.calls))
	}
}

func TestArchiveBuildReports_NoArchiveConfigured(t *testing.T) {
	uc := NewArchiveBuildReportsUseCase(
		&staticRunRepo{runs: archivedRuns()},
		nil,
		ArchiveBuildReportsConfig{},
		logger.New("error"),
	)

	if _, err := uc.Execute(context.Background(), "project-1", "build-1"); err == nil {
		t.Fatal("Execute() expected error when archive is not configured")
	}
}
