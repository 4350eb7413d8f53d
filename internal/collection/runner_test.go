package collection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dreschagin/perfci/internal/application/dto"
	"github.com/dreschagin/perfci/internal/application/usecase"
	"github.com/dreschagin/perfci/internal/domain/entity"
	"github.com/dreschagin/perfci/internal/infrastructure/messaging/nats"
	"github.com/dreschagin/perfci/pkg/logger"
)

type fakeCollector struct {
	builds map[string]*entity.Build
	errs   map[string]error
	calls  []string
}

func (c *fakeCollector) Execute(_ context.Context, site *dto.SiteConfigDTO) (*entity.Build, error) {
	c.calls = append(c.calls, site.Name)
	if err := c.errs[site.Name]; err != nil {
		return nil, err
	}
	return c.builds[site.Name], nil
}

type fakeProjectRepo struct {
	projects map[string]*entity.Project
}

func (r *fakeProjectRepo) Save(context.Context, *entity.Project) error { return nil }

func (r *fakeProjectRepo) FindByID(_ context.Context, id string) (*entity.Project, error) {
	return r.projects[id], nil
}

func (r *fakeProjectRepo) FindByToken(context.Context, string) (*entity.Project, error) {
	return nil, nil
}

func (r *fakeProjectRepo) FindAll(context.Context) ([]*entity.Project, error) {
	return nil, nil
}

type publishedEvent struct {
	subject string
	event   *dto.BuildEventDTO
}

type fakeEventPublisher struct {
	published []publishedEvent
	err       error
}

func (p *fakeEventPublisher) PublishEvent(_ context.Context, subject string, event interface{}) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, publishedEvent{subject: subject, event: event.(*dto.BuildEventDTO)})
	return nil
}

func (p *fakeEventPublisher) Close() error { return nil }

type fakeNotifier struct {
	events []*dto.BuildEventDTO
}

func (n *fakeNotifier) Broadcast(event *dto.BuildEventDTO) {
	n.events = append(n.events, event)
}

func (n *fakeNotifier) ClientCount() int { return len(n.events) }

type fakeArchiver struct {
	buildIDs []string
	err      error
}

func (a *fakeArchiver) Execute(_ context.Context, _, buildID string) (*usecase.ArchiveBuildReportsResult, error) {
	a.buildIDs = append(a.buildIDs, buildID)
	if a.err != nil {
		return nil, a.err
	}
	return &usecase.ArchiveBuildReportsResult{}, nil
}

type fakeInvalidator struct {
	projectIDs []string
}

func (i *fakeInvalidator) Invalidate(_ context.Context, projectID string) {
	i.projectIDs = append(i.projectIDs, projectID)
}

func testBuild(t *testing.T, id, projectID string) *entity.Build {
	t.Helper()
	committedAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return entity.ReconstructBuild(
		id, projectID, "master",
		"aabbccdd", "Autocollected at Sat, 14 Mar 2026 09:00:00 UTC",
		"Lighthouse CI Server <no-reply@example.com>", "", "https://example.com/",
		entity.LifecycleUnsealed, committedAt, committedAt,
	)
}

func testSite(name, token string, urls []string) *dto.SiteConfigDTO {
	return &dto.SiteConfigDTO{Name: name, BuildToken: token, URLs: urls}
}

type runnerFixture struct {
	collector   *fakeCollector
	projects    *fakeProjectRepo
	events      *fakeEventPublisher
	notifier    *fakeNotifier
	archiver    *fakeArchiver
	invalidator *fakeInvalidator
	runner      *Runner
}

func newRunnerFixture(t *testing.T, sites []*dto.SiteConfigDTO) *runnerFixture {
	t.Helper()

	f := &runnerFixture{
		collector:   &fakeCollector{builds: map[string]*entity.Build{}, errs: map[string]error{}},
		projects:    &fakeProjectRepo{projects: map[string]*entity.Project{}},
		events:      &fakeEventPublisher{},
		notifier:    &fakeNotifier{},
		archiver:    &fakeArchiver{},
		invalidator: &fakeInvalidator{},
	}

	f.runner = NewRunner(Deps{
		Collector: f.collector,
		Projects:  f.projects,
		Events:    f.events,
		Notifier:  f.notifier,
		Archiver:  f.archiver,
		Cache:     f.invalidator,
	}, sites, logger.New("error"), Config{Interval: time.Hour, SiteTimeout: time.Minute})

	return f
}

func TestRunOnce_SuccessfulCycle(t *testing.T) {
	sites := []*dto.SiteConfigDTO{
		testSite("site-a", "token-a", []string{"https://a.example.com/", "https://a.example.com/about"}),
	}
	f := newRunnerFixture(t, sites)
	f.collector.builds["site-a"] = testBuild(t, "build-1", "project-1")

	summary, err := f.runner.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	if summary.SitesTotal != 1 || summary.CollectedCount != 1 || summary.FailedCount != 0 {
		t.Errorf("summary = %+v, want 1 site collected", summary)
	}
	if len(summary.Results) != 1 {
		t.Fatalf("results count = %d, want 1", len(summary.Results))
	}

	result := summary.Results[0]
	if result.BuildID != "build-1" {
		t.Errorf("result.BuildID = %q, want build-1", result.BuildID)
	}
	// 2 URLs x default 3 repeats
	if result.RunCount != 6 {
		t.Errorf("result.RunCount = %d, want 6", result.RunCount)
	}

	if len(f.events.published) != 1 {
		t.Fatalf("published events = %d, want 1", len(f.events.published))
	}
	if f.events.published[0].subject != nats.SubjectBuildCollected {
		t.Errorf("subject = %q, want %q", f.events.published[0].subject, nats.SubjectBuildCollected)
	}
	if f.events.published[0].event.Type != dto.BuildEventCollected {
		t.Errorf("event type = %q, want %q", f.events.published[0].event.Type, dto.BuildEventCollected)
	}

	if len(f.notifier.events) != 1 {
		t.Errorf("broadcast events = %d, want 1", len(f.notifier.events))
	}
	if got := f.invalidator.projectIDs; len(got) != 1 || got[0] != "project-1" {
		t.Errorf("invalidated projects = %v, want [project-1]", got)
	}
	if got := f.archiver.buildIDs; len(got) != 1 || got[0] != "build-1" {
		t.Errorf("archived builds = %v, want [build-1]", got)
	}
}

func TestRunOnce_SiteFailureDoesNotStopOthers(t *testing.T) {
	sites := []*dto.SiteConfigDTO{
		testSite("site-a", "bad-token", []string{"https://a.example.com/"}),
		testSite("site-b", "token-b", []string{"https://b.example.com/"}),
	}
	f := newRunnerFixture(t, sites)
	f.collector.errs["site-a"] = &usecase.InvalidTokenError{Token: "bad-token"}
	f.collector.builds["site-b"] = testBuild(t, "build-2", "project-2")

	summary, err := f.runner.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	if summary.CollectedCount != 1 || summary.FailedCount != 1 {
		t.Errorf("summary = %+v, want 1 collected 1 failed", summary)
	}
	if got := f.collector.calls; len(got) != 2 {
		t.Errorf("collector calls = %v, want both sites attempted", got)
	}
	if summary.Results[0].Error == "" {
		t.Error("failed site result should carry the error message")
	}

	if len(f.events.published) != 2 {
		t.Fatalf("published events = %d, want 2", len(f.events.published))
	}
	if f.events.published[0].subject != nats.SubjectBuildFailed {
		t.Errorf("first subject = %q, want %q", f.events.published[0].subject, nats.SubjectBuildFailed)
	}
	if f.events.published[0].event.Error == "" {
		t.Error("failure event should carry the error message")
	}
}

func TestRunOnce_AllSitesFailedIsCycleError(t *testing.T) {
	sites := []*dto.SiteConfigDTO{
		testSite("site-a", "token-a", nil),
	}
	f := newRunnerFixture(t, sites)
	f.collector.errs["site-a"] = usecase.ErrNoURLs

	if _, err := f.runner.RunOnce(context.Background()); err == nil {
		t.Fatal("RunOnce() expected error when every site fails")
	}

	snapshot := f.runner.Snapshot()
	if snapshot.LastError == "" {
		t.Error("snapshot should record last cycle error")
	}
	if snapshot.LastSummary == nil || snapshot.LastSummary.FailedCount != 1 {
		t.Errorf("snapshot.LastSummary = %+v, want failed summary retained", snapshot.LastSummary)
	}
}

func TestRunOnce_ArchiverFailureIsBestEffort(t *testing.T) {
	sites := []*dto.SiteConfigDTO{
		testSite("site-a", "token-a", []string{"https://a.example.com/"}),
	}
	f := newRunnerFixture(t, sites)
	f.collector.builds["site-a"] = testBuild(t, "build-1", "project-1")
	f.archiver.err = errors.New("bucket unavailable")

	summary, err := f.runner.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if summary.CollectedCount != 1 {
		t.Errorf("CollectedCount = %d, want 1 despite archive failure", summary.CollectedCount)
	}
}

func TestRunOnce_OptionalDepsMayBeNil(t *testing.T) {
	sites := []*dto.SiteConfigDTO{
		testSite("site-a", "token-a", []string{"https://a.example.com/"}),
	}

	collector := &fakeCollector{builds: map[string]*entity.Build{
		"site-a": testBuild(t, "build-1", "project-1"),
	}, errs: map[string]error{}}

	runner := NewRunner(Deps{
		Collector: collector,
		Projects:  &fakeProjectRepo{projects: map[string]*entity.Project{}},
	}, sites, logger.New("error"), Config{Interval: time.Hour})

	summary, err := runner.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if summary.CollectedCount != 1 {
		t.Errorf("CollectedCount = %d, want 1", summary.CollectedCount)
	}
}

func TestSnapshot_CopiesResults(t *testing.T) {
	sites := []*dto.SiteConfigDTO{
		testSite("site-a", "token-a", []string{"https://a.example.com/"}),
	}
	f := newRunnerFixture(t, sites)
	f.collector.builds["site-a"] = testBuild(t, "build-1", "project-1")

	if _, err := f.runner.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	snapshot := f.runner.Snapshot()
	if snapshot.LastSummary == nil {
		t.Fatal("snapshot.LastSummary is nil")
	}

	snapshot.LastSummary.Results[0].Site = "mutated"

	fresh := f.runner.Snapshot()
	if fresh.LastSummary.Results[0].Site != "site-a" {
		t.Error("Snapshot() should return an independent copy of results")
	}
}
