package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/dreschagin/perfci/internal/application/dto"
	"github.com/dreschagin/perfci/internal/domain/entity"
	"github.com/dreschagin/perfci/internal/domain/service"
)

const testToken = "token-123"

type stubProjectRepo struct {
	projects map[string]*entity.Project
	err      error
}

func (r *stubProjectRepo) Save(_ context.Context, _ *entity.Project) error { return nil }

func (r *stubProjectRepo) FindByID(_ context.Context, _ string) (*entity.Project, error) {
	return nil, nil
}

func (r *stubProjectRepo) FindByToken(_ context.Context, token string) (*entity.Project, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.projects[token], nil
}

func (r *stubProjectRepo) FindAll(_ context.Context) ([]*entity.Project, error) { return nil, nil }

type recordingBuildRepo struct {
	created []*entity.Build
	err     error
}

func (r *recordingBuildRepo) Create(_ context.Context, build *entity.Build) (*entity.Build, error) {
	if r.err != nil {
		return nil, r.err
	}
	created := build.WithID(fmt.Sprintf("build-%d", len(r.created)+1))
	r.created = append(r.created, created)
	return created, nil
}

func (r *recordingBuildRepo) FindByID(_ context.Context, _ string) (*entity.Build, error) {
	return nil, nil
}

func (r *recordingBuildRepo) FindByProject(_ context.Context, _ string, _ int) ([]*entity.Build, error) {
	return nil, nil
}

type recordingRunRepo struct {
	created []*entity.Run
	err     error
}

func (r *recordingRunRepo) Create(_ context.Context, run *entity.Run) (*entity.Run, error) {
	if r.err != nil {
		return nil, r.err
	}
	created := run.WithID(fmt.Sprintf("run-%d", len(r.created)+1))
	r.created = append(r.created, created)
	return created, nil
}

func (r *recordingRunRepo) FindByBuild(_ context.Context, _, _ string) ([]*entity.Run, error) {
	return nil, nil
}

type stubScoringClient struct {
	payload string
	errAt   map[string]error
	calls   []string
}

func (c *stubScoringClient) RunUntilSuccess(_ context.Context, url string) (string, error) {
	c.calls = append(c.calls, url)
	if err, ok := c.errAt[url]; ok {
		return "", err
	}
	return c.payload, nil
}

type fixture struct {
	projects *stubProjectRepo
	builds   *recordingBuildRepo
	runs     *recordingRunRepo
	scoring  *stubScoringClient
	uc       *AutocollectUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	project, err := entity.NewProject("Test Project", "test-project", "https://github.com/example/test", "master", testToken)
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}

	projects := &stubProjectRepo{projects: map[string]*entity.Project{testToken: project}}
	builds := &recordingBuildRepo{}
	runs := &recordingRunRepo{}
	scoring := &stubScoringClient{payload: `{"lighthouseVersion":"5.6.0"}`}

	return &fixture{
		projects: projects,
		builds:   builds,
		runs:     runs,
		scoring:  scoring,
		uc: NewAutocollectUseCase(
			projects,
			builds,
			runs,
			scoring,
			service.NewBuildSynthesizer(),
		),
	}
}

func (f *fixture) project(t *testing.T) *entity.Project {
	t.Helper()
	project, _ := f.projects.FindByToken(context.Background(), testToken)
	return project
}

func TestAutocollect_InvalidToken(t *testing.T) {
	tokens := []string{"", "unknown-token", "    "}

	for _, token := range tokens {
		f := newFixture(t)
		_, err := f.uc.Execute(context.Background(), &dto.SiteConfigDTO{
			BuildToken: token,
			URLs:       []string{"https://example.com/"},
		})
		if err == nil {
			t.Fatalf("Execute() with token %q expected error", token)
		}

		want := fmt.Sprintf("Invalid build token %q", token)
		if err.Error() != want {
			t.Errorf("error = %q, want %q", err.Error(), want)
		}

		var tokenErr *InvalidTokenError
		if !errors.As(err, &tokenErr) {
			t.Errorf("error type = %T, want *InvalidTokenError", err)
		}
		if len(f.builds.created) != 0 {
			t.Errorf("builds created = %d, want 0", len(f.builds.created))
		}
	}
}

func TestAutocollect_NoURLs(t *testing.T) {
	for _, urls := range [][]string{nil, {}} {
		f := newFixture(t)
		_, err := f.uc.Execute(context.Background(), &dto.SiteConfigDTO{
			BuildToken: testToken,
			URLs:       urls,
		})
		if !errors.Is(err, ErrNoURLs) {
			t.Fatalf("Execute() error = %v, want ErrNoURLs", err)
		}
		if err.Error() != "No URLs set" {
			t.Errorf("error = %q, want %q", err.Error(), "No URLs set")
		}
	}
}

func TestAutocollect_TokenCheckedBeforeURLs(t *testing.T) {
	// Когда неверны и токен, и URLs — первой репортится ошибка токена
	f := newFixture(t)
	_, err := f.uc.Execute(context.Background(), &dto.SiteConfigDTO{BuildToken: "bogus"})

	var tokenErr *InvalidTokenError
	if !errors.As(err, &tokenErr) {
		t.Fatalf("error = %v, want *InvalidTokenError before ErrNoURLs", err)
	}
}

func TestAutocollect_DefaultRunCount(t *testing.T) {
	f := newFixture(t)

	build, err := f.uc.Execute(context.Background(), &dto.SiteConfigDTO{
		BuildToken: testToken,
		URLs:       []string{"https://example.com/"},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(f.builds.created) != 1 {
		t.Fatalf("builds created = %d, want 1", len(f.builds.created))
	}
	if build.ID() != "build-1" {
		t.Errorf("build id = %q, want id assigned by repository", build.ID())
	}
	if build.ProjectID() != f.project(t).ID() {
		t.Errorf("build project id = %q, want %q", build.ProjectID(), f.project(t).ID())
	}
	if build.Branch() != "master" {
		t.Errorf("build branch = %q, want project base branch", build.Branch())
	}

	if len(f.runs.created) != DefaultNumberOfRuns {
		t.Fatalf("runs created = %d, want %d", len(f.runs.created), DefaultNumberOfRuns)
	}
	for i, run := range f.runs.created {
		if run.ProjectID() != f.project(t).ID() {
			t.Errorf("run[%d] project id = %q, want %q", i, run.ProjectID(), f.project(t).ID())
		}
		if run.BuildID() != build.ID() {
			t.Errorf("run[%d] build id = %q, want %q", i, run.BuildID(), build.ID())
		}
		if run.URL() != "https://example.com/" {
			t.Errorf("run[%d] url = %q, want measured url", i, run.URL())
		}
		if run.LHR() != f.scoring.payload {
			t.Errorf("run[%d] lhr = %q, want scoring payload", i, run.LHR())
		}
	}
}

func TestAutocollect_BuildMetadata(t *testing.T) {
	f := newFixture(t)

	build, err := f.uc.Execute(context.Background(), &dto.SiteConfigDTO{
		BuildToken: testToken,
		URLs:       []string{"https://example.com/", "https://example.com/about"},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if matched := regexp.MustCompile(`^[a-f0-9]+$`).MatchString(build.CommitHash()); !matched {
		t.Errorf("commit hash %q does not match ^[a-f0-9]+$", build.CommitHash())
	}
	if build.Author() != service.AutocollectAuthor {
		t.Errorf("author = %q, want fixed autocollect author", build.Author())
	}
	if build.ExternalBuildURL() != "https://example.com/" {
		t.Errorf("external build url = %q, want first site url", build.ExternalBuildURL())
	}
	if build.Lifecycle() != entity.LifecycleUnsealed {
		t.Errorf("lifecycle = %q, want unsealed", build.Lifecycle())
	}
	if !build.CommittedAt().Equal(build.RunAt()) {
		t.Errorf("committedAt %v != runAt %v", build.CommittedAt(), build.RunAt())
	}
	if time.Since(build.RunAt()) > time.Minute {
		t.Errorf("runAt %v is not recent", build.RunAt())
	}
}

func TestAutocollect_BranchOverride(t *testing.T) {
	f := newFixture(t)

	build, err := f.uc.Execute(context.Background(), &dto.SiteConfigDTO{
		BuildToken: testToken,
		URLs:       []string{"https://example.com/"},
		Branch:     "dev",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if build.Branch() != "dev" {
		t.Errorf("build branch = %q, want site branch override %q", build.Branch(), "dev")
	}
}

func TestAutocollect_CustomRunCount(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Execute(context.Background(), &dto.SiteConfigDTO{
		BuildToken:   testToken,
		URLs:         []string{"https://example.com/"},
		NumberOfRuns: 5,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(f.runs.created) != 5 {
		t.Errorf("runs created = %d, want 5", len(f.runs.created))
	}
}

func TestAutocollect_RunOrderIsRepeatMajor(t *testing.T) {
	f := newFixture(t)

	urlA := "https://example.com/"
	urlB := "https://example.com/about"

	_, err := f.uc.Execute(context.Background(), &dto.SiteConfigDTO{
		BuildToken:   testToken,
		URLs:         []string{urlA, urlB},
		NumberOfRuns: 2,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	// Повтор — внешний цикл: A, B, A, B (а не A, A, B, B)
	wantOrder := []string{urlA, urlB, urlA, urlB}
	if len(f.runs.created) != len(wantOrder) {
		t.Fatalf("runs created = %d, want %d", len(f.runs.created), len(wantOrder))
	}
	for i, want := range wantOrder {
		if f.runs.created[i].URL() != want {
			t.Errorf("run[%d] url = %q, want %q", i, f.runs.created[i].URL(), want)
		}
	}
	if len(f.scoring.calls) != len(wantOrder) {
		t.Fatalf("scoring calls = %d, want %d", len(f.scoring.calls), len(wantOrder))
	}
	for i, want := range wantOrder {
		if f.scoring.calls[i] != want {
			t.Errorf("scoring call[%d] = %q, want %q", i, f.scoring.calls[i], want)
		}
	}
}

func TestAutocollect_ScoringErrorPassesThroughUnwrapped(t *testing.T) {
	f := newFixture(t)
	scoringErr := errors.New("PSI timed out after 3 attempts")
	f.scoring.errAt = map[string]error{"https://example.com/about": scoringErr}

	_, err := f.uc.Execute(context.Background(), &dto.SiteConfigDTO{
		BuildToken: testToken,
		URLs:       []string{"https://example.com/", "https://example.com/about"},
	})
	if err != scoringErr {
		t.Fatalf("Execute() error = %v, want scoring error passed through unchanged", err)
	}
	if err.Error() != "PSI timed out after 3 attempts" {
		t.Errorf("error message = %q, want scoring client's own message", err.Error())
	}

	// Сборка уже создана, первый run сохранен, run для упавшего URL — нет
	if len(f.builds.created) != 1 {
		t.Errorf("builds created = %d, want 1 (no rollback)", len(f.builds.created))
	}
	if len(f.runs.created) != 1 {
		t.Errorf("runs created = %d, want 1 (failing url has no run)", len(f.runs.created))
	}
	if f.runs.created[0].URL() != "https://example.com/" {
		t.Errorf("persisted run url = %q, want the url that succeeded", f.runs.created[0].URL())
	}
}

func TestAutocollect_BuildStoreFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	storeErr := errors.New("insert build: connection refused")
	f.builds.err = storeErr

	_, err := f.uc.Execute(context.Background(), &dto.SiteConfigDTO{
		BuildToken: testToken,
		URLs:       []string{"https://example.com/"},
	})
	if err != storeErr {
		t.Fatalf("Execute() error = %v, want storage error passed through unchanged", err)
	}
	if len(f.scoring.calls) != 0 {
		t.Errorf("scoring calls = %d, want 0 after build persistence failure", len(f.scoring.calls))
	}
}

func TestAutocollect_RunStoreFailureAborts(t *testing.T) {
	f := newFixture(t)
	storeErr := errors.New("insert run: connection refused")
	f.runs.err = storeErr

	_, err := f.uc.Execute(context.Background(), &dto.SiteConfigDTO{
		BuildToken: testToken,
		URLs:       []string{"https://example.com/"},
	})
	if err != storeErr {
		t.Fatalf("Execute() error = %v, want storage error passed through unchanged", err)
	}
	if len(f.scoring.calls) != 1 {
		t.Errorf("scoring calls = %d, want 1 (loop aborts on first failure)", len(f.scoring.calls))
	}
}

func TestAutocollect_ProjectLookupFailurePropagates(t *testing.T) {
	f := newFixture(t)
	lookupErr := errors.New("query project by token: connection refused")
	f.projects.err = lookupErr

	_, err := f.uc.Execute(context.Background(), &dto.SiteConfigDTO{
		BuildToken: testToken,
		URLs:       []string{"https://example.com/"},
	})
	if err != lookupErr {
		t.Fatalf("Execute() error = %v, want lookup error passed through unchanged", err)
	}
}
