package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/dreschagin/perfci/internal/application/dto"
	"github.com/dreschagin/perfci/internal/application/port"
	"github.com/dreschagin/perfci/internal/domain/entity"
	"github.com/dreschagin/perfci/internal/domain/repository"
	"github.com/dreschagin/perfci/internal/domain/service"
)

// DefaultNumberOfRuns — количество повторов на URL, если сайт его не задал
const DefaultNumberOfRuns = 3

// ErrNoURLs возвращается, когда у сайта не настроен ни один URL
var ErrNoURLs = errors.New("No URLs set")

// InvalidTokenError возвращается, когда build token не резолвится в проект.
// Сообщение дословно содержит переданный токен
type InvalidTokenError struct {
	Token string
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("Invalid build token %q", e.Token)
}

// AutocollectUseCase координирует один цикл автосбора для сайта:
// резолвит проект по токену, создает синтетическую сборку и последовательно
// собирает отчеты scoring-сервиса для каждой пары (URL, повтор)
type AutocollectUseCase struct {
	projects    repository.ProjectRepository
	builds      repository.BuildRepository
	runs        repository.RunRepository
	scoring     port.ScoringClient
	synthesizer *service.BuildSynthesizer
}

// NewAutocollectUseCase создает новый use case
func NewAutocollectUseCase(
	projects repository.ProjectRepository,
	builds repository.BuildRepository,
	runs repository.RunRepository,
	scoring port.ScoringClient,
	synthesizer *service.BuildSynthesizer,
) *AutocollectUseCase {
	return &AutocollectUseCase{
		projects:    projects,
		builds:      builds,
		runs:        runs,
		scoring:     scoring,
		synthesizer: synthesizer,
	}
}

// Execute выполняет цикл автосбора для сайта и возвращает созданную сборку.
// Ошибки хранилища и scoring-сервиса пробрасываются без оборачивания;
// retry, логирование и события — ответственность вызывающего слоя.
// Уже созданные Build/Runs при ошибке в середине цикла не откатываются
func (uc *AutocollectUseCase) Execute(ctx context.Context, site *dto.SiteConfigDTO) (*entity.Build, error) {
	// 1. Резолвим проект по токену. Проверка токена строго перед проверкой URL
	project, err := uc.projects.FindByToken(ctx, site.BuildToken)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, &InvalidTokenError{Token: site.BuildToken}
	}

	// 2. Валидация URL
	if len(site.URLs) == 0 {
		return nil, ErrNoURLs
	}

	// 3. Синтез метаданных сборки
	branch := site.Branch
	if branch == "" {
		branch = project.BaseBranch()
	}

	build, err := uc.synthesizer.Synthesize(project.ID(), branch, site.URLs[0])
	if err != nil {
		return nil, err
	}

	// 4. Сохраняем сборку, получаем идентификатор
	created, err := uc.builds.Create(ctx, build)
	if err != nil {
		return nil, err
	}

	numberOfRuns := site.NumberOfRuns
	if numberOfRuns <= 0 {
		numberOfRuns = DefaultNumberOfRuns
	}

	// 5. Fan-out: строго последовательно, повтор — внешний цикл, URL — внутренний.
	// Порядок создания runs детерминирован и воспроизводим
	for repeat := 0; repeat < numberOfRuns; repeat++ {
		for _, url := range site.URLs {
			lhr, err := uc.scoring.RunUntilSuccess(ctx, url)
			if err != nil {
				return nil, err
			}

			run, err := entity.NewRun(project.ID(), created.ID(), url, lhr)
			if err != nil {
				return nil, err
			}

			if _, err := uc.runs.Create(ctx, run); err != nil {
				return nil, err
			}
		}
	}

	return created, nil
}
