package entity

import (
	"errors"
	"strings"
	"time"
)

// Run представляет одно измерение одного URL внутри сборки
// Создается один раз и больше не изменяется
type Run struct {
	id        string
	projectID string
	buildID   string
	url       string
	lhr       string
	createdAt time.Time
}

// NewRun создает новый run (Factory Method)
// Идентификатор назначается хранилищем при сохранении
func NewRun(projectID, buildID, url, lhr string) (*Run, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, errors.New("run project id is required")
	}
	if strings.TrimSpace(buildID) == "" {
		return nil, errors.New("run build id is required")
	}
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("run url is required")
	}

	return &Run{
		projectID: projectID,
		buildID:   buildID,
		url:       url,
		lhr:       lhr,
		createdAt: time.Now(),
	}, nil
}

// ReconstructRun восстанавливает run из хранилища (для Repository)
func ReconstructRun(id, projectID, buildID, url, lhr string, createdAt time.Time) *Run {
	return &Run{
		id:        id,
		projectID: projectID,
		buildID:   buildID,
		url:       url,
		lhr:       lhr,
		createdAt: createdAt,
	}
}

// WithID возвращает копию run с назначенным идентификатором
func (r *Run) WithID(id string) *Run {
	copied := *r
	copied.id = id
	return &copied
}

// ID возвращает идентификатор run
func (r *Run) ID() string {
	return r.id
}

// ProjectID возвращает идентификатор проекта
func (r *Run) ProjectID() string {
	return r.projectID
}

// BuildID возвращает идентификатор сборки
func (r *Run) BuildID() string {
	return r.buildID
}

// URL возвращает измеренный URL
func (r *Run) URL() string {
	return r.url
}

// LHR возвращает сырой отчет scoring-сервиса
func (r *Run) LHR() string {
	return r.lhr
}

// CreatedAt возвращает время создания записи
func (r *Run) CreatedAt() time.Time {
	return r.createdAt
}
