package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Project представляет отслеживаемое приложение (Aggregate Root)
// Идентифицируется по build token при автосборе
type Project struct {
	id          string
	name        string
	slug        string
	externalURL string
	baseBranch  string
	buildToken  string
	createdAt   time.Time
}

// NewProject создает новый проект (Factory Method)
func NewProject(name, slug, externalURL, baseBranch, buildToken string) (*Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("project name is required")
	}
	if strings.TrimSpace(buildToken) == "" {
		return nil, errors.New("project build token is required")
	}
	if strings.TrimSpace(baseBranch) == "" {
		baseBranch = "master"
	}

	return &Project{
		id:          uuid.New().String(),
		name:        name,
		slug:        slug,
		externalURL: externalURL,
		baseBranch:  baseBranch,
		buildToken:  buildToken,
		createdAt:   time.Now(),
	}, nil
}

// ReconstructProject восстанавливает проект из хранилища (для Repository)
func ReconstructProject(
	id, name, slug, externalURL, baseBranch, buildToken string,
	createdAt time.Time,
) *Project {
	return &Project{
		id:          id,
		name:        name,
		slug:        slug,
		externalURL: externalURL,
		baseBranch:  baseBranch,
		buildToken:  buildToken,
		createdAt:   createdAt,
	}
}

// ID возвращает идентификатор проекта
func (p *Project) ID() string {
	return p.id
}

// Name возвращает имя проекта
func (p *Project) Name() string {
	return p.name
}

// Slug возвращает URL-safe имя проекта
func (p *Project) Slug() string {
	return p.slug
}

// ExternalURL возвращает внешний URL проекта (репозиторий)
func (p *Project) ExternalURL() string {
	return p.externalURL
}

// BaseBranch возвращает базовую ветку проекта
func (p *Project) BaseBranch() string {
	return p.baseBranch
}

// BuildToken возвращает build token проекта
func (p *Project) BuildToken() string {
	return p.buildToken
}

// CreatedAt возвращает время создания проекта
func (p *Project) CreatedAt() time.Time {
	return p.createdAt
}
