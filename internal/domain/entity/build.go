package entity

import (
	"errors"
	"strings"
	"time"
)

// Lifecycle представляет состояние жизненного цикла сборки
type Lifecycle string

const (
	// LifecycleUnsealed — сборка принимает новые runs
	LifecycleUnsealed Lifecycle = "unsealed"
	// LifecycleSealed — сборка закрыта для новых runs
	LifecycleSealed Lifecycle = "sealed"
)

// Build представляет одну партию измерений для проекта и ветки (Aggregate Root)
// Создается один раз за цикл автосбора и больше не изменяется этим сервисом
type Build struct {
	id               string
	projectID        string
	branch           string
	commitHash       string
	commitMessage    string
	author           string
	avatarURL        string
	externalBuildURL string
	lifecycle        Lifecycle
	committedAt      time.Time
	runAt            time.Time
}

// NewBuild создает новую сборку (Factory Method)
// Идентификатор назначается хранилищем при сохранении
func NewBuild(
	projectID, branch, commitHash, commitMessage, author, avatarURL, externalBuildURL string,
	committedAt, runAt time.Time,
) (*Build, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, errors.New("build project id is required")
	}
	if strings.TrimSpace(branch) == "" {
		return nil, errors.New("build branch is required")
	}
	if strings.TrimSpace(commitHash) == "" {
		return nil, errors.New("build commit hash is required")
	}

	return &Build{
		projectID:        projectID,
		branch:           branch,
		commitHash:       commitHash,
		commitMessage:    commitMessage,
		author:           author,
		avatarURL:        avatarURL,
		externalBuildURL: externalBuildURL,
		lifecycle:        LifecycleUnsealed,
		committedAt:      committedAt,
		runAt:            runAt,
	}, nil
}

// ReconstructBuild восстанавливает сборку из хранилища (для Repository)
func ReconstructBuild(
	id, projectID, branch, commitHash, commitMessage, author, avatarURL, externalBuildURL string,
	lifecycle Lifecycle,
	committedAt, runAt time.Time,
) *Build {
	return &Build{
		id:               id,
		projectID:        projectID,
		branch:           branch,
		commitHash:       commitHash,
		commitMessage:    commitMessage,
		author:           author,
		avatarURL:        avatarURL,
		externalBuildURL: externalBuildURL,
		lifecycle:        lifecycle,
		committedAt:      committedAt,
		runAt:            runAt,
	}
}

// WithID возвращает копию сборки с назначенным идентификатором
func (b *Build) WithID(id string) *Build {
	copied := *b
	copied.id = id
	return &copied
}

// ID возвращает идентификатор сборки
func (b *Build) ID() string {
	return b.id
}

// ProjectID возвращает идентификатор проекта
func (b *Build) ProjectID() string {
	return b.projectID
}

// Branch возвращает ветку сборки
func (b *Build) Branch() string {
	return b.branch
}

// CommitHash возвращает hash коммита
func (b *Build) CommitHash() string {
	return b.commitHash
}

// CommitMessage возвращает сообщение коммита
func (b *Build) CommitMessage() string {
	return b.commitMessage
}

// Author возвращает автора коммита
func (b *Build) Author() string {
	return b.author
}

// AvatarURL возвращает URL аватара автора
func (b *Build) AvatarURL() string {
	return b.avatarURL
}

// ExternalBuildURL возвращает внешний URL сборки
func (b *Build) ExternalBuildURL() string {
	return b.externalBuildURL
}

// Lifecycle возвращает состояние жизненного цикла сборки
func (b *Build) Lifecycle() Lifecycle {
	return b.lifecycle
}

// CommittedAt возвращает время коммита
func (b *Build) CommittedAt() time.Time {
	return b.committedAt
}

// RunAt возвращает время запуска сборки
func (b *Build) RunAt() time.Time {
	return b.runAt
}

// IsSealed проверяет, закрыта ли сборка для новых runs
func (b *Build) IsSealed() bool {
	return b.lifecycle == LifecycleSealed
}

// Age возвращает возраст сборки с момента запуска
func (b *Build) Age() time.Duration {
	return time.Since(b.runAt)
}
