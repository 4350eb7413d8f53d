package dto

import (
	"time"

	"github.com/dreschagin/perfci/internal/domain/entity"
)

// BuildEventType представляет тип события сборки
type BuildEventType string

const (
	// BuildEventCollected — цикл автосбора для сайта завершился успешно
	BuildEventCollected BuildEventType = "build.collected"
	// BuildEventFailed — цикл автосбора для сайта завершился ошибкой
	BuildEventFailed BuildEventType = "build.failed"
)

// BuildEventDTO представляет событие автосбора
// Используется для передачи через WebSocket и message broker
type BuildEventDTO struct {
	Type      BuildEventType `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Site      string         `json:"site,omitempty"`
	Project   *ProjectDTO    `json:"project,omitempty"`
	Build     *BuildDTO      `json:"build,omitempty"`
	RunCount  int            `json:"run_count,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// NewBuildCollectedEvent создает событие успешного автосбора
func NewBuildCollectedEvent(site string, project *entity.Project, build *entity.Build, runCount int) *BuildEventDTO {
	event := &BuildEventDTO{
		Type:      BuildEventCollected,
		Timestamp: time.Now(),
		Site:      site,
		RunCount:  runCount,
	}
	if project != nil {
		event.Project = FromProject(project)
	}
	if build != nil {
		event.Build = FromBuild(build)
	}
	return event
}

// NewBuildFailedEvent создает событие неудачного автосбора
func NewBuildFailedEvent(site string, err error) *BuildEventDTO {
	event := &BuildEventDTO{
		Type:      BuildEventFailed,
		Timestamp: time.Now(),
		Site:      site,
	}
	if err != nil {
		event.Error = err.Error()
	}
	return event
}
