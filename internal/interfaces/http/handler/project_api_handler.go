package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dreschagin/perfci/internal/application/usecase"
	"github.com/dreschagin/perfci/internal/interfaces/http/middleware"
	"github.com/dreschagin/perfci/pkg/logger"
)

const maxBuildListLimit = 100

// ProjectAPIHandler обрабатывает чтение проектов, сборок и runs
type ProjectAPIHandler struct {
	listProjectsUC *usecase.ListProjectsUseCase
	listBuildsUC   *usecase.ListBuildsCachedUseCase
	getBuildRunsUC *usecase.GetBuildRunsUseCase
	logger         *logger.Logger
}

// NewProjectAPIHandler создает новый handler
func NewProjectAPIHandler(
	listProjectsUC *usecase.ListProjectsUseCase,
	listBuildsUC *usecase.ListBuildsCachedUseCase,
	getBuildRunsUC *usecase.GetBuildRunsUseCase,
	log *logger.Logger,
) *ProjectAPIHandler {
	return &ProjectAPIHandler{
		listProjectsUC: listProjectsUC,
		listBuildsUC:   listBuildsUC,
		getBuildRunsUC: getBuildRunsUC,
		logger:         log,
	}
}

// ListProjects возвращает все отслеживаемые проекты
func (h *ProjectAPIHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	projects, err := h.listProjectsUC.Execute(r.Context())
	if err != nil {
		h.logger.Error("Failed to list projects", err)
		http.Error(w, "Failed to fetch projects", http.StatusInternalServerError)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"projects": projects,
	})
}

// ListBuilds возвращает сборки проекта
func (h *ProjectAPIHandler) ListBuilds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	projectID := strings.TrimSpace(r.URL.Query().Get("project_id"))
	if projectID == "" {
		http.Error(w, "Missing required parameter: project_id", http.StatusBadRequest)
		return
	}

	limit := usecase.DefaultBuildListLimit
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	if limit > maxBuildListLimit {
		limit = maxBuildListLimit
	}

	builds, err := h.listBuildsUC.Execute(r.Context(), projectID, limit)
	if err != nil {
		if errors.Is(err, usecase.ErrProjectNotFound) {
			http.Error(w, "Project not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to list builds", err, "project_id", projectID)
		http.Error(w, "Failed to fetch builds", http.StatusInternalServerError)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"builds": builds,
	})
}

// GetBuildRuns возвращает сборку вместе с ее runs
func (h *ProjectAPIHandler) GetBuildRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	buildID := strings.TrimSpace(r.URL.Query().Get("build_id"))
	if buildID == "" {
		http.Error(w, "Missing required parameter: build_id", http.StatusBadRequest)
		return
	}

	result, err := h.getBuildRunsUC.Execute(r.Context(), buildID)
	if err != nil {
		if errors.Is(err, usecase.ErrBuildNotFound) {
			http.Error(w, "Build not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to fetch build runs", err, "build_id", buildID)
		http.Error(w, "Failed to fetch build runs", http.StatusInternalServerError)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}
