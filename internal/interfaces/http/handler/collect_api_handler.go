package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dreschagin/perfci/internal/application/dto"
	"github.com/dreschagin/perfci/internal/application/usecase"
	"github.com/dreschagin/perfci/internal/interfaces/http/middleware"
	"github.com/dreschagin/perfci/pkg/logger"
)

const maxCollectPayloadBytes = 1 << 20

// CollectAPIHandler обрабатывает ручной запуск автосбора для одного сайта
type CollectAPIHandler struct {
	autocollectUC *usecase.AutocollectUseCase
	logger        *logger.Logger
}

// NewCollectAPIHandler создает новый handler
func NewCollectAPIHandler(autocollectUC *usecase.AutocollectUseCase, log *logger.Logger) *CollectAPIHandler {
	return &CollectAPIHandler{
		autocollectUC: autocollectUC,
		logger:        log,
	}
}

// Collect выполняет цикл автосбора для сайта из тела запроса
func (h *CollectAPIHandler) Collect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCollectPayloadBytes))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var site dto.SiteConfigDTO
	if err := json.Unmarshal(body, &site); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	build, err := h.autocollectUC.Execute(r.Context(), &site)
	if err != nil {
		h.writeCollectError(w, r, &site, err)
		return
	}

	numberOfRuns := site.NumberOfRuns
	if numberOfRuns <= 0 {
		numberOfRuns = usecase.DefaultNumberOfRuns
	}

	h.logger.Info("Manual collect completed",
		"site", site.Name,
		"build_id", build.ID(),
	)

	middleware.WriteJSON(w, http.StatusCreated, map[string]any{
		"build":     dto.FromBuild(build),
		"run_count": numberOfRuns * len(site.URLs),
	})
}

func (h *CollectAPIHandler) writeCollectError(w http.ResponseWriter, r *http.Request, site *dto.SiteConfigDTO, err error) {
	var tokenErr *usecase.InvalidTokenError

	status := http.StatusBadGateway
	switch {
	case errors.As(err, &tokenErr):
		status = http.StatusUnauthorized
	case errors.Is(err, usecase.ErrNoURLs):
		status = http.StatusUnprocessableEntity
	}

	h.logger.Warn("Manual collect failed",
		"site", site.Name,
		"status", status,
		"remote_addr", r.RemoteAddr,
		"error", err.Error(),
	)

	middleware.WriteJSON(w, status, map[string]any{
		"error": err.Error(),
	})
}
