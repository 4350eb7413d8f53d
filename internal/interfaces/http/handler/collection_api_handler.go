package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dreschagin/perfci/internal/collection"
	"github.com/dreschagin/perfci/internal/interfaces/http/middleware"
	"github.com/dreschagin/perfci/pkg/logger"
)

// CollectionAPIHandler отдает состояние runner и запускает цикл по запросу
type CollectionAPIHandler struct {
	runner     *collection.Runner
	runTimeout time.Duration
	logger     *logger.Logger
}

// NewCollectionAPIHandler создает новый handler
func NewCollectionAPIHandler(runner *collection.Runner, runTimeout time.Duration, log *logger.Logger) *CollectionAPIHandler {
	if runTimeout <= 0 {
		runTimeout = 15 * time.Minute
	}

	return &CollectionAPIHandler{
		runner:     runner,
		runTimeout: runTimeout,
		logger:     log,
	}
}

// Status возвращает snapshot состояния runner
func (h *CollectionAPIHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, h.runner.Snapshot())
}

// RunNow запускает внеочередной цикл автосбора
func (h *CollectionAPIHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.runTimeout)
	defer cancel()

	summary, err := h.runner.RunOnce(ctx)
	if err != nil {
		middleware.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "error",
			"error":  err.Error(),
		})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, summary)
}
