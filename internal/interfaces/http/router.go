package http

import (
	"net/http"
	"time"

	"github.com/dreschagin/perfci/internal/collection"
	"github.com/dreschagin/perfci/internal/interfaces/http/handler"
	"github.com/dreschagin/perfci/internal/interfaces/http/middleware"
	"github.com/dreschagin/perfci/pkg/config"
	"github.com/dreschagin/perfci/pkg/logger"
)

// Router настраивает маршруты приложения
type Router struct {
	mux                  *http.ServeMux
	collectAPIHandler    *handler.CollectAPIHandler
	projectAPIHandler    *handler.ProjectAPIHandler
	collectionAPIHandler *handler.CollectionAPIHandler
	authAPIHandler       *handler.AuthAPIHandler
	websocketHandler     *handler.WebSocketHandler
	runner               *collection.Runner
	security             config.SecurityConfig
	logger               *logger.Logger
}

// NewRouter создает новый router
func NewRouter(
	collectAPIHandler *handler.CollectAPIHandler,
	projectAPIHandler *handler.ProjectAPIHandler,
	collectionAPIHandler *handler.CollectionAPIHandler,
	authAPIHandler *handler.AuthAPIHandler,
	websocketHandler *handler.WebSocketHandler,
	runner *collection.Runner,
	security config.SecurityConfig,
	logger *logger.Logger,
) *Router {
	return &Router{
		mux:                  http.NewServeMux(),
		collectAPIHandler:    collectAPIHandler,
		projectAPIHandler:    projectAPIHandler,
		collectionAPIHandler: collectionAPIHandler,
		authAPIHandler:       authAPIHandler,
		websocketHandler:     websocketHandler,
		runner:               runner,
		security:             security,
		logger:               logger,
	}
}

// Setup настраивает все маршруты
func (rt *Router) Setup() http.Handler {
	// Health endpoints are intentionally unauthenticated for probes.
	rt.mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	rt.mux.HandleFunc("/readyz", rt.readyz)

	authMiddleware := middleware.Auth(middleware.AuthConfig{
		Enabled:     rt.security.AuthEnabled,
		BearerToken: rt.security.AuthToken,
	}, rt.logger)

	rateLimiter := middleware.NewIPRateLimiter(
		float64(rt.security.RateLimitPerMinute)/60.0,
		rt.security.RateLimitPerMinute,
	)
	rateLimit := middleware.RateLimit(rateLimiter)

	// WebSocket
	rt.mux.Handle("/ws", authMiddleware(http.HandlerFunc(rt.websocketHandler.HandleConnection)))

	// API endpoints
	rt.mux.HandleFunc("/api/v1/auth/login", rt.authAPIHandler.Login)
	rt.mux.HandleFunc("/api/v1/auth/logout", rt.authAPIHandler.Logout)
	rt.mux.HandleFunc("/api/v1/auth/status", rt.authAPIHandler.Status)

	rt.mux.Handle("/api/v1/collect", authMiddleware(rateLimit(http.HandlerFunc(rt.collectAPIHandler.Collect))))
	rt.mux.Handle("/api/v1/projects", authMiddleware(http.HandlerFunc(rt.projectAPIHandler.ListProjects)))
	rt.mux.Handle("/api/v1/builds", authMiddleware(http.HandlerFunc(rt.projectAPIHandler.ListBuilds)))
	rt.mux.Handle("/api/v1/runs", authMiddleware(http.HandlerFunc(rt.projectAPIHandler.GetBuildRuns)))
	rt.mux.Handle("/api/v1/collection/status", authMiddleware(http.HandlerFunc(rt.collectionAPIHandler.Status)))
	rt.mux.Handle("/api/v1/collection/run", authMiddleware(http.HandlerFunc(rt.collectionAPIHandler.RunNow)))

	// Применяем middleware
	var h http.Handler = rt.mux
	h = middleware.Compression(h)
	h = middleware.Logger(rt.logger)(h)
	h = middleware.Recovery(rt.logger)(h)

	return h
}

func (rt *Router) readyz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if rt.runner == nil {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}

	snapshot := rt.runner.Snapshot()
	if !snapshot.LastRunAt.IsZero() && time.Since(snapshot.LastRunAt) > snapshot.Interval*3 {
		http.Error(w, "not ready: stale collection cycle", http.StatusServiceUnavailable)
		return
	}
	if snapshot.LastError != "" {
		http.Error(w, "not ready: last cycle failed", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
