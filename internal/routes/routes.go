package routes

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/templui/postline/internal/app"
	"github.com/templui/postline/internal/handler"
	"github.com/templui/postline/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	posts := handler.NewPostHandler(app.PostService, app.Cfg)
	health := handler.NewHealthHandler(app.DB)

	mux := http.NewServeMux()

	// ============================================================================
	// POSTS
	// ============================================================================

	mux.HandleFunc("POST /posts", posts.Create)
	mux.HandleFunc("GET /posts", posts.List)
	mux.HandleFunc("GET /posts/{id}", posts.Get)
	mux.HandleFunc("DELETE /posts/{id}", posts.Delete)

	// Uploads (rate limited per IP)
	uploadLimit := middleware.RateLimit(app.UploadLimiter)
	mux.Handle("POST /upload", uploadLimit(http.HandlerFunc(posts.Upload)))

	// ============================================================================
	// OPERATIONS
	// ============================================================================

	mux.HandleFunc("GET /health", health.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Recover,
		middleware.RequestLogging,
		middleware.Metrics,
	)
}
