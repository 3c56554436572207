package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/postline/internal/db"
)

type HealthHandler struct {
	db *sqlx.DB
}

func NewHealthHandler(database *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: database}
}

// Health reports whether the database answers a ping
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := db.Ping(r.Context(), h.db, 2*time.Second); err != nil {
		slog.Warn("health check failed", "error", err)
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
