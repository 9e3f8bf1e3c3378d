package handler

import (
	"net/http"

	"github.com/Rrens/deskflow/internal/stubserver/repository/sqlite"
	"github.com/Rrens/deskflow/internal/stubserver/response"
)

// HealthCheck reports liveness
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{"status": "ok"})
}

// ReadyCheck reports readiness including database connectivity
func ReadyCheck(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.SQL.PingContext(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		response.OK(w, map[string]string{"status": "ready"})
	}
}
