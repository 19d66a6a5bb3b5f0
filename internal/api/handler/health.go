package handler

import (
	"net/http"

	"github.com/planbird/planbird/internal/api/response"
	"github.com/planbird/planbird/internal/repository/mongodb"
	"github.com/planbird/planbird/internal/repository/postgres"
	"github.com/planbird/planbird/internal/repository/redis"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including backing store connectivity
func ReadyCheck(db *postgres.DB, mongo *mongodb.Client, cache *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "database not ready")
			return
		}

		if mongo != nil {
			if err := mongo.Ping(r.Context()); err != nil {
				response.Error(w, http.StatusServiceUnavailable, "history store not ready")
				return
			}
		}

		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				response.Error(w, http.StatusServiceUnavailable, "cache not ready")
				return
			}
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}
