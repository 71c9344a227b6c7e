package controllers

import (
	"net/http"
	"time"

	"go-bikemart/utils"
)

// HealthController reports uptime and basic status.
type HealthController struct {
	startedAt time.Time
}

// NewHealthController creates a health endpoint handler.
func NewHealthController(startedAt time.Time) *HealthController {
	return &HealthController{startedAt: startedAt}
}

// Handle serves the liveness check.
func (hc *HealthController) Handle(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(hc.startedAt).Truncate(time.Second).String(),
	})
}
