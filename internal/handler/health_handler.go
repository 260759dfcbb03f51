package handler

import "net/http"

// HealthCheck godoc
// @Summary Проверка доступности API
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health-check [get]
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "API server is running",
	})
}
