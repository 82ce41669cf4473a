package controllers

import (
	"net/http"
	"time"

	"resumerefresh/internal/delivery/http/helpers"
	"resumerefresh/internal/domain"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
	ServerURL   string `json:"serverUrl"`
}

// IndexResponse is the body of GET /.
type IndexResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
	ServerURL string            `json:"serverUrl"`
}

// HealthController serves liveness and discovery endpoints.
type HealthController struct {
	Environment string
	ServerURL   string
	now         func() time.Time
}

// NewHealthController creates a HealthController.
func NewHealthController(environment, serverURL string) *HealthController {
	return &HealthController{Environment: environment, ServerURL: serverURL, now: time.Now}
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} controllers.HealthResponse
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:      "OK",
		Timestamp:   c.now().UTC().Format(time.RFC3339),
		Environment: c.Environment,
		ServerURL:   c.ServerURL,
	})
}

// Index godoc
// @Summary List the service endpoints
// @Tags health
// @Produce json
// @Success 200 {object} controllers.IndexResponse
// @Router / [get]
func (c *HealthController) Index(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, IndexResponse{
		Message: "Resume refresh mailer API",
		Endpoints: map[string]string{
			"health":         "/health",
			"ampSubmit":      domain.AMPSubmitPath,
			"submissions":    "/api/amp/submissions",
			"webForm":        domain.FallbackFormPath,
			"testEmail":      "/api/test/send-test",
			"testConnection": "/api/test/test-connection",
			"sendBulk":       "/api/admin/send-bulk",
			"metrics":        "/metrics",
			"swagger":        "/swagger/",
		},
		ServerURL: c.ServerURL,
	})
}
