package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"resumerefresh/internal/delivery/http/controllers"
	"resumerefresh/internal/delivery/http/middleware"
	"resumerefresh/internal/domain"
	"resumerefresh/internal/metrics"
)

// RouterConfig carries the cross-cutting pieces the router wires around controllers.
type RouterConfig struct {
	Logger      *slog.Logger
	AMPPolicy   *middleware.AMPOriginPolicy
	CORSOrigins []string
}

// NewRouter initializes the HTTP router with all application routes.
// The AMP submit endpoint bypasses the generic CORS layer because AMP
// preflights and responses follow their own header contract.
func NewRouter(
	cfg RouterConfig,
	submissionController *controllers.SubmissionController,
	formController *controllers.FormController,
	dispatchController *controllers.DispatchController,
	healthController *controllers.HealthController,
) http.Handler {
	api := http.NewServeMux()

	// Submissions
	api.HandleFunc("GET /api/amp/submissions", submissionController.List)

	// Hosted fallback form
	api.HandleFunc("GET "+domain.FallbackFormPath, formController.Show)
	api.HandleFunc("POST "+domain.FallbackFormPath, formController.Submit)

	// Outbound trigger
	api.HandleFunc("POST /api/test/send-test", dispatchController.SendTest)
	api.HandleFunc("GET /api/test/test-connection", dispatchController.TestConnection)
	api.HandleFunc("POST /api/admin/send-bulk", dispatchController.SendBulk)

	// Health, metrics
	api.HandleFunc("GET /health", healthController.Health)
	api.HandleFunc("GET /{$}", healthController.Index)
	api.Handle("GET /metrics", metrics.Handler())

	// Swagger
	api.Handle("/swagger/", httpSwagger.WrapHandler)

	mux := http.NewServeMux()
	amp := middleware.AMPCORS(cfg.AMPPolicy, cfg.Logger, submissionController.SubmitAMP)
	mux.HandleFunc("POST "+domain.AMPSubmitPath, amp)
	mux.HandleFunc("OPTIONS "+domain.AMPSubmitPath, amp)
	mux.Handle("/", middleware.CORS(cfg.CORSOrigins, api))

	return middleware.LoggingMiddleware(cfg.Logger, mux)
}
