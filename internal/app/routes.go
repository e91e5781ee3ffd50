package app

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"

	"pendler.kildedal.dk/internal/middleware"
)

// Routes registers the HTTP surface and returns the final handler.
//
//   - GET /              the visualization page
//   - GET /api/trips     rendering-ready trips between two coordinate pairs
//   - GET /v1/healthcheck readiness and version info
//   - GET /metrics       Prometheus exposition (cached)
//
// The router is wrapped with Sentry reporting and the security/caching
// headers; the no-store header the middleware adds is what keeps trip
// responses from being reused stale.
func (app *Application) Routes(ctx context.Context) http.Handler {
	router := httprouter.New()

	router.HandlerFunc(http.MethodGet, "/", app.indexHandler)
	router.HandlerFunc(http.MethodGet, "/api/trips", app.tripsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)
	router.Handler(http.MethodGet, "/metrics", middleware.NewCachedPromHandler(ctx, prometheus.DefaultGatherer, 10*time.Second))

	handler := middleware.SentryMiddleware(router)
	return middleware.SecurityHeaders(handler)
}
