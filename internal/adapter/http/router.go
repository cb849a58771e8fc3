// Package http exposes the crop marketplace over a chi router.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/adapter/http/middleware"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/platform/logger"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/platform/metrics"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RouterDeps collects what NewRouter wires. Limiter, Metrics and Health may be nil.
type RouterDeps struct {
	Crops          CropService
	Resolver       middleware.PrincipalResolver
	Limiter        middleware.Limiter
	Health         Pinger
	Metrics        *metrics.MetricsManager
	Logger         *logger.Logger
	AllowedOrigins []string
	ServiceName    string
	ImageUploads   bool
}

// NewRouter builds the HTTP handler with tracing and CORS on the outside.
func NewRouter(d RouterDeps) http.Handler {
	log := d.Logger.Named("HTTP")
	resp := &responder{logger: log, metrics: d.Metrics}
	h := &CropHandler{crops: d.Crops, health: d.Health, resp: resp}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AccessLog(log, d.Metrics))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "route not found", RequestID: middleware.RequestIDFromContext(req.Context())})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", RequestID: middleware.RequestIDFromContext(req.Context())})
	})

	r.Get("/", h.Root)
	r.Get("/healthz", h.Health)
	r.Get("/api/crops", h.ListCrops)
	r.Get("/api/crops/{id}", h.GetCrop)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(d.Resolver, resp.writeError))

		r.Get("/api/my-interests", h.MyInterests)
		r.Get("/api/my-posts", h.MyPosts)

		r.Group(func(r chi.Router) {
			if d.Limiter != nil {
				r.Use(middleware.RateLimit(d.Limiter, resp.writeError, log))
			}
			r.Post("/api/crops", h.CreateCrop)
			r.Put("/api/crops/{id}", h.UpdateCrop)
			r.Delete("/api/crops/{id}", h.DeleteCrop)
			r.Post("/api/crops/{id}/interests", h.CreateInterest)
			r.Put("/api/crops/{cropId}/interests/{interestId}", h.DecideInterest)
			if d.ImageUploads {
				r.Post("/api/crops/{id}/image", h.UploadImage)
			}
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "Retry-After"},
		MaxAge:         600,
	})

	serviceName := d.ServiceName
	if serviceName == "" {
		serviceName = "crop-service"
	}
	return c.Handler(otelhttp.NewHandler(r, serviceName,
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			return req.Method + " " + req.URL.Path
		}),
	))
}

// NewServer wraps handler with the timeouts used in production.
func NewServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
