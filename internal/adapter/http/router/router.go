package router

import (
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/http/handler"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Options carries everything NewRouter wires together.
type Options struct {
	ServiceName    string
	CORSOrigin     string
	RequestTimeout time.Duration

	Users    *handler.UserHandler
	Listings *handler.ListingHandler
	Reviews  *handler.ReviewHandler

	Auth    func(http.Handler) http.Handler
	Metrics *metrics.MetricsManager
	Logger  *logger.Logger
}

// NewRouter builds the HTTP surface of the service.
func NewRouter(opts Options) *chi.Mux {
	mux := chi.NewRouter()

	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.Tracing(opts.ServiceName))
	mux.Use(middleware.RequestLogger(opts.Logger))
	mux.Use(middleware.Metrics(opts.Metrics))
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{opts.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if opts.RequestTimeout > 0 {
		mux.Use(chimw.Timeout(opts.RequestTimeout))
	}

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	SetupUserRoutes(mux, opts.Users, opts.Auth)
	SetupListingRoutes(mux, opts.Listings, opts.Auth)
	SetupReviewRoutes(mux, opts.Reviews, opts.Auth)
	return mux
}
