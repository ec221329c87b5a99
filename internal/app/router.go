package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/approvals"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/auth"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/checkpoints"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/companies"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/geofence"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/guards"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/incidents"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/observability"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/overview"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/properties"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/shifts"
	"github.com/Aminhimat/sentry-command-link-sub001/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	AuthHandler        *auth.Handler
	GeofenceHandler    *geofence.Handler
	ApprovalsHandler   *approvals.Handler
	GuardsHandler      *guards.Handler
	CompaniesHandler   *companies.Handler
	PropertiesHandler  *properties.Handler
	CheckpointsHandler *checkpoints.Handler
	ShiftsHandler      *shifts.Handler
	IncidentsHandler   *incidents.Handler
	OverviewHandler    *overview.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with service defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", params.AuthHandler.MountRoutes)
		api.Route("/geofence", params.GeofenceHandler.MountRoutes)
		api.Route("/approvals", params.ApprovalsHandler.MountRoutes)
		api.Route("/guards", params.GuardsHandler.MountRoutes)
		api.Route("/companies", params.CompaniesHandler.MountRoutes)
		api.Route("/properties", params.PropertiesHandler.MountRoutes)
		api.Route("/checkpoints", params.CheckpointsHandler.MountRoutes)
		api.Route("/shifts", params.ShiftsHandler.MountRoutes)
		api.Route("/incidents", params.IncidentsHandler.MountRoutes)
		api.Route("/overview", params.OverviewHandler.MountRoutes)
		if params.JobHandler != nil {
			api.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
