package overview

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/auth"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/httpx"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/shared"
)

// Handler wires the dashboard snapshot endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
	authmw  *auth.Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authmw *auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authmw: authmw}
}

// MountRoutes registers overview routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	admin := h.authmw.RequireRole(shared.RoleCompanyAdmin, shared.RolePlatformAdmin)
	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Get("/", h.snapshot)
	})
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	companyID := ident.CompanyID
	if ident.Role == shared.RolePlatformAdmin {
		companyID, _ = strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	}

	snap, err := h.service.Snapshot(r.Context(), companyID)
	if err != nil {
		h.logger.Error("load overview snapshot", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snap)
}
