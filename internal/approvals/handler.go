package approvals

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/auth"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/httpx"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/shared"
)

// Handler wires HTTP endpoints for the approval workflow.
type Handler struct {
	logger  *slog.Logger
	service *Service
	authmw  *auth.Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authmw *auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authmw: authmw}
}

// MountRoutes registers approval routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	admin := h.authmw.RequireRole(shared.RoleCompanyAdmin, shared.RolePlatformAdmin)
	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Get("/", h.list)
		r.Post("/{guardID}/approve", h.approve)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	companyID := ident.CompanyID
	if ident.Role == shared.RolePlatformAdmin {
		companyID, _ = strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	}

	flagged, err := h.service.ListFlagged(r.Context(), companyID)
	if err != nil {
		h.logger.Error("list flagged guards", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"guards": flagged})
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	guardID, err := strconv.ParseInt(chi.URLParam(r, "guardID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	scope := int64(0)
	if ident.Role == shared.RoleCompanyAdmin {
		scope = ident.CompanyID
	}

	guard, err := h.service.Approve(r.Context(), ident.UserID, guardID, scope)
	if err != nil {
		h.logger.Error("approve guard", slog.Int64("guard_id", guardID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, guard)
}
