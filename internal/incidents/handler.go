package incidents

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/auth"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/httpx"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/shared"
)

// GuardDirectory resolves the guard profile behind an authenticated user.
type GuardDirectory interface {
	FindIDByUserID(ctx context.Context, userID int64) (int64, error)
}

// Handler wires HTTP endpoints for incident reports.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guards    GuardDirectory
	authmw    *auth.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guards GuardDirectory, authmw *auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guards: guards, authmw: authmw, validator: validator.New()}
}

// MountRoutes registers incident routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	guard := h.authmw.RequireRole(shared.RoleGuard)
	r.Group(func(r chi.Router) {
		r.Use(guard)
		r.Post("/", h.report)
		r.Get("/mine", h.mine)
	})

	admin := h.authmw.RequireRole(shared.RoleCompanyAdmin, shared.RolePlatformAdmin)
	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
		r.Post("/{id}/status", h.transition)
	})
}

type reportRequest struct {
	ShiftID     *int64   `json:"shift_id"`
	PropertyID  int64    `json:"property_id" validate:"required"`
	Severity    string   `json:"severity" validate:"required,oneof=low medium high"`
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=4000"`
	PhotoKeys   []string `json:"photo_keys" validate:"max=10"`
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	guardID, err := h.guards.FindIDByUserID(r.Context(), ident.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	var req reportRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	inc, err := h.service.Report(r.Context(), Incident{
		ShiftID:     req.ShiftID,
		GuardID:     guardID,
		PropertyID:  req.PropertyID,
		Severity:    req.Severity,
		Title:       req.Title,
		Description: req.Description,
		PhotoKeys:   req.PhotoKeys,
	})
	if err != nil {
		h.logger.Error("report incident", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inc)
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	guardID, err := h.guards.FindIDByUserID(r.Context(), ident.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	incidents, err := h.service.ListByGuard(r.Context(), guardID, limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"incidents": incidents})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	pagination := shared.NewPagination(page, perPage, 0)

	incidents, total, err := h.service.List(r.Context(), reviewScope(ident, r), r.URL.Query().Get("status"), pagination.PerPage, (pagination.Page-1)*pagination.PerPage)
	if err != nil {
		h.logger.Error("list incidents", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"incidents":  incidents,
		"pagination": shared.NewPagination(pagination.Page, pagination.PerPage, total),
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	inc, err := h.service.Get(r.Context(), id, companyScope(ident))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inc)
}

type transitionRequest struct {
	Status string `json:"status" validate:"required,oneof=reviewed closed"`
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req transitionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	inc, err := h.service.Transition(r.Context(), id, req.Status, ident, companyScope(ident))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inc)
}

// reviewScope picks the effective company for listings: company admins are
// pinned to their own company, platform admins choose via query parameter.
func reviewScope(ident *shared.Identity, r *http.Request) int64 {
	if ident.Role == shared.RoleCompanyAdmin {
		return ident.CompanyID
	}
	id, _ := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	return id
}

func companyScope(ident *shared.Identity) int64 {
	if ident.Role == shared.RoleCompanyAdmin {
		return ident.CompanyID
	}
	return 0
}
