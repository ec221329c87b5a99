package guards

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/auth"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/httpx"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/shared"
)

// Handler wires HTTP endpoints for guard profile management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	authmw    *auth.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authmw *auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authmw: authmw, validator: validator.New()}
}

// MountRoutes registers guard routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.authmw.RequireRole(shared.RoleGuard)).Get("/me", h.me)

	admin := h.authmw.RequireRole(shared.RoleCompanyAdmin, shared.RolePlatformAdmin)
	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.show)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	guard, err := h.service.GetByUserID(r.Context(), ident.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, guard)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	companyID := scopedCompanyID(ident, r)

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	pagination := shared.NewPagination(page, perPage, 0)

	guards, total, err := h.service.List(r.Context(), companyID, pagination.PerPage, (pagination.Page-1)*pagination.PerPage)
	if err != nil {
		h.logger.Error("list guards", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"guards":     guards,
		"pagination": shared.NewPagination(pagination.Page, pagination.PerPage, total),
	})
}

type createGuardRequest struct {
	UserID    int64  `json:"user_id" validate:"required"`
	CompanyID int64  `json:"company_id"`
	Name      string `json:"name" validate:"required"`
	Phone     string `json:"phone"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())

	var req createGuardRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if ident.Role == shared.RoleCompanyAdmin {
		req.CompanyID = ident.CompanyID
	}

	guard, err := h.service.Create(r.Context(), Guard{
		UserID:    req.UserID,
		CompanyID: req.CompanyID,
		Name:      req.Name,
		Phone:     req.Phone,
	})
	if err != nil {
		h.logger.Error("create guard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, guard)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	guard, err := h.service.Get(r.Context(), id, adminScope(ident))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, guard)
}

type updateGuardRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req updateGuardRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	guard, err := h.service.Update(r.Context(), id, adminScope(ident), req.Name, req.Phone)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, guard)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.service.Delete(r.Context(), id, adminScope(ident)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// scopedCompanyID picks the effective company for listings: company admins are
// pinned to their own company, platform admins choose via query parameter.
func scopedCompanyID(ident *shared.Identity, r *http.Request) int64 {
	if ident.Role == shared.RoleCompanyAdmin {
		return ident.CompanyID
	}
	id, _ := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	return id
}

// adminScope returns the company restriction for row-level access: zero means
// unrestricted (platform admin).
func adminScope(ident *shared.Identity) int64 {
	if ident.Role == shared.RoleCompanyAdmin {
		return ident.CompanyID
	}
	return 0
}
