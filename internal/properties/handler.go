package properties

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

// Handler wires HTTP endpoints for property management.
type Handler struct {
	logger    *slog.Logger
	repo      *Repository
	authmw    *auth.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, repo *Repository, authmw *auth.Middleware) *Handler {
	return &Handler{logger: logger, repo: repo, authmw: authmw, validator: validator.New()}
}

// MountRoutes registers property routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.authmw.RequireAuth).Get("/", h.list)
	admin := h.authmw.RequireRole(shared.RoleCompanyAdmin, shared.RolePlatformAdmin)
	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Post("/", h.create)
		r.Get("/{id}", h.show)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

type propertyRequest struct {
	CompanyID int64   `json:"company_id"`
	Name      string  `json:"name" validate:"required"`
	Address   string  `json:"address"`
	Lat       float64 `json:"lat" validate:"min=-90,max=90"`
	Lng       float64 `json:"lng" validate:"min=-180,max=180"`
	IsActive  bool    `json:"is_active"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	companyID := ident.CompanyID
	if ident.Role == shared.RolePlatformAdmin {
		companyID, _ = strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	}
	properties, err := h.repo.List(r.Context(), companyID)
	if err != nil {
		h.logger.Error("list properties", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"properties": properties})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	var req propertyRequest
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
	property, err := h.repo.Create(r.Context(), Property{
		CompanyID: req.CompanyID,
		Name:      req.Name,
		Address:   req.Address,
		Lat:       req.Lat,
		Lng:       req.Lng,
	})
	if err != nil {
		h.logger.Error("create property", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, property)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	property, ok := h.scoped(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, property)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	property, ok := h.scoped(w, r)
	if !ok {
		return
	}
	var req propertyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	updated, err := h.repo.Update(r.Context(), property.ID, Property{
		Name:     req.Name,
		Address:  req.Address,
		Lat:      req.Lat,
		Lng:      req.Lng,
		IsActive: req.IsActive,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	property, ok := h.scoped(w, r)
	if !ok {
		return
	}
	if err := h.repo.Delete(r.Context(), property.ID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// scoped loads the property from the URL and enforces company scoping for
// company admins. It writes the error response itself when returning !ok.
func (h *Handler) scoped(w http.ResponseWriter, r *http.Request) (*Property, bool) {
	ident := shared.IdentityFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return nil, false
	}
	property, err := h.repo.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return nil, false
	}
	if ident.Role == shared.RoleCompanyAdmin && property.CompanyID != ident.CompanyID {
		httpx.RespondError(w, httpx.ErrNotFound)
		return nil, false
	}
	return property, true
}
