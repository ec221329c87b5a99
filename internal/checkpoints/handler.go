package checkpoints

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

// Handler wires HTTP endpoints for checkpoint management.
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

// MountRoutes registers checkpoint routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.authmw.RequireAuth).Get("/", h.list)
	admin := h.authmw.RequireRole(shared.RoleCompanyAdmin, shared.RolePlatformAdmin)
	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Post("/", h.create)
		r.Delete("/{id}", h.delete)
	})
}

type checkpointRequest struct {
	PropertyID int64   `json:"property_id" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	Code       string  `json:"code" validate:"required"`
	Lat        float64 `json:"lat" validate:"min=-90,max=90"`
	Lng        float64 `json:"lng" validate:"min=-180,max=180"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	propertyID, err := strconv.ParseInt(r.URL.Query().Get("property_id"), 10, 64)
	if err != nil || propertyID <= 0 {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	checkpoints, err := h.repo.ListByProperty(r.Context(), propertyID)
	if err != nil {
		h.logger.Error("list checkpoints", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"checkpoints": checkpoints})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req checkpointRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	checkpoint, err := h.repo.Create(r.Context(), Checkpoint{
		PropertyID: req.PropertyID,
		Name:       req.Name,
		Code:       req.Code,
		Lat:        req.Lat,
		Lng:        req.Lng,
	})
	if err != nil {
		h.logger.Error("create checkpoint", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, checkpoint)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
