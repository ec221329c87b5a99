package shifts

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/auth"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/httpx"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/shared"
)

// GuardDirectory resolves the guard profile behind an authenticated user.
type GuardDirectory interface {
	FindIDByUserID(ctx context.Context, userID int64) (int64, error)
}

// Handler wires HTTP endpoints for shift management and patrol scans.
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

// MountRoutes registers shift routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	guard := h.authmw.RequireRole(shared.RoleGuard)
	r.Group(func(r chi.Router) {
		r.Use(guard)
		r.Get("/mine", h.mine)
		r.Post("/{id}/clock-in", h.clockIn)
		r.Post("/{id}/clock-out", h.clockOut)
		r.Post("/{id}/scans", h.recordScan)
	})

	admin := h.authmw.RequireRole(shared.RoleCompanyAdmin, shared.RolePlatformAdmin)
	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.show)
		r.Get("/{id}/scans", h.listScans)
	})
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	guardID, err := h.guards.FindIDByUserID(r.Context(), ident.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	shifts, err := h.service.ListByGuard(r.Context(), guardID, limit)
	if err != nil {
		h.logger.Error("list own shifts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"shifts": shifts})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	propertyID, err := strconv.ParseInt(r.URL.Query().Get("property_id"), 10, 64)
	if err != nil || propertyID <= 0 {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	shifts, err := h.service.ListByProperty(r.Context(), propertyID, limit)
	if err != nil {
		h.logger.Error("list shifts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"shifts": shifts})
}

type createShiftRequest struct {
	GuardID        int64  `json:"guard_id" validate:"required"`
	PropertyID     int64  `json:"property_id" validate:"required"`
	ScheduledStart string `json:"scheduled_start" validate:"required"`
	ScheduledEnd   string `json:"scheduled_end" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())

	var req createShiftRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	start, err1 := parseRFC3339(req.ScheduledStart)
	end, err2 := parseRFC3339(req.ScheduledEnd)
	if err1 != nil || err2 != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	shift, err := h.service.Create(r.Context(), Shift{
		GuardID:        req.GuardID,
		PropertyID:     req.PropertyID,
		ScheduledStart: start,
		ScheduledEnd:   end,
	}, adminCompany(ident))
	if err != nil {
		h.logger.Error("create shift", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, shift)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	shift, err := h.service.Get(r.Context(), id, adminCompany(ident))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shift)
}

type clockRequest struct {
	Lat *float64 `json:"lat" validate:"required"`
	Lng *float64 `json:"lng" validate:"required"`
}

func (h *Handler) clockIn(w http.ResponseWriter, r *http.Request) {
	id, guardID, ok := h.shiftAndGuard(w, r)
	if !ok {
		return
	}
	var req clockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	shift, err := h.service.ClockIn(r.Context(), id, guardID, *req.Lat, *req.Lng)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shift)
}

func (h *Handler) clockOut(w http.ResponseWriter, r *http.Request) {
	id, guardID, ok := h.shiftAndGuard(w, r)
	if !ok {
		return
	}
	shift, err := h.service.ClockOut(r.Context(), id, guardID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shift)
}

type scanRequest struct {
	Code string   `json:"code" validate:"required"`
	Lat  *float64 `json:"lat" validate:"required"`
	Lng  *float64 `json:"lng" validate:"required"`
}

func (h *Handler) recordScan(w http.ResponseWriter, r *http.Request) {
	id, guardID, ok := h.shiftAndGuard(w, r)
	if !ok {
		return
	}
	var req scanRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	scan, err := h.service.RecordScan(r.Context(), id, guardID, req.Code, *req.Lat, *req.Lng)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, scan)
}

func (h *Handler) listScans(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	scans, err := h.service.ListScans(r.Context(), id, adminCompany(ident))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"scans": scans})
}

// shiftAndGuard parses the shift id and resolves the caller's guard profile.
func (h *Handler) shiftAndGuard(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return 0, 0, false
	}
	ident := shared.IdentityFromContext(r.Context())
	guardID, err := h.guards.FindIDByUserID(r.Context(), ident.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return 0, 0, false
	}
	return id, guardID, true
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// adminCompany returns the company restriction for row-level access: zero
// means unrestricted (platform admin).
func adminCompany(ident *shared.Identity) int64 {
	if ident.Role == shared.RoleCompanyAdmin {
		return ident.CompanyID
	}
	return 0
}
