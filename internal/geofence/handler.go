package geofence

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/auth"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/httpx"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/shared"
)

// Handler exposes the two geofence wire operations. Both resolve the bearer
// credential themselves: the baseline endpoint deliberately soft-fails on a
// missing credential instead of returning 401, so the shared auth middleware
// does not fit here.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	sessions *shared.SessionStore
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionStore) *Handler {
	return &Handler{logger: logger, service: service, sessions: sessions}
}

// MountRoutes registers geofence routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	limiter := httprate.Limit(60, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))
	r.With(limiter).Post("/check", h.check)
	r.Post("/baseline", h.baseline)
}

type positionRequest struct {
	CurrentLat *float64 `json:"currentLat"`
	CurrentLng *float64 `json:"currentLng"`
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	ident, err := h.sessions.Resolve(r.Context(), auth.BearerToken(r))
	if err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	var req positionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.CurrentLat == nil || req.CurrentLng == nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	result, err := h.service.Evaluate(r.Context(), ident, *req.CurrentLat, *req.CurrentLng)
	if err != nil {
		if !errors.Is(err, httpx.ErrValidation) && !errors.Is(err, httpx.ErrNotFound) {
			h.logger.Error("geofence check", slog.Int64("user_id", ident.UserID), slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

type baselineResponse struct {
	Success      bool   `json:"success"`
	RequiresAuth bool   `json:"requiresAuth,omitempty"`
	Message      string `json:"message,omitempty"`
	Error        string `json:"error,omitempty"`
}

func (h *Handler) baseline(w http.ResponseWriter, r *http.Request) {
	ident, err := h.sessions.Resolve(r.Context(), auth.BearerToken(r))
	if err != nil {
		// Soft-fail: the client decides whether to redirect, so a missing
		// credential is not a transport error here.
		httpx.JSON(w, http.StatusOK, baselineResponse{Success: false, RequiresAuth: true})
		return
	}

	var req positionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.CurrentLat == nil || req.CurrentLng == nil {
		httpx.JSON(w, http.StatusBadRequest, baselineResponse{Success: false, Error: "coordinates must be numbers"})
		return
	}

	if err := h.service.SetBaseline(r.Context(), ident, *req.CurrentLat, *req.CurrentLng); err != nil {
		switch {
		case errors.Is(err, httpx.ErrValidation):
			httpx.JSON(w, http.StatusBadRequest, baselineResponse{Success: false, Error: err.Error()})
		case errors.Is(err, httpx.ErrNotFound):
			httpx.JSON(w, http.StatusNotFound, baselineResponse{Success: false, Error: "guard profile not found"})
		default:
			h.logger.Error("set baseline", slog.Int64("user_id", ident.UserID), slog.Any("error", err))
			httpx.JSON(w, http.StatusInternalServerError, baselineResponse{Success: false, Error: "failed to store baseline"})
		}
		return
	}

	if ident.Role != shared.RoleGuard {
		httpx.JSON(w, http.StatusOK, baselineResponse{Success: true, Message: "not a guard"})
		return
	}
	httpx.JSON(w, http.StatusOK, baselineResponse{Success: true})
}
