package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/httpx"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/shared"
)

// GuardDirectory resolves the guard profile id for a user, when one exists.
type GuardDirectory interface {
	FindIDByUserID(ctx context.Context, userID int64) (int64, error)
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	sessions  *shared.SessionStore
	guards    GuardDirectory
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionStore, guards GuardDirectory) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		sessions:  sessions,
		guards:    guards,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	loginLimiter := httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))
	r.With(loginLimiter).Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Post("/logout-all", h.handleLogoutAll)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	Token   string `json:"token"`
	Role    string `json:"role"`
	GuardID *int64 `json:"guardId,omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	token, err := h.sessions.Create(r.Context(), user.ID, user.Role, user.CompanyID)
	if err != nil {
		h.logger.Error("create session", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	resp := loginResponse{Token: token, Role: user.Role}
	if user.Role == shared.RoleGuard && h.guards != nil {
		if guardID, err := h.guards.FindIDByUserID(r.Context(), user.ID); err == nil {
			resp.GuardID = &guardID
		} else if !errors.Is(err, httpx.ErrNotFound) {
			h.logger.Warn("resolve guard profile", slog.Int64("user_id", user.ID), slog.Any("error", err))
		}
	}

	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := BearerToken(r)
	if token == "" {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	if err := h.sessions.Revoke(r.Context(), token); err != nil {
		h.logger.Error("revoke session", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	ident, err := h.sessions.Resolve(r.Context(), BearerToken(r))
	if err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	revoked, err := h.sessions.RevokeAll(r.Context(), ident.UserID)
	if err != nil {
		h.logger.Error("revoke all sessions", slog.Int64("user_id", ident.UserID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "revoked": revoked})
}
