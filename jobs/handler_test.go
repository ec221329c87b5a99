package jobs

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/auth"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/shared"
)

func newHealthServer(t *testing.T) (*httptest.Server, *shared.SessionStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := shared.NewSessionStore(client, time.Hour)
	h := NewHandler(nil, testLogger(), auth.NewMiddleware(sessions))

	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, sessions
}

func getHealth(t *testing.T, srv *httptest.Server, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/jobs/health", nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHealthRejectsAnonymous(t *testing.T) {
	srv, _ := newHealthServer(t)
	resp := getHealth(t, srv, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthRejectsCompanyAdmin(t *testing.T) {
	srv, sessions := newHealthServer(t)
	token, err := sessions.Create(context.Background(), 1, shared.RoleCompanyAdmin, 3)
	require.NoError(t, err)

	resp := getHealth(t, srv, token)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHealthAllowsPlatformAdmin(t *testing.T) {
	srv, sessions := newHealthServer(t)
	token, err := sessions.Create(context.Background(), 2, shared.RolePlatformAdmin, 0)
	require.NoError(t, err)

	resp := getHealth(t, srv, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"pending"`)
}
