package geofence

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/guards"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/shared"
)

func newTestServer(t *testing.T, profiles *mockProfiles) (*httptest.Server, *shared.SessionStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := shared.NewSessionStore(client, time.Hour)
	svc := NewService(testLogger(), profiles, sessions, nil, nil, 1.0)
	handler := NewHandler(testLogger(), svc, sessions)

	r := chi.NewRouter()
	r.Route("/api/geofence", handler.MountRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, sessions
}

func postJSON(t *testing.T, url, token string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestCheckRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t, newMockProfiles())

	resp := postJSON(t, srv.URL+"/api/geofence/check", "", map[string]float64{"currentLat": 34.0, "currentLng": -118.0})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCheckRejectsMissingCoordinates(t *testing.T) {
	profiles := newMockProfiles(&guards.Guard{ID: 1, UserID: 7, CompanyID: 1})
	srv, sessions := newTestServer(t, profiles)

	token, err := sessions.Create(context.Background(), 7, shared.RoleGuard, 1)
	require.NoError(t, err)

	resp := postJSON(t, srv.URL+"/api/geofence/check", token, map[string]any{"currentLat": 34.0})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCheckViolationReturnsOK(t *testing.T) {
	profiles := newMockProfiles(&guards.Guard{
		ID: 1, UserID: 7, CompanyID: 1,
		LoginLocationLat: ptr(34.0522), LoginLocationLng: ptr(-118.2437),
	})
	srv, sessions := newTestServer(t, profiles)

	token, err := sessions.Create(context.Background(), 7, shared.RoleGuard, 1)
	require.NoError(t, err)

	resp := postJSON(t, srv.URL+"/api/geofence/check", token, map[string]float64{"currentLat": 34.0812, "currentLng": -118.2437})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result CheckResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.WithinRange)
	assert.True(t, result.RequiresApproval)
	assert.NotEmpty(t, result.Distance)

	// The violation revoked every session, including the caller's.
	_, err = sessions.Resolve(context.Background(), token)
	assert.Error(t, err)
}

func TestBaselineSoftFailsWithoutAuth(t *testing.T) {
	srv, _ := newTestServer(t, newMockProfiles())

	resp := postJSON(t, srv.URL+"/api/geofence/baseline", "", map[string]float64{"currentLat": 34.0, "currentLng": -118.0})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body baselineResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.True(t, body.RequiresAuth)
}

func TestBaselineStoresLoginLocation(t *testing.T) {
	profiles := newMockProfiles(&guards.Guard{ID: 1, UserID: 7, CompanyID: 1})
	srv, sessions := newTestServer(t, profiles)

	token, err := sessions.Create(context.Background(), 7, shared.RoleGuard, 1)
	require.NoError(t, err)

	resp := postJSON(t, srv.URL+"/api/geofence/baseline", token, map[string]float64{"currentLat": 34.0522, "currentLng": -118.2437})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body baselineResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)

	g := profiles.byUser[7]
	require.NotNil(t, g.LoginLocationLat)
	assert.InDelta(t, 34.0522, *g.LoginLocationLat, 1e-9)
}

func TestBaselineUnknownGuardIs404(t *testing.T) {
	srv, sessions := newTestServer(t, newMockProfiles())

	token, err := sessions.Create(context.Background(), 7, shared.RoleGuard, 1)
	require.NoError(t, err)

	resp := postJSON(t, srv.URL+"/api/geofence/baseline", token, map[string]float64{"currentLat": 34.0, "currentLng": -118.0})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
