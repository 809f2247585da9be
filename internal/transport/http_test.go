package transport_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fivestackbot/fivestack/internal/domain/activity"
	"github.com/fivestackbot/fivestack/internal/domain/roster"
	"github.com/fivestackbot/fivestack/internal/domain/signup"
	"github.com/fivestackbot/fivestack/internal/render"
	"github.com/fivestackbot/fivestack/internal/repository/mocks"
	"github.com/fivestackbot/fivestack/internal/transport"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	apiToken   = "gateway-token"
	adminToken = "admin-token"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := &mocks.SessionRepository{}
	store.On("Save", mock.Anything, mock.Anything).Return(nil).Maybe()
	events := &mocks.ActivityRepository{}
	events.On("Log", mock.Anything, mock.Anything).Return(nil).Maybe()
	events.On("List", mock.Anything, mock.Anything, mock.Anything).Return([]activity.Entry{}, nil).Maybe()

	svc := signup.NewService(
		roster.NewRegistry(5),
		store,
		activity.NewService(events, nil),
		render.Presenter{},
		nil,
		nil,
	)

	router := transport.NewServer(svc, nil, transport.AuthMiddleware(apiToken, adminToken), nil)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func errorKind(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body transport.ErrorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Error.Kind
}

func TestHTTP_AuthRequired(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/scopes/guild1/session", "", map[string]string{"owner_id": "u1"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/scopes/guild1/session", "wrong", map[string]string{"owner_id": "u1"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Health stays open.
	resp = doJSON(t, http.MethodGet, srv.URL+"/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTP_StartStatusLifecycle(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/scopes/guild1/session"

	resp := doJSON(t, http.MethodGet, base, apiToken, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "no_active_session", errorKind(t, resp))

	resp = doJSON(t, http.MethodPost, base, apiToken, map[string]string{"owner_id": "u1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var payload render.Payload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Contains(t, payload.Title, "0/5")

	resp = doJSON(t, http.MethodPost, base, apiToken, map[string]string{"owner_id": "u2"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "already_active", errorKind(t, resp))

	resp = doJSON(t, http.MethodGet, base, apiToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sum signup.Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sum))
	require.Equal(t, "u1", sum.OwnerID)
}

func TestHTTP_ClaimAndRelease(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/scopes/guild1/session"

	resp := doJSON(t, http.MethodPost, base, apiToken, map[string]string{"owner_id": "u1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, base+"/claims", apiToken, map[string]string{
		"member_id":    "u2",
		"display_name": "User Two",
		"availability": "7PM EST",
		"role":         "jungle",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res signup.ClaimResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	require.Equal(t, 0, res.SlotIndex)
	require.False(t, res.RosterFull)

	resp = doJSON(t, http.MethodPost, base+"/claims", apiToken, map[string]string{"member_id": "u2"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "already_joined", errorKind(t, resp))

	resp = doJSON(t, http.MethodPost, base+"/claims", apiToken, map[string]string{
		"member_id": "u3",
		"role":      "Feeder",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, base+"/claims/u2", apiToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, base+"/claims/u2", apiToken, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "not_joined", errorKind(t, resp))
}

func TestHTTP_JoinRunsIntakeFlow(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/scopes/guild1/session"

	// Eager rejection: no active session yet.
	resp := doJSON(t, http.MethodPost, base+"/join", apiToken, map[string]string{"member_id": "u2"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "no_active_session", errorKind(t, resp))

	doJSON(t, http.MethodPost, base, apiToken, map[string]string{"owner_id": "u1"})

	resp = doJSON(t, http.MethodPost, base+"/join", apiToken, map[string]string{
		"member_id":    "u2",
		"display_name": "User Two",
		"availability": "evenings",
		"role":         "jungle",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var payload render.Payload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Contains(t, payload.Title, "1/5")
	require.Contains(t, payload.Description, "Jungle")

	resp = doJSON(t, http.MethodPost, base+"/join", apiToken, map[string]string{"member_id": "u2"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "already_joined", errorKind(t, resp))

	for _, member := range []string{"u3", "u4", "u5", "u6"} {
		resp = doJSON(t, http.MethodPost, base+"/join", apiToken, map[string]string{"member_id": member})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, base+"/join", apiToken, map[string]string{"member_id": "u7"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "full", errorKind(t, resp))
}

func TestHTTP_OwnerOnlyOperations(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/scopes/guild1/session"

	doJSON(t, http.MethodPost, base, apiToken, map[string]string{"owner_id": "u1"})

	resp := doJSON(t, http.MethodPost, base+"/reset", apiToken, map[string]string{"actor_id": "u2"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "not_owner", errorKind(t, resp))

	resp = doJSON(t, http.MethodPost, base+"/close", apiToken, map[string]string{"actor_id": "u1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Scope freed: a new session can start.
	resp = doJSON(t, http.MethodPost, base, apiToken, map[string]string{"owner_id": "u3"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestHTTP_ForceResetIsAdminOnly(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/scopes/guild1/session"

	doJSON(t, http.MethodPost, base, apiToken, map[string]string{"owner_id": "u1"})

	resp := doJSON(t, http.MethodPost, base+"/force-reset", apiToken, map[string]string{"actor_id": "mod"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, base+"/force-reset", adminToken, map[string]string{"actor_id": "mod"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, base, apiToken, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTP_TouchAndActivity(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/scopes/guild1/session"

	resp := doJSON(t, http.MethodPost, base+"/touch", apiToken, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	doJSON(t, http.MethodPost, base, apiToken, map[string]string{"owner_id": "u1"})

	resp = doJSON(t, http.MethodPost, base+"/touch", apiToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, base+"/activity", apiToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
