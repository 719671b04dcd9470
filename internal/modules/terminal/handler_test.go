package terminal_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/georgemunganga/hobex-pos/internal/modules/hobex"
	"github.com/georgemunganga/hobex-pos/internal/modules/terminal"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T, gw *fakeGateway) *chi.Mux {
	t.Helper()
	svc, _ := newService(t, gw)
	r := chi.NewRouter()
	terminal.NewHandler(svc).RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlerLifecycle(t *testing.T) {
	r := newRouter(t, &fakeGateway{})

	rec := doJSON(t, r, http.MethodPost, "/api/v1/terminals", hobexRequest("alice"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, false, created["connected"])
	require.NotContains(t, created, "password")
	id := created["id"].(string)

	rec = doJSON(t, r, http.MethodPost, "/api/v1/terminals/"+id+"/token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var refreshed map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshed))
	require.Equal(t, true, refreshed["connected"])
	require.NotContains(t, refreshed, "token")

	rec = doJSON(t, r, http.MethodGet, "/api/v1/terminals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
}

func TestHandlerErrorMapping(t *testing.T) {
	gw := &fakeGateway{failFor: map[string]error{
		"alice": &hobex.AuthenticationError{Message: "Invalid user name or password"},
	}}
	r := newRouter(t, gw)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/terminals",
		terminal.SaveTerminalRequest{Name: "Till", Kind: "hobex", TID: "1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "required fields not filled: User, Password")

	rec = doJSON(t, r, http.MethodGet, "/api/v1/terminals/6f1c1d2e-0000-4000-8000-000000000000", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/v1/terminals", hobexRequest("alice"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, r, http.MethodPost, "/api/v1/terminals/"+created["id"].(string)+"/token", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid user name or password")

	rec = doJSON(t, r, http.MethodPost, "/api/v1/terminals", terminal.SaveTerminalRequest{Name: "Counter"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, r, http.MethodPost, "/api/v1/terminals/"+created["id"].(string)+"/sample-transaction", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
