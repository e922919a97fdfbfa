package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/securevault/internal/logging"
	"github.com/dmitrijs2005/securevault/internal/vault"
)

const testMasterPassword = "longenough1"

var testSecretKey = []byte("test-secret-key")

func newTestServer(t *testing.T) (*httptest.Server, *vault.Vault) {
	t.Helper()

	v := vault.New(filepath.Join(t.TempDir(), "vault.enc"))
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	h := NewHandler(v, logger, testSecretKey, 15*time.Minute, nil)

	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv, v
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
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
	defer resp.Body.Close()

	var decoded map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		// list endpoints return arrays, callers decode those themselves
		_ = json.Unmarshal(data, &decoded)
	}
	return resp, decoded
}

func createAndLogin(t *testing.T, srv *httptest.Server) string {
	t.Helper()

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/vault/create", "", map[string]string{"master_password": testMasterPassword})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{"master_password": testMasterPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, ok := body["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func TestHandler_Status(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/vault/status", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["exists"])
	assert.Equal(t, false, body["authenticated"])

	createAndLogin(t, srv)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/vault/status", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["exists"])
	assert.Equal(t, true, body["authenticated"])
}

func TestHandler_CreateTwiceConflicts(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/vault/create", "", map[string]string{"master_password": testMasterPassword})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/vault/create", "", map[string]string{"master_password": testMasterPassword})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "vault already exists", body["error"])
}

func TestHandler_CreateRejectsShortPassword(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/vault/create", "", map[string]string{"master_password": "short"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_LoginWrongPassword(t *testing.T) {
	srv, _ := newTestServer(t)
	createAndLogin(t, srv)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{"master_password": "wrongwrong1"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "authentication failed", body["error"])
}

func TestHandler_LoginLockout(t *testing.T) {
	srv, _ := newTestServer(t)
	createAndLogin(t, srv)

	for i := 0; i < 5; i++ {
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{"master_password": "wrongwrong1"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	// even the correct password is rejected while locked out
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{"master_password": testMasterPassword})
	assert.Equal(t, http.StatusLocked, resp.StatusCode)
}

func TestHandler_CredentialsRequireAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/credentials", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/credentials", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_CredentialCRUD(t *testing.T) {
	srv, _ := newTestServer(t)
	token := createAndLogin(t, srv)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/credentials", token, map[string]any{
		"service_name": "example.com",
		"username":     "alice",
		"password":     "p4ss",
		"tags":         []string{"work"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, ok := body["id"].(string)
	require.True(t, ok)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/credentials/"+id, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "example.com", body["service_name"])
	assert.Equal(t, "alice", body["username"])

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/credentials/"+id, token, map[string]any{"username": "bob"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/credentials/"+id, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "bob", body["username"])

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/credentials/"+id, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/credentials/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_AddRejectsMissingFields(t *testing.T) {
	srv, _ := newTestServer(t)
	token := createAndLogin(t, srv)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/credentials", token, map[string]any{
		"service_name": "example.com",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_Search(t *testing.T) {
	srv, _ := newTestServer(t)
	token := createAndLogin(t, srv)

	for i, svc := range []string{"github.com", "gitlab.com", "example.com"} {
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/credentials", token, map[string]any{
			"service_name": svc,
			"username":     fmt.Sprintf("user%d", i),
			"password":     "p4ss",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/credentials/search",
		bytes.NewBufferString(`{"query":"git"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var results []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&results))
	assert.Len(t, results, 2)
}

func TestHandler_ShareAndRedeem(t *testing.T) {
	srv, _ := newTestServer(t)
	token := createAndLogin(t, srv)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/credentials", token, map[string]any{
		"service_name": "example.com",
		"username":     "alice",
		"password":     "p4ss",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["id"].(string)

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/share", token, map[string]any{
		"credential_id": id,
		"expires_in":    60,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	shareToken, ok := body["token"].(string)
	require.True(t, ok)

	// redemption needs no bearer token
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/share/redeem", "", map[string]string{"token": shareToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "example.com", body["service_name"])
	assert.Equal(t, "alice", body["username"])

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/share/redeem", "", map[string]string{"token": "garbage"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_Export(t *testing.T) {
	srv, _ := newTestServer(t)
	token := createAndLogin(t, srv)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/export", token, map[string]string{"export_password": "exportpass1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["data"])

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/export", token, map[string]string{"export_password": "short"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_ExportBackupUnconfigured(t *testing.T) {
	srv, _ := newTestServer(t)
	token := createAndLogin(t, srv)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/export/backup", token, map[string]string{"export_password": "exportpass1"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHandler_AuditAndStats(t *testing.T) {
	srv, _ := newTestServer(t)
	token := createAndLogin(t, srv)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/credentials", token, map[string]any{
		"service_name": "example.com",
		"username":     "alice",
		"password":     "p4ss",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/audit?limit=10", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	auditResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer auditResp.Body.Close()
	require.Equal(t, http.StatusOK, auditResp.StatusCode)

	var entries []map[string]any
	require.NoError(t, json.NewDecoder(auditResp.Body).Decode(&entries))
	require.NotEmpty(t, entries)
	assert.Equal(t, "LOGIN", entries[0]["action"])

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/stats", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total_credentials"])
}

func TestHandler_AuditInvalidLimit(t *testing.T) {
	srv, _ := newTestServer(t)
	token := createAndLogin(t, srv)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/audit?limit=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_LogoutInvalidatesVaultSession(t *testing.T) {
	srv, v := newTestServer(t)
	token := createAndLogin(t, srv)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, v.IsAuthenticated())

	// bearer token is still signature-valid but the vault session is gone
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/credentials", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
