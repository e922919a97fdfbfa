// Package httpapi exposes the vault core over a JSON REST API. It is a
// thin adapter: request parsing, bearer-token checks and status mapping
// live here; every rule about passwords, sessions and credentials is
// enforced by the vault itself.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/securevault/internal/backup"
	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/dmitrijs2005/securevault/internal/logging"
	"github.com/dmitrijs2005/securevault/internal/server/auth"
	"github.com/dmitrijs2005/securevault/internal/vault"
)

// maxRequestBodySize bounds request bodies to keep arbitrary input cheap.
const maxRequestBodySize = 1 << 20

// Handler serves the vault REST API.
type Handler struct {
	vault         *vault.Vault
	logger        logging.Logger
	secretKey     []byte
	tokenValidity time.Duration
	uploader      *backup.Uploader
}

func NewHandler(v *vault.Vault, logger logging.Logger, secretKey []byte, tokenValidity time.Duration, uploader *backup.Uploader) *Handler {
	return &Handler{
		vault:         v,
		logger:        logger,
		secretKey:     secretKey,
		tokenValidity: tokenValidity,
		uploader:      uploader,
	}
}

// Routes builds the route table. Share-token redemption and vault status
// are deliberately unauthenticated; everything that touches credentials
// goes through the bearer-token middleware.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/vault/status", h.handleStatus)
	mux.HandleFunc("POST /api/vault/create", h.handleCreate)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/share/redeem", h.handleRedeem)

	mux.Handle("POST /api/auth/logout", h.requireAuth(h.handleLogout))
	mux.Handle("GET /api/credentials", h.requireAuth(h.handleList))
	mux.Handle("POST /api/credentials", h.requireAuth(h.handleAdd))
	mux.Handle("GET /api/credentials/{id}", h.requireAuth(h.handleGet))
	mux.Handle("PUT /api/credentials/{id}", h.requireAuth(h.handleUpdate))
	mux.Handle("DELETE /api/credentials/{id}", h.requireAuth(h.handleDelete))
	mux.Handle("POST /api/credentials/search", h.requireAuth(h.handleSearch))
	mux.Handle("POST /api/share", h.requireAuth(h.handleShare))
	mux.Handle("POST /api/export", h.requireAuth(h.handleExport))
	mux.Handle("POST /api/export/backup", h.requireAuth(h.handleExportBackup))
	mux.Handle("GET /api/audit", h.requireAuth(h.handleAudit))
	mux.Handle("GET /api/stats", h.requireAuth(h.handleStats))

	return mux
}

type passwordRequest struct {
	MasterPassword string `json:"master_password"`
}

type searchRequest struct {
	Query string   `json:"query"`
	Tags  []string `json:"tags"`
}

type shareRequest struct {
	CredentialID string `json:"credential_id"`
	ExpiresIn    int    `json:"expires_in"`
}

type redeemRequest struct {
	Token string `json:"token"`
}

type exportRequest struct {
	ExportPassword string `json:"export_password"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"exists":        h.vault.Exists(),
		"authenticated": h.vault.IsAuthenticated(),
		"locked_out":    h.vault.IsLockedOut(),
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if !h.readJSON(w, r, &req) {
		return
	}
	if len(req.MasterPassword) < 8 {
		h.writeError(w, http.StatusBadRequest, "master password must be at least 8 characters")
		return
	}

	if err := h.vault.Create(req.MasterPassword); err != nil {
		h.writeVaultError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"created": true})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if !h.readJSON(w, r, &req) {
		return
	}

	if err := h.vault.Authenticate(req.MasterPassword); err != nil {
		h.writeVaultError(w, r, err)
		return
	}

	token, err := auth.GenerateToken(uuid.NewString(), h.secretKey, h.tokenValidity)
	if err != nil {
		h.logger.Error(r.Context(), "minting session token", "error", err.Error())
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"token": token})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.vault.Logout()
	h.writeJSON(w, http.StatusOK, map[string]any{"logged_out": true})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	creds, err := h.vault.List()
	if err != nil {
		h.writeVaultError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, creds)
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req vault.CredentialCreate
	if !h.readJSON(w, r, &req) {
		return
	}
	if req.ServiceName == "" || req.Username == "" || req.Password == "" {
		h.writeError(w, http.StatusBadRequest, "service_name, username and password are required")
		return
	}

	id, err := h.vault.Add(req)
	if err != nil {
		h.writeVaultError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	cred, err := h.vault.Get(r.PathValue("id"))
	if err != nil {
		h.writeVaultError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cred)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req vault.CredentialUpdate
	if !h.readJSON(w, r, &req) {
		return
	}

	if err := h.vault.Update(r.PathValue("id"), req); err != nil {
		h.writeVaultError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.vault.Delete(r.PathValue("id")); err != nil {
		h.writeVaultError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !h.readJSON(w, r, &req) {
		return
	}

	creds, err := h.vault.Search(req.Query, req.Tags)
	if err != nil {
		h.writeVaultError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, creds)
}

func (h *Handler) handleShare(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if !h.readJSON(w, r, &req) {
		return
	}
	if req.ExpiresIn <= 0 {
		req.ExpiresIn = 3600
	}

	token, expiresAt, err := h.vault.IssueShareToken(req.CredentialID, time.Duration(req.ExpiresIn)*time.Second)
	if err != nil {
		h.writeVaultError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"token": token, "expires_at": expiresAt})
}

func (h *Handler) handleRedeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if !h.readJSON(w, r, &req) {
		return
	}

	payload, err := vault.RedeemShareToken(req.Token)
	if err != nil {
		h.writeVaultError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if !h.readJSON(w, r, &req) {
		return
	}
	if len(req.ExportPassword) < 8 {
		h.writeError(w, http.StatusBadRequest, "export password must be at least 8 characters")
		return
	}

	blob, err := h.vault.Export(req.ExportPassword)
	if err != nil {
		h.writeVaultError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"data": blob})
}

func (h *Handler) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil || !h.uploader.Enabled() {
		h.writeError(w, http.StatusServiceUnavailable, "backup target not configured")
		return
	}

	var req exportRequest
	if !h.readJSON(w, r, &req) {
		return
	}
	if len(req.ExportPassword) < 8 {
		h.writeError(w, http.StatusBadRequest, "export password must be at least 8 characters")
		return
	}

	blob, err := h.vault.Export(req.ExportPassword)
	if err != nil {
		h.writeVaultError(w, r, err)
		return
	}

	key := fmt.Sprintf("securevault-export-%s", time.Now().UTC().Format("20060102T150405Z"))
	url, err := h.uploader.Upload(r.Context(), key, []byte(blob))
	if err != nil {
		h.logger.Error(r.Context(), "uploading export backup", "error", err.Error())
		h.writeError(w, http.StatusBadGateway, "backup upload failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"key": key, "url": url})
}

func (h *Handler) handleAudit(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := h.vault.AuditLog(limit)
	if err != nil {
		h.writeVaultError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.vault.Stats()
	if err != nil {
		h.writeVaultError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// writeVaultError maps core errors to HTTP statuses. Authentication
// failures stay generic on purpose: the response must not reveal whether
// the password or the vault state was at fault.
func (h *Handler) writeVaultError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrAlreadyExists):
		h.writeError(w, http.StatusConflict, "vault already exists")
	case errors.Is(err, common.ErrNoVault):
		h.writeError(w, http.StatusNotFound, "vault does not exist")
	case errors.Is(err, common.ErrLockedOut):
		h.writeError(w, http.StatusLocked, "too many failed attempts, try again later")
	case errors.Is(err, common.ErrDenied), errors.Is(err, common.ErrSessionExpired):
		h.writeError(w, http.StatusUnauthorized, "authentication failed")
	case errors.Is(err, common.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "credential not found")
	case errors.Is(err, common.ErrInvalidToken):
		h.writeError(w, http.StatusBadRequest, "invalid or expired token")
	case errors.Is(err, common.ErrCorrupt):
		// reported distinctly so operators can tell corruption from a
		// wrong password
		h.writeError(w, http.StatusInternalServerError, "vault data corrupt")
	default:
		h.logger.Error(r.Context(), "unhandled vault error", "error", err.Error())
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error(context.Background(), "encoding response", "error", err.Error())
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]any{"error": msg})
}
