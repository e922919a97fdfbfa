package httpapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/securevault/internal/server/auth"
)

// requireAuth checks the Authorization bearer token before handing the
// request to next. A valid token only proves the client logged in; the
// vault core still enforces idle-timeout expiry on every operation.
func (h *Handler) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			h.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		if _, err := auth.GetSessionIDFromToken(tokenString, h.secretKey); err != nil {
			h.writeError(w, http.StatusUnauthorized, "invalid bearer token")
			return
		}

		next(w, r)
	})
}
