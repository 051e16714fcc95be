package httpapi

import (
	"net/http"
	"strings"

	"leadsyncflow.app/internal/auth"
)

const (
	authHeader   = "Authorization"
	bearerPrefix = "Bearer "
)

// Paths reachable without a session. Logout is public because it handles
// its own token extraction: a missing token there is a 400, not a 401.
var publicPaths = []string{
	"/",
	"/healthz",
	"/readyz",
	"/metrics",
	"/api/auth/signup",
	"/api/auth/login",
	"/api/auth/logout",
}

var publicPrefixes = []string{
	"/uploads/",
}

// withAuth verifies the bearer token on every protected request and
// attaches the asserted account id to the context. Revoked, malformed and
// expired tokens are indistinguishable to the caller.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token := extractBearerToken(r.Header.Get(authHeader))
		accountID, err := a.svc.Authenticate(r.Context(), token)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		ctx := auth.ContextWithAccountID(r.Context(), accountID)
		ctx = auth.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireSuperAdmin re-checks the caller's live role and status before any
// admin operation; token claims alone are never trusted for authorization.
func (a *API) requireSuperAdmin(w http.ResponseWriter, r *http.Request) (*auth.Account, bool) {
	id, ok := auth.AccountIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	account, err := a.svc.RequireSuperAdmin(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return nil, false
	}
	return account, true
}

// extractBearerToken pulls the token out of a standard authorization
// header, accepting the scheme in any case. Empty result means no token.
func extractBearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearerPrefix)) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
