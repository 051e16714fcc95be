package auth

import (
	"context"
	"strings"
)

type ctxKey string

const (
	accountIDKey ctxKey = "auth_account_id"
	tokenKey     ctxKey = "auth_token"
)

// ContextWithAccountID stores the verified account identity in the context.
func ContextWithAccountID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, accountIDKey, strings.TrimSpace(id))
}

// AccountIDFromContext extracts the authenticated account id.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(accountIDKey).(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// ContextWithToken stores the presented bearer token for downstream use.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the bearer token attached by the middleware.
func TokenFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(tokenKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
