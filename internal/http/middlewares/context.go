package middlewares

import (
	"context"

	"github.com/dropDatabas3/usercards/internal/security/identity"
)

type ctxKey string

const (
	ctxClaimsKey    ctxKey = "claims"
	ctxIdentityKey  ctxKey = "identity"
	ctxRequestIDKey ctxKey = "request_id"
)

// WithClaims inyecta las claims validadas en el contexto.
func WithClaims(ctx context.Context, claims map[string]any) context.Context {
	return context.WithValue(ctx, ctxClaimsKey, claims)
}

// WithIdentity inyecta la identidad resuelta en el contexto.
func WithIdentity(ctx context.Context, id identity.Identity) context.Context {
	return context.WithValue(ctx, ctxIdentityKey, id)
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetClaims obtiene las claims JWT del contexto. nil si no hubo auth.
func GetClaims(ctx context.Context) map[string]any {
	if m, ok := ctx.Value(ctxClaimsKey).(map[string]any); ok {
		return m
	}
	return nil
}

// GetIdentity obtiene la identidad del contexto. Sin auth => identity.Anonymous.
func GetIdentity(ctx context.Context) identity.Identity {
	if id, ok := ctx.Value(ctxIdentityKey).(identity.Identity); ok {
		return id
	}
	return identity.Anonymous
}

// GetRequestID obtiene el request ID del contexto.
func GetRequestID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return s
	}
	return ""
}
