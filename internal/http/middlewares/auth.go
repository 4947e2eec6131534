package middlewares

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/usercards/internal/http/errors"
	jwtx "github.com/dropDatabas3/usercards/internal/jwt"
	"github.com/dropDatabas3/usercards/internal/observability/logger"
	"github.com/dropDatabas3/usercards/internal/security/identity"
)

// =================================================================================
// AUTHENTICATION MIDDLEWARES
// =================================================================================

// TokenVerifier valida un access token y devuelve sus claims.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (map[string]any, error)
}

// RequireAuth valida Authorization: Bearer <JWT>, guarda claims e identidad en el contexto.
// Si el token es inválido o no está presente, responde 401.
func RequireAuth(verifier TokenVerifier, rolesClientID string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				errors.WriteError(w, errors.ErrTokenMissing)
				return
			}

			claims, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				logger.From(r.Context()).Debug("token rejected", logger.Op("RequireAuth"), logger.Err(err))
				if stderrors.Is(err, jwtx.ErrExpired) {
					w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="token expired"`)
					errors.WriteError(w, errors.ErrTokenExpired)
					return
				}
				// el detalle va en el body; el header lleva un texto fijo
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="token invalid"`)
				errors.WriteError(w, errors.ErrTokenInvalid.WithDetail(err.Error()))
				return
			}

			id := identity.FromClaims(claims, rolesClientID)
			ctx := WithClaims(r.Context(), claims)
			ctx = WithIdentity(ctx, id)
			if id.IsAuthenticated() {
				ctx = enrichLogger(ctx, logger.Identity(id.Name))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity exige que el token haya resuelto una identidad no vacía.
// Debe usarse después de RequireAuth.
func RequireIdentity() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !GetIdentity(r.Context()).IsAuthenticated() {
				errors.WriteError(w, errors.ErrForbidden.WithDetail("token sin identidad"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(ah) < len("Bearer ") || !strings.EqualFold(ah[:len("Bearer ")], "bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(ah[len("Bearer "):])
	return raw, raw != ""
}
