package middlewares

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/usercards/internal/http/errors"
	"github.com/dropDatabas3/usercards/internal/http/helpers"
	"github.com/dropDatabas3/usercards/internal/observability/logger"
	"github.com/dropDatabas3/usercards/internal/security/access"
	"github.com/dropDatabas3/usercards/internal/security/identity"
)

// Nombres de check reportados al observer (label de métricas).
const (
	CheckAdmin     = "admin"
	CheckUser      = "user"
	CheckUserEmail = "user_email"
	CheckCard      = "card"
)

// Authorizer construye guards por ruta sobre el access.Engine.
// Toda denegación responde 403; ids de ruta mal formados responden 400.
type Authorizer struct {
	engine  *access.Engine
	observe func(check string, allowed bool)
}

// NewAuthorizer crea un Authorizer. observe puede ser nil.
func NewAuthorizer(engine *access.Engine, observe func(check string, allowed bool)) *Authorizer {
	if observe == nil {
		observe = func(string, bool) {}
	}
	return &Authorizer{engine: engine, observe: observe}
}

type decideFunc func(ctx context.Context, r *http.Request, id identity.Identity) (bool, *errors.AppError)

func (a *Authorizer) guard(check string, decide decideFunc) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := GetIdentity(r.Context())
			allowed, appErr := decide(r.Context(), r, id)
			if appErr != nil {
				errors.WriteError(w, appErr)
				return
			}
			a.observe(check, allowed)
			if !allowed {
				logger.From(r.Context()).Info("access denied",
					logger.Op("Authorizer."+check),
					logger.Route(r.URL.Path),
				)
				errors.WriteError(w, errors.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Admin exige rol de administrador (CanAccessUser sin referencia).
func (a *Authorizer) Admin() Middleware {
	return a.guard(CheckAdmin, func(ctx context.Context, _ *http.Request, id identity.Identity) (bool, *errors.AppError) {
		return a.engine.CanAccessUser(ctx, nil, id), nil
	})
}

// User protege rutas con {param} = id de usuario.
func (a *Authorizer) User(param string) Middleware {
	return a.guard(CheckUser, func(ctx context.Context, r *http.Request, id identity.Identity) (bool, *errors.AppError) {
		userID, err := helpers.PathInt64(r, param)
		if err != nil {
			return false, errors.ErrInvalidParameter.WithDetail(err.Error())
		}
		return a.engine.CanAccessUser(ctx, &userID, id), nil
	})
}

// Card protege rutas con {param} = id de tarjeta.
func (a *Authorizer) Card(param string) Middleware {
	return a.guard(CheckCard, func(ctx context.Context, r *http.Request, id identity.Identity) (bool, *errors.AppError) {
		cardID, err := helpers.PathInt64(r, param)
		if err != nil {
			return false, errors.ErrInvalidParameter.WithDetail(err.Error())
		}
		return a.engine.CanAccessCard(ctx, &cardID, id), nil
	})
}

// Email protege rutas con {param} = email del usuario.
func (a *Authorizer) Email(param string) Middleware {
	return a.guard(CheckUserEmail, func(ctx context.Context, r *http.Request, id identity.Identity) (bool, *errors.AppError) {
		var ref *string
		if raw := chi.URLParam(r, param); raw != "" {
			if v, err := url.PathUnescape(raw); err == nil {
				ref = &v
			}
		}
		return a.engine.CanAccessUserByEmail(ctx, ref, id), nil
	})
}

// EmailFromBody toma el email del cuerpo JSON. Campo ausente => denegado.
func (a *Authorizer) EmailFromBody(field string) Middleware {
	return a.guard(CheckUserEmail, func(ctx context.Context, r *http.Request, id identity.Identity) (bool, *errors.AppError) {
		var ref *string
		if s, ok := extractJSONField(r, field, helpers.MaxBodyBytes).(string); ok {
			ref = &s
		}
		return a.engine.CanAccessUserByEmail(ctx, ref, id), nil
	})
}

// UserFromBody toma el id de usuario del cuerpo JSON. Campo ausente => solo admin.
func (a *Authorizer) UserFromBody(field string) Middleware {
	return a.guard(CheckUser, func(ctx context.Context, r *http.Request, id identity.Identity) (bool, *errors.AppError) {
		var ref *int64
		if n, ok := extractJSONField(r, field, helpers.MaxBodyBytes).(json.Number); ok {
			if v, err := n.Int64(); err == nil {
				ref = &v
			}
		}
		return a.engine.CanAccessUser(ctx, ref, id), nil
	})
}

// extractJSONField lee hasta max bytes del body (si es JSON) para extraer un campo y repone el body.
// Los números se devuelven como json.Number.
func extractJSONField(r *http.Request, field string, max int64) any {
	if r.Body == nil || (r.Method != http.MethodPost && r.Method != http.MethodPut) ||
		!strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return nil
	}
	var buf bytes.Buffer
	_, _ = io.CopyN(&buf, r.Body, max)
	// lo no leído sigue disponible para el handler
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(buf.Bytes()), r.Body), r.Body}

	dec := json.NewDecoder(bytes.NewReader(buf.Bytes()))
	dec.UseNumber()
	var tmp map[string]any
	if err := dec.Decode(&tmp); err != nil {
		return nil
	}
	return tmp[field]
}
