// Package access decide quién puede leer o modificar qué usuario o tarjeta.
//
// Reglas:
//   - Sin identidad autenticada => DENY, siempre.
//   - Rol admin => ALLOW sobre cualquier referencia presente.
//   - Caso contrario, el recurso debe pertenecer al email de la identidad
//     (comparación case-insensitive), resuelto con UNA consulta al store.
//   - Un miss o error del store => DENY. El engine nunca devuelve error ni cachea.
package access

import (
	"context"

	"github.com/dropDatabas3/usercards/internal/observability/logger"
	"github.com/dropDatabas3/usercards/internal/security/identity"
)

// Lookup son las dos consultas de ownership que necesita el engine.
type Lookup interface {
	// EmailByID retorna el email del usuario.
	EmailByID(ctx context.Context, userID int64) (string, error)
	// OwnerEmail retorna el email del dueño de la tarjeta.
	OwnerEmail(ctx context.Context, cardID int64) (string, error)
}

// Engine es el motor de decisiones de acceso.
type Engine struct {
	lookup    Lookup
	adminRole string
}

// NewEngine crea un Engine. adminRole vacío usa identity.DefaultAdminRole.
func NewEngine(lookup Lookup, adminRole string) *Engine {
	if adminRole == "" {
		adminRole = identity.DefaultAdminRole
	}
	return &Engine{lookup: lookup, adminRole: adminRole}
}

// IsAdmin indica si la identidad tiene el rol admin.
func (e *Engine) IsAdmin(id identity.Identity) bool {
	return id.IsAuthenticated() && id.HasRole(e.adminRole)
}

// CanAccessUser decide acceso a un usuario. userID nil es una operación sobre
// "todos" (listados) y solo la permite admin.
func (e *Engine) CanAccessUser(ctx context.Context, userID *int64, id identity.Identity) bool {
	if !id.IsAuthenticated() {
		return false
	}
	if userID == nil {
		return e.IsAdmin(id)
	}
	if e.IsAdmin(id) {
		return true
	}
	email, err := e.lookup.EmailByID(ctx, *userID)
	if err != nil {
		logger.From(ctx).Debug("user ownership lookup failed",
			logger.Component("access"), logger.UserID(*userID), logger.Err(err))
		return false
	}
	return id.Matches(email)
}

// CanAccessUserByEmail decide acceso a un usuario referenciado por email.
// No consulta el store: compara directamente contra la identidad.
func (e *Engine) CanAccessUserByEmail(_ context.Context, email *string, id identity.Identity) bool {
	if email == nil || !id.IsAuthenticated() {
		return false
	}
	if e.IsAdmin(id) {
		return true
	}
	return id.Matches(*email)
}

// CanAccessCard decide acceso a una tarjeta resolviendo el email de su dueño.
func (e *Engine) CanAccessCard(ctx context.Context, cardID *int64, id identity.Identity) bool {
	if cardID == nil || !id.IsAuthenticated() {
		return false
	}
	if e.IsAdmin(id) {
		return true
	}
	email, err := e.lookup.OwnerEmail(ctx, *cardID)
	if err != nil {
		logger.From(ctx).Debug("card ownership lookup failed",
			logger.Component("access"), logger.CardID(*cardID), logger.Err(err))
		return false
	}
	return id.Matches(email)
}
