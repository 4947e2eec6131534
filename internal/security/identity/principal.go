// Package identity resuelve "quién pregunta" a partir del principal autenticado.
package identity

import "strings"

// Claims estándar consultados, en orden de prioridad.
const (
	ClaimEmail             = "email"
	ClaimPreferredUsername = "preferred_username"
	ClaimSubject           = "sub"
)

// Principal es la unión etiquetada de los principales que puede producir la capa
// de autenticación: JWTPrincipal, UsernamePrincipal o NamedPrincipal.
// Un Principal nil representa un request no autenticado.
type Principal interface {
	principal()
}

// JWTPrincipal es un token validado. Name es el nombre genérico del principal
// que expone la capa de autenticación (puede venir vacío).
type JWTPrincipal struct {
	Claims map[string]any
	Name   string
}

// UsernamePrincipal es un principal con username (ej: basic auth).
type UsernamePrincipal struct {
	Username string
}

// NamedPrincipal es un principal que solo expone un nombre.
type NamedPrincipal struct {
	Name string
}

func (JWTPrincipal) principal()      {}
func (UsernamePrincipal) principal() {}
func (NamedPrincipal) principal()    {}

// Resolve extrae el identificador estable (típicamente un email) del principal.
// Para JWT prueba email, preferred_username y sub; si ninguno tiene valor cae
// al Name del principal. Nunca falla: la ausencia se reporta con ok == false.
func Resolve(p Principal) (string, bool) {
	switch v := p.(type) {
	case JWTPrincipal:
		return resolveJWT(v)
	case *JWTPrincipal:
		if v == nil {
			return "", false
		}
		return resolveJWT(*v)
	case UsernamePrincipal:
		return nonBlank(v.Username)
	case *UsernamePrincipal:
		if v == nil {
			return "", false
		}
		return nonBlank(v.Username)
	case NamedPrincipal:
		return nonBlank(v.Name)
	case *NamedPrincipal:
		if v == nil {
			return "", false
		}
		return nonBlank(v.Name)
	}
	return "", false
}

func resolveJWT(p JWTPrincipal) (string, bool) {
	for _, claim := range []string{ClaimEmail, ClaimPreferredUsername, ClaimSubject} {
		if s, ok := nonBlank(claimString(p.Claims, claim)); ok {
			return s, true
		}
	}
	return nonBlank(p.Name)
}

func claimString(claims map[string]any, key string) string {
	if claims == nil {
		return ""
	}
	s, _ := claims[key].(string)
	return s
}

func nonBlank(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}
