package identity

import "strings"

// DefaultAdminRole es el rol que otorga acceso irrestricto a usuarios y tarjetas.
const DefaultAdminRole = "admin"

// Identity es la identidad resuelta para un request: el string comparado contra
// los emails almacenados y el set de roles normalizados.
type Identity struct {
	Name  string
	Roles []string
}

// Anonymous es la identidad de un request sin principal.
var Anonymous = Identity{}

// IsAuthenticated indica si hay un nombre resuelto.
func (i Identity) IsAuthenticated() bool {
	return strings.TrimSpace(i.Name) != ""
}

// HasRole compara contra los roles normalizados (sin prefijo ROLE_, case-insensitive).
func (i Identity) HasRole(role string) bool {
	want := NormalizeRole(role)
	if want == "" {
		return false
	}
	for _, r := range i.Roles {
		if NormalizeRole(r) == want {
			return true
		}
	}
	return false
}

// Matches compara el nombre resuelto con un email almacenado sin distinguir mayúsculas.
func (i Identity) Matches(email string) bool {
	name := strings.TrimSpace(i.Name)
	email = strings.TrimSpace(email)
	return name != "" && email != "" && strings.EqualFold(name, email)
}

// FromPrincipal construye la identidad de un principal. Para JWT también extrae
// los roles; rolesClientID selecciona resource_access.<client>.roles.
func FromPrincipal(p Principal, rolesClientID string) Identity {
	name, ok := Resolve(p)
	if !ok {
		return Anonymous
	}
	id := Identity{Name: name}
	switch v := p.(type) {
	case JWTPrincipal:
		id.Roles = ExtractRoles(v.Claims, rolesClientID)
	case *JWTPrincipal:
		id.Roles = ExtractRoles(v.Claims, rolesClientID)
	}
	return id
}

// FromClaims construye la identidad a partir de claims ya validadas.
func FromClaims(claims map[string]any, rolesClientID string) Identity {
	return FromPrincipal(JWTPrincipal{Claims: claims}, rolesClientID)
}
