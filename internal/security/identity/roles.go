package identity

import (
	"strings"

	"github.com/mitchellh/mapstructure"
)

type accessClaim struct {
	Roles []string `mapstructure:"roles"`
}

// ExtractRoles junta los roles de realm_access.roles, resource_access.<client>.roles
// (si clientID != ""), roles y groups. Devuelve roles normalizados sin duplicados,
// en orden de aparición. Formatos inesperados se ignoran.
func ExtractRoles(claims map[string]any, clientID string) []string {
	if len(claims) == 0 {
		return nil
	}

	var raw []string

	var realm accessClaim
	if decode(claims["realm_access"], &realm) {
		raw = append(raw, realm.Roles...)
	}

	if clientID != "" {
		var resources map[string]accessClaim
		if decode(claims["resource_access"], &resources) {
			raw = append(raw, resources[clientID].Roles...)
		}
	}

	for _, key := range []string{"roles", "groups"} {
		var list []string
		if decode(claims[key], &list) {
			raw = append(raw, list...)
		}
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		n := NormalizeRole(r)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// NormalizeRole pasa a minúsculas y quita el prefijo ROLE_ y la barra inicial de grupos.
func NormalizeRole(r string) string {
	r = strings.ToLower(strings.TrimSpace(r))
	r = strings.TrimPrefix(r, "role_")
	r = strings.TrimPrefix(r, "/")
	return r
}

func decode(in any, out any) bool {
	if in == nil {
		return false
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return false
	}
	return dec.Decode(in) == nil
}
