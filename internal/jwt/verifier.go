// Package jwt valida los access tokens emitidos por el proveedor de identidad.
//
// Dos modos:
//   - JWKS (RS256/ES256/EdDSA): claves públicas del IdP descargadas y cacheadas.
//   - HS256 con secreto compartido (desarrollo local y tests).
package jwt

import (
	"context"
	"errors"
	"net/http"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken    = errors.New("invalid_jwt")
	ErrInvalidIssuer   = errors.New("invalid_issuer")
	ErrInvalidAudience = errors.New("invalid_audience")
	ErrExpired         = errors.New("expired")
	ErrUnknownKey      = errors.New("unknown_kid")
	ErrNoKeySource     = errors.New("jwt: jwks_url or hmac_secret required")
)

// Config configura el Verifier.
type Config struct {
	Issuer     string
	Audience   string
	JWKSURL    string
	HMACSecret string
	Leeway     time.Duration
	JWKSTTL    time.Duration
	HTTPClient *http.Client
}

// Verifier valida tokens y devuelve sus claims.
type Verifier struct {
	cfg     Config
	jwks    *jwksCache
	methods []string
}

// NewVerifier construye el Verifier. Si hay JWKSURL se usa JWKS, si no HMACSecret.
func NewVerifier(cfg Config) (*Verifier, error) {
	v := &Verifier{cfg: cfg}
	switch {
	case cfg.JWKSURL != "":
		url, client := cfg.JWKSURL, cfg.HTTPClient
		v.jwks = newJWKSCache(cfg.JWKSTTL, func(ctx context.Context) (*jose.JSONWebKeySet, error) {
			return FetchJWKS(ctx, client, url)
		})
		v.methods = []string{"RS256", "RS384", "RS512", "ES256", "ES384", "PS256", "EdDSA"}
	case cfg.HMACSecret != "":
		v.methods = []string{"HS256"}
	default:
		return nil, ErrNoKeySource
	}
	return v, nil
}

// Verify valida firma, exp/nbf (con leeway), iss y aud si están configurados.
func (v *Verifier) Verify(ctx context.Context, raw string) (map[string]any, error) {
	keyfunc := func(t *jwtv5.Token) (any, error) {
		if v.jwks == nil {
			return []byte(v.cfg.HMACSecret), nil
		}
		kid, _ := t.Header["kid"].(string)
		return v.jwks.Key(ctx, kid)
	}

	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods(v.methods),
		jwtv5.WithLeeway(v.cfg.Leeway),
		jwtv5.WithExpirationRequired(),
	}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwtv5.WithIssuer(v.cfg.Issuer))
	}
	if v.cfg.Audience != "" {
		opts = append(opts, jwtv5.WithAudience(v.cfg.Audience))
	}

	tok, err := jwtv5.Parse(raw, keyfunc, opts...)
	switch {
	case err == nil && tok.Valid:
	case errors.Is(err, jwtv5.ErrTokenExpired):
		return nil, ErrExpired
	case errors.Is(err, jwtv5.ErrTokenInvalidIssuer):
		return nil, ErrInvalidIssuer
	case errors.Is(err, jwtv5.ErrTokenInvalidAudience):
		return nil, ErrInvalidAudience
	case errors.Is(err, ErrUnknownKey):
		return nil, ErrUnknownKey
	default:
		return nil, ErrInvalidToken
	}

	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	out := make(map[string]any, len(claims))
	for k, val := range claims {
		out[k] = val
	}
	return out, nil
}
