package jwt

import (
	"context"
	"sync"
	"time"

	jose "github.com/go-jose/go-jose/v4"
)

// jwksCache cachea el JWKS del IdP por un TTL corto. Un kid desconocido
// fuerza un refresh, limitado a uno cada minRefresh.
type jwksCache struct {
	mu         sync.RWMutex
	ttl        time.Duration
	minRefresh time.Duration
	load       func(ctx context.Context) (*jose.JSONWebKeySet, error)
	now        func() time.Time

	set       *jose.JSONWebKeySet
	exp       time.Time
	lastFetch time.Time
}

func newJWKSCache(ttl time.Duration, loader func(context.Context) (*jose.JSONWebKeySet, error)) *jwksCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &jwksCache{
		ttl:        ttl,
		minRefresh: 10 * time.Second,
		load:       loader,
		now:        time.Now,
	}
}

// Key retorna la clave pública para kid. kid vacío solo es válido si el set
// tiene una única clave de firma.
func (c *jwksCache) Key(ctx context.Context, kid string) (any, error) {
	set, err := c.get(ctx, false)
	if err != nil {
		return nil, err
	}
	if k, ok := pick(set, kid); ok {
		return k, nil
	}

	// kid desconocido: posible rotación en el IdP
	set, err = c.get(ctx, true)
	if err != nil {
		return nil, err
	}
	if k, ok := pick(set, kid); ok {
		return k, nil
	}
	return nil, ErrUnknownKey
}

func (c *jwksCache) get(ctx context.Context, force bool) (*jose.JSONWebKeySet, error) {
	now := c.now()

	c.mu.RLock()
	set, exp, last := c.set, c.exp, c.lastFetch
	c.mu.RUnlock()

	if set != nil && now.Before(exp) && (!force || now.Sub(last) < c.minRefresh) {
		return set, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// otro goroutine pudo refrescar mientras esperábamos el lock
	if c.set != nil && c.lastFetch.After(last) {
		return c.set, nil
	}
	fresh, err := c.load(ctx)
	if err != nil {
		if c.set != nil {
			// mantener el set viejo ante una falla del IdP
			return c.set, nil
		}
		return nil, err
	}
	c.set = fresh
	c.exp = now.Add(c.ttl)
	c.lastFetch = now
	return fresh, nil
}

// Invalidate descarta el JWKS cacheado.
func (c *jwksCache) Invalidate() {
	c.mu.Lock()
	c.set = nil
	c.exp = time.Time{}
	c.mu.Unlock()
}

func pick(set *jose.JSONWebKeySet, kid string) (any, bool) {
	if set == nil {
		return nil, false
	}
	if kid != "" {
		for _, k := range set.Key(kid) {
			if k.Use == "" || k.Use == "sig" {
				return k.Key, true
			}
		}
		return nil, false
	}
	var sig []jose.JSONWebKey
	for _, k := range set.Keys {
		if k.Use == "" || k.Use == "sig" {
			sig = append(sig, k)
		}
	}
	if len(sig) == 1 {
		return sig[0].Key, true
	}
	return nil, false
}
