package cache

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/usercards/internal/observability/logger"
)

// Resultados reportados al Observer.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

// sharedLoadTimeout acota una carga compartida entre requests concurrentes.
const sharedLoadTimeout = 10 * time.Second

// Aside implementa cache-aside explícito: leer, en miss cargar del store,
// escribir y devolver. Los errores del cache nunca llegan al caller: se
// degradan a una lectura directa y se loguean.
//
// Un *Aside nil es válido y no cachea nada.
type Aside struct {
	client   Client
	ttl      time.Duration
	group    singleflight.Group
	observer func(result string)
}

// AsideOption configura un Aside.
type AsideOption func(*Aside)

// WithObserver registra un callback por cada lectura (hit/miss/error).
func WithObserver(fn func(result string)) AsideOption {
	return func(a *Aside) { a.observer = fn }
}

// NewAside crea el wrapper sobre client con el TTL dado.
func NewAside(client Client, ttl time.Duration, opts ...AsideOption) *Aside {
	a := &Aside{client: client, ttl: ttl}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Load deja en dst el valor de key. En miss ejecuta loader (una sola vez por
// key entre requests concurrentes) y guarda el resultado. Los errores del
// loader se devuelven tal cual y no se cachean.
func (a *Aside) Load(ctx context.Context, key string, dst any, loader func(ctx context.Context) (any, error)) error {
	if a == nil || a.client == nil {
		return load(ctx, dst, loader)
	}
	log := logger.From(ctx)

	b, err := a.client.Get(ctx, key)
	switch {
	case err == nil:
		if uerr := json.Unmarshal(b, dst); uerr == nil {
			a.observe(ResultHit)
			return nil
		}
		log.Warn("cache entry undecodable, dropping", logger.Component("cache"), logger.Key(key))
		_ = a.client.Delete(ctx, key)
		a.observe(ResultMiss)
	case IsNotFound(err):
		a.observe(ResultMiss)
	default:
		log.Warn("cache get failed", logger.Component("cache"), logger.Key(key), logger.Err(err))
		a.observe(ResultError)
	}

	// La carga es compartida: no depende de la cancelación de quien la inició.
	// Cada caller deja de esperar cuando se cancela su propio ctx.
	ch := a.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()

		val, err := loader(loadCtx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		if serr := a.client.Set(loadCtx, key, raw, a.ttl); serr != nil {
			log.Warn("cache set failed", logger.Component("cache"), logger.Key(key), logger.Err(serr))
		}
		return raw, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dst)
	}
}

// Invalidate elimina las keys. Un error se loguea y no se propaga: la entrada
// expira sola por TTL.
func (a *Aside) Invalidate(ctx context.Context, keys ...string) {
	if a == nil || a.client == nil || len(keys) == 0 {
		return
	}
	if err := a.client.Delete(ctx, keys...); err != nil {
		logger.From(ctx).Warn("cache invalidate failed",
			logger.Component("cache"), logger.Count(len(keys)), logger.Err(err))
	}
}

func (a *Aside) observe(result string) {
	if a.observer != nil {
		a.observer(result)
	}
}

func load(ctx context.Context, dst any, loader func(ctx context.Context) (any, error)) error {
	val, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
