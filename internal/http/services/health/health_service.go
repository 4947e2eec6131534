// Package health contiene el service para health checks.
package health

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	dto "github.com/dropDatabas3/usercards/internal/http/dto/health"
	"github.com/dropDatabas3/usercards/internal/observability/logger"
)

// HealthService define las operaciones de health check.
type HealthService interface {
	Check(ctx context.Context) dto.HealthResponse
}

// Deps contiene las dependencias inyectables para el health service.
type Deps struct {
	DBCheck    func(ctx context.Context) error // crítico
	CacheCheck func(ctx context.Context) error // no crítico: el cache degrada a lecturas directas
	Timeout    time.Duration
}

// Services agrupa los services del dominio health.
type Services struct {
	Health HealthService
}

// NewServices crea el agregador de services de health.
func NewServices(d Deps) Services {
	return Services{Health: NewHealthService(d)}
}

type healthService struct {
	deps Deps
}

// NewHealthService crea un nuevo service de health check.
func NewHealthService(deps Deps) HealthService {
	if deps.Timeout <= 0 {
		deps.Timeout = 2 * time.Second
	}
	return &healthService{deps: deps}
}

func (s *healthService) Check(ctx context.Context) dto.HealthResponse {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("health"),
		logger.Op("Check"),
	)

	response := dto.HealthResponse{
		Components: make(map[string]dto.HealthStatus),
		Timestamp:  time.Now().UTC(),
		Version:    os.Getenv("SERVICE_VERSION"),
		Commit:     os.Getenv("SERVICE_COMMIT"),
	}

	critical := s.probe(ctx, log, "db", s.deps.DBCheck, &response)
	degraded := s.probe(ctx, log, "cache", s.deps.CacheCheck, &response)

	switch {
	case critical:
		response.Status = "unavailable"
	case degraded:
		response.Status = "degraded"
	default:
		response.Status = "ready"
	}
	return response
}

// probe ejecuta check con timeout y devuelve true si falló.
func (s *healthService) probe(ctx context.Context, log *zap.Logger, name string, check func(context.Context) error, resp *dto.HealthResponse) bool {
	if check == nil {
		resp.Components[name] = dto.HealthStatus{Status: "disabled"}
		return false
	}
	cctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
	defer cancel()

	if err := check(cctx); err != nil {
		resp.Components[name] = dto.HealthStatus{Status: "error", Message: err.Error()}
		log.Warn(name+" check failed", logger.Err(err))
		return true
	}
	resp.Components[name] = dto.HealthStatus{Status: "ok"}
	return false
}
