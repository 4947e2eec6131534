package middlewares

import (
	"net/http"
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/usercards/internal/observability/logger"
)

// statusRecorder captura el status code y bytes escritos de la respuesta.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.wroteHeader {
		return
	}
	s.status = code
	s.wroteHeader = true
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.WriteHeader(http.StatusOK)
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// Unwrap expone el writer original (http.ResponseController).
func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

// WithLogging registra cada request e inyecta en el contexto un logger scoped
// con request_id, method y path. RequireAuth le agrega la identidad.
//
// Ejemplo (prod):
//
//	{"level":"info","msg":"request completed","request_id":"abc123","method":"PUT","path":"/api/v1/users/7","identity":"a…@e….com","status":200,"bytes":256,"duration_ms":12}
func WithLogging() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := w.Header().Get("X-Request-ID")
			if requestID == "" {
				requestID = GetRequestID(r.Context())
			}

			reqLog := logger.L().With(
				logger.RequestID(requestID),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
			)
			// holder compartido: RequireAuth reemplaza el logger más adentro
			holder := &logHolder{log: reqLog}
			ctx := logger.ToContext(withLogHolder(r.Context(), holder), reqLog)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			fields := []zap.Field{
				logger.Status(rec.status),
				logger.Bytes(rec.bytes),
				logger.DurationMs(time.Since(start).Milliseconds()),
			}
			switch {
			case rec.status >= 500:
				holder.log.Error("request failed", fields...)
			case rec.status >= 400:
				holder.log.Warn("request completed with client error", fields...)
			default:
				holder.log.Info("request completed", fields...)
			}
		})
	}
}

// logHolder permite que middlewares internos enriquezcan el logger usado
// en la línea final del request.
type logHolder struct {
	log *zap.Logger
}

type logHolderKey struct{}

func withLogHolder(ctx context.Context, h *logHolder) context.Context {
	return context.WithValue(ctx, logHolderKey{}, h)
}

// enrichLogger agrega campos al logger del request (contexto y línea final).
func enrichLogger(ctx context.Context, fields ...zap.Field) context.Context {
	l := logger.From(ctx).With(fields...)
	if h, ok := ctx.Value(logHolderKey{}).(*logHolder); ok && h != nil {
		h.log = h.log.With(fields...)
	}
	return logger.ToContext(ctx, l)
}
