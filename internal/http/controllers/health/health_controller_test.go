package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/dropDatabas3/usercards/internal/http/dto/health"
)

type fakeHealth struct{ resp dto.HealthResponse }

func (f fakeHealth) Check(context.Context) dto.HealthResponse { return f.resp }

func TestReadyz_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		status string
		code   int
	}{
		{"ready", "ready", http.StatusOK},
		{"degraded", "degraded", http.StatusOK},
		{"unavailable", "unavailable", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewHealthController(fakeHealth{resp: dto.HealthResponse{
				Status:  tt.status,
				Version: "1.2.3",
				Components: map[string]dto.HealthStatus{
					"db": {Status: "down", Message: "connection refused"},
				},
				Timestamp: time.Now().UTC(),
			}})

			rec := httptest.NewRecorder()
			c.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "1.2.3", rec.Header().Get("X-Service-Version"))

			// el body siempre es el reporte por componente, también en 503
			var body dto.HealthResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.status, body.Status)
			assert.Equal(t, "connection refused", body.Components["db"].Message)
		})
	}
}

func TestHealthz(t *testing.T) {
	c := NewHealthController(fakeHealth{})
	rec := httptest.NewRecorder()
	c.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
