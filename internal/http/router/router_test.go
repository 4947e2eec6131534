package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/usercards/internal/cache"
	"github.com/dropDatabas3/usercards/internal/http/controllers"
	"github.com/dropDatabas3/usercards/internal/http/dto/common"
	dtousers "github.com/dropDatabas3/usercards/internal/http/dto/users"
	mw "github.com/dropDatabas3/usercards/internal/http/middlewares"
	"github.com/dropDatabas3/usercards/internal/http/services"
	"github.com/dropDatabas3/usercards/internal/http/services/health"
	jwtx "github.com/dropDatabas3/usercards/internal/jwt"
	"github.com/dropDatabas3/usercards/internal/rate"
	"github.com/dropDatabas3/usercards/internal/security/access"
	"github.com/dropDatabas3/usercards/internal/store/memory"
)

const (
	testSecret = "router-test-secret-0123456789abcdef"
	testIss    = "https://idp.test/realms/app"
)

type env struct {
	t     *testing.T
	h     http.Handler
	store *memory.Store
}

func newEnv(t *testing.T, limiter rate.Limiter) *env {
	t.Helper()
	store := memory.New()
	aside := cache.NewAside(cache.NewMemory("uc:", time.Minute), time.Minute)

	svcs := services.New(services.Deps{
		Store:      store,
		Cache:      aside,
		HealthDeps: health.Deps{DBCheck: store.Ping},
	})
	verifier, err := jwtx.NewVerifier(jwtx.Config{Issuer: testIss, HMACSecret: testSecret})
	require.NoError(t, err)

	h := New(Deps{
		Controllers: controllers.New(svcs),
		Verifier:    verifier,
		Authorizer:  mw.NewAuthorizer(access.NewEngine(access.StoreLookup(store), ""), nil),
		RateLimiter: limiter,
		CORSOrigins: []string{"http://localhost:3000"},
	})
	return &env{t: t, h: h, store: store}
}

func (e *env) token(email string, roles ...string) string {
	e.t.Helper()
	claims := jwtv5.MapClaims{
		"iss":   testIss,
		"sub":   "sub-" + email,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	if len(roles) > 0 {
		claims["realm_access"] = map[string]any{"roles": roles}
	}
	s, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(e.t, err)
	return s
}

func (e *env) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func userBody(email string, cards ...map[string]any) map[string]any {
	b := map[string]any{"name": "Alice", "surname": "Liddell", "birthDate": "1990-04-12", "email": email}
	if cards != nil {
		b["cards"] = cards
	}
	return b
}

func cardBody(number string) map[string]any {
	return map[string]any{"number": number, "holder": "ALICE", "expirationDate": "2030-01-31"}
}

func TestHealthIsPublic(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decode[map[string]any](t, rec)["status"])
}

func TestAuthRequired(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(http.MethodGet, "/api/v1/users/1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = e.do(http.MethodGet, "/api/v1/users/1", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserLifecycle(t *testing.T) {
	e := newEnv(t, nil)
	alice := e.token("alice@example.com")
	bob := e.token("bob@example.com")
	admin := e.token("root@example.com", "ROLE_ADMIN")

	// crear para otro email: prohibido
	rec := e.do(http.MethodPost, "/api/v1/users", alice, userBody("bob@example.com"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodPost, "/api/v1/users", alice, userBody("alice@example.com", cardBody("1111111111111111"), cardBody("2222222222222222")))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[dtousers.UserResponse](t, rec)
	require.Len(t, created.Cards, 2)
	userPath := "/api/v1/users/" + strconv.FormatInt(created.ID, 10)
	assert.Equal(t, userPath, rec.Header().Get("Location"))

	// duplicado
	rec = e.do(http.MethodPost, "/api/v1/users", alice, userBody("ALICE@example.com"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// lecturas
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, userPath, alice, nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, userPath, bob, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, userPath, admin, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/v1/users/me", alice, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/v1/users/me", bob, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/v1/users/email/alice@example.com", alice, nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/v1/users/email/alice@example.com", bob, nil).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/v1/users/abc", alice, nil).Code)

	// update: conservar la primera tarjeta, agregar una nueva
	keep := created.Cards[0]
	rec = e.do(http.MethodPut, userPath, alice, map[string]any{
		"name": "Alicia", "surname": "Liddell", "birthDate": "1990-04-12",
		"cards": []map[string]any{
			{"id": keep.ID, "number": "9999999999999999", "holder": "A", "expirationDate": "2031-01-01"},
			cardBody("3333333333333333"),
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[dtousers.UserResponse](t, rec)
	assert.Equal(t, "Alicia", updated.Name)
	require.Len(t, updated.Cards, 2)
	ids := map[int64]bool{}
	for _, c := range updated.Cards {
		ids[c.ID] = true
		assert.Equal(t, created.ID, c.UserID)
	}
	assert.True(t, ids[keep.ID])
	assert.False(t, ids[created.Cards[1].ID])

	// la tarjeta borrada ya no es accesible
	rec = e.do(http.MethodGet, "/api/v1/cards/"+strconv.FormatInt(created.Cards[1].ID, 10), alice, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// el GET siguiente refleja el update (cache invalidado)
	got := decode[dtousers.UserResponse](t, e.do(http.MethodGet, userPath, alice, nil))
	assert.Equal(t, "Alicia", got.Name)

	// validación
	rec = e.do(http.MethodPut, userPath, alice, map[string]any{"name": "", "surname": "L", "birthDate": "2999-01-01"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", decode[map[string]any](t, rec)["code"])

	// listado admin
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/v1/users", alice, nil).Code)
	page := decode[common.Page[dtousers.UserResponse]](t, e.do(http.MethodGet, "/api/v1/users?page=0&size=10", admin, nil))
	assert.Equal(t, int64(1), page.TotalElements)

	batch := e.do(http.MethodGet, "/api/v1/users/batch?ids="+strconv.FormatInt(created.ID, 10)+",999", admin, nil)
	require.Equal(t, http.StatusOK, batch.Code)
	assert.Len(t, decode[[]dtousers.UserResponse](t, batch), 1)

	// tarjetas del usuario
	rec = e.do(http.MethodGet, userPath+"/cards", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	// delete
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodDelete, userPath, bob, nil).Code)
	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, userPath, alice, nil).Code)
	// usuario inexistente => el guard niega (no hay email con qué comparar)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, userPath, alice, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, userPath, admin, nil).Code)

	n, err := e.store.Cards().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCardRoutes(t *testing.T) {
	e := newEnv(t, nil)
	alice := e.token("alice@example.com")
	bob := e.token("bob@example.com")
	admin := e.token("root@example.com", "admin")

	created := decode[dtousers.UserResponse](t, e.do(http.MethodPost, "/api/v1/users", alice, userBody("alice@example.com")))
	body := cardBody("4111111111111111")
	body["userId"] = created.ID

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, "/api/v1/cards", bob, body).Code)

	rec := e.do(http.MethodPost, "/api/v1/cards", alice, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	card := decode[map[string]any](t, rec)
	cardPath := "/api/v1/cards/" + strconv.FormatInt(int64(card["id"].(float64)), 10)

	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, cardPath, alice, nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, cardPath, bob, nil).Code)

	rec = e.do(http.MethodPut, cardPath, alice, cardBody("5500000000000004"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5500000000000004", decode[map[string]any](t, rec)["number"])

	// el perfil embebe la tarjeta actualizada
	profile := decode[dtousers.UserResponse](t, e.do(http.MethodGet, "/api/v1/users/me", alice, nil))
	require.Len(t, profile.Cards, 1)
	assert.Equal(t, "5500000000000004", profile.Cards[0].Number)

	// admin: listado y alta para usuario inexistente
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/v1/cards", alice, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/v1/cards", admin, nil).Code)
	body["userId"] = 999
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPost, "/api/v1/cards", admin, body).Code)

	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, cardPath, alice, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, cardPath, admin, nil).Code)
}

func TestSyncRoute(t *testing.T) {
	e := newEnv(t, nil)
	carol := e.token("carol@example.com")

	rec := e.do(http.MethodPost, "/api/v1/users/sync", carol, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/api/v1/users/sync", carol, map[string]any{"name": "Carol", "surname": "D", "birthDate": "1985-03-01"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(http.MethodPost, "/api/v1/users/sync", carol, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "carol@example.com", decode[dtousers.UserResponse](t, rec).Email)
}

func TestRateLimitAndNotFound(t *testing.T) {
	e := newEnv(t, rate.NewMemoryLimiter(2, time.Minute))
	tok := e.token("alice@example.com")

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/nope", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/v1/users/me", tok, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, e.do(http.MethodGet, "/api/v1/users/me", tok, nil).Code)

	// health no consume cupo
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/healthz", "", nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	e := newEnv(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/users", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
