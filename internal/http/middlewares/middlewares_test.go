package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/usercards/internal/domain/repository"
	jwtx "github.com/dropDatabas3/usercards/internal/jwt"
	"github.com/dropDatabas3/usercards/internal/rate"
	"github.com/dropDatabas3/usercards/internal/security/access"
	"github.com/dropDatabas3/usercards/internal/security/identity"
)

// ─── fakes ───

type fakeVerifier struct {
	claims map[string]any
	err    error
}

func (f fakeVerifier) Verify(context.Context, string) (map[string]any, error) {
	return f.claims, f.err
}

type fakeLookup struct {
	users map[int64]string
	cards map[int64]string
}

func (f fakeLookup) EmailByID(_ context.Context, id int64) (string, error) {
	if e, ok := f.users[id]; ok {
		return e, nil
	}
	return "", repository.ErrNotFound
}

func (f fakeLookup) OwnerEmail(_ context.Context, id int64) (string, error) {
	if e, ok := f.cards[id]; ok {
		return e, nil
	}
	return "", repository.ErrNotFound
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
}

func decodeCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

// ─── chain / request id / recover ───

func TestChain_Order(t *testing.T) {
	var order []string
	mk := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(okHandler(), mk("A"), mk("B"), mk("C"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"A", "B", "C"}, order)
}

func TestWithRequestID(t *testing.T) {
	var seen string
	h := WithRequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 32)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "client-abc", seen)
	assert.Equal(t, "client-abc", rec.Header().Get("X-Request-ID"))
}

func TestWithRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }),
		WithRequestID(), WithRecover(), WithLogging())

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() { h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil)) })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// ─── auth ───

func TestRequireAuth(t *testing.T) {
	claims := map[string]any{"email": "alice@example.com", "realm_access": map[string]any{"roles": []any{"ROLE_ADMIN"}}}

	tests := []struct {
		name     string
		header   string
		verifier fakeVerifier
		status   int
		code     string
	}{
		{"missing header", "", fakeVerifier{claims: claims}, http.StatusUnauthorized, "TOKEN_MISSING"},
		{"not bearer", "Basic abc", fakeVerifier{claims: claims}, http.StatusUnauthorized, "TOKEN_MISSING"},
		{"invalid", "Bearer x", fakeVerifier{err: jwtx.ErrInvalidToken}, http.StatusUnauthorized, "TOKEN_INVALID"},
		{"expired", "Bearer x", fakeVerifier{err: jwtx.ErrExpired}, http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"ok", "bearer x", fakeVerifier{claims: claims}, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got identity.Identity
			h := RequireAuth(tt.verifier, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = GetIdentity(r.Context())
				w.WriteHeader(http.StatusNoContent)
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeCode(t, rec))
				assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
				return
			}
			assert.Equal(t, "alice@example.com", got.Name)
			assert.True(t, got.HasRole("admin"))
		})
	}
}

func TestRequireAuth_ChallengeHeaderIsWellFormed(t *testing.T) {
	verr := fmt.Errorf("%w: unexpected \"alg\" value \"none\"", jwtx.ErrInvalidToken)
	h := RequireAuth(fakeVerifier{err: verr}, "")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer x")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	challenge := rec.Header().Get("WWW-Authenticate")
	assert.Equal(t, `Bearer realm="api", error="invalid_token", error_description="token invalid"`, challenge)
	assert.Equal(t, 6, strings.Count(challenge, `"`))
}

func TestRequireIdentity(t *testing.T) {
	h := RequireIdentity()(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), identity.Identity{Name: "a@b.com"}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

// ─── rate ───

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (rate.Result, error) {
	return rate.Result{}, errors.New("redis down")
}

func TestWithRateLimit(t *testing.T) {
	mw := WithRateLimit(RateLimitConfig{
		Limiter:   rate.NewMemoryLimiter(2, time.Minute),
		Whitelist: []string{"/healthz"},
	})
	h := mw(okHandler())

	do := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, do("/api").Code)
	rec := do("/api")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = do("/api")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// whitelist no cuenta ni bloquea
	assert.Equal(t, http.StatusNoContent, do("/healthz").Code)
}

func TestWithRateLimit_FailsOpen(t *testing.T) {
	h := WithRateLimit(RateLimitConfig{Limiter: failingLimiter{}})(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:4000"
	assert.Equal(t, "192.168.1.5", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientIP(req))
}

// ─── authorize ───

var (
	alice = identity.Identity{Name: "alice@example.com", Roles: []string{"user"}}
	root  = identity.Identity{Name: "root@example.com", Roles: []string{"admin"}}
)

type decision struct {
	check   string
	allowed bool
}

func newTestRouter(t *testing.T) (http.Handler, *[]decision) {
	t.Helper()
	engine := access.NewEngine(fakeLookup{
		users: map[int64]string{1: "alice@example.com", 2: "bob@example.com"},
		cards: map[int64]string{10: "alice@example.com", 20: "bob@example.com"},
	}, "")
	var seen []decision
	az := NewAuthorizer(engine, func(check string, allowed bool) { seen = append(seen, decision{check, allowed}) })

	echoBody := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	})

	r := chi.NewRouter()
	r.With(az.Admin()).Get("/users", okHandler().ServeHTTP)
	r.With(az.User("id")).Get("/users/{id}", okHandler().ServeHTTP)
	r.With(az.Email("email")).Get("/users/email/{email}", okHandler().ServeHTTP)
	r.With(az.Card("id")).Get("/cards/{id}", okHandler().ServeHTTP)
	r.With(az.EmailFromBody("email")).Post("/users", echoBody)
	r.With(az.UserFromBody("userId")).Post("/cards", echoBody)
	return r, &seen
}

func serveAs(h http.Handler, id identity.Identity, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req = req.WithContext(WithIdentity(req.Context(), id))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthorizer_PathGuards(t *testing.T) {
	h, _ := newTestRouter(t)

	tests := []struct {
		name   string
		id     identity.Identity
		path   string
		status int
	}{
		{"admin list as admin", root, "/users", http.StatusNoContent},
		{"admin list as user", alice, "/users", http.StatusForbidden},
		{"own user", alice, "/users/1", http.StatusNoContent},
		{"other user", alice, "/users/2", http.StatusForbidden},
		{"missing user", alice, "/users/99", http.StatusForbidden},
		{"admin any user", root, "/users/2", http.StatusNoContent},
		{"malformed id", alice, "/users/abc", http.StatusBadRequest},
		{"anonymous", identity.Anonymous, "/users/1", http.StatusForbidden},
		{"own email", alice, "/users/email/ALICE@example.com", http.StatusNoContent},
		{"other email", alice, "/users/email/bob@example.com", http.StatusForbidden},
		{"own card", alice, "/cards/10", http.StatusNoContent},
		{"other card", alice, "/cards/20", http.StatusForbidden},
		{"malformed card id", alice, "/cards/-1", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveAs(h, tt.id, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestAuthorizer_BodyGuardsRestoreBody(t *testing.T) {
	h, seen := newTestRouter(t)

	body := `{"email":"alice@example.com","name":"Alice"}`
	rec := serveAs(h, alice, http.MethodPost, "/users", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, rec.Body.String())

	rec = serveAs(h, alice, http.MethodPost, "/users", `{"email":"bob@example.com"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// sin email en el body: denegado incluso para admin
	rec = serveAs(h, root, http.MethodPost, "/users", `{"name":"x"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	card := `{"userId":1,"number":"4111111111111111"}`
	rec = serveAs(h, alice, http.MethodPost, "/cards", card)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, card, rec.Body.String())

	rec = serveAs(h, alice, http.MethodPost, "/cards", `{"userId":2}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// sin userId solo pasa admin
	assert.Equal(t, http.StatusForbidden, serveAs(h, alice, http.MethodPost, "/cards", `{}`).Code)
	assert.Equal(t, http.StatusOK, serveAs(h, root, http.MethodPost, "/cards", `{}`).Code)

	require.NotEmpty(t, *seen)
	assert.Equal(t, decision{CheckUserEmail, true}, (*seen)[0])
}

func TestExtractJSONField_LargeBodyKeepsTail(t *testing.T) {
	body := `{"email":"a@b.com","pad":"` + strings.Repeat("x", 64) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	// límite menor al body: no se puede parsear pero el body queda intacto
	assert.Nil(t, extractJSONField(req, "email", 16))
	rest, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(rest))
}
