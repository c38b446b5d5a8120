package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productapi/internal/domain"
	"productapi/internal/repos"
	"productapi/internal/services"
)

func TestLoginIssuesTokenForKnownUsers(t *testing.T) {
	env := newTestEnv(t)

	for username, sub := range map[string]string{"admin": "1", "user": "2"} {
		resp, body := env.do(t, "POST", "/api/auth/login", "", `{"username":"`+username+`","password":"password"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode, username)
		var out struct {
			Token     string    `json:"token"`
			Username  string    `json:"username"`
			ExpiresAt time.Time `json:"expiresAt"`
		}
		require.NoError(t, json.Unmarshal(body, &out))
		assert.Equal(t, username, out.Username)
		assert.WithinDuration(t, time.Now().Add(time.Hour), out.ExpiresAt, time.Minute)

		claims, err := env.tokens.Verify(out.Token)
		require.NoError(t, err, username)
		assert.Equal(t, sub, claims.Subject)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{
		`{"username":"admin","password":"nope"}`,
		`{"username":"root","password":"password"}`,
		`{"username":"","password":""}`,
		`{"username":"<admin>","password":"password"}`,
	} {
		resp, out := env.do(t, "POST", "/api/auth/login", "", body)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, body)
		assert.Equal(t, "Identifiants invalides", decodeMap(t, out)["message"], body)
	}
}

// counts repository calls to prove the gate runs first
type spyRepo struct {
	repos.ProductRepository
	calls int
}

func (s *spyRepo) Add(ctx context.Context, p *domain.Product) error {
	s.calls++
	return s.ProductRepository.Add(ctx, p)
}

func (s *spyRepo) GetAll(ctx context.Context) ([]*domain.Product, error) {
	s.calls++
	return s.ProductRepository.GetAll(ctx)
}

func (s *spyRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, bool, error) {
	s.calls++
	return s.ProductRepository.GetByID(ctx, id)
}

func (s *spyRepo) Update(ctx context.Context, id uuid.UUID, fn func(*domain.Product) error) (*domain.Product, bool, error) {
	s.calls++
	return s.ProductRepository.Update(ctx, id, fn)
}

func TestProductRoutesRequireBearer(t *testing.T) {
	spy := &spyRepo{ProductRepository: repos.NewMemoryProductRepo()}
	env := newTestEnv(t, withRepo(spy))

	forged, _ := services.SignClaims(&services.Claims{Name: "admin"}, "another-secret-that-is-long-enough-000")
	for _, tok := range []string{"", "garbage", forged} {
		for _, c := range []struct{ method, path, body string }{
			{"GET", "/api/products", ""},
			{"POST", "/api/products", `{"price":10}`},
			{"GET", "/api/products/" + uuid.NewString(), ""},
			{"PUT", "/api/products/" + uuid.NewString(), `{"price":10}`},
		} {
			resp, body := env.do(t, c.method, c.path, tok, c.body)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s token=%q", c.method, c.path, tok)
			assert.NotNil(t, decodeMap(t, body)["message"], "expected {message}, got %s", body)
		}
	}
	assert.Zero(t, spy.calls, "repository reached without a valid token")
}

func TestExpiredTokenIsRejected(t *testing.T) {
	now := time.Now()
	env := newTestEnv(t, withClock(func() time.Time { return now }))
	tok := env.login(t, "admin", "password")

	resp, _ := env.do(t, "GET", "/api/products", tok, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, "fresh token")

	now = now.Add(61 * time.Minute)
	resp, _ = env.do(t, "GET", "/api/products", tok, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "expired token")
}

func TestLoginThrottle(t *testing.T) {
	env := newTestEnv(t, withLoginLimit(2))

	bad := `{"username":"admin","password":"wrong"}`
	for i := 0; i < 2; i++ {
		resp, _ := env.do(t, "POST", "/api/auth/login", "", bad)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "attempt %d", i+1)
	}
	resp, body := env.do(t, "POST", "/api/auth/login", "", `{"username":"admin","password":"password"}`)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotNil(t, decodeMap(t, body)["message"])
}

func TestAPIThrottle(t *testing.T) {
	env := newTestEnv(t, withAPILimit(3))
	tok := env.login(t, "admin", "password")

	// the login above used one slot of the shared budget
	for i := 0; i < 2; i++ {
		resp, _ := env.do(t, "GET", "/api/products", tok, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, "request %d", i+1)
	}
	resp, body := env.do(t, "GET", "/api/products", tok, "")
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "Trop de requêtes, réessayez plus tard.", decodeMap(t, body)["message"])

	resp, _ = env.do(t, "GET", "/healthz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health checks are outside the API budget")
}

func TestLoginMalformedBody(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.do(t, "POST", "/api/auth/login", "", `username=admin`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
