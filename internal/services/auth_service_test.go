package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"productapi/internal/domain"
	"productapi/internal/services"
)

const testSecret = "test-secret-key-that-is-long-enough-0123"

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTokens(clock *fakeClock) *services.TokenService {
	return &services.TokenService{
		Secret:   testSecret,
		Issuer:   "productapi",
		Audience: "productapi",
		TTL:      60 * time.Minute,
		Now:      clock.Now,
	}
}

func newAuth(t *testing.T, clock *fakeClock) *services.AuthService {
	t.Helper()
	creds, err := services.NewStaticCredentials(bcrypt.MinCost, services.DefaultAccounts()...)
	require.NoError(t, err)
	return services.NewAuthService(creds, newTokens(clock))
}

func TestLogin_KnownAccounts(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	auth := newAuth(t, clock)

	for username, sub := range map[string]string{"admin": "1", "user": "2"} {
		t.Run(username, func(t *testing.T) {
			res, err := auth.Login(context.Background(), username, "password")
			require.NoError(t, err)
			assert.Equal(t, username, res.Username)
			assert.WithinDuration(t, clock.now.Add(time.Hour), res.ExpiresAt, time.Second)

			claims, err := auth.Tokens.Verify(res.Token)
			require.NoError(t, err)
			assert.Equal(t, sub, claims.Subject)
			assert.Equal(t, username, claims.Name)
			assert.NotEmpty(t, claims.ID)
		})
	}
}

func TestLogin_Rejects(t *testing.T) {
	auth := newAuth(t, &fakeClock{now: time.Now()})
	cases := [][2]string{
		{"admin", "wrong"},
		{"user", ""},
		{"nobody", "password"},
		{"", ""},
		{"Admin", "password"},
	}
	for _, c := range cases {
		_, err := auth.Login(context.Background(), c[0], c[1])
		require.ErrorIs(t, err, domain.ErrInvalidCredentials, "%q/%q", c[0], c[1])
		assert.Equal(t, "Identifiants invalides", err.Error())
	}
}

func TestLogin_MisconfiguredKey(t *testing.T) {
	creds, err := services.NewStaticCredentials(bcrypt.MinCost, services.DefaultAccounts()...)
	require.NoError(t, err)
	auth := services.NewAuthService(creds, &services.TokenService{Secret: "short"})

	_, err = auth.Login(context.Background(), "admin", "password")
	require.ErrorIs(t, err, domain.ErrMisconfiguredSigningKey)
	assert.Equal(t, domain.KindInfrastructure, domain.KindOf(err))
}

func TestIssue_SecretFloor(t *testing.T) {
	for _, secret := range []string{"", strings.Repeat(" ", 40), strings.Repeat("k", 31)} {
		_, _, err := (&services.TokenService{Secret: secret}).Issue("1", "admin")
		assert.ErrorIs(t, err, domain.ErrMisconfiguredSigningKey)
	}
	_, _, err := (&services.TokenService{Secret: strings.Repeat("k", 32)}).Issue("1", "admin")
	assert.NoError(t, err)
}

func TestIssue_UniqueNonce(t *testing.T) {
	tokens := newTokens(&fakeClock{now: time.Now()})
	a, _, err := tokens.Issue("1", "admin")
	require.NoError(t, err)
	b, _, err := tokens.Issue("1", "admin")
	require.NoError(t, err)

	ca, _ := tokens.Verify(a)
	cb, _ := tokens.Verify(b)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestVerify_ExpiredAfterTTL(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	tokens := newTokens(clock)
	token, _, err := tokens.Issue("1", "admin")
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	_, err = tokens.Verify(token)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = tokens.Verify(token)
	require.ErrorIs(t, err, domain.ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerify_RejectsForeignTokens(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	tokens := newTokens(clock)

	other := newTokens(clock)
	other.Secret = strings.Repeat("x", 40)
	wrongKey, _, _ := other.Issue("1", "admin")

	wrongIss := newTokens(clock)
	wrongIss.Issuer = "someone-else"
	badIssuer, _, _ := wrongIss.Issue("1", "admin")

	wrongAud := newTokens(clock)
	wrongAud.Audience = "another-api"
	badAudience, _, _ := wrongAud.Issue("1", "admin")

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &services.Claims{
		Name:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1", Issuer: "productapi", Audience: jwt.ClaimStrings{"productapi"}},
	}).SignedString([]byte(testSecret))

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &services.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	for name, token := range map[string]string{
		"wrong key":      wrongKey,
		"wrong issuer":   badIssuer,
		"wrong audience": badAudience,
		"no expiry":      noExp,
		"alg none":       none,
		"garbage":        "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.Verify(token)
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}

func TestParseClaims_Pure(t *testing.T) {
	claims := &services.Claims{
		Name: "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "2",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := services.SignClaims(claims, testSecret)
	require.NoError(t, err)

	got, err := services.ParseClaims(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "2", got.Subject)
	assert.Equal(t, "user", got.Name)
}

func TestAuthenticate_Header(t *testing.T) {
	auth := newAuth(t, &fakeClock{now: time.Now()})
	res, err := auth.Login(context.Background(), "admin", "password")
	require.NoError(t, err)

	claims, err := auth.Authenticate(context.Background(), "Bearer "+res.Token)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.Subject)

	_, err = auth.Authenticate(context.Background(), "bearer "+res.Token)
	assert.NoError(t, err, "scheme is case-insensitive")

	for _, h := range []string{"", "Bearer", "Bearer   ", "Basic YWRtaW46cGFzc3dvcmQ=", res.Token} {
		_, err := auth.Authenticate(context.Background(), h)
		assert.ErrorIs(t, err, domain.ErrMissingToken, "header %q", h)
	}

	_, err = auth.Authenticate(context.Background(), "Bearer tampered"+res.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestClaimsContext(t *testing.T) {
	_, ok := services.ClaimsFromContext(context.Background())
	assert.False(t, ok)

	ctx := services.WithClaims(context.Background(), &services.Claims{Name: "admin"})
	c, ok := services.ClaimsFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "admin", c.Name)
}
