package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"productapi/internal/domain"
)

type AuthService struct {
	Creds  CredentialChecker
	Tokens *TokenService
}

func NewAuthService(creds CredentialChecker, tokens *TokenService) *AuthService {
	return &AuthService{Creds: creds, Tokens: tokens}
}

type LoginResult struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	u, err := s.Creds.Check(ctx, username, password)
	if err != nil {
		return LoginResult{}, err
	}
	token, exp, err := s.Tokens.Issue(u.ID, u.Username)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token for %s: %w", u.Username, err)
	}
	return LoginResult{Token: token, Username: u.Username, ExpiresAt: exp}, nil
}

// Authenticate checks an Authorization header value of the form "Bearer <token>".
func (s *AuthService) Authenticate(_ context.Context, header string) (*Claims, error) {
	token, ok := bearerToken(header)
	if !ok {
		return nil, domain.ErrMissingToken
	}
	return s.Tokens.Verify(token)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

type claimsKey struct{}

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok && c != nil
}
