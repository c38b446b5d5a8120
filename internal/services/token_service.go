package services

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"productapi/internal/config"
	"productapi/internal/domain"
)

// MinSecretLength is the HS256 key floor, in characters.
const MinSecretLength = 32

const DefaultTokenTTL = 60 * time.Minute

// Claims is the token payload. Subject carries the user id.
type Claims struct {
	Name string `json:"unique_name"`
	jwt.RegisteredClaims
}

func checkSecret(secret string) error {
	if strings.TrimSpace(secret) == "" || utf8.RuneCountInString(secret) < MinSecretLength {
		return domain.ErrMisconfiguredSigningKey
	}
	return nil
}

// SignClaims signs claims with HS256.
func SignClaims(claims *Claims, secret string) (string, error) {
	if err := checkSecret(secret); err != nil {
		return "", err
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseClaims verifies signature and expiry; opts add issuer, audience or clock checks.
// Every verification failure is joined with domain.ErrInvalidToken.
func ParseClaims(token, secret string, opts ...jwt.ParserOption) (*Claims, error) {
	if err := checkSecret(secret); err != nil {
		return nil, err
	}
	base := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, append(base, opts...)...)
	if err != nil {
		return nil, errors.Join(domain.ErrInvalidToken, err)
	}
	return claims, nil
}

type TokenService struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
	// Now is the clock used for both issuing and verifying; nil means time.Now.
	Now func() time.Time
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{
		Secret:   cfg.SecretKey,
		Issuer:   cfg.Issuer,
		Audience: cfg.Audience,
		TTL:      time.Duration(cfg.ExpirationMinutes) * time.Minute,
	}
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TokenService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultTokenTTL
	}
	return s.TTL
}

// Issue mints a token for the user. Nothing is recorded server-side.
func (s *TokenService) Issue(userID, username string) (string, time.Time, error) {
	if err := checkSecret(s.Secret); err != nil {
		return "", time.Time{}, err
	}
	now := s.now()
	expiresAt := now.Add(s.ttl())
	claims := &Claims{
		Name: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			Issuer:    s.Issuer,
			Audience:  jwt.ClaimStrings{s.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := SignClaims(claims, s.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (s *TokenService) Verify(token string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(s.now)}
	if s.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.Issuer))
	}
	if s.Audience != "" {
		opts = append(opts, jwt.WithAudience(s.Audience))
	}
	return ParseClaims(token, s.Secret, opts...)
}
