package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var ErrMissingSecret = errors.New("JWT_SECRET_KEY is required in production")

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

type JWTConfig struct {
	SecretKey         string
	Issuer            string
	Audience          string
	ExpirationMinutes int
}

type Config struct {
	Env            string
	Port           string
	DBDriver       string
	DBDSN          string
	LogFile        string
	LogLevel       string
	JWT            JWTConfig
	LoginRateLimit int
	APIRateLimit   int
	// EphemeralSecret is set when JWT.SecretKey was generated at startup.
	EphemeralSecret bool
}

func (c Config) IsDevelopment() bool { return c.Env == EnvDevelopment }
func (c Config) IsProduction() bool  { return c.Env == EnvProduction }

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

// Load reads the environment, after merging a .env file when one exists.
// Variables already set in the environment win over .env.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:      strings.ToLower(getenv("APP_ENV", EnvProduction)),
		Port:     getenv("PORT", "8080"),
		DBDriver: strings.ToLower(getenv("DB_DRIVER", "memory")),
		DBDSN:    getenv("DB_DSN", "productapi.db"),
		LogFile:  os.Getenv("LOG_FILE"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		JWT: JWTConfig{
			SecretKey: os.Getenv("JWT_SECRET_KEY"),
			Issuer:    getenv("JWT_ISSUER", "productapi"),
			Audience:  getenv("JWT_AUDIENCE", "productapi"),
		},
	}
	switch cfg.Env {
	case EnvDevelopment, EnvTest, EnvProduction:
	default:
		return Config{}, fmt.Errorf("APP_ENV must be development, test or production, got %q", cfg.Env)
	}

	var err error
	if cfg.JWT.ExpirationMinutes, err = getint("JWT_EXPIRATION_MINUTES", 60); err != nil {
		return Config{}, err
	}
	if cfg.LoginRateLimit, err = getint("LOGIN_RATE_LIMIT", 10); err != nil {
		return Config{}, err
	}
	if cfg.APIRateLimit, err = getint("API_RATE_LIMIT", 60); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.JWT.SecretKey) == "" {
		if cfg.IsProduction() {
			return Config{}, ErrMissingSecret
		}
		secret, err := randomSecret()
		if err != nil {
			return Config{}, fmt.Errorf("generate ephemeral secret: %w", err)
		}
		cfg.JWT.SecretKey = secret
		cfg.EphemeralSecret = true
	}
	return cfg, nil
}

// 48 random bytes encode to 64 characters, well above the HS256 floor.
func randomSecret() (string, error) {
	b := make([]byte, 48)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
