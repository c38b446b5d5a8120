package handlers

import (
	applog "productapi/internal/log"
	"productapi/internal/metrics"
	"productapi/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RequireBearer rejects the request before any handler runs unless it carries
// a valid bearer token. On success the claims travel in the user context and the
// subject is exposed to the logger as a local.
func RequireBearer(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := auth.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			metrics.AuthEvent(metrics.TokenRejected)
			return err
		}
		metrics.AuthEvent(metrics.TokenAccepted)
		c.Locals(applog.UserIDKey, claims.Subject)
		c.SetUserContext(services.WithClaims(c.UserContext(), claims))
		return c.Next()
	}
}

// ClaimsOf returns the claims attached by RequireBearer.
func ClaimsOf(c *fiber.Ctx) (*services.Claims, bool) {
	return services.ClaimsFromContext(c.UserContext())
}
