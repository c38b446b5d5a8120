package handlers

import (
	"errors"
	"time"

	"productapi/internal/domain"
	"productapi/internal/log"
	"productapi/internal/metrics"
	"productapi/internal/services"
	"productapi/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	username, ok := validate.Username(req.Username)
	if !ok || !validate.Password(req.Password) {
		metrics.AuthEvent(metrics.LoginFailure)
		log.Security(c, "auth.login.fail", map[string]any{"reason": "bad_format"})
		return domain.ErrInvalidCredentials
	}

	res, err := h.Auth.Login(c.UserContext(), username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.AuthEvent(metrics.LoginFailure)
			log.Security(c, "auth.login.fail", map[string]any{"username": username})
		}
		return err
	}

	metrics.AuthEvent(metrics.LoginSuccess)
	log.Audit(c, "auth.login.success", map[string]any{"username": res.Username})
	return c.JSON(loginResponse{Token: res.Token, Username: res.Username, ExpiresAt: res.ExpiresAt.UTC()})
}

// LoginThrottled answers requests over the login limit.
func APIThrottled(c *fiber.Ctx) error {
	log.Security(c, "rate.api.hit", nil)
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "Trop de requêtes, réessayez plus tard."})
}

func LoginThrottled(c *fiber.Ctx) error {
	metrics.AuthEvent(metrics.LoginThrottle)
	log.Security(c, "rate.login.hit", nil)
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "Trop de tentatives, réessayez plus tard."})
}
