package handlers

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"

	"productapi/internal/domain"
	applog "productapi/internal/log"
	"productapi/internal/metrics"
)

// StackKey is the fiber local where the recover middleware leaves a panic's stack.
const StackKey = "panic_stack"

const genericServerDetail = "Une erreur interne."

var fiberTitles = map[int]string{
	fiber.StatusBadRequest:            "Requête invalide",
	fiber.StatusNotFound:              "Ressource introuvable",
	fiber.StatusMethodNotAllowed:      "Méthode non autorisée",
	fiber.StatusRequestEntityTooLarge: "Requête trop volumineuse",
	fiber.StatusUnprocessableEntity:   "Requête invalide",
}

// TranslateError maps an error to the status and JSON body sent to the client.
// Internal detail and stack are only exposed when dev is true.
func TranslateError(err error, dev bool, stack string) (int, fiber.Map) {
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindDomainRule:
		return fiber.StatusBadRequest, fiber.Map{"title": "Erreur métier", "detail": domain.Sentinel(err).Error()}
	case domain.KindNotFound:
		return fiber.StatusNotFound, fiber.Map{"title": "Ressource introuvable", "detail": domain.Sentinel(err).Error()}
	case domain.KindConflict:
		return fiber.StatusConflict, fiber.Map{"title": "Conflit", "detail": domain.Sentinel(err).Error()}
	case domain.KindUnauthorized:
		return fiber.StatusUnauthorized, fiber.Map{"message": domain.Sentinel(err).Error()}
	case domain.KindInfrastructure:
		return fiber.StatusInternalServerError, fiber.Map{"error": "Erreur technique"}
	}

	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		title, ok := fiberTitles[fe.Code]
		if !ok {
			title = http.StatusText(fe.Code)
		}
		return fe.Code, fiber.Map{"title": title, "detail": fe.Message}
	}

	body := fiber.Map{"title": "Erreur serveur", "detail": genericServerDetail}
	if dev {
		body["detail"] = err.Error()
		if stack != "" {
			body["stackTrace"] = stack
		}
	}
	return fiber.StatusInternalServerError, body
}

// ErrorHandler is the app-wide fiber ErrorHandler.
func ErrorHandler(dev bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		stack, _ := c.Locals(StackKey).(string)
		status, body := TranslateError(err, dev, stack)

		kind := domain.KindOf(err)
		label := kind.String()
		var fe *fiber.Error
		if kind == domain.KindUnexpected && errors.As(err, &fe) {
			label = "http"
		}
		metrics.ErrorKind(label)

		c.Status(status)
		switch {
		case status >= fiber.StatusInternalServerError:
			applog.Error(c, "server.error", err, map[string]any{"kind": label})
		case status == fiber.StatusUnauthorized:
			applog.Security(c, "auth.denied", map[string]any{"reason": err.Error()})
		default:
			applog.Info(c, "request.rejected", map[string]any{"kind": label, "detail": err.Error()})
		}
		return c.JSON(body)
	}
}

// StashStack is the recover middleware's StackTraceHandler.
func StashStack(c *fiber.Ctx, _ any) {
	c.Locals(StackKey, string(debug.Stack()))
}
