package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"productapi/internal/config"
	applog "productapi/internal/log"
	"productapi/internal/metrics"
)

const accessLogFormat = `{"ts":"${time}","level":"info","category":"access","req_id":"${locals:requestid}",` +
	`"ip":"${ip}","method":"${method}","path":"${path}","status":${status},"latency":"${latency}"}` + "\n"

// NewApp builds the fiber app with middleware and every route registered.
func NewApp(cfg config.Config, deps *Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "productapi",
		BodyLimit:    1 << 20, // 1 MiB
		ErrorHandler: ErrorHandler(cfg.IsDevelopment()),
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format:     accessLogFormat,
		TimeFormat: time.RFC3339,
		Output:     applog.Writer(),
	}))
	app.Use(metrics.Middleware())
	app.Use(recover.New(recover.Config{
		EnableStackTrace:  true,
		StackTraceHandler: StashStack,
	}))
	app.Use(helmet.New())

	// Health & metrics
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/metrics", metrics.Handler())

	// ---------- API ----------
	apiLimit := cfg.APIRateLimit
	if apiLimit <= 0 {
		apiLimit = 60
	}
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:          apiLimit,
		Expiration:   time.Minute,
		LimitReached: APIThrottled,
	}))

	// login gets a tighter limit on top of the global one
	loginLimit := cfg.LoginRateLimit
	if loginLimit <= 0 {
		loginLimit = 10
	}
	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:          loginLimit,
		Expiration:   time.Minute,
		LimitReached: LoginThrottled,
	}), deps.AuthHandler.Login)

	products := api.Group("/products", RequireBearer(deps.Auth))
	products.Post("", deps.ProductHandler.Create)
	products.Get("", deps.ProductHandler.List)
	products.Get("/:id", deps.ProductHandler.Get)
	products.Put("/:id", deps.ProductHandler.Update)
	products.Delete("/:id", deps.ProductHandler.Delete)
	products.Put("/:id/price", deps.ProductHandler.ChangePrice)

	return app
}
