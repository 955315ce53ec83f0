package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/katakuxiko/llmrelay/internal/config"
	"github.com/katakuxiko/llmrelay/internal/logx"
	"github.com/katakuxiko/llmrelay/internal/metrics"
	"github.com/katakuxiko/llmrelay/internal/model"
)

// NewApp собирает fiber-приложение с middleware и маршрутами.
func NewApp(cfg *config.Config, chat ChatRunner, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "llmrelay",
		DisableStartupMessage: true,
		BodyLimit:             cfg.BodyLimit,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "*",
	}))

	RegisterRoutes(app, NewHandler(chat, cfg, m), m)
	return app
}

func RegisterRoutes(app *fiber.App, h *Handler, m *metrics.Metrics) {
	app.Get("/health", h.Health)
	app.Get("/models", h.ListModels)
	app.Post("/chat", h.Chat)

	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}
}

// errorHandler отдаёт ошибки fiber и паники в том же формате {"error": "..."}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		logx.Log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}
	return c.Status(code).JSON(model.Failure(err.Error()))
}
