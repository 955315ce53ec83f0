package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/katakuxiko/llmrelay/internal/config"
	"github.com/katakuxiko/llmrelay/internal/logx"
	"github.com/katakuxiko/llmrelay/internal/metrics"
	"github.com/katakuxiko/llmrelay/internal/model"
)

// ChatRunner выполняет один вызов модели.
type ChatRunner interface {
	Chat(ctx context.Context, requestID string, req model.ChatRequest) (string, error)
}

// Handler хранит зависимости для обработчиков
type Handler struct {
	chat         ChatRunner
	metrics      *metrics.Metrics
	serverKey    string
	defaultModel string
	models       []string
}

// NewHandler конструктор. Ключ сервера передаётся сюда один раз при запуске.
func NewHandler(chat ChatRunner, cfg *config.Config, m *metrics.Metrics) *Handler {
	h := &Handler{
		chat:         chat,
		metrics:      m,
		defaultModel: cfg.ChatModel,
		models:       cfg.Models,
	}
	if cfg.UsesServerKey() {
		h.serverKey = cfg.ServerAPIKey
	}
	return h
}

// Health — простая проверка
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.SendString("ok")
}

// ListModels отдаёт модели, которые предлагаются клиенту
func (h *Handler) ListModels(c *fiber.Ctx) error {
	models := h.models
	if models == nil {
		models = []string{}
	}
	return c.JSON(model.ModelsResponse{Models: models, Default: h.defaultModel})
}

// Chat обрабатывает POST /chat: prompt + question → ответ модели.
// 400 только при отсутствии ключей, любая другая ошибка даёт 500 с текстом ошибки.
func (h *Handler) Chat(c *fiber.Ctx) error {
	start := time.Now()
	reqID := c.GetRespHeader(fiber.HeaderXRequestID)

	req, err := decodeChatRequest(c.Body(), h.serverKey, h.defaultModel)
	if errors.Is(err, ErrMissingFields) {
		h.metrics.ObserveChat(metrics.OutcomeValidation, time.Since(start))
		logx.Log.Info().Str("request_id", reqID).Msg("chat rejected: missing fields")
		return c.Status(fiber.StatusBadRequest).JSON(model.Failure(err.Error()))
	}
	if err != nil {
		h.metrics.ObserveChat(metrics.OutcomeError, time.Since(start))
		logx.Log.Warn().Err(err).Str("request_id", reqID).Msg("chat request decode failed")
		return c.Status(fiber.StatusInternalServerError).JSON(model.Failure(err.Error()))
	}

	text, err := h.chat.Chat(c.UserContext(), reqID, req)
	if err != nil {
		h.metrics.ObserveChat(metrics.OutcomeError, time.Since(start))
		return c.Status(fiber.StatusInternalServerError).JSON(model.Failure(err.Error()))
	}

	h.metrics.ObserveChat(metrics.OutcomeSuccess, time.Since(start))
	return c.JSON(model.Success(text))
}
