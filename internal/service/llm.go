package service

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"

	"github.com/katakuxiko/llmrelay/internal/config"
	"github.com/katakuxiko/llmrelay/internal/metrics"
	"github.com/katakuxiko/llmrelay/internal/prompt"
)

// ErrNoChoices: модель вернула ответ без вариантов.
var ErrNoChoices = errors.New("model returned no choices")

// Completer выполняет один шаблон и возвращает текст модели.
type Completer interface {
	Complete(ctx context.Context, tpl prompt.Template) (string, error)
}

// ClientOptions задают клиента на один вызов.
type ClientOptions struct {
	Model       string
	Temperature float32
	APIKey      string
}

// ClientFactory создаёт новый клиент на каждый запрос.
type ClientFactory interface {
	NewClient(opts ClientOptions) Completer
}

// LLMFactory создаёт клиентов для OpenAI-совместимого API (Gemini по умолчанию).
type LLMFactory struct {
	baseURL     string
	maxAttempts int
	backoff     time.Duration
	metrics     *metrics.Metrics
}

// NewLLMFactory создаёт фабрику с настройками из config
func NewLLMFactory(cfg *config.Config, m *metrics.Metrics) *LLMFactory {
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Millisecond
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = config.DefaultMaxAttempts
	}
	return &LLMFactory{
		baseURL:     cfg.LMBaseURL,
		maxAttempts: attempts,
		backoff:     backoff,
		metrics:     m,
	}
}

func (f *LLMFactory) NewClient(opts ClientOptions) Completer {
	oaiCfg := openai.DefaultConfig(opts.APIKey)
	oaiCfg.BaseURL = f.baseURL

	return &LLMClient{
		client:      openai.NewClientWithConfig(oaiCfg),
		model:       opts.Model,
		temperature: opts.Temperature,
		maxAttempts: f.maxAttempts,
		backoff:     f.backoff,
		metrics:     f.metrics,
	}
}

// LLMClient обслуживает один вызов и не переиспользуется между запросами.
type LLMClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxAttempts int
	backoff     time.Duration
	metrics     *metrics.Metrics
}

// Complete отправляет шаблон модели. Временные сбои (429, 5xx, сеть) повторяются
// в пределах maxAttempts, остальные ошибки возвращаются сразу.
func (l *LLMClient) Complete(ctx context.Context, tpl prompt.Template) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       l.model,
		Messages:    toOpenAIMessages(tpl),
		Temperature: wireTemperature(l.temperature),
	}

	b := retry.WithMaxRetries(uint64(l.maxAttempts-1), retry.NewExponential(l.backoff))

	var resp openai.ChatCompletionResponse
	attempt := 0
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		r, err := l.client.CreateChatCompletion(ctx, req)
		if err != nil {
			// последняя попытка считается неудачной, а не повтором
			if IsTransient(err) && attempt < l.maxAttempts {
				l.metrics.UpstreamAttempt("retry")
				return retry.RetryableError(err)
			}
			l.metrics.UpstreamAttempt("fail")
			return err
		}
		l.metrics.UpstreamAttempt("ok")
		resp = r
		return nil
	})
	if err != nil {
		return "", err
	}
	return parseOutput(resp)
}

// parseOutput возвращает текст первого варианта без изменений.
func parseOutput(resp openai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIMessages(tpl prompt.Template) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(tpl.Messages))
	for _, m := range tpl.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == prompt.RoleSystem {
			role = openai.ChatMessageRoleSystem
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

// wireTemperature: go-openai не отправляет нулевую температуру,
// поэтому 0 передаётся как наименьшее положительное float32.
func wireTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

// IsTransient сообщает, стоит ли повторить вызов провайдера после err.
func IsTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if code, ok := UpstreamStatus(err); ok {
		return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// UpstreamStatus достаёт HTTP-статус провайдера из err, если он есть.
func UpstreamStatus(err error) (int, bool) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return apiErr.HTTPStatusCode, true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return reqErr.HTTPStatusCode, true
	}
	return 0, false
}
