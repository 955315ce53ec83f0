package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/katakuxiko/llmrelay/internal/logx"
	"github.com/katakuxiko/llmrelay/internal/model"
	"github.com/katakuxiko/llmrelay/internal/prompt"
	"github.com/katakuxiko/llmrelay/internal/util"
)

// Recorder сохраняет завершённые вызовы. Ошибки записи не влияют на ответ.
type Recorder interface {
	Record(ctx context.Context, ex model.Exchange) error
}

type ChatService struct {
	llm ClientFactory
	rec Recorder
}

// NewChatService: если rec равен nil, журнал не ведётся.
func NewChatService(llm ClientFactory, rec Recorder) *ChatService {
	return &ChatService{llm: llm, rec: rec}
}

// Chat строит шаблон, создаёт клиент на один вызов и возвращает текст модели.
func (s *ChatService) Chat(ctx context.Context, requestID string, req model.ChatRequest) (string, error) {
	start := time.Now()

	tpl := prompt.New(req.Prompt, req.Question)
	client := s.llm.NewClient(ClientOptions{
		Model:       req.Model,
		Temperature: req.Temperature,
		APIKey:      req.APIKey,
	})

	text, err := client.Complete(ctx, tpl)
	elapsed := time.Since(start)

	log := logx.Log.With().
		Str("request_id", requestID).
		Str("model", req.Model).
		Float32("temperature", req.Temperature).
		Str("api_key", util.MaskSecret(req.APIKey)).
		Str("question", util.TruncateRunes(req.Question, 80)).
		Dur("elapsed", elapsed).
		Logger()
	if err != nil {
		logFailure(&log, err)
	} else {
		log.Debug().Int("response_len", len(text)).Msg("chat completed")
	}

	s.record(ctx, req, requestID, text, err, elapsed)
	return text, err
}

func (s *ChatService) record(ctx context.Context, req model.ChatRequest, requestID, text string, callErr error, elapsed time.Duration) {
	if s.rec == nil {
		return
	}
	ex := model.Exchange{
		RequestID:   requestID,
		Model:       req.Model,
		Temperature: req.Temperature,
		Prompt:      req.Prompt,
		Question:    req.Question,
		Response:    text,
		DurationMS:  elapsed.Milliseconds(),
	}
	if callErr != nil {
		ex.Error = callErr.Error()
	}
	// не зависим от отмены запроса клиентом
	if err := s.rec.Record(context.WithoutCancel(ctx), ex); err != nil {
		logx.Log.Warn().Err(err).Str("request_id", requestID).Msg("exchange log write failed")
	}
}

// logFailure пишет ошибку с категорией: upstream, transport, canceled или parse.
func logFailure(log *zerolog.Logger, err error) {
	ev := log.Error().Err(err)
	switch {
	case errors.Is(err, ErrNoChoices):
		ev = ev.Str("category", "parse")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		ev = ev.Str("category", "canceled")
	default:
		if code, ok := UpstreamStatus(err); ok {
			ev = ev.Str("category", "upstream").Int("upstream_status", code)
		} else {
			ev = ev.Str("category", "transport")
		}
	}
	ev.Msg("chat failed")
}
