package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/katakuxiko/llmrelay/internal/model"
)

// ErrMissingFields: в теле запроса нет одного из обязательных ключей.
var ErrMissingFields = errors.New("Missing required fields in request") //nolint:staticcheck // wire text

var errNotObject = errors.New("request body must be a JSON object")

var requestFields = []string{
	model.FieldPrompt,
	model.FieldQuestion,
	model.FieldModel,
	model.FieldTemperature,
	model.FieldAPIKey,
}

// keyError возникает при обращении к отсутствующему ключу в режиме серверного ключа.
type keyError struct {
	key string
}

func (e *keyError) Error() string {
	return fmt.Sprintf("missing key %q", e.key)
}

// decodeChatRequest разбирает тело POST /chat.
// Если serverKey пуст, все пять ключей обязательны (проверяется только наличие).
// Иначе ключ берётся с сервера, api_key игнорируется, model по умолчанию равна defaultModel.
func decodeChatRequest(body []byte, serverKey, defaultModel string) (model.ChatRequest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		// в массиве или строке обязательных ключей нет
		if serverKey == "" && isKeylessContainer(err) {
			return model.ChatRequest{}, ErrMissingFields
		}
		return model.ChatRequest{}, err
	}
	if raw == nil {
		return model.ChatRequest{}, errNotObject
	}

	if serverKey == "" {
		for _, k := range requestFields {
			if _, ok := raw[k]; !ok {
				return model.ChatRequest{}, ErrMissingFields
			}
		}
	}

	var req model.ChatRequest
	if err := field(raw, model.FieldPrompt, &req.Prompt); err != nil {
		return req, err
	}
	if err := field(raw, model.FieldQuestion, &req.Question); err != nil {
		return req, err
	}

	if serverKey == "" {
		if err := field(raw, model.FieldModel, &req.Model); err != nil {
			return req, err
		}
	} else {
		req.Model = defaultModel
		if _, ok := raw[model.FieldModel]; ok {
			if err := field(raw, model.FieldModel, &req.Model); err != nil {
				return req, err
			}
		}
	}

	if err := field(raw, model.FieldTemperature, &req.Temperature); err != nil {
		return req, err
	}

	if serverKey == "" {
		if err := field(raw, model.FieldAPIKey, &req.APIKey); err != nil {
			return req, err
		}
	} else {
		req.APIKey = serverKey
	}
	return req, nil
}

func isKeylessContainer(err error) bool {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		return false
	}
	return typeErr.Value == "array" || typeErr.Value == "string"
}

func field(raw map[string]json.RawMessage, key string, dst any) error {
	v, ok := raw[key]
	if !ok {
		return &keyError{key: key}
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	return nil
}
