package model

// Ключи тела запроса POST /chat.
const (
	FieldPrompt      = "prompt"
	FieldQuestion    = "question"
	FieldModel       = "model"
	FieldTemperature = "temperature"
	FieldAPIKey      = "api_key"
)

// ChatRequest содержит входные данные одного вызова модели.
type ChatRequest struct {
	Prompt      string  `json:"prompt"`
	Question    string  `json:"question"`
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	APIKey      string  `json:"api_key"`
}

// ChatResponse: ответ POST /chat, заполнено ровно одно поле.
type ChatResponse struct {
	Response *string `json:"response,omitempty"`
	Error    *string `json:"error,omitempty"`
}

func Success(text string) ChatResponse {
	return ChatResponse{Response: &text}
}

func Failure(msg string) ChatResponse {
	return ChatResponse{Error: &msg}
}

// Exchange описывает завершённый вызов для журнала. Ключ API не хранится.
type Exchange struct {
	RequestID   string
	Model       string
	Temperature float32
	Prompt      string
	Question    string
	Response    string
	Error       string
	DurationMS  int64
}

type ModelsResponse struct {
	Models  []string `json:"models"`
	Default string   `json:"default"`
}
