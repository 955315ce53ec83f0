// Package prompt строит двухсообщенческий шаблон для модели.
package prompt

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// QuestionPrefix предшествует вопросу в сообщении пользователя.
const QuestionPrefix = "Question: "

type Message struct {
	Role    string
	Content string
}

// Template хранит упорядоченные сообщения system + user.
type Template struct {
	Messages []Message
}

// New собирает шаблон: system = prompt как есть, user = "Question: " + question.
// Текст не экранируется и не обрезается.
func New(systemPrompt, question string) Template {
	return Template{
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: QuestionPrefix + question},
		},
	}
}
