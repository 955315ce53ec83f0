package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Источник ключа API для запросов к модели.
const (
	CredentialFromRequest = "request"
	CredentialFromServer  = "server"
)

// DefaultBaseURL: OpenAI-совместимый endpoint Gemini.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// DefaultMaxAttempts: бюджет попыток к модели на один запрос.
const DefaultMaxAttempts = 2

// DefaultBodyLimit: предел тела запроса в байтах. Fiber по умолчанию режет на 4 MiB.
const DefaultBodyLimit = 64 << 20

// ErrMissingServerKey возвращается Validate, если ключ сервера не задан.
var ErrMissingServerKey = errors.New("GOOGLE_API_KEY must be set when CREDENTIAL_SOURCE=server")

type Config struct {
	ServerAddr       string        `yaml:"server_addr"`
	BodyLimit        int           `yaml:"body_limit"`
	CredentialSource string        `yaml:"credential_source"`
	ServerAPIKey     string        `yaml:"-"`
	LMBaseURL        string        `yaml:"llm_base_url"`
	ChatModel        string        `yaml:"llm_model"`
	Models           []string      `yaml:"llm_models"`
	MaxAttempts      int           `yaml:"llm_max_attempts"`
	RetryBackoff     time.Duration `yaml:"llm_retry_backoff"`
	AllowedOrigins   []string      `yaml:"allowed_origins"`
	PgConn           string        `yaml:"pg_conn"`
	LogLevel         string        `yaml:"log_level"`
	LogFormat        string        `yaml:"log_format"`
	MetricsEnabled   bool          `yaml:"metrics_enabled"`
	ConfigFile       string        `yaml:"-"`
}

// Load читает .env (если есть), YAML-файл из CONFIG_FILE и переменные окружения.
// Переменные окружения имеют приоритет над файлом.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	cfg.ConfigFile = os.Getenv("CONFIG_FILE")
	if cfg.ConfigFile != "" {
		if err := cfg.LoadFile(cfg.ConfigFile); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// Defaults возвращает конфигурацию без внешних источников.
func Defaults() *Config {
	return &Config{
		ServerAddr:       ":5000",
		BodyLimit:        DefaultBodyLimit,
		CredentialSource: CredentialFromRequest,
		LMBaseURL:        DefaultBaseURL,
		ChatModel:        "gemini-1.5-flash",
		Models:           []string{"gemini-1.5-pro", "gemini-1.5-flash", "gemini-1.5-flash-8b"},
		MaxAttempts:      DefaultMaxAttempts,
		RetryBackoff:     500 * time.Millisecond,
		AllowedOrigins:   []string{"*"},
		LogLevel:         "info",
		LogFormat:        "json",
		MetricsEnabled:   true,
	}
}

// LoadFile накладывает значения из YAML-файла.
func (c *Config) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, c)
}

// ApplyEnv накладывает переменные окружения на текущие значения.
func (c *Config) ApplyEnv() {
	c.ServerAddr = getenv("SERVER_ADDR", c.ServerAddr)
	c.BodyLimit = getenvInt("BODY_LIMIT", c.BodyLimit)
	c.CredentialSource = strings.ToLower(getenv("CREDENTIAL_SOURCE", c.CredentialSource))
	c.ServerAPIKey = getenv("GOOGLE_API_KEY", c.ServerAPIKey)
	c.LMBaseURL = getenv("LLM_BASE_URL", c.LMBaseURL)
	c.ChatModel = getenv("LLM_MODEL", c.ChatModel)
	if v := os.Getenv("LLM_MODELS"); v != "" {
		c.Models = splitComma(v)
	}
	c.MaxAttempts = getenvInt("LLM_MAX_ATTEMPTS", c.MaxAttempts)
	if v := os.Getenv("LLM_RETRY_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RetryBackoff = d
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitComma(v)
	}
	c.PgConn = getenv("PG_CONN", c.PgConn)
	c.LogLevel = getenv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getenv("LOG_FORMAT", c.LogFormat)
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.MetricsEnabled = b
		}
	}
}

// Validate проверяет конфигурацию перед запуском сервера.
func (c *Config) Validate() error {
	switch c.CredentialSource {
	case CredentialFromRequest:
	case CredentialFromServer:
		if c.ServerAPIKey == "" {
			return ErrMissingServerKey
		}
	default:
		return fmt.Errorf("unknown CREDENTIAL_SOURCE %q", c.CredentialSource)
	}
	if c.BodyLimit < 1 {
		return fmt.Errorf("BODY_LIMIT must be > 0, got %d", c.BodyLimit)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("LLM_MAX_ATTEMPTS must be >= 1, got %d", c.MaxAttempts)
	}
	return nil
}

// UsesServerKey сообщает, берётся ли ключ из конфигурации процесса, а не из запроса.
func (c *Config) UsesServerKey() bool {
	return c.CredentialSource == CredentialFromServer
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func splitComma(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
