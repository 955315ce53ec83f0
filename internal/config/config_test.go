package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ServerModeRequiresKey(t *testing.T) {
	cfg := Defaults()
	cfg.CredentialSource = CredentialFromServer

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrMissingServerKey)

	cfg.ServerAPIKey = "k"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RequestModeNeedsNoKey(t *testing.T) {
	assert.NoError(t, Defaults().Validate())
}

func TestValidate_UnknownSource(t *testing.T) {
	cfg := Defaults()
	cfg.CredentialSource = "vault"
	assert.Error(t, cfg.Validate())
}

func TestApplyEnv_Overrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9999")
	t.Setenv("CREDENTIAL_SOURCE", "SERVER")
	t.Setenv("GOOGLE_API_KEY", "secret")
	t.Setenv("LLM_MODELS", "a, b,,c")
	t.Setenv("LLM_RETRY_BACKOFF", "10ms")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("BODY_LIMIT", "1048576")

	cfg := Defaults()
	cfg.ApplyEnv()

	assert.Equal(t, ":9999", cfg.ServerAddr)
	assert.True(t, cfg.UsesServerKey())
	assert.Equal(t, "secret", cfg.ServerAPIKey)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Models)
	assert.Equal(t, 10*time.Millisecond, cfg.RetryBackoff)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, 1<<20, cfg.BodyLimit)
	assert.Equal(t, DefaultMaxAttempts, cfg.MaxAttempts)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relay.yaml")
	body := "server_addr: \":7000\"\nllm_model: gemini-1.5-pro\nllm_retry_backoff: 250ms\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LLM_MODEL", "gemini-1.5-flash-8b")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.ServerAddr)
	assert.Equal(t, "gemini-1.5-flash-8b", cfg.ChatModel)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryBackoff)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_BodyLimit(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, DefaultBodyLimit, cfg.BodyLimit)

	cfg.BodyLimit = 0
	assert.Error(t, cfg.Validate())
}
