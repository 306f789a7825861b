package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.ChatModel)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.DebriefModel)
	assert.Equal(t, int64(2000), cfg.Anthropic.ChatMaxTokens)
	assert.Equal(t, int64(4000), cfg.Anthropic.DebriefMaxTokens)
	assert.InDelta(t, 2.0, cfg.Anthropic.RequestsPerSecond, 0.001)
	assert.Equal(t, 500, cfg.Chat.MaxQuestionChars)
	assert.Equal(t, 30, cfg.Chat.RetrieveCap)
	assert.Equal(t, 30, cfg.Chat.DefaultWindowDays)
	assert.Equal(t, 10, cfg.Chat.SourceLimit)
	assert.Equal(t, 50, cfg.Report.Cap)
	assert.Equal(t, 14, cfg.Report.WindowDays)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
  database_url: intel.db
chat:
  retrieve_cap: 10
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "intel.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 10, cfg.Chat.RetrieveCap)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, 50, cfg.Report.Cap)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}

func TestInitLogger_Console(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "console"}))
}

func TestValidate_Generate(t *testing.T) {
	cfg := &Config{
		Store:     StoreConfig{Driver: "sqlite"},
		Anthropic: AnthropicConfig{Key: "sk-test"},
	}
	assert.NoError(t, cfg.Validate("generate"))

	cfg.Anthropic.Key = ""
	err := cfg.Validate("generate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic key")
}

func TestValidate_Store(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Driver: "sqlite"}}
	assert.NoError(t, cfg.Validate("store"))

	cfg.Store.Driver = "oracle"
	assert.Error(t, cfg.Validate("store"))

	cfg.Store.Driver = "postgres"
	assert.Error(t, cfg.Validate("store"), "postgres without a URL is unusable")

	cfg.Store.DatabaseURL = "postgres://localhost/intel"
	assert.NoError(t, cfg.Validate("store"))
}

func TestValidate_Serve(t *testing.T) {
	cfg := &Config{
		Store:     StoreConfig{Driver: "sqlite"},
		Anthropic: AnthropicConfig{Key: "sk-test"},
		Server:    ServerConfig{Port: 8080},
	}
	assert.NoError(t, cfg.Validate("serve"))

	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate("serve"))
}

func TestValidate_UnknownMode(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Driver: "sqlite"}}
	assert.Error(t, cfg.Validate("enrichment"))
}
