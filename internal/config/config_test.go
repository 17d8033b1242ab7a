package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Retrieval.ChunkSize)
	assert.Equal(t, 200, cfg.Retrieval.ChunkOverlap)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.05, cfg.Retrieval.ContextThreshold, 1e-9)
	assert.InDelta(t, 0.25, cfg.Retrieval.DefaultThreshold, 1e-9)
	assert.Contains(t, cfg.Retrieval.ContextKeywords, "document")
	assert.Contains(t, cfg.Retrieval.SummaryKeywords, "summarize")
	assert.Equal(t, 6, cfg.Chat.HistoryWindow)
	assert.Equal(t, 3000, cfg.Redis.DialTimeoutMS)
	assert.Equal(t, 2000, cfg.Redis.ReadTimeoutMS)
	assert.Equal(t, 2000, cfg.Redis.WriteTimeoutMS)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("RETRIEVAL_TOP_K", "5")
	t.Setenv("RETRIEVAL_DEFAULT_THRESHOLD", "0.3")
	t.Setenv("RETRIEVAL_CONTEXT_KEYWORDS", "doc, attachment")
	t.Setenv("APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.3, cfg.Retrieval.DefaultThreshold, 1e-9)
	assert.Equal(t, []string{"doc", "attachment"}, cfg.Retrieval.ContextKeywords)
	assert.Equal(t, 9090, cfg.App.Port)
}

func TestLoad_BadEnvValueFallsBack(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("RETRIEVAL_TOP_K", "not-a-number")
	t.Setenv("RETRIEVAL_CONTEXT_THRESHOLD", "also-not")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.05, cfg.Retrieval.ContextThreshold, 1e-9)
}

func TestMySQLDSN(t *testing.T) {
	cfg := defaultConfig()
	cfg.MySQL.User = "app"
	cfg.MySQL.Password = "secret"
	cfg.MySQL.Host = "db"
	cfg.MySQL.Port = 3307
	cfg.MySQL.DB = "ragchat"

	assert.Equal(t, "app:secret@tcp(db:3307)/ragchat?parseTime=true&loc=Local&charset=utf8mb4", cfg.MySQLDSN())
}
