package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airbnblite/airbot/internal/settings"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, string(settings.MethodPDFExtract), cfg.InsuranceContextMethod)
	assert.Equal(t, 10*time.Second, cfg.DocumentFetchTimeout)
	assert.Equal(t, 3, cfg.SearchLimit)
	assert.Equal(t, "insurance_policies_v1", cfg.CollectionName())
	assert.Equal(t, "", cfg.APIContext)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("API_CONTEXT", "/airbnbliteapi/")
	t.Setenv("INSURANCE_CONTEXT_METHOD", string(settings.MethodVectorSearch))
	t.Setenv("SEARCH_LIMIT", "5")
	t.Setenv("VECTOR_SCHEMA_VERSION", "3")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/airbnbliteapi", cfg.APIContext)
	assert.Equal(t, string(settings.MethodVectorSearch), cfg.InsuranceContextMethod)
	assert.Equal(t, 5, cfg.SearchLimit)
	assert.Equal(t, "insurance_policies_v3", cfg.CollectionName())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestLoadFileDoesNotOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("support_name: File Support\nsearch_limit: \"7\"\n"), 0o600))

	t.Setenv("SEARCH_LIMIT", "2")
	// Registered so the variable is restored after the test.
	t.Setenv("SUPPORT_NAME", "")
	require.NoError(t, os.Unsetenv("SUPPORT_NAME"))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "File Support", cfg.SupportName)
	assert.Equal(t, 2, cfg.SearchLimit)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown llm provider", func(c *Config) { c.LLMProvider = "bogus" }},
		{"unknown embedding provider", func(c *Config) { c.EmbeddingProvider = "anthropic" }},
		{"invalid method", func(c *Config) { c.InsuranceContextMethod = "bogus" }},
		{"zero search limit", func(c *Config) { c.SearchLimit = 0 }},
		{"zero excerpt", func(c *Config) { c.MaxExcerptChars = 0 }},
		{"negative dimensions", func(c *Config) { c.EmbeddingDimensions = -1 }},
		{"zero schema version", func(c *Config) { c.VectorSchemaVersion = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
