package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/docstyle/internal/apperr"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func complete() Config {
	cfg := Default()
	cfg.ApplyEnv(envMap(map[string]string{
		"SHAREPOINT_TENANT_ID":     "tenant",
		"SHAREPOINT_CLIENT_ID":     "client",
		"SHAREPOINT_CLIENT_SECRET": "secret",
		"SHAREPOINT_SITE_URL":      "https://contoso.sharepoint.com/sites/StyleValidation",
	}))
	return cfg
}

func TestDefaultsHaveNoSecrets(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.Graph.TenantID)
	assert.Empty(t, cfg.Graph.ClientSecret)
	assert.Empty(t, cfg.AI.AnthropicKey)
	assert.False(t, cfg.AIEnabled())
	assert.Equal(t, "Style Rules", cfg.Graph.RulesList)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.ApplyEnv(envMap(map[string]string{
		"SHAREPOINT_SITE_URL": " https://contoso.sharepoint.com/sites/x ",
		"ANTHROPIC_API_KEY":   "sk-ant-test",
		"DOCSTYLE_AI_MODEL":   "anthropic:claude-3-haiku-20240307",
		"DOCSTYLE_LISTEN":     ":9090",
		"OPENAI_API_KEY":      "",
	}))
	assert.Equal(t, "https://contoso.sharepoint.com/sites/x", cfg.Graph.SiteURL)
	assert.Equal(t, "sk-ant-test", cfg.AI.AnthropicKey)
	assert.Equal(t, "anthropic:claude-3-haiku-20240307", cfg.AI.Model)
	assert.Equal(t, ":9090", cfg.Server.Listen)
	assert.Empty(t, cfg.AI.OpenAIKey)
	assert.True(t, cfg.AIEnabled())
}

func TestAIExplicitlyDisabled(t *testing.T) {
	cfg := Default()
	off := false
	cfg.AI.Enabled = &off
	cfg.AI.OpenAIKey = "sk-test"
	assert.False(t, cfg.AIEnabled())
}

func TestValidate(t *testing.T) {
	require.NoError(t, complete().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing tenant", func(c *Config) { c.Graph.TenantID = "" }, "tenant id"},
		{"missing secret", func(c *Config) { c.Graph.ClientSecret = "" }, "client secret"},
		{"http site", func(c *Config) { c.Graph.SiteURL = "http://contoso" }, "must start with https://"},
		{"temperature", func(c *Config) { c.AI.Temperature = 3 }, "temperature"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := complete()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docstyle.yaml")
	data := []byte(`server:
  listen: ":7000"
  rule_isolation: true
  request_timeout: 30s
graph:
  rules_list: House Rules
  site_cache_ttl: 5m
ai:
  model: openai:gpt-4o-mini
  max_tokens: 2048
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	t.Setenv("DOCSTYLE_LISTEN", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Listen)
	assert.True(t, cfg.Server.RuleIsolation)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "House Rules", cfg.Graph.RulesList)
	assert.Equal(t, 5*time.Minute, cfg.Graph.SiteCacheTTL)
	assert.Equal(t, "Validation Results", cfg.Graph.ResultsList, "unset keys keep defaults")
	assert.Equal(t, 2048, cfg.AI.MaxTokens)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, apperr.ErrConfiguration)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, apperr.ErrConfiguration)
}
