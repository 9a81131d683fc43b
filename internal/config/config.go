// Package config loads docstyle's configuration from an optional YAML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/docstyle/internal/apperr"
)

// Config is passed explicitly to every constructor. Secrets have no
// defaults.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Graph  GraphConfig  `yaml:"graph"`
	AI     AIConfig     `yaml:"ai"`
}

type ServerConfig struct {
	Listen         string        `yaml:"listen"`
	HealthListen   string        `yaml:"health_listen"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RuleIsolation  bool          `yaml:"rule_isolation"`
}

type GraphConfig struct {
	TenantID       string        `yaml:"tenant_id"`
	ClientID       string        `yaml:"client_id"`
	ClientSecret   string        `yaml:"client_secret"`
	SiteURL        string        `yaml:"site_url"`
	BaseURL        string        `yaml:"base_url"`
	AuthorityURL   string        `yaml:"authority_url"`
	RulesList      string        `yaml:"rules_list"`
	ResultsList    string        `yaml:"results_list"`
	DocumentsList  string        `yaml:"documents_list"`
	LibraryRoot    string        `yaml:"library_root"`
	SiteCacheTTL   time.Duration `yaml:"site_cache_ttl"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type AIConfig struct {
	Enabled       *bool   `yaml:"enabled"`
	Model         string  `yaml:"model"`
	MaxTokens     int     `yaml:"max_tokens"`
	Temperature   float64 `yaml:"temperature"`
	AnthropicKey  string  `yaml:"anthropic_api_key"`
	OpenAIKey     string  `yaml:"openai_api_key"`
	OpenAIBaseURL string  `yaml:"openai_base_url"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Listen:         ":8080",
			HealthListen:   ":8086",
			RequestTimeout: 2 * time.Minute,
		},
		Graph: GraphConfig{
			BaseURL:        "https://graph.microsoft.com/v1.0",
			AuthorityURL:   "https://login.microsoftonline.com",
			RulesList:      "Style Rules",
			ResultsList:    "Validation Results",
			DocumentsList:  "Documents",
			LibraryRoot:    "Shared Documents",
			SiteCacheTTL:   30 * time.Minute,
			RequestTimeout: 60 * time.Second,
		},
		AI: AIConfig{
			MaxTokens: 4096,
		},
	}
}

// Load reads path (if non-empty) over the defaults, then applies environment
// overrides. It does not validate.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, apperr.Wrap("config.Load", apperr.ErrConfiguration, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, apperr.Wrap("config.Load", apperr.ErrConfiguration, fmt.Errorf("parsing %s: %w", path, err))
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. lookup is os.LookupEnv
// outside tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&c.Graph.TenantID, "SHAREPOINT_TENANT_ID")
	set(&c.Graph.ClientID, "SHAREPOINT_CLIENT_ID")
	set(&c.Graph.ClientSecret, "SHAREPOINT_CLIENT_SECRET")
	set(&c.Graph.SiteURL, "SHAREPOINT_SITE_URL")
	set(&c.AI.AnthropicKey, "ANTHROPIC_API_KEY")
	set(&c.AI.OpenAIKey, "OPENAI_API_KEY")
	set(&c.AI.Model, "DOCSTYLE_AI_MODEL")
	set(&c.Server.Listen, "DOCSTYLE_LISTEN")
}

// AIEnabled reports whether the AI corrector should be built. An explicit
// enabled: false wins; otherwise any configured key enables it.
func (c Config) AIEnabled() bool {
	if c.AI.Enabled != nil && !*c.AI.Enabled {
		return false
	}
	return c.AI.AnthropicKey != "" || c.AI.OpenAIKey != ""
}

// Validate checks what the HTTP service needs. The local check command
// only needs ValidateAI.
func (c Config) Validate() error {
	var errs []error
	if c.Graph.TenantID == "" {
		errs = append(errs, errors.New("graph tenant id is required (SHAREPOINT_TENANT_ID)"))
	}
	if c.Graph.ClientID == "" {
		errs = append(errs, errors.New("graph client id is required (SHAREPOINT_CLIENT_ID)"))
	}
	if c.Graph.ClientSecret == "" {
		errs = append(errs, errors.New("graph client secret is required (SHAREPOINT_CLIENT_SECRET)"))
	}
	if c.Graph.SiteURL == "" {
		errs = append(errs, errors.New("graph site url is required (SHAREPOINT_SITE_URL)"))
	} else if !strings.HasPrefix(c.Graph.SiteURL, "https://") {
		errs = append(errs, fmt.Errorf("graph site url %q must start with https://", c.Graph.SiteURL))
	}
	if c.Server.Listen == "" {
		errs = append(errs, errors.New("server listen address is required"))
	}
	if err := c.ValidateAI(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return apperr.Wrap("config.Validate", apperr.ErrConfiguration, errors.Join(errs...))
	}
	return nil
}

// ValidateAI checks the ai section alone.
func (c Config) ValidateAI() error {
	if c.AI.MaxTokens < 0 {
		return apperr.Wrap("config.ValidateAI", apperr.ErrConfiguration, fmt.Errorf("ai max_tokens must be >= 0, got %d", c.AI.MaxTokens))
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return apperr.Wrap("config.ValidateAI", apperr.ErrConfiguration, fmt.Errorf("ai temperature must be within [0, 2], got %g", c.AI.Temperature))
	}
	return nil
}
