// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout bounds each outbound request, including reading the body.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-digest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the two literature collectors.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the number of papers requested from each index (default 3).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// OpenAlexEmail is sent as the mailto parameter for polite pool access.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty"`

	// Parallel runs both collectors concurrently instead of one after the other.
	Parallel bool `json:"parallel" yaml:"parallel"`
}

// AIProvider identifies the generative-text backend.
type AIProvider string

const (
	ProviderOpenAI    AIProvider = "openai"
	ProviderAnthropic AIProvider = "anthropic"
)

// AIConfig holds settings for the generative-text collaborator shared by the
// summarizer, critic, and verifier.
type AIConfig struct {
	// Provider selects the backend: openai or anthropic.
	Provider AIProvider `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "gpt-3.5-turbo").
	Model string `json:"model" yaml:"model"`

	// APIKey is the credential for the provider. Never serialized.
	APIKey string `json:"-" yaml:"-"`

	// BaseURL overrides the provider endpoint when set.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Timeout bounds a single completion call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// PipelineConfig holds settings for the critique-and-revise loop.
type PipelineConfig struct {
	// MaxRewrites is the number of automatic rewrites allowed before the
	// critic's verdict is overridden with approval (default 2).
	MaxRewrites int `json:"max_rewrites" yaml:"max_rewrites"`
}

// ServerConfig holds settings for the HTTP service.
type ServerConfig struct {
	// Addr is the listen address (e.g. ":8000").
	Addr string `json:"addr" yaml:"addr"`

	// ShutdownTimeout bounds graceful shutdown after SIGINT/SIGTERM.
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`

	// AllowedOrigins lists origins permitted by CORS. "*" allows any origin.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`
}

// Config groups all settings for the service.
type Config struct {
	LogLevel string         `json:"log_level" yaml:"log_level"`
	Search   SearchConfig   `json:"search" yaml:"search"`
	AI       AIConfig       `json:"ai" yaml:"ai"`
	Pipeline PipelineConfig `json:"pipeline" yaml:"pipeline"`
	Server   ServerConfig   `json:"server" yaml:"server"`
}
