// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kataras/golog"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-digest/internal/digest"
	"github.com/pdiddy/research-digest/internal/generate"
	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/internal/search"
	"github.com/pdiddy/research-digest/internal/secrets"
	"github.com/pdiddy/research-digest/internal/server"
	"github.com/pdiddy/research-digest/pkg/types"
)

const (
	defaultSearchTimeout = 30 * time.Second
	defaultUserAgent     = "research-digest/0.1"
)

// envKeyReplacer maps nested keys to env names: search.max_results is read
// from RESEARCH_DIGEST_SEARCH_MAX_RESULTS.
var envKeyReplacer = strings.NewReplacer(".", "_")

func setDefaults() {
	viper.SetDefault("log_level", "info")

	viper.SetDefault("search.max_results", search.DefaultMaxResults)
	viper.SetDefault("search.timeout", defaultSearchTimeout)
	viper.SetDefault("search.user_agent", defaultUserAgent)
	viper.SetDefault("search.openalex_email", "")
	viper.SetDefault("search.parallel", false)

	viper.SetDefault("ai.provider", string(generate.DefaultProvider))
	viper.SetDefault("ai.api_key", "")
	viper.SetDefault("ai.base_url", "")
	viper.SetDefault("ai.timeout", generate.DefaultTimeout)

	viper.SetDefault("pipeline.max_rewrites", digest.DefaultMaxRewrites)

	viper.SetDefault("server.addr", server.DefaultAddr)
	viper.SetDefault("server.shutdown_timeout", server.DefaultShutdownTimeout)
	viper.SetDefault("server.allowed_origins", []string{"*"})
}

// loadConfig assembles the configuration from viper and resolves the
// provider credential. Any error here is fatal: the process must not start
// serving or running without a credential.
func loadConfig() (types.Config, error) {
	cfg := types.Config{
		LogLevel: viper.GetString("log_level"),
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: viper.GetString("search.user_agent"),
			},
			MaxResults:    viper.GetInt("search.max_results"),
			OpenAlexEmail: firstNonEmpty(viper.GetString("search.openalex_email"), credentials.File("openalex-email")),
			Parallel:      viper.GetBool("search.parallel"),
		},
		AI: types.AIConfig{
			Provider: types.AIProvider(strings.ToLower(viper.GetString("ai.provider"))),
			Model:    viper.GetString("ai.model"),
			BaseURL:  viper.GetString("ai.base_url"),
			Timeout:  viper.GetDuration("ai.timeout"),
		},
		Pipeline: types.PipelineConfig{
			MaxRewrites: viper.GetInt("pipeline.max_rewrites"),
		},
		Server: types.ServerConfig{
			Addr:            viper.GetString("server.addr"),
			ShutdownTimeout: viper.GetDuration("server.shutdown_timeout"),
			AllowedOrigins:  viper.GetStringSlice("server.allowed_origins"),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return types.Config{}, err
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = generate.DefaultModel(cfg.AI.Provider)
	}

	key, err := credentials.APIKey(cfg.AI.Provider, viper.GetString("ai.api_key"))
	if err != nil {
		return types.Config{}, fmt.Errorf("%w (set RESEARCH_DIGEST_AI_API_KEY, API_KEY, or .secrets/%s-api-key)", err, cfg.AI.Provider)
	}
	cfg.AI.APIKey = key

	return cfg, nil
}

func validateConfig(cfg types.Config) error {
	switch cfg.AI.Provider {
	case types.ProviderOpenAI, types.ProviderAnthropic:
	default:
		return &secrets.ConfigError{Key: "ai.provider", Msg: fmt.Sprintf("unknown provider %q", cfg.AI.Provider)}
	}
	if cfg.Search.MaxResults <= 0 {
		return &secrets.ConfigError{Key: "search.max_results", Msg: "must be positive"}
	}
	if cfg.Pipeline.MaxRewrites < 0 {
		return &secrets.ConfigError{Key: "pipeline.max_rewrites", Msg: "must not be negative"}
	}
	if cfg.Search.Timeout <= 0 || cfg.AI.Timeout <= 0 {
		return &secrets.ConfigError{Key: "timeout", Msg: "search.timeout and ai.timeout must be positive"}
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// newLogger returns a golog logger writing to stderr at level.
func newLogger(level string) *golog.Logger {
	logger := golog.New()
	logger.SetOutput(os.Stderr)
	logger.SetPrefix("[research-digest] ")
	logger.SetLevel(level)
	return logger
}

// newRunner wires the collectors and the generator from cfg.
func newRunner(cfg types.Config, logger *golog.Logger) (*digest.Runner, error) {
	gen, err := generate.New(cfg.AI)
	if err != nil {
		return nil, err
	}

	client := httputil.NewClient(cfg.Search.HTTPConfig)
	arxiv := &search.ArxivBackend{Client: client, Config: cfg.Search.HTTPConfig}
	openAlex := &search.OpenAlexBackend{Client: client, Config: cfg.Search.HTTPConfig, Email: cfg.Search.OpenAlexEmail}

	maxRewrites := cfg.Pipeline.MaxRewrites
	if maxRewrites == 0 {
		maxRewrites = digest.NoRewrites
	}

	return digest.NewRunner(arxiv, openAlex, gen, digest.Options{
		MaxResults:  cfg.Search.MaxResults,
		MaxRewrites: maxRewrites,
		Parallel:    cfg.Search.Parallel,
		Logger:      logger,
	}), nil
}
