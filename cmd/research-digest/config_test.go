// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-digest/internal/secrets"
	"github.com/pdiddy/research-digest/pkg/types"
)

func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	setDefaults()
	credentials = secrets.NewStore(map[string]string{}, map[string]string{})
	t.Setenv("API_KEY", "")
	t.Cleanup(viper.Reset)
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetConfig(t)
	viper.Set("ai.api_key", "sk-test")

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 3, cfg.Search.MaxResults)
	assert.Equal(t, 30*time.Second, cfg.Search.Timeout)
	assert.Equal(t, defaultUserAgent, cfg.Search.UserAgent)
	assert.False(t, cfg.Search.Parallel)
	assert.Equal(t, types.ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, "gpt-3.5-turbo", cfg.AI.Model)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.Equal(t, 2, cfg.Pipeline.MaxRewrites)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoadConfig_MissingCredential(t *testing.T) {
	resetConfig(t)

	_, err := loadConfig()
	require.Error(t, err)

	var cfgErr *secrets.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "ai.api_key", cfgErr.Key)
}

func TestLoadConfig_CredentialPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		viper   string
		env     string
		envFile string
		secret  string
		want    string
	}{
		{name: "viper wins", viper: "v", env: "e", envFile: "f", secret: "s", want: "v"},
		{name: "process env", env: "e", envFile: "f", secret: "s", want: "e"},
		{name: "dotenv file", envFile: "f", secret: "s", want: "f"},
		{name: "secrets dir", secret: "s", want: "s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetConfig(t)
			viper.Set("ai.api_key", tt.viper)
			t.Setenv("API_KEY", tt.env)
			credentials = secrets.NewStore(
				map[string]string{"openai-api-key": tt.secret},
				map[string]string{"API_KEY": tt.envFile},
			)

			cfg, err := loadConfig()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.AI.APIKey)
		})
	}
}

func TestLoadConfig_SecretMatchesProvider(t *testing.T) {
	resetConfig(t)
	viper.Set("ai.provider", "Anthropic")
	credentials = secrets.NewStore(map[string]string{
		"openai-api-key":    "wrong",
		"anthropic-api-key": "right",
	}, nil)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, types.ProviderAnthropic, cfg.AI.Provider)
	assert.Equal(t, "right", cfg.AI.APIKey)
}

func TestLoadConfig_ModelFollowsProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		model    string
		want     string
	}{
		{name: "openai default", provider: "openai", want: "gpt-3.5-turbo"},
		{name: "anthropic default", provider: "anthropic", want: "claude-3-5-haiku-latest"},
		{name: "explicit model kept", provider: "anthropic", model: "claude-3-opus-latest", want: "claude-3-opus-latest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetConfig(t)
			viper.Set("ai.api_key", "k")
			viper.Set("ai.provider", tt.provider)
			if tt.model != "" {
				viper.Set("ai.model", tt.model)
			}

			cfg, err := loadConfig()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.AI.Model)
		})
	}
}

func TestLoadConfig_OpenAlexEmailFromSecrets(t *testing.T) {
	resetConfig(t)
	viper.Set("ai.api_key", "k")
	credentials = secrets.NewStore(map[string]string{"openalex-email": "me@example.org"}, nil)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "me@example.org", cfg.Search.OpenAlexEmail)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{name: "unknown provider", key: "ai.provider", val: "cohere"},
		{name: "zero max results", key: "search.max_results", val: 0},
		{name: "negative rewrites", key: "pipeline.max_rewrites", val: -1},
		{name: "zero timeout", key: "search.timeout", val: "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetConfig(t)
			viper.Set("ai.api_key", "k")
			viper.Set(tt.key, tt.val)

			_, err := loadConfig()
			var cfgErr *secrets.ConfigError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
		})
	}
}

func TestNewRunner_UnknownProviderRejected(t *testing.T) {
	cfg := types.Config{AI: types.AIConfig{Provider: "cohere", APIKey: "k"}}
	_, err := newRunner(cfg, newLogger("disable"))
	assert.Error(t, err)
}
