// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets gathers credentials at startup. Two sources are read once:
// a directory where each regular file holds one secret (file name is the
// key, trimmed contents the value) and a dotenv file. Neither source
// modifies the process environment.
//
// Recognised directory entries: openai-api-key, anthropic-api-key,
// openalex-email.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/pdiddy/research-digest/pkg/types"
)

// APIKeyEnv is the variable consulted in the process environment and in the
// dotenv file for the provider credential.
const APIKeyEnv = "API_KEY"

// ConfigError reports a missing credential or invalid setting. It is fatal
// at startup and never produced while serving a request.
type ConfigError struct {
	Key string
	Msg string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Key, e.Msg)
}

// Store holds the values read from the secrets directory and dotenv file.
// The zero value is an empty store.
type Store struct {
	files map[string]string
	env   map[string]string
}

// Open reads dir and envPath. Either may be missing; a missing source
// contributes nothing.
func Open(dir, envPath string) (*Store, error) {
	files, err := readDir(dir)
	if err != nil {
		return nil, err
	}
	env, err := readEnvFile(envPath)
	if err != nil {
		return nil, err
	}
	return &Store{files: files, env: env}, nil
}

// NewStore builds a Store from values already in memory.
func NewStore(files, env map[string]string) *Store {
	return &Store{files: files, env: env}
}

// File returns the secret stored in the directory under name.
func (s *Store) File(name string) string {
	if s == nil {
		return ""
	}
	return s.files[name]
}

// Env returns the dotenv value for name.
func (s *Store) Env(name string) string {
	if s == nil {
		return ""
	}
	return s.env[name]
}

// Names lists the directory secrets that were found, sorted.
func (s *Store) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.files))
	for k := range s.files {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// APIKey resolves the credential for provider. The first non-blank value
// wins, in this order: explicit, the API_KEY environment variable, API_KEY
// in the dotenv file, the <provider>-api-key secret file.
func (s *Store) APIKey(provider types.AIProvider, explicit string) (string, error) {
	return Resolve("ai.api_key",
		explicit,
		os.Getenv(APIKeyEnv),
		s.Env(APIKeyEnv),
		s.File(string(provider)+"-api-key"),
	)
}

// Resolve returns the first non-blank candidate, trimmed. When every
// candidate is blank it returns a *ConfigError naming key.
func Resolve(key string, candidates ...string) (string, error) {
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return c, nil
		}
	}
	return "", &ConfigError{Key: key, Msg: "credential not found"}
}

// readDir maps each regular, non-hidden file in dir to its trimmed
// contents. Blank files are dropped. A file that cannot be read is reported
// on stderr and skipped.
func readDir(dir string) (map[string]string, error) {
	out := map[string]string{}
	if dir == "" {
		return out, nil
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping secret %s: %v\n", e.Name(), err)
			continue
		}
		if v := strings.TrimSpace(string(raw)); v != "" {
			out[e.Name()] = v
		}
	}
	return out, nil
}

// readEnvFile parses a dotenv file with godotenv.Read, which leaves the
// process environment alone. Blank values are dropped.
func readEnvFile(path string) (map[string]string, error) {
	out := map[string]string{}
	if path == "" {
		return out, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}

	for k, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out[k] = v
		}
	}
	return out, nil
}
