package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables consulted by Load.
const (
	EnvPrefix  = "NEWSPULSE_"
	EnvConfig  = EnvPrefix + "CONFIG"
	EnvEnvFile = EnvPrefix + "ENV_FILE"

	defaultEnvFile = ".env"
)

// LoadOption adjusts a single Load call.
type LoadOption func(*loadOptions)

type loadOptions struct {
	path string
}

// WithFile loads YAML from path, taking precedence over NEWSPULSE_CONFIG.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) from WithFile or NEWSPULSE_CONFIG
//  3. env (prefix NEWSPULSE_), after merging a .env file if one exists
func Load(ctx context.Context, opts ...LoadOption) (*Config, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	base := New(ctx)
	k := koanf.New(".")

	path := o.path
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, loadFailed("read "+path, err)
		}
	}

	// NEWSPULSE_FETCH_TIMEOUT_MS -> fetch_timeout_ms; entities are comma
	// separated and metrics_labels are comma separated name=value pairs.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
		switch key {
		case "entities":
			return key, splitList(value)
		case "metrics_labels":
			return key, splitPairs(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, loadFailed("read environment", err)
	}

	cfg := *base
	// Decoding into a populated slice overwrites element-wise, so a shorter
	// configured list would inherit trailing defaults.
	if k.Exists("entities") {
		cfg.Entities = nil
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, loadFailed("decode", err)
	}

	for i := range cfg.Entities {
		cfg.Entities[i] = strings.TrimSpace(cfg.Entities[i])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv merges a .env file into the process environment without
// overriding variables that are already set.
func loadDotEnv() error {
	path := os.Getenv(EnvEnvFile)
	if path == "" {
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return loadFailed("read "+path, err)
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitPairs(s string) map[string]any {
	out := make(map[string]any)
	for _, p := range splitList(s) {
		name, value, _ := strings.Cut(p, "=")
		if name = strings.TrimSpace(name); name != "" {
			out[name] = strings.TrimSpace(value)
		}
	}
	return out
}
