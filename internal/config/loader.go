package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables read by Load.
const (
	EnvPrefix     = "TEAMRANK_"
	EnvConfigFile = "TEAMRANK_CONFIG"
)

// listKeys are the keys holding string lists.
var listKeys = map[string]struct{}{
	"extensions":         {},
	"identifier_aliases": {},
	"rank_aliases":       {},
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML): path argument, else TEAMRANK_CONFIG
//  3. env (prefix TEAMRANK_)
//
// The context is accepted for symmetry with the rest of the pipeline.
func Load(_ context.Context, path string) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// TEAMRANK_INPUT_DIR -> input_dir; underscores are kept to match koanf tags.
	// List keys take comma-separated values.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
		if _, ok := listKeys[key]; ok {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	// Lists from file or env replace the defaults instead of merging element-wise.
	for key, list := range map[string]*[]string{
		"extensions":         &cfg.Extensions,
		"identifier_aliases": &cfg.IdentifierAliases,
		"rank_aliases":       &cfg.RankAliases,
	} {
		if k.Exists(key) {
			*list = nil
		}
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// splitList splits a comma-separated env value, dropping blank items.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
