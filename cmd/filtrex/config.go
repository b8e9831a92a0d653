package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	envPrefix         = "FILTREX_"
	defaultConfigFile = "filtrex.yaml"
)

var validFormats = []string{"text", "json"}

type cliConfig struct {
	MaxDepth       int    `koanf:"max_depth"`
	MaxSourceBytes int    `koanf:"max_source_bytes"`
	Format         string `koanf:"format"`
	Verbose        bool   `koanf:"verbose"`
	Parallelism    int    `koanf:"parallelism"`
}

// loadConfig merges defaults, the config file, FILTREX_ environment
// variables and explicitly set flags, in increasing order of precedence.
// It returns the config file it read, if any.
func loadConfig(cfgFile string, flags *pflag.FlagSet) (*cliConfig, string, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"max_depth":        0,
		"max_source_bytes": 0,
		"format":           "text",
		"verbose":          false,
		"parallelism":      0,
	}, "."), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, "", fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// FILTREX_MAX_DEPTH -> max_depth
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, "", fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg cliConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, "", fmt.Errorf("unable to decode config: %w", err)
	}
	if !slices.Contains(validFormats, cfg.Format) {
		return nil, "", fmt.Errorf("invalid format %q (expected %s)", cfg.Format, strings.Join(validFormats, " or "))
	}
	return &cfg, used, nil
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile
	}
	return ""
}
