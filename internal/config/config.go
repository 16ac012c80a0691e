// Package config loads gha settings from an optional config file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/kyleking/gh-makedispatch/internal/workflow"
)

// EnvPrefix prefixes every environment variable read by gha, e.g. GHA_REPO.
const EnvPrefix = "GHA"

// Config holds the resolved settings.
type Config struct {
	Repo         string `mapstructure:"repo"`
	Ref          string `mapstructure:"ref"`
	Token        string `mapstructure:"token"`
	WorkflowsDir string `mapstructure:"workflows_dir"`
	Output       string `mapstructure:"output"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		WorkflowsDir: workflow.DefaultDir,
		Output:       "Makefile",
	}
}

// Load reads the configuration into v and unmarshals it. When path is
// empty, .gha.yaml in the current directory is used if it exists.
func Load(v *viper.Viper, path string) (Config, error) {
	defaults := Defaults()
	v.SetDefault("workflows_dir", defaults.WorkflowsDir)
	v.SetDefault("output", defaults.Output)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("token", EnvPrefix+"_TOKEN", "GITHUB_TOKEN", "GH_TOKEN"); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".gha")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
