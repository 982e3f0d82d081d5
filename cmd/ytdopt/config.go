package main

import (
	"context"
	"math/bits"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config is the ytdopt configuration file (~/.config/ytdopt/config.yaml).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	TargetSize *int           `yaml:"target_size"`
	Texconv    string         `yaml:"texconv"`
	Parallel   *int           `yaml:"parallel"`
	Timeout    *time.Duration `yaml:"timeout"`
	Extensions []string       `yaml:"extensions"`
	LogLevel   string         `yaml:"log_level"`
	LogFormat  string         `yaml:"log_format"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ytdopt", "config.yaml")
}

// LoadConfig reads the config file at path, or the default location when
// path is empty. A missing default file yields a zero Config; a missing
// explicit file is an error.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = configPath()
		if path == "" {
			return Config{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, errors.Wrap(err, "read config")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

type configKey struct{}

func withConfig(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

func configFrom(ctx context.Context) Config {
	cfg, _ := ctx.Value(configKey{}).(Config)
	return cfg
}

// optimizeOptions are the settings of the optimize command after flags and
// config are merged.
type optimizeOptions struct {
	size       int
	texconv    string
	parallel   int
	timeout    time.Duration
	extensions []string
	report     string
}

// applyOptimizeConfig fills options whose flag was not explicitly set from
// the config file.
func applyOptimizeConfig(c *cli.Command, cfg Config, opts *optimizeOptions) {
	if cfg.TargetSize != nil && !c.IsSet("size") {
		opts.size = *cfg.TargetSize
	}
	if cfg.Texconv != "" && !c.IsSet("texconv") {
		opts.texconv = cfg.Texconv
	}
	if cfg.Parallel != nil && !c.IsSet("parallel") {
		opts.parallel = *cfg.Parallel
	}
	if cfg.Timeout != nil && !c.IsSet("timeout") {
		opts.timeout = *cfg.Timeout
	}
	if len(cfg.Extensions) > 0 && !c.IsSet("ext") {
		opts.extensions = cfg.Extensions
	}
}

func (o *optimizeOptions) validate() error {
	if o.size < 4 || bits.OnesCount(uint(o.size)) != 1 {
		return errors.Errorf("target size must be a power of two >= 4, got %d", o.size)
	}
	if o.size > 1<<15 {
		return errors.Errorf("target size %d exceeds the texture descriptor limit", o.size)
	}
	if o.parallel < 1 {
		return errors.Errorf("parallel must be at least 1, got %d", o.parallel)
	}
	if o.timeout <= 0 {
		return errors.Errorf("timeout must be positive, got %s", o.timeout)
	}
	return nil
}
