package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

// Formats accepted by --format.
var Formats = []string{"console", "json", "markdown", "prometheus"}

// Config represents the schedlint configuration
type Config struct {
	Root           string      `mapstructure:"root"`
	Include        []string    `mapstructure:"include"`
	Exclude        []string    `mapstructure:"exclude"`
	FollowSymlinks bool        `mapstructure:"followSymlinks"`
	Format         string      `mapstructure:"format"`
	Output         string      `mapstructure:"output"`
	Catalog        string      `mapstructure:"catalog"`
	Baseline       string      `mapstructure:"baseline"`
	FailBelow      int         `mapstructure:"failBelow"`
	Quiet          bool        `mapstructure:"quiet"`
	Verbose        bool        `mapstructure:"verbose"`
	Concurrency    int         `mapstructure:"concurrency"`
	MaxSubjects    int         `mapstructure:"maxSubjects"`
	BlendWeight    *float64    `mapstructure:"blendWeight"`
	Watch          WatchConfig `mapstructure:"watch"`
}

// WatchConfig tunes the watch command.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// LoadConfig loads configuration from defaults, an optional
// .schedlintrc.{json,yaml,yml} in the working directory, SCHEDLINT_*
// environment variables and bound flags.
func LoadConfig(rootPath string) (*Config, error) {
	// Set default values
	viper.SetDefault("root", ".")
	viper.SetDefault("format", "console")
	viper.SetDefault("followSymlinks", false)
	viper.SetDefault("failBelow", 0)
	viper.SetDefault("quiet", false)
	viper.SetDefault("verbose", false)
	viper.SetDefault("concurrency", 8)
	viper.SetDefault("maxSubjects", 20)
	viper.SetDefault("watch.debounce", "300ms")

	// Config file locations
	configPaths := []string{".schedlintrc.json", ".schedlintrc.yaml", ".schedlintrc.yml"}
	for _, path := range configPaths {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err == nil {
			break
		}
	}

	// Environment variables
	viper.SetEnvPrefix("SCHEDLINT")
	viper.AutomaticEnv()

	// Create config instance
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Override root if provided
	if rootPath != "" {
		config.Root = rootPath
	}

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig reports every problem with the configuration at once.
func validateConfig(config *Config) error {
	var errs []error

	if !validFormat(config.Format) {
		errs = append(errs, fmt.Errorf("invalid format: %s. Must be 'console', 'json', 'markdown', or 'prometheus'", config.Format))
	}

	if config.FailBelow < 0 || config.FailBelow > 100 {
		errs = append(errs, fmt.Errorf("fail-below must be between 0 and 100, got %d", config.FailBelow))
	}

	if config.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1"))
	}

	if config.BlendWeight != nil && (*config.BlendWeight < 0 || *config.BlendWeight > 1) {
		errs = append(errs, fmt.Errorf("blend weight must be between 0 and 1, got %v", *config.BlendWeight))
	}

	if config.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch debounce must not be negative"))
	}

	// Validate output file if format is not console
	if config.Format != "console" && config.Output == "" {
		errs = append(errs, fmt.Errorf("output file is required when format is not 'console'"))
	}

	return errors.Join(errs...)
}

func validFormat(f string) bool {
	for _, v := range Formats {
		if f == v {
			return true
		}
	}
	return false
}

// Logger returns the diagnostic logger for this configuration: debug under
// verbose, warnings only under quiet, info otherwise.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case c.Verbose:
		level = slog.LevelDebug
	case c.Quiet:
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
