// Package config provides configuration management for the kaprekar explorer.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Explore ExploreConfig `mapstructure:"explore"`
	Worker  WorkerConfig  `mapstructure:"worker"`
	Log     LogConfig     `mapstructure:"log"`
}

// ExploreConfig holds the (base, digits) rectangle and output settings.
type ExploreConfig struct {
	MinBase        int    `mapstructure:"min_base"`
	MaxBase        int    `mapstructure:"max_base"`
	MinDigits      int    `mapstructure:"min_digits"`
	MaxDigits      int    `mapstructure:"max_digits"`
	DataDir        string `mapstructure:"data_dir"`
	DigitThreshold int    `mapstructure:"digit_threshold"`
	HighMem        bool   `mapstructure:"high_mem"`
}

// WorkerConfig holds worker-pool and chunking configuration.
type WorkerConfig struct {
	CPUCores           int  `mapstructure:"cpu_cores"`
	ChunksPerCore      int  `mapstructure:"chunks_per_core"`
	MinChunkSize       int  `mapstructure:"min_chunk_size"`
	MaxChunkSize       int  `mapstructure:"max_chunk_size"`
	AllowWriteSampling bool `mapstructure:"allow_write_sampling"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Verbose bool   `mapstructure:"verbose"`
}

// Load reads configuration from the specified file path.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/kaprekar-explorer")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("Config file not found, using defaults")
		} else if os.IsNotExist(err) {
			fmt.Printf("Config file %s not found, using defaults\n", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from raw bytes (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values. max_base and max_digits
// are deliberately left unset (zero value): §6 documents them as required,
// with no default, so Validate rejects a run that never supplied them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("explore.min_base", 2)
	v.SetDefault("explore.min_digits", 2)
	v.SetDefault("explore.data_dir", ".")
	v.SetDefault("explore.digit_threshold", 13)
	v.SetDefault("explore.high_mem", false)

	v.SetDefault("worker.cpu_cores", 1)
	v.SetDefault("worker.chunks_per_core", 20)
	v.SetDefault("worker.min_chunk_size", 5000)
	v.SetDefault("worker.max_chunk_size", 100000)
	v.SetDefault("worker.allow_write_sampling", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.verbose", false)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Explore.MinBase < 2 {
		return fmt.Errorf("min_base must be >= 2")
	}
	if c.Explore.MaxBase == 0 {
		return fmt.Errorf("max_base is required")
	}
	if c.Explore.MaxBase < c.Explore.MinBase {
		return fmt.Errorf("max_base must be >= min_base")
	}
	if c.Explore.MinDigits < 1 {
		return fmt.Errorf("min_digits must be >= 1")
	}
	if c.Explore.MaxDigits == 0 {
		return fmt.Errorf("max_digits is required")
	}
	if c.Explore.MaxDigits < c.Explore.MinDigits {
		return fmt.Errorf("max_digits must be >= min_digits")
	}
	if c.Worker.ChunksPerCore < 1 {
		return fmt.Errorf("chunks_per_core must be at least 1")
	}
	if c.Worker.MaxChunkSize < c.Worker.MinChunkSize {
		return fmt.Errorf("max_chunk_size must be >= min_chunk_size")
	}
	return nil
}

// csvDir returns the <data-dir>/csv subdirectory §6 requires output files
// to live in.
func (c *Config) csvDir() string {
	if c.Explore.DataDir == "" {
		return "csv"
	}
	return filepath.Join(c.Explore.DataDir, "csv")
}

// EnsureDataDir creates the data directory and its csv/ output
// subdirectory if they don't exist.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.csvDir(), 0755)
}

// OutputPath returns a named output file's path within <data-dir>/csv.
func (c *Config) OutputPath(name string) string {
	return filepath.Join(c.csvDir(), name)
}
