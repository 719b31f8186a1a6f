package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Dump       DumpConfig       `mapstructure:"dump"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	Regression RegressionConfig `mapstructure:"regression"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// DumpConfig locates the data-dump files and names the site they came from
type DumpConfig struct {
	DataDir   string `mapstructure:"data_dir"`
	TagsFile  string `mapstructure:"tags_file"`
	UsersFile string `mapstructure:"users_file"`
	PostsFile string `mapstructure:"posts_file"`
	SiteHost  string `mapstructure:"site_host"`
}

// AnalysisConfig holds the profiling and feature-extraction thresholds
type AnalysisConfig struct {
	TopTags            int `mapstructure:"top_tags"`
	MinReputation      int `mapstructure:"min_reputation"`
	MinCodeLines       int `mapstructure:"min_code_lines"`
	ShortWordThreshold int `mapstructure:"short_word_threshold"`
	LongWordThreshold  int `mapstructure:"long_word_threshold"`
}

// RegressionConfig holds the model-fitting configuration
type RegressionConfig struct {
	MinSegmentSize int     `mapstructure:"min_segment_size"`
	MaxIterations  int     `mapstructure:"max_iterations"`
	Tolerance      float64 `mapstructure:"tolerance"`
	Parallel       bool    `mapstructure:"parallel"`
}

// StorageConfig holds the optional artifact-store configuration
type StorageConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set config file
	v.SetConfigFile(path)

	// Set defaults
	setDefaults(v)

	// Enable environment variable override
	v.SetEnvPrefix("REPSHAPE")
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options.
// The analysis constants default to the values the shape thresholds were
// tuned against.
func setDefaults(v *viper.Viper) {
	// Dump defaults
	v.SetDefault("dump.data_dir", "./stackexchange")
	v.SetDefault("dump.tags_file", "Tags.xml")
	v.SetDefault("dump.users_file", "Users.xml")
	v.SetDefault("dump.posts_file", "Posts.xml")
	v.SetDefault("dump.site_host", "stackoverflow.com")

	// Analysis defaults
	v.SetDefault("analysis.top_tags", 100)
	v.SetDefault("analysis.min_reputation", 100)
	v.SetDefault("analysis.min_code_lines", 5)
	v.SetDefault("analysis.short_word_threshold", 150)
	v.SetDefault("analysis.long_word_threshold", 400)

	// Regression defaults
	v.SetDefault("regression.min_segment_size", 100)
	v.SetDefault("regression.max_iterations", 1000)
	v.SetDefault("regression.tolerance", 1e-8)
	v.SetDefault("regression.parallel", false)

	// Storage defaults
	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.db_path", "./data/repshape.db")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Dump config
	if c.Dump.DataDir == "" {
		return fmt.Errorf("dump.data_dir is required")
	}
	if c.Dump.TagsFile == "" || c.Dump.UsersFile == "" || c.Dump.PostsFile == "" {
		return fmt.Errorf("dump.tags_file, dump.users_file, and dump.posts_file are required")
	}
	if c.Dump.SiteHost == "" {
		return fmt.Errorf("dump.site_host is required")
	}

	// Validate Analysis config
	if c.Analysis.TopTags < 1 {
		return fmt.Errorf("analysis.top_tags must be at least 1")
	}
	if c.Analysis.MinReputation < 0 {
		return fmt.Errorf("analysis.min_reputation must not be negative")
	}
	if c.Analysis.MinCodeLines < 1 {
		return fmt.Errorf("analysis.min_code_lines must be at least 1")
	}
	if c.Analysis.ShortWordThreshold < 1 {
		return fmt.Errorf("analysis.short_word_threshold must be at least 1")
	}
	if c.Analysis.LongWordThreshold <= c.Analysis.ShortWordThreshold {
		return fmt.Errorf("analysis.long_word_threshold must be greater than analysis.short_word_threshold")
	}

	// Validate Regression config
	if c.Regression.MinSegmentSize < 1 {
		return fmt.Errorf("regression.min_segment_size must be at least 1")
	}
	if c.Regression.MaxIterations < 1 {
		return fmt.Errorf("regression.max_iterations must be at least 1")
	}
	if c.Regression.Tolerance <= 0 {
		return fmt.Errorf("regression.tolerance must be positive")
	}

	// Validate Storage config
	if c.Storage.Enabled && c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required when storage is enabled")
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// TagsPath returns the full path to the tag catalog file
func (c *Config) TagsPath() string {
	return filepath.Join(c.Dump.DataDir, c.Dump.TagsFile)
}

// UsersPath returns the full path to the user dump file
func (c *Config) UsersPath() string {
	return filepath.Join(c.Dump.DataDir, c.Dump.UsersFile)
}

// PostsPath returns the full path to the post dump file
func (c *Config) PostsPath() string {
	return filepath.Join(c.Dump.DataDir, c.Dump.PostsFile)
}
