// Package config loads NanoDB's tunable constants (spec.md 6) from a YAML
// file via viper, the way the teacher's internal/config.go loads its
// NovaSqlConfig.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the database's build-time tunables. RecordFrameSize is
// intentionally absent: it is derived per relation from its schema, not
// configured globally.
type Config struct {
	DatabaseFile        string `mapstructure:"database_file"`
	PageSize            int    `mapstructure:"page_size"`
	NumPages            int    `mapstructure:"num_pages"`
	BufferPoolCapacity  int    `mapstructure:"buffer_pool_capacity"`
	MaxDirectoryEntries int    `mapstructure:"max_directory_entries"`
	DirectoryNameWidth  int    `mapstructure:"directory_name_width"`
	LogLevel            string `mapstructure:"log_level"`
}

// Default returns NanoDB's built-in tunables, used when no config file is
// supplied.
func Default() Config {
	return Config{
		DatabaseFile:        "nanodb.db",
		PageSize:            512,
		NumPages:            64,
		BufferPoolCapacity:  16,
		MaxDirectoryEntries: 16,
		DirectoryNameWidth:  20,
		LogLevel:            "info",
	}
}

// Load reads path (a YAML file) into Config, overlaying it on Default. An
// empty path is not an error: it returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	v.SetDefault("database_file", cfg.DatabaseFile)
	v.SetDefault("page_size", cfg.PageSize)
	v.SetDefault("num_pages", cfg.NumPages)
	v.SetDefault("buffer_pool_capacity", cfg.BufferPoolCapacity)
	v.SetDefault("max_directory_entries", cfg.MaxDirectoryEntries)
	v.SetDefault("directory_name_width", cfg.DirectoryNameWidth)
	v.SetDefault("log_level", cfg.LogLevel)
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return cfg, nil
}
