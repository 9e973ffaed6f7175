package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const appName = "flashcards"

// Environment variables that take precedence over the config file
const (
	EnvResources = "FLASHCARDS_RESOURCES"
	EnvStorage   = "FLASHCARDS_STORAGE"
	EnvLogLevel  = "FLASHCARDS_LOG_LEVEL"
)

// Config represents the application configuration
type Config struct {
	// Resources is a directory or an http(s) base URL holding the catalog and card-sets/
	Resources    string `toml:"resources"`
	Catalog      string `toml:"catalog" validate:"required"`
	Storage      string `toml:"storage" validate:"oneof=file sqlite memory"`
	FrontFace    string `toml:"front_face" validate:"oneof=japanese english"`
	DefaultLevel string `toml:"default_level" validate:"oneof=all L1 L2 L3"`
	LogLevel     string `toml:"log_level" validate:"oneof=debug info warn error"`
	// FetchTimeout bounds each resource fetch. Zero means no timeout.
	FetchTimeout string `toml:"fetch_timeout"`
}

// Default returns the configuration written on first run
func Default() *Config {
	return &Config{
		Resources:    GetLibraryPath(),
		Catalog:      "catalog.json",
		Storage:      "file",
		FrontFace:    "japanese",
		DefaultLevel: "all",
		LogLevel:     "info",
		FetchTimeout: "0s",
	}
}

// Timeout parses FetchTimeout
func (c *Config) Timeout() (time.Duration, error) {
	if c.FetchTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid fetch_timeout %q: %w", c.FetchTimeout, err)
	}
	return d, nil
}

// Validate checks the config values
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	return nil
}

// GetXDGDataHome returns XDG_DATA_HOME or default path
func GetXDGDataHome() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return xdgData
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".local", "share")
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetXDGCacheHome returns XDG_CACHE_HOME or default path
func GetXDGCacheHome() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return xdgCache
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".cache")
}

// GetLibraryPath returns the default resource directory
func GetLibraryPath() string {
	return filepath.Join(GetXDGDataHome(), appName, "library")
}

// GetStorageDir returns the directory used by the file storage backend
func GetStorageDir() string {
	return filepath.Join(GetXDGDataHome(), appName, "storage")
}

// GetDatabasePath returns the path of the sqlite storage backend
func GetDatabasePath() string {
	return filepath.Join(GetXDGDataHome(), appName, "favorites.db")
}

// GetLogFilePath returns the log file used while the interactive UI owns the terminal
func GetLogFilePath() string {
	return filepath.Join(GetXDGCacheHome(), appName, appName+".log")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), appName, "config.toml")
}

// LoadConfig loads the config file and applies environment overrides
func LoadConfig() (*Config, error) {
	config, err := readConfigFile()
	if err != nil {
		return nil, err
	}

	applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// readConfigFile decodes the config file, creating it when missing
func readConfigFile() (*Config, error) {
	configPath := GetConfigFilePath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig()
	}

	// Unset keys keep their defaults
	config := Default()
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}
	return config, nil
}

func applyEnv(config *Config) {
	if v := os.Getenv(EnvResources); v != "" {
		config.Resources = v
	}
	if v := os.Getenv(EnvStorage); v != "" {
		config.Storage = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		config.LogLevel = v
	}
}

// createDefaultConfig creates a default config file
func createDefaultConfig() (*Config, error) {
	config := Default()
	if err := SaveConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig writes config to the config file
func SaveConfig(config *Config) error {
	configPath := GetConfigFilePath()

	// Ensure the config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	// Encode the config to TOML
	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	return nil
}

// SetResources points the config at a new resource directory or URL
func SetResources(resources string) error {
	config, err := readConfigFile()
	if err != nil {
		return err
	}

	config.Resources = resources
	return SaveConfig(config)
}
