package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the configuration,
// e.g. XBDEPENDS_TARGET or XBDEPENDS_SBOM_FORMAT.
const EnvPrefix = "XBDEPENDS"

// Config represents the application configuration
type Config struct {
	LogLevel  string `yaml:"log_level" mapstructure:"log_level"`
	LogFormat string `yaml:"log_format" mapstructure:"log_format"`

	// Analysis settings
	Target    string `yaml:"target" mapstructure:"target"`
	Retail    bool   `yaml:"retail" mapstructure:"retail"`
	Layout    bool   `yaml:"layout" mapstructure:"layout"`
	Recursive bool   `yaml:"recursive" mapstructure:"recursive"`
	Workers   int    `yaml:"workers" mapstructure:"workers"`

	// Report settings
	Verbose      bool   `yaml:"verbose" mapstructure:"verbose"`
	OutputFormat string `yaml:"output_format" mapstructure:"output_format"`

	SBOM SBOMConfig `yaml:"sbom" mapstructure:"sbom"`
}

// SBOMConfig holds SBOM generation configuration
type SBOMConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	Format    string `yaml:"format" mapstructure:"format"`
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

var (
	validLogLevels     = []string{"debug", "info", "warn", "error"}
	validLogFormats    = []string{"text", "json"}
	validTargets       = []string{"auto", "unspecified", "xboxone", "scarlett", "pc"}
	validOutputFormats = []string{"text", "json", "yaml"}
	validSBOMFormats   = []string{"cyclonedx", "spdx"}
)

// ConfigManager handles configuration loading and management
type ConfigManager struct {
	config *Config
	viper  *viper.Viper
	logger *Logger
}

// NewConfigManager creates a new configuration manager
func NewConfigManager() *ConfigManager {
	return &ConfigManager{
		config: &Config{},
		viper:  viper.New(),
		logger: NewDefaultLogger(),
	}
}

// LoadConfig resolves the configuration. Precedence from highest to lowest:
// values set with SetConfigValue, XBDEPENDS_* environment variables, the
// config file, defaults. An empty configFile searches the standard locations.
func (c *ConfigManager) LoadConfig(configFile string) error {
	c.setDefaults()

	c.viper.SetConfigType("yaml")
	c.viper.SetEnvPrefix(EnvPrefix)
	c.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	c.viper.AutomaticEnv()

	if configFile != "" {
		c.viper.SetConfigFile(configFile)
		if err := c.viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		c.logger.WithComponent("config").Infof("Loaded config from: %s", c.viper.ConfigFileUsed())
	} else {
		c.viper.SetConfigName("config")
		c.viper.AddConfigPath(".")
		c.viper.AddConfigPath("$HOME/.xbdepends")
		c.viper.AddConfigPath("/etc/xbdepends")

		if err := c.viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return fmt.Errorf("failed to read config file: %w", err)
			}
			c.logger.WithComponent("config").Debug("No config file found, using defaults and environment variables")
		} else {
			c.logger.WithComponent("config").Infof("Loaded config from: %s", c.viper.ConfigFileUsed())
		}
	}

	if err := c.viper.Unmarshal(c.config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := c.validateConfig(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	c.logger.WithComponent("config").Debug("Configuration loaded successfully")
	return nil
}

// setDefaults sets default configuration values
func (c *ConfigManager) setDefaults() {
	c.viper.SetDefault("log_level", "warn")
	c.viper.SetDefault("log_format", "text")

	c.viper.SetDefault("target", "auto")
	c.viper.SetDefault("retail", false)
	c.viper.SetDefault("layout", false)
	c.viper.SetDefault("recursive", false)
	c.viper.SetDefault("workers", runtime.NumCPU())

	c.viper.SetDefault("verbose", false)
	c.viper.SetDefault("output_format", "text")

	c.viper.SetDefault("sbom.enabled", false)
	c.viper.SetDefault("sbom.format", "cyclonedx")
	c.viper.SetDefault("sbom.output_dir", ".")
}

// validateConfig validates the loaded configuration and normalizes case
func (c *ConfigManager) validateConfig() error {
	cfg := c.config

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	if !contains(validLogLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", cfg.LogLevel, validLogLevels)
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if !contains(validLogFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s (valid: %v)", cfg.LogFormat, validLogFormats)
	}

	cfg.Target = strings.ToLower(strings.TrimSpace(cfg.Target))
	if cfg.Target != "" && !contains(validTargets, cfg.Target) {
		return fmt.Errorf("invalid target: %s (valid: %v)", cfg.Target, validTargets)
	}

	if cfg.Workers < 1 {
		return fmt.Errorf("invalid workers: %d (must be at least 1)", cfg.Workers)
	}

	cfg.OutputFormat = strings.ToLower(cfg.OutputFormat)
	if !contains(validOutputFormats, cfg.OutputFormat) {
		return fmt.Errorf("invalid output format: %s (valid: %v)", cfg.OutputFormat, validOutputFormats)
	}

	cfg.SBOM.Format = strings.ToLower(cfg.SBOM.Format)
	if !contains(validSBOMFormats, cfg.SBOM.Format) {
		return fmt.Errorf("invalid SBOM format: %s (valid: %v)", cfg.SBOM.Format, validSBOMFormats)
	}

	if cfg.SBOM.OutputDir != "" {
		expanded, err := c.expandPath(cfg.SBOM.OutputDir)
		if err != nil {
			return fmt.Errorf("failed to expand SBOM output dir: %w", err)
		}
		cfg.SBOM.OutputDir = expanded
	}

	return nil
}

// expandPath expands a path with environment variables and home directory
func (c *ConfigManager) expandPath(path string) (string, error) {
	expanded := os.ExpandEnv(path)

	if strings.HasPrefix(expanded, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		expanded = filepath.Join(homeDir, expanded[2:])
	}

	absPath, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	return absPath, nil
}

// GetConfig returns the loaded configuration
func (c *ConfigManager) GetConfig() *Config {
	return c.config
}

// SaveConfig saves the current configuration to a file
func (c *ConfigManager) SaveConfig(filename string) error {
	return c.viper.WriteConfigAs(filename)
}

// SetLogger sets the logger for the config manager
func (c *ConfigManager) SetLogger(logger *Logger) {
	c.logger = logger
}

// GetConfigValue gets a configuration value by key
func (c *ConfigManager) GetConfigValue(key string) interface{} {
	return c.viper.Get(key)
}

// SetConfigValue overrides a key. Overrides win over environment, file and
// defaults, which is how command line flags are applied.
func (c *ConfigManager) SetConfigValue(key string, value interface{}) {
	c.viper.Set(key, value)
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// LoadDefaultConfig loads the configuration from the standard locations
func LoadDefaultConfig() (*Config, error) {
	manager := NewConfigManager()
	if err := manager.LoadConfig(""); err != nil {
		return nil, err
	}
	return manager.GetConfig(), nil
}

// LoadConfigFromFile loads configuration from a specific file
func LoadConfigFromFile(filename string) (*Config, error) {
	manager := NewConfigManager()
	if err := manager.LoadConfig(filename); err != nil {
		return nil, err
	}
	return manager.GetConfig(), nil
}

// LoadWithOverrides loads configFile (or the standard locations) and applies
// overrides on top, keyed like the config file ("sbom.format").
func LoadWithOverrides(configFile string, overrides map[string]interface{}, logger *Logger) (*Config, error) {
	manager := NewConfigManager()
	if logger != nil {
		manager.SetLogger(logger)
	}
	for key, value := range overrides {
		manager.SetConfigValue(key, value)
	}
	if err := manager.LoadConfig(configFile); err != nil {
		return nil, err
	}
	return manager.GetConfig(), nil
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("directory path cannot be empty")
	}

	if info, err := os.Stat(dir); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("path exists but is not a directory: %s", dir)
		}
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	return nil
}
