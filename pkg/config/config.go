/*
Package config manages TOML config for prefixd services.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bastiangx/prefixd/internal/utils"
	"github.com/bastiangx/prefixd/pkg/suggest"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	HTTP   HTTPConfig   `toml:"http"`
	Dict   DictConfig   `toml:"dict"`
}

// EngineConfig holds index options.
type EngineConfig struct {
	IgnoreCase    bool `toml:"ignore_case"`
	PrebuiltTerms bool `toml:"prebuilt_terms"`
}

// CacheConfig holds result cache options.
type CacheConfig struct {
	Enabled        bool   `toml:"enabled"`
	MaxSize        int    `toml:"max_size"`
	Policy         string `toml:"policy"`
	Expiration     int64  `toml:"expiration"`
	ExpirationUnit string `toml:"expiration_unit"`
}

// ServerConfig has IPC server related options.
type ServerConfig struct {
	MaxLimit     int `toml:"max_limit"`
	MinPrefix    int `toml:"min_prefix"`
	MaxPrefix    int `toml:"max_prefix"`
	DefaultLimit int `toml:"default_limit"`
}

// HTTPConfig holds the HTTP listener options.
type HTTPConfig struct {
	Addr string `toml:"addr"`
}

// DictConfig holds dictionary options.
type DictConfig struct {
	Path string `toml:"path"`
}

// Limit resolves a requested result count: values <= 0 fall back to
// DefaultLimit, a zero default means unbounded, and MaxLimit caps the rest.
func (c ServerConfig) Limit(requested int) int {
	limit := requested
	if limit <= 0 {
		limit = c.DefaultLimit
	}
	if limit <= 0 {
		limit = suggest.Unbounded
	}
	if c.MaxLimit > 0 && limit > c.MaxLimit {
		limit = c.MaxLimit
	}
	return limit
}

// PrefixRules returns the length bounds applied to incoming prefixes.
func (c ServerConfig) PrefixRules() utils.PrefixRules {
	return utils.PrefixRules{MinLen: c.MinPrefix, MaxLen: c.MaxPrefix}
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "prefixd")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "prefixd")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/prefixd/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	cache := suggest.DefaultCacheConfig()
	return &Config{
		Engine: EngineConfig{
			IgnoreCase:    false,
			PrebuiltTerms: false,
		},
		Cache: CacheConfig{
			Enabled:        false,
			MaxSize:        cache.MaxSize,
			Policy:         cache.Policy.String(),
			Expiration:     cache.Expiration,
			ExpirationUnit: "hours",
		},
		Server: ServerConfig{
			MaxLimit:     64,
			MinPrefix:    0,
			MaxPrefix:    60,
			DefaultLimit: 0,
		},
		HTTP: HTTPConfig{
			Addr: ":8383",
		},
		Dict: DictConfig{
			Path: "",
		},
	}
}

// EngineOptions converts the engine and cache sections into suggest.Options.
func (c *Config) EngineOptions() (suggest.Options, error) {
	opts := suggest.Options{
		IgnoreCase:    c.Engine.IgnoreCase,
		PrebuiltTerms: c.Engine.PrebuiltTerms,
	}
	if !c.Cache.Enabled {
		return opts, nil
	}

	policy, err := suggest.ParsePolicy(c.Cache.Policy)
	if err != nil {
		return opts, fmt.Errorf("cache.policy: %w", err)
	}
	unit, err := suggest.ParseTimeUnit(c.Cache.ExpirationUnit)
	if err != nil {
		return opts, fmt.Errorf("cache.expiration_unit: %w", err)
	}
	opts.Cache = &suggest.CacheConfig{
		MaxSize:        c.Cache.MaxSize,
		Policy:         policy,
		Expiration:     c.Cache.Expiration,
		ExpirationUnit: unit,
	}
	return opts, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse keeps whatever keys still parse when the file does not
// decode into Config as a whole.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "engine"); ok {
		extractEngineConfig(section, &config.Engine)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cache"); ok {
		extractCacheConfig(section, &config.Cache)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "http"); ok {
		if val, ok := utils.ExtractString(section, "addr"); ok {
			config.HTTP.Addr = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		if val, ok := utils.ExtractString(section, "path"); ok {
			config.Dict.Path = val
		}
	}
	return config, nil
}

func extractEngineConfig(data map[string]any, engine *EngineConfig) {
	if val, ok := utils.ExtractBool(data, "ignore_case"); ok {
		engine.IgnoreCase = val
	}
	if val, ok := utils.ExtractBool(data, "prebuilt_terms"); ok {
		engine.PrebuiltTerms = val
	}
}

func extractCacheConfig(data map[string]any, cache *CacheConfig) {
	if val, ok := utils.ExtractBool(data, "enabled"); ok {
		cache.Enabled = val
	}
	if val, ok := utils.ExtractInt64(data, "max_size"); ok {
		cache.MaxSize = val
	}
	if val, ok := utils.ExtractString(data, "policy"); ok {
		cache.Policy = val
	}
	if val, ok := utils.ExtractInt64(data, "expiration"); ok {
		cache.Expiration = int64(val)
	}
	if val, ok := utils.ExtractString(data, "expiration_unit"); ok {
		cache.ExpirationUnit = val
	}
}

// extractServerConfig extracts server configuration from a map
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "min_prefix"); ok {
		server.MinPrefix = val
	}
	if val, ok := utils.ExtractInt64(data, "max_prefix"); ok {
		server.MaxPrefix = val
	}
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		server.DefaultLimit = val
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}
