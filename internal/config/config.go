package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Dir is the per-project configuration directory.
const Dir = ".routesync"

// EnvPrefix prefixes environment overrides, e.g. ROUTESYNC_ROUTES_FILE.
const EnvPrefix = "ROUTESYNC"

// Config represents the complete routesync configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Routes  RoutesConfig  `json:"routes" mapstructure:"routes"`
	Imports ImportsConfig `json:"imports" mapstructure:"imports"`
	Format  FormatConfig  `json:"format" mapstructure:"format"`
	Watch   WatchConfig   `json:"watch" mapstructure:"watch"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// RoutesConfig locates the routes module
type RoutesConfig struct {
	// File is relative to the project root. Empty means auto-detect.
	File   string `json:"file" mapstructure:"file"`
	Name   string `json:"name" mapstructure:"name"`
	Strict bool   `json:"strict" mapstructure:"strict"`
}

// ImportsConfig describes where layouts and pages live
type ImportsConfig struct {
	LayoutsDir  string `json:"layoutsDir" mapstructure:"layoutsDir"`
	PagesDir    string `json:"pagesDir" mapstructure:"pagesDir"`
	LazyCallee  string `json:"lazyCallee" mapstructure:"lazyCallee"`
	AliasPrefix string `json:"aliasPrefix" mapstructure:"aliasPrefix"`
}

// FormatConfig controls rendering of synthesized code
type FormatConfig struct {
	Indent      int  `json:"indent" mapstructure:"indent"`
	SingleQuote bool `json:"singleQuote" mapstructure:"singleQuote"`
	Semicolons  bool `json:"semicolons" mapstructure:"semicolons"`
}

// WatchConfig contains watch mode settings
type WatchConfig struct {
	DebounceMs int `json:"debounceMs" mapstructure:"debounceMs"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Routes: RoutesConfig{
			Name: "routes",
		},
		Imports: ImportsConfig{
			LayoutsDir:  "layouts",
			PagesDir:    "pages",
			LazyCallee:  "lazy",
			AliasPrefix: "@",
		},
		Format: FormatConfig{
			Indent:      2,
			SingleQuote: true,
			Semicolons:  true,
		},
		Watch: WatchConfig{
			DebounceMs: 200,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ConfigPath returns the path of the configuration file for a project.
func ConfigPath(projectRoot string) string {
	return filepath.Join(projectRoot, Dir, "config.json")
}

type keyDefault struct {
	key   string
	value interface{}
}

func defaults() []keyDefault {
	d := DefaultConfig()
	return []keyDefault{
		{"version", d.Version},
		{"routes.file", d.Routes.File},
		{"routes.name", d.Routes.Name},
		{"routes.strict", d.Routes.Strict},
		{"imports.layoutsDir", d.Imports.LayoutsDir},
		{"imports.pagesDir", d.Imports.PagesDir},
		{"imports.lazyCallee", d.Imports.LazyCallee},
		{"imports.aliasPrefix", d.Imports.AliasPrefix},
		{"format.indent", d.Format.Indent},
		{"format.singleQuote", d.Format.SingleQuote},
		{"format.semicolons", d.Format.Semicolons},
		{"watch.debounceMs", d.Watch.DebounceMs},
		{"logging.level", d.Logging.Level},
	}
}

func setDefaults(v *viper.Viper) {
	for _, kd := range defaults() {
		v.SetDefault(kd.key, kd.value)
	}
}

// Keys returns every configuration key in declaration order.
func Keys() []string {
	kds := defaults()
	keys := make([]string, len(kds))
	for i, kd := range kds {
		keys[i] = kd.key
	}
	return keys
}

// EnvVar returns the environment variable that overrides key.
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// LoadConfig loads configuration from .routesync/config.json under
// projectRoot. Environment variables with the ROUTESYNC_ prefix override
// file values; a missing file yields the defaults.
func LoadConfig(projectRoot string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, Dir))

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, &ConfigError{Field: "file", Message: err.Error()}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to .routesync/config.json
func (c *Config) Save(projectRoot string) error {
	configPath := ConfigPath(projectRoot)
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating %s directory: %w", Dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	return os.WriteFile(configPath, data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Routes.Name == "" {
		return &ConfigError{Field: "routes.name", Message: "must not be empty"}
	}
	if filepath.IsAbs(c.Routes.File) {
		return &ConfigError{Field: "routes.file", Message: "must be relative to the project root"}
	}
	if c.Imports.LayoutsDir == "" || c.Imports.PagesDir == "" {
		return &ConfigError{Field: "imports", Message: "layoutsDir and pagesDir must not be empty"}
	}
	if c.Imports.LayoutsDir == c.Imports.PagesDir {
		return &ConfigError{Field: "imports", Message: "layoutsDir and pagesDir must differ"}
	}
	if c.Format.Indent < 1 || c.Format.Indent > 8 {
		return &ConfigError{Field: "format.indent", Message: "must be between 1 and 8"}
	}
	if c.Watch.DebounceMs < 0 {
		return &ConfigError{Field: "watch.debounceMs", Message: "must not be negative"}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ConfigError{Field: "logging.level", Message: "unknown level " + c.Logging.Level}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
