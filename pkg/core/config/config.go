package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/pascal/foundation/core/error"
)

// Environment variables read by the loader. The override variables win
// over the config file.
const (
	EnvConfigPath  = "PASCAL_CONFIG"
	EnvLogLevel    = "PASCAL_LOG_LEVEL"
	EnvLogFormat   = "PASCAL_LOG_FORMAT"
	EnvHistoryPath = "PASCAL_HISTORY_PATH"
)

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general" yaml:"general"`
	Engine  EngineConfig  `toml:"engine" yaml:"engine"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
	History HistoryConfig `toml:"history" yaml:"history"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name        string `toml:"name" yaml:"name"`
	Environment string `toml:"environment" yaml:"environment"`
	DataDir     string `toml:"data_dir" yaml:"data_dir"`
	LogLevel    string `toml:"log_level" yaml:"log_level"`
	LogFormat   string `toml:"log_format" yaml:"log_format"`
}

// EngineConfig holds interpreter limits
type EngineConfig struct {
	MaxSourceLength int  `toml:"max_source_length" yaml:"max_source_length"`
	TraceTokens     bool `toml:"trace_tokens" yaml:"trace_tokens"`
}

// ServerConfig holds gRPC and HTTP server settings
type ServerConfig struct {
	Host             string     `toml:"host" yaml:"host"`
	GRPCPort         int        `toml:"grpc_port" yaml:"grpc_port"`
	HTTPPort         int        `toml:"http_port" yaml:"http_port"`
	ReadTimeout      Duration   `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout     Duration   `toml:"write_timeout" yaml:"write_timeout"`
	EnableReflection bool       `toml:"enable_reflection" yaml:"enable_reflection"`
	CORS             CORSConfig `toml:"cors" yaml:"cors"`
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	Enabled        bool     `toml:"enabled" yaml:"enabled"`
	AllowedOrigins []string `toml:"allowed_origins" yaml:"allowed_origins"`
}

// HistoryConfig holds run history settings
type HistoryConfig struct {
	Enabled   bool     `toml:"enabled" yaml:"enabled"`
	Path      string   `toml:"path" yaml:"path"`
	Retention Duration `toml:"retention" yaml:"retention"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// MarshalYAML formats the duration as a string
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Default returns a configuration with all defaults applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.expandEnvVars()
	return cfg
}

// Load loads configuration from a TOML or YAML file. The format follows
// the file extension; unknown extensions are read as TOML.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data, formatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Format names a configuration file format
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Parse decodes configuration data, applies defaults and validates
func Parse(data []byte, format Format) (*Config, error) {
	var cfg Config

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	default:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration from $PASCAL_CONFIG or the first file
// found in the default locations
func LoadFromEnv() (*Config, error) {
	env.Load()
	path := env.Str(EnvConfigPath, discover())
	if path == "" {
		return nil, fmt.Errorf("no config file found, set %s or create configs/pascal.toml", EnvConfigPath)
	}
	return Load(path)
}

// LoadOrDefault loads path if given, else tries LoadFromEnv and finally
// falls back to Default
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	env.Load()
	if env.Str(EnvConfigPath) != "" || discover() != "" {
		return LoadFromEnv()
	}
	cfg := Default()
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func discover() string {
	candidates := []string{
		"./configs/pascal.toml",
		"./configs/pascal.yaml",
		"./pascal.toml",
		"./pascal.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".config/pascal/pascal.toml"),
			filepath.Join(home, ".config/pascal/pascal.yaml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func formatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "pascal"
	}
	if c.General.Environment == "" {
		c.General.Environment = "development"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	// Engine
	if c.Engine.MaxSourceLength == 0 {
		c.Engine.MaxSourceLength = 64 * 1024
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.GRPCPort == 0 {
		c.Server.GRPCPort = 9310
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8310
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 15 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 30 * time.Second
	}
	if len(c.Server.CORS.AllowedOrigins) == 0 {
		c.Server.CORS.AllowedOrigins = []string{"*"}
	}

	// History
	if c.History.Path == "" {
		c.History.Path = filepath.Join(c.General.DataDir, "history.db")
	}
	if c.History.Retention.Duration == 0 {
		c.History.Retention.Duration = 30 * 24 * time.Hour
	}
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.History.Path = os.ExpandEnv(c.History.Path)
}

// applyEnvOverrides re-reads the environment, since env caches it on first use
func (c *Config) applyEnvOverrides() {
	env.Load()
	c.General.LogLevel = env.Str(EnvLogLevel, c.General.LogLevel)
	c.General.LogFormat = env.Str(EnvLogFormat, c.General.LogFormat)
	c.History.Path = env.Str(EnvHistoryPath, c.History.Path)
}

// Validate checks value ranges
func (c *Config) Validate() error {
	invalid := func(field string, value interface{}) error {
		return mdwerror.New("invalid configuration value").
			WithCode(mdwerror.CodeInvalidConfig).
			WithDetail("field", field).
			WithDetail("value", value)
	}

	if c.Engine.MaxSourceLength < 0 {
		return invalid("engine.max_source_length", c.Engine.MaxSourceLength)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return invalid("server.grpc_port", c.Server.GRPCPort)
	}
	if c.Server.HTTPPort < 0 || c.Server.HTTPPort > 65535 {
		return invalid("server.http_port", c.Server.HTTPPort)
	}
	if c.History.Retention.Duration < 0 {
		return invalid("history.retention", c.History.Retention.String())
	}
	return nil
}

// GRPCAddress returns host:port of the gRPC server
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

// HTTPAddress returns host:port of the HTTP server
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

// IsDevelopment reports whether the environment is development
func (c *Config) IsDevelopment() bool {
	return c.General.Environment == "development"
}
