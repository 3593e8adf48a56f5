package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/euklid/foundation/core/error"
	mdwerrors "github.com/msto63/euklid/foundation/core/errors"
)

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general" yaml:"general"`
	Engine  EngineConfig  `toml:"engine" yaml:"engine"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
	History HistoryConfig `toml:"history" yaml:"history"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

// GeneralConfig holds settings shared by all front ends
type GeneralConfig struct {
	Name        string `toml:"name" yaml:"name" validate:"required"`
	Environment string `toml:"environment" yaml:"environment" validate:"oneof=development test production"`
	DataDir     string `toml:"data_dir" yaml:"data_dir"`
	Locale      string `toml:"locale" yaml:"locale" validate:"required"`
	LocalesDir  string `toml:"locales_dir" yaml:"locales_dir"`
}

// EngineConfig holds the limits of the rational engine
type EngineConfig struct {
	MaxDecimalPlaces int `toml:"max_decimal_places" yaml:"max_decimal_places" validate:"min=1,max=18"`
	Precision        int `toml:"precision" yaml:"precision" validate:"min=1,max=40"`
}

// ServerConfig holds the HTTP and gRPC listener settings
type ServerConfig struct {
	Host            string     `toml:"host" yaml:"host" validate:"required"`
	HTTPPort        int        `toml:"http_port" yaml:"http_port" validate:"min=1,max=65535"`
	GRPCPort        int        `toml:"grpc_port" yaml:"grpc_port" validate:"min=-1,max=65535"`
	ReadTimeout     Duration   `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    Duration   `toml:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout Duration   `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxRequestSize  int64      `toml:"max_request_size" yaml:"max_request_size" validate:"min=0"`
	RateLimit       float64    `toml:"rate_limit" yaml:"rate_limit"`
	RateBurst       int        `toml:"rate_burst" yaml:"rate_burst" validate:"min=0"`
	WebSocket       bool       `toml:"websocket" yaml:"websocket"`
	Metrics         bool       `toml:"metrics" yaml:"metrics"`
	CORS            CORSConfig `toml:"cors" yaml:"cors"`
}

// CORSConfig holds cross-origin settings of the HTTP API
type CORSConfig struct {
	Enabled        bool     `toml:"enabled" yaml:"enabled"`
	AllowedOrigins []string `toml:"allowed_origins" yaml:"allowed_origins"`
	AllowedMethods []string `toml:"allowed_methods" yaml:"allowed_methods"`
}

// HistoryConfig holds the calculation history settings
type HistoryConfig struct {
	Enabled       bool   `toml:"enabled" yaml:"enabled"`
	Path          string `toml:"path" yaml:"path"`
	RetentionDays int    `toml:"retention_days" yaml:"retention_days" validate:"min=0"`
	MaxEntries    int    `toml:"max_entries" yaml:"max_entries" validate:"min=0"`
}

// RateLimited reports whether the HTTP API throttles requests. A negative
// rate_limit turns throttling off.
func (s ServerConfig) RateLimited() bool {
	return s.RateLimit > 0
}

// LoggingConfig holds the logger settings
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level" validate:"oneof=trace debug info warn error fatal"`
	Format string `toml:"format" yaml:"format" validate:"oneof=json text console"`
}

// Duration wraps time.Duration for TOML/YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Format of a configuration file
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor picks the file format from the extension. Unknown extensions
// are read as TOML.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg := base()
	cfg.applyDefaults()
	return cfg
}

// base holds the switches that default to on. Files are decoded over it so
// an explicit false survives.
func base() *Config {
	return &Config{
		History: HistoryConfig{Enabled: true},
		Server:  ServerConfig{WebSocket: true, Metrics: true},
	}
}

// Load reads, defaults and validates a configuration file
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, mdwerrors.NewErrorBuilder(mdwerrors.ModuleConfig).
				Operation("Load").
				Messagef("config file not found: %s", path).
				Code(mdwerror.CodeMissingConfig).
				Detail("path", path).
				Build()
		}
		return nil, mdwerrors.ConfigInvalid(path, err)
	}

	cfg, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, mdwerrors.ConfigInvalid(path, err)
	}
	return cfg, nil
}

// Parse decodes data over the defaults, then validates the result
func Parse(data []byte, format Format) (*Config, error) {
	cfg := base()

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, cfg)
	default:
		_, err = toml.Decode(string(data), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s config: %w", format, err)
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv loads the file named by EUKLID_CONFIG, or the first file found
// in the default locations. Without either it returns the defaults.
func LoadFromEnv() (*Config, error) {
	if path := os.Getenv("EUKLID_CONFIG"); path != "" {
		return Load(path)
	}

	for _, p := range DefaultPaths() {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}

	cfg := Default()
	cfg.applyEnvOverrides()
	return cfg, nil
}

// DefaultPaths lists the locations searched by LoadFromEnv
func DefaultPaths() []string {
	paths := []string{
		"./configs/euklid.toml",
		"./euklid.toml",
		"./euklid.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "euklid", "config.toml"))
	}
	return paths
}

// applyDefaults sets default values for zero fields
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "euklid"
	}
	if c.General.Environment == "" {
		c.General.Environment = "development"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.Locale == "" {
		c.General.Locale = "en"
	}

	// Engine
	if c.Engine.MaxDecimalPlaces == 0 {
		c.Engine.MaxDecimalPlaces = 18
	}
	if c.Engine.Precision == 0 {
		c.Engine.Precision = 10
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.GRPCPort == 0 {
		c.Server.GRPCPort = 9090
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 10 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 30 * time.Second
	}
	if c.Server.ShutdownTimeout.Duration == 0 {
		c.Server.ShutdownTimeout.Duration = 10 * time.Second
	}
	if c.Server.MaxRequestSize == 0 {
		c.Server.MaxRequestSize = 64 << 10
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 50
	}
	if c.Server.RateBurst == 0 {
		c.Server.RateBurst = 100
	}
	if len(c.Server.CORS.AllowedMethods) == 0 {
		c.Server.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}

	// History
	if c.History.Path == "" {
		c.History.Path = filepath.Join(c.General.DataDir, "history.db")
	}
	if c.History.RetentionDays == 0 {
		c.History.RetentionDays = 90
	}
	if c.History.MaxEntries == 0 {
		c.History.MaxEntries = 10000
	}

	// Logging
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.General.LocalesDir = os.ExpandEnv(c.General.LocalesDir)
	c.History.Path = os.ExpandEnv(c.History.Path)
}

// applyEnvOverrides applies EUKLID_* variables on top of file values
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("EUKLID_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("EUKLID_LOCALE"); v != "" {
		c.General.Locale = v
	}
	if v := os.Getenv("EUKLID_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.HTTPPort = port
		}
	}
	if v := os.Getenv("EUKLID_HISTORY_PATH"); v != "" {
		c.History.Path = v
	}
}

var validate = validator.New()

// Validate checks field constraints. Field errors are listed in the
// "fields" detail of the returned error.
func (c *Config) Validate() error {
	var problems []string
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				problems = append(problems, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
		} else {
			problems = append(problems, err.Error())
		}
	}
	if c.Server.GRPCPort > 0 && c.Server.GRPCPort == c.Server.HTTPPort {
		problems = append(problems, "Config.Server.GRPCPort equals HTTPPort")
	}
	if c.Server.ReadTimeout.Duration < 0 || c.Server.WriteTimeout.Duration < 0 {
		problems = append(problems, "Config.Server timeouts must not be negative")
	}
	if c.History.Enabled && c.History.Path == "" {
		problems = append(problems, "Config.History.Path is required when history is enabled")
	}

	if len(problems) == 0 {
		return nil
	}
	return mdwerrors.NewErrorBuilder(mdwerrors.ModuleConfig).
		Operation("Validate").
		Messagef("invalid configuration: %s", strings.Join(problems, "; ")).
		Code(mdwerror.CodeInvalidConfig).
		Detail("fields", problems).
		Build()
}

// HTTPAddress returns the listen address of the HTTP API
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

// GRPCAddress returns the listen address of the gRPC API, or "" when
// grpc_port is -1
func (c *Config) GRPCAddress() string {
	if c.Server.GRPCPort < 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

// Encode writes the configuration in the given format
func (c *Config) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	default:
		return toml.NewEncoder(w).Encode(c)
	}
}
