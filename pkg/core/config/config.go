package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	hmerror "github.com/msto63/hivemind/foundation/core/error"
)

// EnvConfigPath names the environment variable holding the config file path
const EnvConfigPath = "HIVEMIND_CONFIG"

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general" yaml:"general"`
	Worker  WorkerConfig  `toml:"worker" yaml:"worker"`
	Parser  ParserConfig  `toml:"parser" yaml:"parser"`
	History HistoryConfig `toml:"history" yaml:"history"`
	Cache   CacheConfig   `toml:"cache" yaml:"cache"`
	REPL    REPLConfig    `toml:"repl" yaml:"repl"`

	// Source is the file the configuration was read from
	Source string `toml:"-" yaml:"-"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name        string `toml:"name" yaml:"name"`
	Environment string `toml:"environment" yaml:"environment"`
	DataDir     string `toml:"data_dir" yaml:"data_dir"`
	LogLevel    string `toml:"log_level" yaml:"log_level"`
	LogFormat   string `toml:"log_format" yaml:"log_format"`
	LogFile     string `toml:"log_file" yaml:"log_file"`
}

// WorkerConfig holds worker invocation settings
type WorkerConfig struct {
	Executable     string            `toml:"executable" yaml:"executable"`
	Timeout        Duration          `toml:"timeout" yaml:"timeout"`
	ScriptRoot     string            `toml:"script_root" yaml:"script_root"`
	ScriptExt      string            `toml:"script_ext" yaml:"script_ext"`
	ErrorFormatter string            `toml:"error_formatter" yaml:"error_formatter"`
	TempDir        string            `toml:"temp_dir" yaml:"temp_dir"`
	WorkDir        string            `toml:"work_dir" yaml:"work_dir"`
	Env            map[string]string `toml:"env" yaml:"env"`
}

// ParserConfig holds script parsing settings
type ParserConfig struct {
	MaxInputLength int    `toml:"max_input_length" yaml:"max_input_length"`
	MaxNameLength  int    `toml:"max_name_length" yaml:"max_name_length"`
	DefaultArgs    string `toml:"default_args" yaml:"default_args"`
}

// HistoryConfig holds run history settings
type HistoryConfig struct {
	Enabled        bool   `toml:"enabled" yaml:"enabled"`
	Path           string `toml:"path" yaml:"path"`
	RetentionDays  int    `toml:"retention_days" yaml:"retention_days"`
	MaxOutputBytes int    `toml:"max_output_bytes" yaml:"max_output_bytes"`
}

// CacheConfig holds parsed script cache settings
type CacheConfig struct {
	Enabled  bool     `toml:"enabled" yaml:"enabled"`
	TTL      Duration `toml:"ttl" yaml:"ttl"`
	MaxItems int      `toml:"max_items" yaml:"max_items"`
}

// REPLConfig holds interactive editor settings
type REPLConfig struct {
	ShowHex        bool `toml:"show_hex" yaml:"show_hex"`
	MaxOutputLines int  `toml:"max_output_lines" yaml:"max_output_lines"`
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
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", value.Line)
	}
	return d.UnmarshalText([]byte(value.Value))
}

// MarshalYAML formats the duration as a string
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg := base()
	cfg.applyDefaults()
	return cfg
}

// base holds the defaults a zero value cannot express
func base() *Config {
	return &Config{
		History: HistoryConfig{Enabled: true},
		Cache:   CacheConfig{Enabled: true},
	}
}

// Load loads configuration from a TOML file, or YAML for .yaml/.yml files
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, hmerror.Wrap(err, "config file not found").
				WithCode(hmerror.CodeMissingConfig).
				WithOperation("config.Load").
				WithDetail("path", path)
		}
		return nil, hmerror.Wrap(err, "failed to read config").
			WithCode(hmerror.CodeConfigError).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	// Booleans that default to true are preset before decoding
	cfg := base()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		var md toml.MetaData
		md, err = toml.Decode(string(data), cfg)
		if err == nil {
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				err = fmt.Errorf("unknown keys: %v", undecoded)
			}
		}
	}
	if err != nil {
		return nil, hmerror.Wrap(err, "failed to parse config").
			WithCode(hmerror.CodeInvalidConfig).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	// Apply defaults
	cfg.applyDefaults()

	// Expand environment variables in path fields
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Source = path
	return cfg, nil
}

// DefaultPaths returns the locations LoadFromEnv tries in order
func DefaultPaths() []string {
	paths := []string{
		"./configs/config.toml",
		"./hivemind.toml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "hivemind", "config.toml"))
	}
	return paths
}

// LoadFromEnv loads configuration from the HIVEMIND_CONFIG environment
// variable or the first existing default location
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		for _, p := range DefaultPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return nil, hmerror.New("no config file found, set HIVEMIND_CONFIG or create configs/config.toml").
			WithCode(hmerror.CodeMissingConfig).
			WithOperation("config.LoadFromEnv")
	}

	return Load(path)
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "hivemind"
	}
	if c.General.Environment == "" {
		c.General.Environment = "development"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "warn"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	// Worker
	if c.Worker.Executable == "" {
		c.Worker.Executable = "termite-worker"
	}
	if c.Worker.Timeout.Duration == 0 {
		c.Worker.Timeout.Duration = 5 * time.Second
	}
	if c.Worker.ScriptRoot == "" {
		c.Worker.ScriptRoot = "hive_scripts"
	}
	if c.Worker.ScriptExt == "" {
		c.Worker.ScriptExt = ".tm"
	}
	if c.Worker.ErrorFormatter == "" {
		c.Worker.ErrorFormatter = "std/spit-error"
	}

	// Parser
	if c.Parser.MaxInputLength == 0 {
		c.Parser.MaxInputLength = 1 << 20
	}
	if c.Parser.MaxNameLength == 0 {
		c.Parser.MaxNameLength = 128
	}

	// History
	if c.History.Path == "" {
		c.History.Path = filepath.Join(c.General.DataDir, "history.db")
	}
	if c.History.RetentionDays == 0 {
		c.History.RetentionDays = 30
	}
	if c.History.MaxOutputBytes == 0 {
		c.History.MaxOutputBytes = 64 * 1024
	}

	// Cache
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = 10 * time.Minute
	}
	if c.Cache.MaxItems == 0 {
		c.Cache.MaxItems = 256
	}

	// REPL
	if c.REPL.MaxOutputLines == 0 {
		c.REPL.MaxOutputLines = 500
	}
}

// expandEnvVars expands environment variables in configuration values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.General.LogFile = os.ExpandEnv(c.General.LogFile)
	c.Worker.Executable = os.ExpandEnv(c.Worker.Executable)
	c.Worker.ScriptRoot = os.ExpandEnv(c.Worker.ScriptRoot)
	c.Worker.TempDir = os.ExpandEnv(c.Worker.TempDir)
	c.Worker.WorkDir = os.ExpandEnv(c.Worker.WorkDir)
	c.History.Path = os.ExpandEnv(c.History.Path)
	for k, v := range c.Worker.Env {
		c.Worker.Env[k] = os.ExpandEnv(v)
	}
}

// Validate checks value ranges that defaults cannot repair
func (c *Config) Validate() error {
	invalid := func(key string, value interface{}, reason string) error {
		return hmerror.Newf("invalid %s: %s", key, reason).
			WithCode(hmerror.CodeInvalidConfig).
			WithOperation("config.Validate").
			WithDetail("key", key).
			WithDetail("value", value)
	}

	if c.Worker.Timeout.Duration < 0 {
		return invalid("worker.timeout", c.Worker.Timeout.String(), "must not be negative")
	}
	if !strings.HasPrefix(c.Worker.ScriptExt, ".") {
		return invalid("worker.script_ext", c.Worker.ScriptExt, "must start with a dot")
	}
	if c.Parser.MaxInputLength < 0 {
		return invalid("parser.max_input_length", c.Parser.MaxInputLength, "must not be negative")
	}
	if c.Parser.MaxNameLength < 0 {
		return invalid("parser.max_name_length", c.Parser.MaxNameLength, "must not be negative")
	}
	if c.History.RetentionDays < 0 {
		return invalid("history.retention_days", c.History.RetentionDays, "must not be negative")
	}
	if c.Cache.MaxItems < 0 {
		return invalid("cache.max_items", c.Cache.MaxItems, "must not be negative")
	}
	return nil
}

// WorkerEnv returns Worker.Env as sorted KEY=VALUE pairs
func (c *Config) WorkerEnv() []string {
	if len(c.Worker.Env) == 0 {
		return nil
	}
	env := make([]string, 0, len(c.Worker.Env))
	for k, v := range c.Worker.Env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}

// WriteTOML encodes the effective configuration
func (c *Config) WriteTOML(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
