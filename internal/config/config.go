package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the widgetmcp server configuration.
type Config struct {
	Listen          string `json:"listen" yaml:"listen"`
	BaseURL         string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	WidgetPath      string `json:"widget_path,omitempty" yaml:"widget_path,omitempty"`
	WidgetFile      string `json:"widget_file,omitempty" yaml:"widget_file,omitempty"`
	WidgetDomain    string `json:"widget_domain,omitempty" yaml:"widget_domain,omitempty"`
	RPCPath         string `json:"rpc_path" yaml:"rpc_path"`
	SDKPath         string `json:"sdk_path" yaml:"sdk_path"`
	LogLevel        string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	LogFormat       string `json:"log_format,omitempty" yaml:"log_format,omitempty"`
	ShutdownTimeout string `json:"shutdown_timeout,omitempty" yaml:"shutdown_timeout,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Listen:          ":3000",
		WidgetPath:      "/",
		RPCPath:         "/mcp",
		SDKPath:         "/sdk/mcp",
		LogLevel:        "info",
		LogFormat:       "json",
		ShutdownTimeout: "10s",
	}
}

// Load reads a JSON or YAML config file (chosen by extension) over the defaults.
// $VAR references in base_url and widget_file are resolved from the environment.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.BaseURL = ResolveEnv(cfg.BaseURL)
	cfg.WidgetFile = ResolveEnv(cfg.WidgetFile)
	return cfg, nil
}

// LoadOrDefault behaves like Load but returns the defaults when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return AtomicWriteFile(path, data, 0600)
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return errors.New("listen address cannot be empty")
	}
	for name, p := range map[string]string{"rpc_path": c.RPCPath, "sdk_path": c.SDKPath} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("%s must start with '/', got %q", name, p)
		}
		if p == "/" || p == "/healthz" {
			return fmt.Errorf("%s %q collides with a built-in route", name, p)
		}
	}
	if c.RPCPath == c.SDKPath {
		return fmt.Errorf("rpc_path and sdk_path must differ, both are %q", c.RPCPath)
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("invalid base_url: %w", err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("base_url must be an absolute http(s) URL, got %q", c.BaseURL)
		}
	}
	if _, err := c.ShutdownTimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// ShutdownTimeoutDuration parses ShutdownTimeout, defaulting to 10s when empty.
func (c *Config) ShutdownTimeoutDuration() (time.Duration, error) {
	if c.ShutdownTimeout == "" {
		return 10 * time.Second, nil
	}
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdown_timeout %q: %w", c.ShutdownTimeout, err)
	}
	return d, nil
}

// WidgetDomainOrBase returns the configured widget domain, falling back to the base URL.
func (c *Config) WidgetDomainOrBase() string {
	if c.WidgetDomain != "" {
		return c.WidgetDomain
	}
	return c.BaseURL
}

var envVarPattern = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)

// ResolveEnv resolves $VAR references in s from the process environment.
func ResolveEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:]) // strip leading $
	})
}
