// Package config loads the console settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort      = 8080
	DefaultBaseURL   = "http://localhost:8980/opennms/rest"
	DefaultLimit     = 20
	DefaultJournalDB = "scanreport-console.db"
)

// Config is the full console configuration.
type Config struct {
	Server struct {
		Port           int           `yaml:"port"`
		ReadTimeout    time.Duration `yaml:"readTimeout"`
		WriteTimeout   time.Duration `yaml:"writeTimeout"`
		AllowedOrigins []string      `yaml:"allowedOrigins"` // empty keeps /api same-origin
	} `yaml:"server"`

	REST struct {
		BaseURL  string        `yaml:"baseURL"`
		Username string        `yaml:"username"`
		Password string        `yaml:"password"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"rest"`

	List struct {
		Limit int `yaml:"limit"`
	} `yaml:"list"`

	Display struct {
		TimeZone string `yaml:"timeZone"`
	} `yaml:"display"`

	Journal struct {
		Path string `yaml:"path"`
	} `yaml:"journal"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Load reads path and fills in defaults. A missing file yields the defaults.
// SCANREPORT_REST_URL, SCANREPORT_USER and SCANREPORT_PASSWORD override the file.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SCANREPORT_REST_URL"); v != "" {
		c.REST.BaseURL = v
	}
	if v := os.Getenv("SCANREPORT_USER"); v != "" {
		c.REST.Username = v
	}
	if v := os.Getenv("SCANREPORT_PASSWORD"); v != "" {
		c.REST.Password = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.REST.BaseURL == "" {
		c.REST.BaseURL = DefaultBaseURL
	}
	if c.REST.Timeout == 0 {
		c.REST.Timeout = 10 * time.Second
	}
	if c.List.Limit <= 0 {
		c.List.Limit = DefaultLimit
	}
	if c.Journal.Path == "" {
		c.Journal.Path = DefaultJournalDB
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the display time zone; empty means time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Display.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Display.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", c.Display.TimeZone, err)
	}
	return loc, nil
}
