package models

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Default values applied by SetDefaults.
const (
	DefaultZpoolBinary  = "/usr/bin/zpool"
	DefaultZpoolTimeout = "2s"
	DefaultPushTimeout  = "10s"
)

// Config represents the complete application configuration. Every field is
// optional: an empty Config with defaults applied describes a run that
// queries /usr/bin/zpool and prints lines to standard output.
type Config struct {
	Zpool struct {
		BinaryPath string `yaml:"binaryPath"`
		Timeout    string `yaml:"timeout"`
	} `yaml:"zpool"`

	Influx struct {
		URL      string `yaml:"url"`
		Database string `yaml:"database"`
		Timeout  string `yaml:"timeout"`
	} `yaml:"influx"`

	LogName string `yaml:"logName"`
}

// SetDefaults fills in default values for unset optional fields.
// It is called automatically by Validate() before validation checks.
func (c *Config) SetDefaults() {
	if c.Zpool.BinaryPath == "" {
		c.Zpool.BinaryPath = DefaultZpoolBinary
	}
	if c.Zpool.Timeout == "" {
		c.Zpool.Timeout = DefaultZpoolTimeout
	}
	if c.Influx.Timeout == "" {
		c.Influx.Timeout = DefaultPushTimeout
	}
}

// Validate checks the configuration and returns an error describing the
// first problem found. Defaults are applied first, so a zero Config is
// always valid.
func (c *Config) Validate() error {
	c.SetDefaults()

	if _, err := time.ParseDuration(c.Zpool.Timeout); err != nil {
		return fmt.Errorf("invalid zpool timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.Influx.Timeout); err != nil {
		return fmt.Errorf("invalid influx timeout: %w", err)
	}

	if c.Influx.URL != "" {
		u, err := url.Parse(c.Influx.URL)
		if err != nil {
			return fmt.Errorf("invalid influx URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid influx URL scheme: %s (must be http or https)", u.Scheme)
		}
		if c.Influx.Database == "" {
			return errors.New("influx database is required when influx URL is set")
		}
	}

	return nil
}

// ZpoolTimeout returns the parsed zpool exec timeout.
// Validate must have been called first.
func (c *Config) ZpoolTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Zpool.Timeout)
	return d
}

// InfluxTimeout returns the parsed HTTP push timeout.
// Validate must have been called first.
func (c *Config) InfluxTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Influx.Timeout)
	return d
}

// PushEnabled reports whether metric lines should be pushed to an InfluxDB
// write endpoint instead of only written to standard output.
func (c *Config) PushEnabled() bool {
	return c.Influx.URL != ""
}
