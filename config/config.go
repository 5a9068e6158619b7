// Package config provides configuration types for the order service.
package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/syp1xd/food-ordering-app/logging"
	"github.com/syp1xd/food-ordering-app/telemetry"
)

// Config holds all application configuration
type Config struct {
	Log       logging.Config   `mapstructure:"log"`
	Server    ServerConfig     `mapstructure:"server"`
	Database  DatabaseConfig   `mapstructure:"database"`
	Events    EventsConfig     `mapstructure:"events"`
	Stream    StreamConfig     `mapstructure:"stream"`
	Validator ValidatorConfig  `mapstructure:"validator"`
	Seed      SeedConfig       `mapstructure:"seed"`
	Telemetry telemetry.Config `mapstructure:"telemetry"`
}

// SetDefaults sets viper defaults for the application configuration.
func (c *Config) SetDefaults(v *viper.Viper, prefix string) {
	p := ""
	if prefix != "" {
		p = prefix + "."
	}

	// Server defaults. Streams are long-lived so writes never time out.
	v.SetDefault(p+"server.address", ":8000")
	v.SetDefault(p+"server.engine", string(EngineFiber))
	v.SetDefault(p+"server.read_timeout", "30s")
	v.SetDefault(p+"server.write_timeout", "0s")
	v.SetDefault(p+"server.shutdown_timeout", "10s")

	// Database defaults
	v.SetDefault(p+"database.type", "sqlite")
	v.SetDefault(p+"database.sqlite_path", "~/.foodorder/orders.db")

	// Events defaults
	v.SetDefault(p+"events.type", "memory")
	v.SetDefault(p+"events.buffer_size", 16)

	// Stream defaults
	v.SetDefault(p+"stream.keep_alive", "30s")
	v.SetDefault(p+"stream.snapshot_on_connect", false)

	// Validator defaults
	v.SetDefault(p+"validator.max_order_items", 50)
	v.SetDefault(p+"validator.max_quantity", 100)

	// Seed defaults
	v.SetDefault(p+"seed.enabled", true)
	v.SetDefault(p+"seed.file", "")

	// Delegate to subpackages
	c.Log.SetDefaults(v, p+"log")
	c.Telemetry.SetDefaults(v, p+"telemetry")
}

// ServerConfig holds HTTP API server configuration
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	Engine          Engine        `mapstructure:"engine"` // "fiber" or "echo"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Type       string `mapstructure:"type"` // only "sqlite"
	SQLitePath string `mapstructure:"sqlite_path"`
}

// EventsConfig holds event bus configuration
type EventsConfig struct {
	Type       string `mapstructure:"type"` // only "memory"
	BufferSize int    `mapstructure:"buffer_size"`
}

// StreamConfig holds status stream configuration
type StreamConfig struct {
	KeepAlive         time.Duration `mapstructure:"keep_alive"`
	SnapshotOnConnect bool          `mapstructure:"snapshot_on_connect"`
}

// ValidatorConfig holds request validation limits
type ValidatorConfig struct {
	MaxOrderItems int `mapstructure:"max_order_items"`
	MaxQuantity   int `mapstructure:"max_quantity"`
}

// SeedConfig controls the initial menu
type SeedConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	File    string `mapstructure:"file"` // optional YAML menu; built-in menu when empty
}

// GetLogLevel returns the log level, defaulting to "info".
func (c *Config) GetLogLevel() string {
	if c.Log.Level != "" {
		return c.Log.Level
	}
	return "info"
}

// GetEngine returns the configured engine, defaulting to Fiber.
func (c *Config) GetEngine() Engine {
	if c.Server.Engine != "" {
		return c.Server.Engine
	}
	return EngineFiber
}
