package models

import (
	"fmt"
	"time"
)

// ConnectionConfig describes a data source a dashboard chart can read from
type ConnectionConfig struct {
	Name     string  `yaml:"name" mapstructure:"name"`
	Driver   Dialect `yaml:"driver" mapstructure:"driver"`
	Host     string  `yaml:"host" mapstructure:"host"`
	Port     int     `yaml:"port" mapstructure:"port"`
	Database string  `yaml:"database" mapstructure:"database"`
	User     string  `yaml:"user" mapstructure:"user"`
	Password string  `yaml:"password" mapstructure:"password"`
	SSLMode  string  `yaml:"ssl_mode" mapstructure:"ssl_mode"`
}

// DefaultPort returns the conventional port for the configured driver
func (c ConnectionConfig) DefaultPort() int {
	if c.Driver == MySQL {
		return 3306
	}
	return 5432
}

// Address returns host:port, filling in the driver default port
func (c ConnectionConfig) Address() string {
	port := c.Port
	if port == 0 {
		port = c.DefaultPort()
	}
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// ID returns the name, or a user@host:port/db descriptor for unnamed connections
func (c ConnectionConfig) ID() string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("%s@%s/%s", c.User, c.Address(), c.Database)
}

// ConnectionState represents the current connection state
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
	Failed
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Connection is the status snapshot of an opened source
type Connection struct {
	ID          string
	Config      ConnectionConfig
	State       ConnectionState
	ConnectedAt time.Time
	LastPing    time.Time
	Error       error
}
