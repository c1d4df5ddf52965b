package config

import (
	"fmt"
	"net"
	"strconv"
)

// MetricsConfig controls the Prometheus endpoint served during a fulfill run
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Port 0 asks the OS for a free port
	Port int `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`

	// Host to bind (default: localhost)
	Host string `mapstructure:"host"`

	// Path for the scrape endpoint (default: /metrics)
	Path string `mapstructure:"path" validate:"omitempty,url_path"`
}

// Address returns the listen address in host:port form
func (c MetricsConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Endpoint returns the full scrape URL
func (c MetricsConfig) Endpoint() string {
	return fmt.Sprintf("http://%s%s", c.Address(), c.Path)
}
