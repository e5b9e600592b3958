package config

import (
	"time"

	"github.com/indigo-web/staticd/http/mime"
)

type (
	NET struct {
		// Address is the interface to listen on. Empty means all interfaces.
		Address string `mapstructure:"address"`
		// Port to accept connections on.
		Port uint16 `mapstructure:"port" validate:"required"`
		// ReadBufferSize is the size of the buffer the request is read into. The request
		// is read with a single call, so the request line together with headers longer
		// than the buffer are truncated and most likely won't parse.
		ReadBufferSize int `mapstructure:"read_buffer_size" validate:"gte=1024"`
		// WriteBufferSize bounds the buffer the response is serialized into. Payloads
		// exceeding it are transmitted in several writes.
		WriteBufferSize int `mapstructure:"write_buffer_size" validate:"gte=128"`
		// ReadTimeout limits how long the initial read may block. Zero disables the
		// timeout, so a client trickling bytes holds the worker indefinitely.
		ReadTimeout time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop.
		AcceptLoopInterruptPeriod time.Duration `mapstructure:"accept_loop_interrupt_period" validate:"gt=0"`
		// AcceptRate limits accepted connections per second. Zero means unlimited.
		AcceptRate float64 `mapstructure:"accept_rate" validate:"gte=0"`
		// AcceptBurst is the number of connections accepted at once above AcceptRate.
		AcceptBurst int `mapstructure:"accept_burst" validate:"gte=0"`
	}

	Headers struct {
		// Prealloc is the initial capacity of the request headers map.
		Prealloc int `mapstructure:"prealloc" validate:"gte=0"`
		// CaseInsensitive enables case-folded header lookups. Disabled by default, so
		// only exactly "Accept-Encoding" and "User-Agent" are recognized.
		CaseInsensitive bool `mapstructure:"case_insensitive"`
	}

	Logging struct {
		Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error DEBUG INFO WARN ERROR"`
		Format string `mapstructure:"format" validate:"required,oneof=console json"`
	}

	Metrics struct {
		// Port of the Prometheus endpoint. Zero disables it.
		Port uint16 `mapstructure:"port"`
		// Namespace prefixes every metric name.
		Namespace string `mapstructure:"namespace"`
	}
)

// Config holds settings used across the server. It is built once at startup and
// must never be modified after the server has started, as it is shared across all
// the workers without any synchronization.
//
// Always start from Default() and tweak the values, never initialize the struct
// manually.
type Config struct {
	// Root is the served directory. It must exist.
	Root string `mapstructure:"root" validate:"required"`
	// Threads is the number of workers handling connections.
	Threads int     `mapstructure:"threads" validate:"gte=1"`
	NET     NET     `mapstructure:"net"`
	Headers Headers `mapstructure:"headers"`
	// Policy extends or overrides the built-in extension table. Keys are extensions
	// without the leading dot. The section is decoded separately by Load.
	Policy  map[string]mime.Policy `mapstructure:"-" json:"policy" validate:"dive"`
	Logging Logging                `mapstructure:"logging"`
	Metrics Metrics                `mapstructure:"metrics"`
}

// Default returns default config.
func Default() *Config {
	return &Config{
		Root:    ".",
		Threads: 2,
		NET: NET{
			Port:                      80,
			ReadBufferSize:            1024,
			WriteBufferSize:           4 * 1024,
			AcceptLoopInterruptPeriod: 5 * time.Second,
		},
		Headers: Headers{
			Prealloc: 10,
		},
		Policy: make(map[string]mime.Policy),
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
		Metrics: Metrics{
			Namespace: "staticd",
		},
	}
}

// MimeTable returns the extension table with configured overrides applied.
func (c *Config) MimeTable() mime.Table {
	return mime.NewTable(c.Policy)
}
