package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SessionObserver is notified about navigation sessions.
type SessionObserver interface {
	SessionOpened()
	SessionClosed()
	FrameDropped()
}

// Config configures the Server.
type Config struct {
	// Address is the listen address (default ":3000").
	Address string

	// Streaming flushes the shell and placeholder before pending views resolve.
	Streaming bool

	// Title is the document title.
	Title string

	// Lang is the document language.
	Lang string

	// StyleSheets are linked from every page.
	StyleSheets []string

	// MetricsPath exposes Prometheus metrics when non-empty.
	MetricsPath string

	// Gatherer is the metrics source (default prometheus.DefaultGatherer).
	Gatherer prometheus.Gatherer

	// Sessions observes navigation sessions. Optional.
	Sessions SessionObserver

	// CheckOrigin validates WebSocket origins (default: same host).
	CheckOrigin func(r *http.Request) bool

	// MaxMessageSize bounds client frames (default 4 KiB).
	MaxMessageSize int64

	// PingInterval is the WebSocket heartbeat interval (default 30s).
	PingInterval time.Duration

	// WriteTimeout bounds each WebSocket write (default 10s).
	WriteTimeout time.Duration

	// ReadHeaderTimeout for HTTP requests (default 10s).
	ReadHeaderTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown (default 15s).
	ShutdownTimeout time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:           ":3000",
		Streaming:         true,
		Title:             "Blog",
		Lang:              "en",
		MetricsPath:       "/metrics",
		Gatherer:          prometheus.DefaultGatherer,
		MaxMessageSize:    4 << 10,
		PingInterval:      30 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		ShutdownTimeout:   15 * time.Second,
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.Address == "" {
		out.Address = d.Address
	}
	if out.Lang == "" {
		out.Lang = d.Lang
	}
	if out.Gatherer == nil {
		out.Gatherer = d.Gatherer
	}
	if out.MaxMessageSize == 0 {
		out.MaxMessageSize = d.MaxMessageSize
	}
	if out.PingInterval == 0 {
		out.PingInterval = d.PingInterval
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = d.WriteTimeout
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = d.ReadHeaderTimeout
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = d.ShutdownTimeout
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}
