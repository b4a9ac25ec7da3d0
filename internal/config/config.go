package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	apperrors "github.com/vango-dev/blogshell/internal/errors"
)

const (
	// ConfigFileName is the base name of the optional configuration file.
	ConfigFileName = "blogshell"

	// EnvPrefix prefixes every environment variable override.
	EnvPrefix = "BLOGSHELL"

	// DefaultPort is the default HTTP port.
	DefaultPort = 3000

	// DefaultPostsURL is the JSON API the http posts backend talks to.
	DefaultPostsURL = "https://jsonplaceholder.typicode.com"
)

// Backends accepted by posts.backend.
const (
	BackendHTTP   = "http"
	BackendSQLite = "sqlite"
	BackendS3     = "s3"
)

// Config is the complete blogshell configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Views   ViewsConfig   `mapstructure:"views"`
	Posts   PostsConfig   `mapstructure:"posts"`

	// File is the configuration file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	Streaming         bool          `mapstructure:"streaming"`
	Title             string        `mapstructure:"title"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// TracingConfig configures activation spans.
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// ViewsConfig configures deferred views.
type ViewsConfig struct {
	FallbackText string        `mapstructure:"fallback_text"`
	Preload      bool          `mapstructure:"preload"`
	LoadTimeout  time.Duration `mapstructure:"load_timeout"`
}

// PostsConfig selects and configures the post store.
type PostsConfig struct {
	Backend string         `mapstructure:"backend"`
	HTTP    HTTPPostsConf  `mapstructure:"http"`
	SQLite  SQLitePostConf `mapstructure:"sqlite"`
	S3      S3PostsConf    `mapstructure:"s3"`
}

// HTTPPostsConf configures the JSON API backend.
type HTTPPostsConf struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SQLitePostConf configures the SQLite backend.
type SQLitePostConf struct {
	Path string `mapstructure:"path"`
	Seed bool   `mapstructure:"seed"`
}

// S3PostsConf configures the object storage backend.
type S3PostsConf struct {
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	Anonymous bool   `mapstructure:"anonymous"`

	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

var defaults = map[string]any{
	"server.host":                "",
	"server.port":                DefaultPort,
	"server.streaming":           true,
	"server.title":               "Blog",
	"server.shutdown_timeout":    10 * time.Second,
	"server.read_header_timeout": 5 * time.Second,
	"log.level":                  "info",
	"log.format":                 "text",
	"metrics.enabled":            true,
	"metrics.path":               "/metrics",
	"tracing.enabled":            false,
	"tracing.service_name":       "blogshell",
	"views.fallback_text":        "Loading...",
	"views.preload":              false,
	"views.load_timeout":         30 * time.Second,
	"posts.backend":              BackendHTTP,
	"posts.http.base_url":        DefaultPostsURL,
	"posts.http.timeout":         10 * time.Second,
	"posts.sqlite.path":          "blogshell.db",
	"posts.sqlite.seed":          true,
	"posts.s3.bucket":            "",
	"posts.s3.prefix":            "posts/",
	"posts.s3.region":            "us-east-1",
	"posts.s3.endpoint":          "",
	"posts.s3.anonymous":         false,
	"posts.s3.access_key_id":     "",
	"posts.s3.secret_access_key": "",
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"host":      "server.host",
	"port":      "server.port",
	"streaming": "server.streaming",
	"log-level": "log.level",
	"preload":   "views.preload",
	"backend":   "posts.backend",
}

// Option customizes Load.
type Option func(*loader)

type loader struct {
	file  string
	dirs  []string
	flags *pflag.FlagSet
}

// WithFile reads the given file instead of searching for blogshell.*.
// A missing explicit file is an error.
func WithFile(path string) Option {
	return func(l *loader) {
		l.file = path
	}
}

// WithSearchPath adds a directory searched for blogshell.*.
func WithSearchPath(dir string) Option {
	return func(l *loader) {
		l.dirs = append(l.dirs, dir)
	}
}

// WithFlags binds the recognised flags of fs; flags that were set win
// over every other source.
func WithFlags(fs *pflag.FlagSet) Option {
	return func(l *loader) {
		l.flags = fs
	}
}

// New returns the default configuration.
func New() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads, merges and validates the configuration.
func Load(opts ...Option) (*Config, error) {
	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}

	v := newViper()

	if l.file != "" {
		v.SetConfigFile(l.file)
	} else {
		v.SetConfigName(ConfigFileName)
		dirs := l.dirs
		if len(dirs) == 0 {
			dirs = []string{"."}
		}
		for _, dir := range dirs {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.file != "" || !errors.As(err, &notFound) {
			return nil, apperrors.New("E200").Wrap(err)
		}
	}

	if l.flags != nil {
		for name, key := range flagKeys {
			if f := l.flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, apperrors.New("E200").Wrap(err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, apperrors.New("E201").WithDetailf("got %d", c.Server.Port))
	}

	switch c.Posts.Backend {
	case BackendHTTP:
		if c.Posts.HTTP.BaseURL == "" {
			errs = append(errs, apperrors.New("E203").WithDetail("posts.http.base_url is empty"))
		}
	case BackendSQLite:
		if c.Posts.SQLite.Path == "" {
			errs = append(errs, apperrors.New("E203").WithDetail("posts.sqlite.path is empty"))
		}
	case BackendS3:
		if c.Posts.S3.Bucket == "" {
			errs = append(errs, apperrors.New("E203").WithDetail("posts.s3.bucket is empty"))
		}
	default:
		errs = append(errs, apperrors.New("E202").WithDetailf("%q", c.Posts.Backend))
	}

	if _, ok := parseLevel(c.Log.Level); !ok {
		errs = append(errs, apperrors.New("E204").WithDetailf("log.level %q", c.Log.Level))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, apperrors.New("E204").WithDetailf("log.format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// SlogLevel returns the configured log level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.Log.Level)
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
