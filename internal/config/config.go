package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
// It contains settings for the environment, logging, the HTTP server, the
// favicon resolver and graceful shutdown behavior.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" validate:"oneof=development production" yaml:"environment"` //nolint: lll

	// Log contains optional file logging settings. Logs always go to stderr.
	Log struct {
		// File is the path of a rotated JSON log file. Empty disables file logging.
		File string `env:"LOG_FILE" env-default:"" yaml:"file"`
		// MaxSizeMB is the size a log file may reach before it is rotated
		MaxSizeMB int `env:"LOG_MAX_SIZE_MB" env-default:"100" validate:"min=1" yaml:"maxSizeMB"`
		// MaxBackups is the number of rotated files kept, 0 keeps all of them
		MaxBackups int `env:"LOG_MAX_BACKUPS" env-default:"3" validate:"min=0" yaml:"maxBackups"`
	} `yaml:"log"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" validate:"required" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"3m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request. A favicon
		// lookup may probe a dozen URLs one after another, so keep it well above Resolver.FetchTimeout.
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"2m" validate:"gt=0" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" validate:"startswith=/" yaml:"metricsPath"`
	} `yaml:"http"`

	// Resolver contains the settings of outbound favicon fetches
	Resolver struct {
		// FetchTimeout bounds every single outbound request
		FetchTimeout time.Duration `env:"RESOLVER_FETCH_TIMEOUT" env-default:"10s" validate:"gt=0" yaml:"fetchTimeout"`
		// MaxBodySize is the largest response body accepted, in bytes
		MaxBodySize int64 `env:"RESOLVER_MAX_BODY_SIZE" env-default:"5242880" validate:"gt=0" yaml:"maxBodySize"`
		// MaxRedirects is the number of redirects followed per request
		MaxRedirects int `env:"RESOLVER_MAX_REDIRECTS" env-default:"5" validate:"min=1" yaml:"maxRedirects"`
		// UserAgent overrides the default desktop browser User-Agent
		UserAgent string `env:"RESOLVER_USER_AGENT" env-default:"" yaml:"userAgent"`
		// AllowPrivateNetworks lets outbound requests reach loopback and private addresses.
		// Leave it off for anything reachable from the internet.
		AllowPrivateNetworks bool `env:"RESOLVER_ALLOW_PRIVATE_NETWORKS" env-default:"false" yaml:"allowPrivateNetworks"`
	} `yaml:"resolver"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled and
// validated Config struct. When the file does not exist, the configuration is
// read from environment variables and defaults only.
func Load(configPath string) (*Config, error) {
	var cfg Config

	var err error
	if _, statErr := os.Stat(configPath); errors.Is(statErr, fs.ErrNotExist) {
		err = cleanenv.ReadEnv(&cfg)
	} else {
		err = cleanenv.ReadConfig(configPath, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("could not validate config: %w", err)
	}

	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %q (value %v)", e.Namespace(), e.Tag(), e.Value()))
	}

	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
