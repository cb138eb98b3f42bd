// Package config loads server and client settings from defaults, an
// optional YAML file and environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Server holds the API server settings.
type Server struct {
	HTTPPort           int
	DBDriver           string
	DBPath             string
	DatabaseURL        string
	DBDebug            bool
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

// Client holds the todoctl settings.
type Client struct {
	Endpoint string
	Timeout  time.Duration
}

// Default values.
const (
	DefaultHTTPPort        = 5000
	DefaultDBDriver        = "sqlite"
	DefaultDBPath          = "todo.db"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultEndpoint        = "http://localhost:5000/graphql"
	DefaultClientTimeout   = 10 * time.Second
)

// DefaultCORSOrigins are the browser origins allowed when none are configured.
var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:3001",
	"http://frontend:3000",
}

// LoadServer reads todo.yaml from dir (if present) and the environment.
// Environment keys are the upper-case setting names, e.g. HTTP_PORT.
func LoadServer(dir string) (*Server, error) {
	v := viper.New()
	v.SetConfigName("todo")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}

	v.SetDefault("http_port", DefaultHTTPPort)
	v.SetDefault("db_driver", DefaultDBDriver)
	v.SetDefault("db_path", DefaultDBPath)
	v.SetDefault("database_url", "")
	v.SetDefault("db_debug", false)
	v.SetDefault("cors_allowed_origins", DefaultCORSOrigins)
	v.SetDefault("shutdown_timeout", DefaultShutdownTimeout)
	v.AutomaticEnv()

	if dir != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading todo.yaml: %w", err)
			}
		}
	}

	cfg := &Server{
		HTTPPort:           v.GetInt("http_port"),
		DBDriver:           strings.ToLower(strings.TrimSpace(v.GetString("db_driver"))),
		DBPath:             v.GetString("db_path"),
		DatabaseURL:        v.GetString("database_url"),
		DBDebug:            v.GetBool("db_debug"),
		CORSAllowedOrigins: stringList(v.Get("cors_allowed_origins")),
		ShutdownTimeout:    v.GetDuration("shutdown_timeout"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the server settings are usable.
func (s *Server) Validate() error {
	if s.HTTPPort < 1 || s.HTTPPort > 65535 {
		return fmt.Errorf("http_port must be between 1 and 65535, got %d", s.HTTPPort)
	}
	switch s.DBDriver {
	case "sqlite":
		if s.DBPath == "" {
			return fmt.Errorf("db_path is required for the sqlite driver")
		}
	case "postgres":
		if s.DatabaseURL == "" {
			return fmt.Errorf("database_url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("db_driver must be sqlite or postgres, got %q", s.DBDriver)
	}
	if s.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %s", s.ShutdownTimeout)
	}
	return nil
}

// NewClientViper returns a viper instance with the client defaults and the
// TODO_ environment prefix. Callers may bind flags before calling LoadClient.
func NewClientViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("endpoint", DefaultEndpoint)
	v.SetDefault("timeout", DefaultClientTimeout)
	v.SetEnvPrefix("TODO")
	v.AutomaticEnv()
	return v
}

// LoadClient reads configFile, or ~/.todoctl.yaml when configFile is empty,
// into v and returns the resulting client settings. A missing default file
// is not an error.
func LoadClient(v *viper.Viper, configFile string) (*Client, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".todoctl")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s: %w", configName(configFile), err)
		}
	}

	cfg := &Client{
		Endpoint: strings.TrimSpace(v.GetString("endpoint")),
		Timeout:  v.GetDuration("timeout"),
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint must not be empty")
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	return cfg, nil
}

func configName(configFile string) string {
	if configFile == "" {
		return ".todoctl.yaml"
	}
	return filepath.Base(configFile)
}

// stringList accepts a YAML list or a comma-separated string.
func stringList(raw any) []string {
	var items []string
	switch val := raw.(type) {
	case string:
		items = strings.Split(val, ",")
	case []string:
		items = val
	case []any:
		for _, item := range val {
			items = append(items, fmt.Sprint(item))
		}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
