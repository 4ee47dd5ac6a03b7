// Package config loads pastyears settings from defaults, an optional file
// and PASTYEARS_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "PASTYEARS"

// Config is the resolved application configuration.
type Config struct {
	Env      string
	LogLevel string
	API      APIConfig
	HTTP     HTTPConfig
	DB       DBConfig
}

// APIConfig describes the remote questions API.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
	Login   string
	SignUp  string
	Refresh string
	Logout  string
}

// HTTPConfig configures the web frontend.
type HTTPConfig struct {
	Addr         string
	SessionTTL   time.Duration
	SecureCookie bool
	// PostsPerMinute limits login and report submissions per client.
	PostsPerMinute int
}

// DBConfig points at the local sqlite database.
type DBConfig struct {
	Path string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "production")
	v.SetDefault("log.level", "info")
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("api.login", "/login")
	v.SetDefault("api.signup", "/signup")
	v.SetDefault("api.refresh", "/login/refresh")
	v.SetDefault("api.logout", "/login/logout")
	v.SetDefault("http.addr", "127.0.0.1:8080")
	v.SetDefault("http.session_ttl", "720h")
	v.SetDefault("http.secure_cookie", false)
	v.SetDefault("http.posts_per_minute", 20)
	v.SetDefault("db.path", "pastyears.db")
}

// Load reads configuration. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Env:      v.GetString("env"),
		LogLevel: v.GetString("log.level"),
		API: APIConfig{
			BaseURL: v.GetString("api.base_url"),
			Timeout: v.GetDuration("api.timeout"),
			Login:   v.GetString("api.login"),
			SignUp:  v.GetString("api.signup"),
			Refresh: v.GetString("api.refresh"),
			Logout:  v.GetString("api.logout"),
		},
		HTTP: HTTPConfig{
			Addr:           v.GetString("http.addr"),
			SessionTTL:     v.GetDuration("http.session_ttl"),
			SecureCookie:   v.GetBool("http.secure_cookie"),
			PostsPerMinute: v.GetInt("http.posts_per_minute"),
		},
		DB: DBConfig{
			Path: v.GetString("db.path"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q must be an absolute URL", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be positive")
	}
	if c.HTTP.SessionTTL <= 0 {
		return errors.New("http.session_ttl must be positive")
	}
	if c.HTTP.PostsPerMinute <= 0 {
		return errors.New("http.posts_per_minute must be positive")
	}
	if c.DB.Path == "" {
		return errors.New("db.path is required")
	}
	return nil
}

// IsDevelopment reports whether human-readable logs were requested.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
