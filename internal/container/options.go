// Package container wires the service together with samber/do.
package container

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap/zapcore"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Options are read from flags and SERVICE_* environment variables.
type Options struct {
	Port          int    `default:"8888"       help:"Port to listen on"                             short:"p" validate:"min=1,max=65535"`
	BaseURL       string `help:"Public base URL of short links, defaults to http://localhost:PORT" validate:"omitempty,http_url"`
	Storage       string `default:"memory"     help:"Storage backend: memory or postgres"           short:"s" validate:"oneof=memory postgres"`
	DatabaseURL   string `help:"PostgreSQL connection string"                                      validate:"required_if=Storage postgres"`
	RedisAddr     string `help:"Redis address, enables redis sessions, link cache and event stream" short:"r"`
	SessionTTL    string `default:"24h"        help:"Session lifetime, 0 disables expiry"           validate:"duration"`
	CacheTTL      string `default:"1h"         help:"Lifetime of cached links in redis"             validate:"duration"`
	SecureCookies bool   `help:"Send session cookies over HTTPS only"`
	LogFormat     string `default:"console"    help:"Log format: console or json"                   validate:"oneof=console json"`
	LogLevel      string `default:"info"       help:"Minimum log level"                             validate:"loglevel"`
	ConsumerGroup string `default:"shortlinks" help:"Redis stream consumer group for event consumers" validate:"required"`
}

// Validate checks option values that flag parsing alone cannot.
func (o *Options) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.RegisterValidation("duration", validateDuration); err != nil {
		return err
	}

	if err := v.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return err
	}

	if err := v.Struct(o); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	return nil
}

// PublicBaseURL returns the base URL short links are built on.
func (o *Options) PublicBaseURL() string {
	if o.BaseURL != "" {
		return strings.TrimRight(o.BaseURL, "/")
	}

	return fmt.Sprintf("http://localhost:%d", o.Port)
}

// SessionLifetime returns the parsed session TTL.
func (o *Options) SessionLifetime() time.Duration {
	d, _ := time.ParseDuration(o.SessionTTL)

	return d
}

// CacheLifetime returns the parsed link cache TTL.
func (o *Options) CacheLifetime() time.Duration {
	d, _ := time.ParseDuration(o.CacheTTL)

	return d
}

func validateDuration(fl validator.FieldLevel) bool {
	d, err := time.ParseDuration(fl.Field().String())

	return err == nil && d >= 0
}

func validateLogLevel(fl validator.FieldLevel) bool {
	_, err := zapcore.ParseLevel(fl.Field().String())

	return err == nil
}
