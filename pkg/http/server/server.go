package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            int
	Timeout         time.Duration
	ShutdownTimeout time.Duration
	RateLimit       float64 // requests per second, 0 = off
}

func ConfigFromViper() Config {
	return Config{
		Port:            viper.GetInt("API_PORT"),
		Timeout:         viper.GetDuration("API_TIMEOUT"),
		ShutdownTimeout: viper.GetDuration("API_SHUTDOWN_TIMEOUT"),
		RateLimit:       viper.GetFloat64("API_RATE_LIMIT"),
	}
}

// New builds the API http.Server. Request contexts derive from ctx.
func New(ctx context.Context, handler http.Handler, config Config) *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Port),
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},

		ReadTimeout:       viper.GetDuration("HTTP_SERVER_READ_TIMEOUT"),
		WriteTimeout:      config.Timeout + viper.GetDuration("HTTP_SERVER_WRITE_TIMEOUT"),
		IdleTimeout:       viper.GetDuration("HTTP_SERVER_IDLE_TIMEOUT"),
		ReadHeaderTimeout: viper.GetDuration("HTTP_SERVER_READ_HEADER_TIMEOUT"),
	}
}
