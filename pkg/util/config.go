package util

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func ReadConfig(configPath string) error {
	SetDefaults()

	viper.SetConfigName("config")
	viper.AddConfigPath(configPath)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// env + defaults only
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}

func SetDefaults() {
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("API_TIMEOUT", "30s")
	viper.SetDefault("API_RATE_LIMIT", 0)
	viper.SetDefault("API_SHUTDOWN_TIMEOUT", "10s")
	viper.SetDefault("HTTP_SERVER_READ_TIMEOUT", "10s")
	viper.SetDefault("HTTP_SERVER_WRITE_TIMEOUT", "10s")
	viper.SetDefault("HTTP_SERVER_IDLE_TIMEOUT", "60s")
	viper.SetDefault("HTTP_SERVER_READ_HEADER_TIMEOUT", "5s")

	viper.SetDefault("PLANNER_MAX_NODES", 500)
	viper.SetDefault("PLANNER_TWO_OPT_MAX_PASSES", 0)
	viper.SetDefault("PLANNER_TWO_OPT_TIME_LIMIT", "0s")
	viper.SetDefault("PLANNER_UNREACHABLE_POLICY", "allow")
	viper.SetDefault("PLANNER_IMPROVE_OPEN_TOURS", false)
	viper.SetDefault("PLANNER_DIRECTED_TWO_OPT", false)
	viper.SetDefault("PLANNER_USE_HEAP", false)
	viper.SetDefault("PLANNER_WORKERS", 4)

	viper.SetDefault("ROUTING_PROVIDER", "osrm")
	viper.SetDefault("STRAIGHT_LINE_SPEED_KMH", 30)

	viper.SetDefault("OSRM_BASE_URL", "https://router.project-osrm.org")
	viper.SetDefault("OSRM_PROFILE", "driving")
	viper.SetDefault("OSRM_ANNOTATION", "distance")
	viper.SetDefault("OSRM_TIMEOUT", "15s")
	viper.SetDefault("OSRM_RATE_LIMIT", 5)
	viper.SetDefault("OSRM_RETRIES", 3)
	viper.SetDefault("OSRM_RETRY_DELAY", "500ms")
	viper.SetDefault("OSRM_MATRIX_CACHE_SIZE", 1024)
}
