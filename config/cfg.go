package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/borncamp/adboard-manager/internal/aggregate"
	httpapi "github.com/borncamp/adboard-manager/internal/api/http"
	"github.com/borncamp/adboard-manager/internal/apisrv/auth"
	"github.com/borncamp/adboard-manager/internal/apisrv/dashboard"
	"github.com/borncamp/adboard-manager/internal/projection"
	"github.com/borncamp/adboard-manager/internal/shipping"
	"github.com/borncamp/adboard-manager/internal/store"
	"github.com/borncamp/adboard-manager/log"
)

// Config represents the global configuration for the service.
type Config struct {
	DB         store.Config      `mapstructure:"mysql"`
	Logger     log.Config        `mapstructure:"logger"`
	HTTP       httpapi.Config    `mapstructure:"http"`
	Auth       auth.Config       `mapstructure:"auth"`
	Dashboard  dashboard.Config  `mapstructure:"dashboard"`
	Shipping   shipping.Config   `mapstructure:"shipping"`
	Aggregate  aggregate.Config  `mapstructure:"aggregate"`
	Projection projection.Config `mapstructure:"projection"`
}

// LoadConfig loads the configuration from a file and/or environment variables.
// Environment variables take precedence over config file values.
func LoadConfig(cfgFile string) (*Config, error) {
	viper.SetConfigType("toml")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "__"))

	bindEnvVars()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %v", err)
			}
		}
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("$HOME/config/adboard-manager")
		viper.AddConfigPath("/etc/adboard-manager")
		_ = viper.ReadInConfig()
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config into struct: %v", err)
	}

	// DSN assembled from individual env vars when not set directly
	if config.DB.DSN == "" {
		mysqlHost := os.Getenv("MYSQL_HOST")
		mysqlPort := os.Getenv("MYSQL_PORT")
		mysqlUser := os.Getenv("MYSQL_USER")
		mysqlPassword := os.Getenv("MYSQL_PASSWORD")
		mysqlDatabase := os.Getenv("MYSQL_DATABASE")

		if mysqlHost != "" {
			if mysqlPort == "" {
				mysqlPort = "3306"
			}
			if mysqlUser != "" && mysqlPassword != "" && mysqlDatabase != "" {
				config.DB.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8&parseTime=true",
					mysqlUser, mysqlPassword, mysqlHost, mysqlPort, mysqlDatabase)
			}
		}
	}

	return &config, nil
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars() {
	// MySQL
	viper.BindEnv("mysql.dsn", "MYSQL_DSN")
	viper.BindEnv("mysql.automigrate", "MYSQL_AUTOMIGRATE")
	viper.BindEnv("mysql.max_open_connections", "MYSQL_MAX_OPEN_CONNECTIONS")
	viper.BindEnv("mysql.max_idle_connections", "MYSQL_MAX_IDLE_CONNECTIONS")
	viper.BindEnv("mysql.tls_ca_path", "MYSQL_TLS_CA_PATH")

	// Logger
	viper.BindEnv("logger.level", "LOG_LEVEL")
	viper.BindEnv("logger.add_source", "LOG_ADD_SOURCE")

	// HTTP
	viper.BindEnv("http.port", "HTTP_PORT")
	viper.BindEnv("http.address", "HTTP_ADDRESS")
	viper.BindEnv("http.allowed_origins", "HTTP_ALLOWED_ORIGINS")

	// Auth
	viper.BindEnv("auth.jwtSecret", "AUTH_JWT_SECRET")
	viper.BindEnv("auth.masterPassword", "AUTH_MASTER_PASSWORD")
	viper.BindEnv("auth.passwordHasherSaltSize", "AUTH_PASSWORD_HASHER_SALT_SIZE")
	viper.BindEnv("auth.passwordHasherIterations", "AUTH_PASSWORD_HASHER_ITERATIONS")
	viper.BindEnv("auth.jwtttl", "AUTH_JWT_TTL")

	// Dashboard
	viper.BindEnv("dashboard.syncApiKey", "DASHBOARD_SYNC_API_KEY")

	// Shipping recompute
	viper.BindEnv("shipping.workers", "SHIPPING_WORKERS")

	// Aggregation
	viper.BindEnv("aggregate.cogsRate", "AGGREGATE_COGS_RATE")

	// Projection
	viper.BindEnv("projection.sessionTTL", "PROJECTION_SESSION_TTL")
	viper.BindEnv("projection.historyMonths", "PROJECTION_HISTORY_MONTHS")
}
