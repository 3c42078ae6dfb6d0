package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key when read from the environment,
// e.g. server.port is read from MONTESION_SERVER_PORT.
const EnvPrefix = "MONTESION"

// DefaultAllowedOrigins are the browser origins served when none are configured.
const DefaultAllowedOrigins = "https://montesion.me,http://localhost:8000,http://127.0.0.1:8000"

// legacyEnv maps configuration keys to the variable names used by earlier
// deployments of the site. The prefixed name always wins when both are set.
var legacyEnv = map[string]string{
	"server.port":          "PORT",
	"database.url":         "DATABASE_URL",
	"auth.jwt_secret":      "JWT_SECRET",
	"mail.from":            "EMAIL_REMITENTE",
	"mail.password":        "EMAIL_PASSWORD",
	"cors.allowed_origins": "ALLOWED_ORIGINS",
}

// Load configuration from defaults, an optional config file, a local .env
// file and environment variables. Environment variables take precedence over
// values from config files. Returns a populated Config struct or an error if
// loading/validation fails.
func Load() (*Config, error) {
	// A missing .env is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.login_token_lifetime", "168h")
	v.SetDefault("auth.default_token_lifetime", "15m")
	v.SetDefault("auth.bcrypt_cost", 0)

	v.SetDefault("mail.host", "smtp.gmail.com")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.timeout", "15s")

	v.SetDefault("cors.allowed_origins", DefaultAllowedOrigins)

	v.SetDefault("prayer.timezone", "America/Mexico_City")
}
