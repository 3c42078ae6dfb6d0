package config

import (
	"strings"
	"time"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Mail     MailConfig     `mapstructure:"mail"     validate:"required"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Prayer   PrayerConfig   `mapstructure:"prayer"   validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"               validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// AuthConfig contains all authentication and authorization settings.
// JWTSecret is never logged.
type AuthConfig struct {
	JWTSecret            string        `mapstructure:"jwt_secret"             validate:"required,min=32"`
	LoginTokenLifetime   time.Duration `mapstructure:"login_token_lifetime"   validate:"gt=0"`
	DefaultTokenLifetime time.Duration `mapstructure:"default_token_lifetime" validate:"gt=0"`
	BcryptCost           int           `mapstructure:"bcrypt_cost"            validate:"gte=0,lte=31"`
}

// MailConfig describes the outbound SMTP relay. From doubles as the SMTP
// username when Username is empty, matching how the relay account is used.
type MailConfig struct {
	Host     string        `mapstructure:"host"     validate:"required,hostname|ip"`
	Port     int           `mapstructure:"port"     validate:"required,gt=0,lt=65536"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"     validate:"omitempty,email"`
	Timeout  time.Duration `mapstructure:"timeout"  validate:"gt=0"`
}

// SMTPUsername returns the account used to authenticate against the relay.
func (m MailConfig) SMTPUsername() string {
	if m.Username != "" {
		return m.Username
	}
	return m.From
}

// Enabled reports whether enough settings are present to attempt delivery.
func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.From != "" && m.SMTPUsername() != "" && m.Password != ""
}

// CORSConfig holds the browser origins allowed to call the API.
type CORSConfig struct {
	// AllowedOrigins is a comma-separated list, as it arrives from the environment.
	AllowedOrigins string `mapstructure:"allowed_origins"`
}

// Origins splits AllowedOrigins into a clean list, dropping blanks.
func (c CORSConfig) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// PrayerConfig contains prayer request settings.
type PrayerConfig struct {
	// Timezone is the IANA zone used for the civil creation timestamp.
	Timezone string `mapstructure:"timezone" validate:"required,timezone"`
}
