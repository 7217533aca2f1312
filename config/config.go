// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validEnvs      = []string{"development", "production"}
	validDrivers   = []string{"sqlite", "postgres"}
)

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")
	v.BindEnv("app.env", "app_env")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.cors_origins", "host_cors_origins")

	v.BindEnv("db.driver", "db_driver")
	v.BindEnv("db.dsn", "db_dsn")

	v.BindEnv("auth.token_ttl_hours", "auth_token_ttl_hours")
	v.BindEnv("auth.remember_ttl_days", "auth_remember_ttl_days")
	v.BindEnv("auth.reset_code_ttl_minutes", "auth_reset_code_ttl_minutes")

	v.BindEnv("mail.host", "mail_host")
	v.BindEnv("mail.port", "mail_port")
	v.BindEnv("mail.sender", "mail_sender_address")
	v.BindEnv("mail.password", "mail_password")

	v.BindEnv("asterank.url", "asterank_url")
	v.BindEnv("asterank.timeout_seconds", "asterank_timeout_seconds")
	v.BindEnv("asterank.default_target", "asterank_default_target")
	v.BindEnv("asterank.cache_seconds", "asterank_cache_seconds")

	v.BindEnv("rate_limit.enabled", "rate_limit_enabled")
	v.BindEnv("rate_limit.rps", "rate_limit_rps")
	v.BindEnv("rate_limit.burst", "rate_limit_burst")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.env", "development")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	v.SetDefault("auth.token_ttl_hours", 24)
	v.SetDefault("auth.remember_ttl_days", 30)
	v.SetDefault("auth.reset_code_ttl_minutes", 60)

	v.SetDefault("mail.port", 587)

	v.SetDefault("asterank.url", "https://www.asterank.com/api/skymorph/search")
	v.SetDefault("asterank.timeout_seconds", 30)
	v.SetDefault("asterank.default_target", "J99TS7A")
	v.SetDefault("asterank.cache_seconds", 30)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.rps", 5)
	v.SetDefault("rate_limit.burst", 10)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}

		// All keys have sane defaults or env bindings so a missing
		// config.toml is fine
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if !slices.Contains(validEnvs, v.GetString("app.env")) {
		return errors.New("app.env must be development or production")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDrivers, v.GetString("db.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("db.dsn") == "" {
		return errors.New("database DSN can't be empty")
	}

	if v.GetInt("auth.token_ttl_hours") <= 0 {
		return errors.New("auth.token_ttl_hours must be bigger than 0")
	}

	if v.GetInt("auth.remember_ttl_days") <= 0 {
		return errors.New("auth.remember_ttl_days must be bigger than 0")
	}

	if v.GetInt("auth.reset_code_ttl_minutes") <= 0 {
		return errors.New("auth.reset_code_ttl_minutes must be bigger than 0")
	}

	if v.GetString("asterank.url") == "" {
		return errors.New("asterank.url can't be empty")
	}

	if v.GetInt("asterank.timeout_seconds") <= 0 {
		return errors.New("asterank.timeout_seconds must be bigger than 0")
	}

	if v.GetString("mail.sender") == "" {
		fmt.Println("[WARNING]: No mail.sender configured. Password reset emails won't be delivered until one is set")
	}

	if v.GetBool("rate_limit.enabled") {
		if v.GetInt("rate_limit.rps") <= 0 {
			return errors.New("rate_limit.rps must be bigger than 0")
		}

		if v.GetInt("rate_limit.burst") <= 0 {
			return errors.New("rate_limit.burst must be bigger than 0")
		}
	}

	return nil
}

// IsProduction reports whether client responses should suppress internal
// error detail
func IsProduction() bool {
	return v.GetString("app.env") == "production"
}
