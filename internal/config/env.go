package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "NEWSLETTER_"

// loadDotEnv populates the process environment from ./.env when present.
// Variables already set in the environment win.
func loadDotEnv() {
	_ = godotenv.Load()
}

// applyEnvOverrides lets NEWSLETTER_* variables override YAML values, so
// secrets can stay out of the config file.
func applyEnvOverrides(cfg *AppConfig, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(envPrefix + key)
		if !ok {
			return "", false
		}
		v = strings.TrimSpace(v)
		return v, v != ""
	}

	if v, ok := get("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPORT: %w", envPrefix, err)
		}
		cfg.Port = port
	}
	if v, ok := get("ENV"); ok {
		cfg.Env = v
	}
	if v, ok := get("SECRET"); ok {
		cfg.Secret = v
	}
	if v, ok := get("ADMIN_TOKEN"); ok {
		cfg.AdminToken = v
	}
	if v, ok := get("SITE_URL"); ok {
		cfg.Site.URL = v
	}
	if v, ok := get("DB_DRIVER"); ok {
		cfg.Database.Driver = strings.ToLower(v)
	}
	if v, ok := get("DSN"); ok {
		cfg.Database.DSN = v
	}
	if v, ok := get("REDIS_URL"); ok {
		cfg.Redis.URL = v
	}
	if v, ok := get("REDIS_ENABLE"); ok {
		enable, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sREDIS_ENABLE: %w", envPrefix, err)
		}
		cfg.Redis.Enable = enable
	}
	if v, ok := get("SMTP_PASS"); ok {
		cfg.Mail.SMTP.Pass = v
	}
	if v, ok := get("RESEND_API_KEY"); ok {
		cfg.Mail.Resend.APIKey = v
	}
	if v, ok := get("TOKEN_MAX_AGE"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTOKEN_MAX_AGE: %w", envPrefix, err)
		}
		cfg.Newsletter.TokenMaxAge = d
	}
	return nil
}
