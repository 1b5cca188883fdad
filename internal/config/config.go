package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML config at configPath, applies `.env` / NEWSLETTER_*
// environment overrides and validates the result. A missing file at the
// default path is not an error; defaults plus environment are used instead.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}
	loadDotEnv()

	raw := rawAppConfig{}
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultConfigPath:
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := applyRawAppConfig(&cfg, raw); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	if err := applyEnvOverrides(&cfg, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("config env: %w", err)
	}
	finalize(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return &cfg, nil
}

// IsDev reports whether the process runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env == "development" }

// LogDir returns the absolute directory for native log files.
func (c *AppConfig) LogDir() string {
	return ResolveRuntimePath(c.Paths.Logs, defaultLogsSubdir)
}

// UsesDevelopmentSecret reports whether the built-in signing secret is active.
func (c *AppConfig) UsesDevelopmentSecret() bool { return c.Secret == developmentSecret }

// Validate checks the invariants the rest of the process relies on.
func (c *AppConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	switch c.Database.Driver {
	case "mysql":
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("invalid database.port %d, expected 1-65535", c.Database.Port)
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported database.driver %q, expected mysql or memory", c.Database.Driver)
	}
	if c.Redis.Enable && c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", c.Redis.DB)
	}
	if strings.TrimSpace(c.Secret) == "" {
		return errors.New("secret is required outside development")
	}
	u, err := url.Parse(c.Site.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid site.url %q, expected an absolute URL", c.Site.URL)
	}
	if !strings.HasPrefix(c.Newsletter.BasePath, "/") {
		return fmt.Errorf("invalid newsletter.base_path %q, expected a leading slash", c.Newsletter.BasePath)
	}
	if c.Newsletter.TokenMaxAge < 0 {
		return errors.New("newsletter.token_max_age must not be negative")
	}
	if c.Newsletter.RateLimit.Max < 0 {
		return errors.New("newsletter.rate_limit.max must not be negative")
	}
	seen := make(map[string]bool, len(c.Newsletter.Profile.Fields))
	for _, f := range c.Newsletter.Profile.Fields {
		if f.Name == "" {
			return errors.New("newsletter.profile.fields: name is required")
		}
		if seen[f.Name] {
			return fmt.Errorf("newsletter.profile.fields: duplicate field %q", f.Name)
		}
		seen[f.Name] = true
	}
	for i, hook := range c.Webhooks {
		if _, err := url.ParseRequestURI(hook.URL); err != nil {
			return fmt.Errorf("webhooks[%d]: invalid url %q", i, hook.URL)
		}
	}
	return nil
}

func defaultAppConfig() AppConfig {
	cfg := AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseRuntimeConfig{
			Driver:    defaultDBDriver,
			Host:      defaultDBHost,
			Port:      defaultDBPort,
			User:      defaultDBUser,
			Password:  defaultDBPassword,
			Name:      defaultDBName,
			Charset:   defaultDBCharset,
			ParseTime: true,
			Loc:       defaultDBLoc,
		},
		Redis: RedisRuntimeConfig{
			Enable: true,
			Host:   defaultRedisHost,
			Port:   defaultRedisPort,
			DB:     defaultRedisDB,
		},
		Mail: MailConfig{
			SMTP: SMTPConfig{Port: defaultSMTPPort},
		},
		Newsletter: NewsletterConfig{
			BasePath: defaultBasePath,
			Profile: ProfileConfig{
				Enable: true,
				Fields: []ProfileFieldConfig{
					{Name: "full_name", Label: "Full name", Rules: "omitempty,max=100"},
				},
			},
			RateLimit: RateLimitConfig{
				Max:    defaultRateLimitMax,
				Window: defaultRateLimitWindow,
			},
		},
	}
	return cfg
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) error {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.NodeEnv); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.Secret); v != "" {
		cfg.Secret = v
	}
	if v := strings.TrimSpace(raw.SecretKey); v != "" {
		cfg.Secret = v
	}
	if v := strings.TrimSpace(raw.AdminToken); v != "" {
		cfg.AdminToken = v
	}
	if v := strings.TrimSpace(raw.Timezone); v != "" {
		cfg.Timezone = v
	}
	if v := strings.TrimSpace(raw.TZ); v != "" {
		cfg.Timezone = v
	}
	if raw.AllowedOrigins != nil {
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	}

	cfg.Database = applyRawDatabaseConfig(cfg.Database, raw)
	cfg.Redis = applyRawRedisConfig(cfg.Redis, raw)

	if v := strings.TrimSpace(raw.Site.URL); v != "" {
		cfg.Site.URL = v
	}
	if v := strings.TrimSpace(raw.Site.Name); v != "" {
		cfg.Site.Name = v
	}

	if raw.Mail.Enable != nil {
		cfg.Mail.Enable = *raw.Mail.Enable
	}
	if v := strings.TrimSpace(raw.Mail.From); v != "" {
		cfg.Mail.From = v
	}
	if v := strings.TrimSpace(raw.Mail.ReplyTo); v != "" {
		cfg.Mail.ReplyTo = v
	}
	if v := strings.TrimSpace(raw.Mail.SMTP.Host); v != "" {
		cfg.Mail.SMTP.Host = v
	}
	if raw.Mail.SMTP.Port != 0 {
		cfg.Mail.SMTP.Port = raw.Mail.SMTP.Port
	}
	if v := strings.TrimSpace(raw.Mail.SMTP.User); v != "" {
		cfg.Mail.SMTP.User = v
	}
	if raw.Mail.SMTP.Pass != "" {
		cfg.Mail.SMTP.Pass = raw.Mail.SMTP.Pass
	}
	if v := strings.TrimSpace(raw.Mail.Resend.APIKey); v != "" {
		cfg.Mail.Resend.APIKey = v
	}

	nl := raw.Newsletter
	if v := strings.TrimSpace(nl.BasePath); v != "" {
		cfg.Newsletter.BasePath = v
	}
	if v := strings.TrimSpace(nl.TokenMaxAge); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid newsletter.token_max_age %q: %w", v, err)
		}
		cfg.Newsletter.TokenMaxAge = d
	}
	if nl.Profile.Enable != nil {
		cfg.Newsletter.Profile.Enable = *nl.Profile.Enable
	}
	if nl.Profile.Fields != nil {
		cfg.Newsletter.Profile.Fields = normalizeProfileFields(nl.Profile.Fields)
	}
	if nl.RateLimit.Max != 0 {
		cfg.Newsletter.RateLimit.Max = nl.RateLimit.Max
	}
	if v := strings.TrimSpace(nl.RateLimit.Window); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid newsletter.rate_limit.window %q", v)
		}
		cfg.Newsletter.RateLimit.Window = d
	}

	if raw.Webhooks != nil {
		cfg.Webhooks = normalizeWebhooks(raw.Webhooks)
	}
	if v := strings.TrimSpace(raw.Paths.Logs); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.Paths.Logs = v
	}
	return nil
}

func applyRawDatabaseConfig(current DatabaseRuntimeConfig, raw rawAppConfig) DatabaseRuntimeConfig {
	cfg := current
	db := raw.Database

	if v := strings.ToLower(strings.TrimSpace(db.Driver)); v != "" {
		cfg.Driver = v
	}
	for _, v := range []string{db.DSN, db.URL, raw.DSN, raw.DatabaseURL} {
		if v = strings.TrimSpace(v); v != "" {
			cfg.DSN = v
		}
	}
	if v := strings.TrimSpace(db.Host); v != "" {
		cfg.Host = v
	}
	if db.Port != 0 {
		cfg.Port = db.Port
	}
	if v := strings.TrimSpace(db.User); v != "" {
		cfg.User = v
	}
	if v := strings.TrimSpace(db.Username); v != "" {
		cfg.User = v
	}
	if db.Password != "" {
		cfg.Password = db.Password
	}
	if v := strings.TrimSpace(db.Name); v != "" {
		cfg.Name = v
	}
	if v := strings.TrimSpace(db.DBName); v != "" {
		cfg.Name = v
	}
	if v := strings.TrimSpace(db.Charset); v != "" {
		cfg.Charset = v
	}
	if db.ParseTime != nil {
		cfg.ParseTime = *db.ParseTime
	}
	if v := strings.TrimSpace(db.Loc); v != "" {
		cfg.Loc = v
	}
	if db.Params != nil {
		cfg.Params = copyStringMap(db.Params)
	}
	return cfg
}

func applyRawRedisConfig(current RedisRuntimeConfig, raw rawAppConfig) RedisRuntimeConfig {
	cfg := current
	r := raw.Redis

	if r.Enable != nil {
		cfg.Enable = *r.Enable
	}
	if v := strings.TrimSpace(r.URL); v != "" {
		cfg.URL = v
	}
	if v := strings.TrimSpace(raw.RedisURL); v != "" {
		cfg.URL = v
	}
	if v := strings.TrimSpace(r.Host); v != "" {
		cfg.Host = v
	}
	if r.Port != 0 {
		cfg.Port = r.Port
	}
	if v := strings.TrimSpace(r.Username); v != "" {
		cfg.Username = v
	}
	if r.Password != "" {
		cfg.Password = r.Password
	}
	if r.DB != nil {
		cfg.DB = *r.DB
	}
	if r.TLS != nil {
		cfg.TLS = *r.TLS
	}
	if r.Params != nil {
		cfg.Params = copyStringMap(r.Params)
	}
	return cfg
}

// finalize fills derived values once all sources have been applied.
func finalize(cfg *AppConfig) {
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.Database = normalizeDatabaseConfig(cfg.Database)
	cfg.Redis = normalizeRedisConfig(cfg.Redis)
	cfg.DSN = cfg.Database.DSNValue()
	cfg.RedisURL = cfg.Redis.URLValue()
	cfg.Newsletter.BasePath = normalizeBasePath(cfg.Newsletter.BasePath)
	cfg.Paths.Logs = strings.TrimSpace(cfg.Paths.Logs)

	if strings.TrimSpace(cfg.Secret) == "" && cfg.IsDev() {
		cfg.Secret = developmentSecret
	}
	if strings.TrimSpace(cfg.Site.URL) == "" {
		cfg.Site.URL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	cfg.Site.URL = strings.TrimRight(cfg.Site.URL, "/")
	if strings.TrimSpace(cfg.Site.Name) == "" {
		cfg.Site.Name = "Newsletter"
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.SMTP.User
	}
}
