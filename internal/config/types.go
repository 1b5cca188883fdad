package config

import "time"

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int                   `yaml:"port"`
	Env            string                `yaml:"env"` // "development" | "production"
	Secret         string                `yaml:"secret"`
	AdminToken     string                `yaml:"admin_token"`
	Timezone       string                `yaml:"timezone"`
	AllowedOrigins []string              `yaml:"allowed_origins"`
	DSN            string                `yaml:"dsn"` // resolved MySQL DSN
	RedisURL       string                `yaml:"redis_url"`
	Database       DatabaseRuntimeConfig `yaml:"database"`
	Redis          RedisRuntimeConfig    `yaml:"redis"`
	Site           SiteConfig            `yaml:"site"`
	Mail           MailConfig            `yaml:"mail"`
	Newsletter     NewsletterConfig      `yaml:"newsletter"`
	Webhooks       []WebhookConfig       `yaml:"webhooks"`
	Paths          RuntimePathsConfig    `yaml:"paths"`
}

type DatabaseRuntimeConfig struct {
	Driver    string            `yaml:"driver"` // "mysql" | "memory"
	DSN       string            `yaml:"dsn"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	Charset   string            `yaml:"charset"`
	ParseTime bool              `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
}

type RedisRuntimeConfig struct {
	Enable   bool              `yaml:"enable"`
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	DB       int               `yaml:"db"`
	TLS      bool              `yaml:"tls"`
	Params   map[string]string `yaml:"params"`
}

// SiteConfig describes the public site; URL is the base for emailed links.
type SiteConfig struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type MailConfig struct {
	Enable  bool         `yaml:"enable"`
	From    string       `yaml:"from"`
	ReplyTo string       `yaml:"reply_to"`
	SMTP    SMTPConfig   `yaml:"smtp"`
	Resend  ResendConfig `yaml:"resend"`
}

type SMTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
}

type ResendConfig struct {
	APIKey string `yaml:"api_key"`
}

type NewsletterConfig struct {
	BasePath    string          `yaml:"base_path"`
	TokenMaxAge time.Duration   `yaml:"-"`
	Profile     ProfileConfig   `yaml:"profile"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
}

type ProfileConfig struct {
	Enable bool                 `yaml:"enable"`
	Fields []ProfileFieldConfig `yaml:"fields"`
}

// ProfileFieldConfig declares one editable profile attribute. Rules uses
// go-playground/validator tag syntax, e.g. "omitempty,max=100".
type ProfileFieldConfig struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
	Rules string `yaml:"rules"`
}

type RateLimitConfig struct {
	Max    int           `yaml:"max"`
	Window time.Duration `yaml:"-"`
}

type WebhookConfig struct {
	URL    string   `yaml:"url"`
	Secret string   `yaml:"secret"`
	Events []string `yaml:"events"`
}

type RuntimePathsConfig struct {
	Logs string `yaml:"logs"`
}

type rawAppConfig struct {
	Port           int                 `yaml:"port"`
	Env            string              `yaml:"env"`
	NodeEnv        string              `yaml:"node_env"`
	Secret         string              `yaml:"secret"`
	SecretKey      string              `yaml:"secret_key"`
	AdminToken     string              `yaml:"admin_token"`
	Timezone       string              `yaml:"timezone"`
	TZ             string              `yaml:"tz"`
	AllowedOrigins []string            `yaml:"allowed_origins"`
	DSN            string              `yaml:"dsn"`
	DatabaseURL    string              `yaml:"database_url"`
	RedisURL       string              `yaml:"redis_url"`
	Database       rawDatabaseConfig   `yaml:"database"`
	Redis          rawRedisConfig      `yaml:"redis"`
	Site           SiteConfig          `yaml:"site"`
	Mail           rawMailConfig       `yaml:"mail"`
	Newsletter     rawNewsletterConfig `yaml:"newsletter"`
	Webhooks       []WebhookConfig     `yaml:"webhooks"`
	Paths          RuntimePathsConfig  `yaml:"paths"`
	LogDir         string              `yaml:"log_dir"`
}

type rawDatabaseConfig struct {
	Driver    string            `yaml:"driver"`
	DSN       string            `yaml:"dsn"`
	URL       string            `yaml:"url"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Username  string            `yaml:"username"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	DBName    string            `yaml:"db_name"`
	Charset   string            `yaml:"charset"`
	ParseTime *bool             `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
}

type rawRedisConfig struct {
	Enable   *bool             `yaml:"enable"`
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	DB       *int              `yaml:"db"`
	TLS      *bool             `yaml:"tls"`
	Params   map[string]string `yaml:"params"`
}

type rawMailConfig struct {
	Enable  *bool        `yaml:"enable"`
	From    string       `yaml:"from"`
	ReplyTo string       `yaml:"reply_to"`
	SMTP    SMTPConfig   `yaml:"smtp"`
	Resend  ResendConfig `yaml:"resend"`
}

type rawNewsletterConfig struct {
	BasePath    string             `yaml:"base_path"`
	TokenMaxAge string             `yaml:"token_max_age"`
	Profile     rawProfileConfig   `yaml:"profile"`
	RateLimit   rawRateLimitConfig `yaml:"rate_limit"`
}

type rawProfileConfig struct {
	Enable *bool                `yaml:"enable"`
	Fields []ProfileFieldConfig `yaml:"fields"`
}

type rawRateLimitConfig struct {
	Max    int    `yaml:"max"`
	Window string `yaml:"window"`
}
