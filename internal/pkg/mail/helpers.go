package mail

import (
	"strings"

	"github.com/mx-space/newsletter/internal/config"
)

// BuildMailConfig maps the application's mail section onto a Sender config.
func BuildMailConfig(cfg *config.AppConfig) Config {
	if cfg == nil {
		return Config{}
	}
	return Config{
		Enable:    cfg.Mail.Enable,
		Host:      cfg.Mail.SMTP.Host,
		Port:      cfg.Mail.SMTP.Port,
		User:      cfg.Mail.SMTP.User,
		Pass:      cfg.Mail.SMTP.Pass,
		From:      cfg.Mail.From,
		ReplyTo:   cfg.Mail.ReplyTo,
		ResendKey: strings.TrimSpace(cfg.Mail.Resend.APIKey),
	}
}
