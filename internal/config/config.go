// Package config loads the process configuration once at startup and freezes
// the preview/production mode decision for the process lifetime.
package config

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v10"
	"go.uber.org/zap"
)

type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	PublicURL string `env:"PUBLIC_URL" envDefault:"https://danverse.ai"`

	// SessionSecret keys the token codec. Never logged, never serialized.
	SessionSecret string `env:"SESSION_SECRET"`

	AdminUser        string   `env:"ADMIN_USER" envDefault:"admin"`
	AdminPass        string   `env:"ADMIN_PASS"`
	AdminIPAllowlist []string `env:"ADMIN_IP_ALLOWLIST" envSeparator:","`

	// Production secrets. When both DatabaseURL and SMTPURL are present and
	// well-formed the process runs in production mode; otherwise preview.
	DatabaseURL string `env:"DATABASE_URL"`
	SMTPURL     string `env:"SMTP_URL"`

	// Optional: route outbound mail through RabbitMQ in production.
	AMQPURL string `env:"AMQP_URL"`

	MailFrom   string `env:"MAIL_FROM" envDefault:"DANVERSE <noreply@danverse.ai>"`
	AdminEmail string `env:"ADMIN_EMAIL" envDefault:"hello@danverse.ai"`

	SecureCookies bool `env:"SECURE_COOKIES" envDefault:"true"`

	Payment Payment

	// PreviewMode is computed by Load, not read from the environment.
	PreviewMode bool `env:"-"`
}

// Payment holds the manual payment rails shown to customers at checkout.
type Payment struct {
	InstaAlias         string `env:"INSTA_ALIAS" envDefault:"muhamedadel69@instapay"`
	VodafoneCashNumber string `env:"VODAFONE_CASH_NUMBER" envDefault:"+201069415658"`
	BankName           string `env:"BANK_NAME" envDefault:"CIB"`
	BankAccountName    string `env:"BANK_ACCOUNT_NAME" envDefault:"MOHAMED ADEL"`
	BankAccountNumber  string `env:"BANK_ACCOUNT_NUMBER" envDefault:"100065756317"`
	BankIBAN           string `env:"BANK_IBAN"`
}

// Load parses the environment and decides the mode exactly once. Re-reading
// the environment later has no effect on a loaded Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.PreviewMode = !hasProductionSecrets(&cfg)
	return &cfg, nil
}

func hasProductionSecrets(cfg *Config) bool {
	return wellFormedURL(cfg.DatabaseURL) && wellFormedURL(cfg.SMTPURL)
}

func wellFormedURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// LogMode announces the selected mode and its degraded capabilities. Called
// once at startup.
func (c *Config) LogMode(log *zap.Logger) {
	if c.PreviewMode {
		log.Info("🚀 DANVERSE running in PREVIEW mode",
			zap.String("persistence", "in-memory with encrypted cookie sync"),
			zap.String("email", "Ethereal sandbox, preview links only"),
			zap.String("backups", "export/import enabled"),
		)
		return
	}
	log.Info("🚀 DANVERSE running in PRODUCTION mode",
		zap.Bool("mail_queue", c.AMQPURL != ""),
	)
}
