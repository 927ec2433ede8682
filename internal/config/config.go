package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Supported outbound WhatsApp providers.
const (
	ProviderCloud  = "cloud"
	ProviderTwilio = "twilio"
	ProviderLog    = "log"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Port        string `envconfig:"PORT" default:"8080"`
	AppName     string `envconfig:"APP_NAME" default:"LaunchaJato Chatbot"`

	// Storage
	UseMemoryStore   bool   `envconfig:"USE_MEMORY_STORE" default:"false"`
	SeedDemoData     bool   `envconfig:"SEED_DEMO_DATA" default:"false"`
	DBHost           string `envconfig:"DB_HOST" default:"localhost"`
	DBPort           int    `envconfig:"DB_PORT" default:"5432"`
	DBUser           string `envconfig:"DB_USER" default:"postgres"`
	DBPass           string `envconfig:"DB_PASS"`
	DBName           string `envconfig:"DB_NAME" default:"launchajato"`
	DBSSLMode        string `envconfig:"DB_SSLMODE" default:"disable"`
	InstanceConnName string `envconfig:"INSTANCE_CONNECTION_NAME"` // Cloud SQL unix socket

	// WhatsApp webhook
	WhatsAppProvider    string `envconfig:"WHATSAPP_PROVIDER" default:"log"`
	WhatsAppVerifyToken string `envconfig:"WHATSAPP_VERIFY_TOKEN"`
	WhatsAppAppSecret   string `envconfig:"WHATSAPP_APP_SECRET"` // enables X-Hub-Signature-256 validation

	// WhatsApp Cloud API
	WhatsAppAccessToken   string `envconfig:"WHATSAPP_ACCESS_TOKEN"`
	WhatsAppPhoneNumberID string `envconfig:"WHATSAPP_PHONE_NUMBER_ID"`
	WhatsAppAPIBaseURL    string `envconfig:"WHATSAPP_API_BASE_URL" default:"https://graph.facebook.com"`
	WhatsAppAPIVersion    string `envconfig:"WHATSAPP_API_VERSION" default:"v19.0"`

	// Twilio
	TwilioAccountSID   string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken    string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioWhatsAppFrom string `envconfig:"TWILIO_WHATSAPP_FROM"` // whatsapp:+14155238886

	// Chat sessions
	SessionTimeout time.Duration `envconfig:"SESSION_TIMEOUT" default:"30m"`
	SweepInterval  time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"5m"`
	SendTimeout    time.Duration `envconfig:"WHATSAPP_SEND_TIMEOUT" default:"15s"`

	// Notifications
	NotificationsEnabled bool          `envconfig:"NOTIFICATIONS_ENABLED" default:"true"`
	NotificationInterval time.Duration `envconfig:"NOTIFICATION_INTERVAL" default:"1m"`
	NotificationLookback time.Duration `envconfig:"NOTIFICATION_LOOKBACK" default:"15m"`
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// DSN builds the postgres connection string. Cloud SQL deployments connect
// over the unix socket, everything else over TCP.
func (c *Config) DSN() string {
	if c.InstanceConnName != "" {
		return fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=disable",
			c.InstanceConnName, c.DBUser, c.DBPass, c.DBName)
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.DBHost, c.DBUser, c.DBPass, c.DBName, c.DBPort, c.DBSSLMode)
}

// Validate checks provider specific settings.
func (c *Config) Validate() error {
	switch strings.ToLower(c.WhatsAppProvider) {
	case ProviderCloud:
		if c.WhatsAppAccessToken == "" || c.WhatsAppPhoneNumberID == "" {
			return fmt.Errorf("%w: cloud provider requires WHATSAPP_ACCESS_TOKEN and WHATSAPP_PHONE_NUMBER_ID", ErrInvalidConfig)
		}
	case ProviderTwilio:
		if c.TwilioAccountSID == "" || c.TwilioAuthToken == "" || c.TwilioWhatsAppFrom == "" {
			return fmt.Errorf("%w: twilio provider requires TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_WHATSAPP_FROM", ErrInvalidConfig)
		}
	case ProviderLog:
	default:
		return fmt.Errorf("%w: unknown WHATSAPP_PROVIDER %q", ErrInvalidConfig, c.WhatsAppProvider)
	}

	if c.SessionTimeout <= 0 || c.SweepInterval <= 0 {
		return fmt.Errorf("%w: session timeout and sweep interval must be positive", ErrInvalidConfig)
	}
	if c.NotificationsEnabled && c.NotificationInterval <= 0 {
		return fmt.Errorf("%w: NOTIFICATION_INTERVAL must be positive", ErrInvalidConfig)
	}
	return nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg.WhatsAppProvider = strings.ToLower(strings.TrimSpace(cfg.WhatsAppProvider))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
