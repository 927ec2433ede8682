package services

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rodrigopasa/launchajato/internal/config"
	"github.com/rodrigopasa/launchajato/internal/metrics"
	"github.com/rodrigopasa/launchajato/internal/storage"
)

// Services holds the process wide components shared by handlers and jobs
type Services struct {
	Store    storage.Store
	Sessions SessionStore
	Chatbot  *Chatbot
	Sender   MessageSender
	Metrics  *metrics.Metrics
}

// New wires the chatbot and sender for the configured provider
func New(cfg *config.Config, store storage.Store, m *metrics.Metrics, logger zerolog.Logger) (*Services, error) {
	sender, err := NewSender(cfg, logger)
	if err != nil {
		return nil, err
	}

	sessions := NewSessionManager(logger, WithSessionTTL(cfg.SessionTimeout))
	chatbot := NewChatbot(store, NewStoreAuthenticator(store), sessions, logger, WithChatbotMetrics(m))

	return &Services{
		Store:    store,
		Sessions: sessions,
		Chatbot:  chatbot,
		Sender:   sender,
		Metrics:  m,
	}, nil
}

// NewSender builds the outbound sender selected by WHATSAPP_PROVIDER
func NewSender(cfg *config.Config, logger zerolog.Logger) (MessageSender, error) {
	switch cfg.WhatsAppProvider {
	case config.ProviderCloud:
		s, err := NewCloudAPISender(cfg.WhatsAppAPIBaseURL, cfg.WhatsAppAPIVersion, cfg.WhatsAppPhoneNumberID,
			cfg.WhatsAppAccessToken, &http.Client{Timeout: cfg.SendTimeout}, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.ProviderTwilio:
		s, err := NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.ProviderLog, "":
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown WhatsApp provider %q", cfg.WhatsAppProvider)
	}
}
