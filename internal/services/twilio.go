package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioSender sends WhatsApp messages through Twilio
type TwilioSender struct {
	client *twilio.RestClient
	from   string // whatsapp:+14155238886
	logger zerolog.Logger
}

// NewTwilioSender creates a new Twilio sender
func NewTwilioSender(accountSid, authToken, from string, logger zerolog.Logger) (*TwilioSender, error) {
	if accountSid == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &TwilioSender{
		client: client,
		from:   whatsappAddress(from),
		logger: logger.With().Str("component", "twilio_sender").Logger(),
	}, nil
}

func whatsappAddress(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	if !strings.HasPrefix(number, "+") {
		number = "+" + number
	}
	return "whatsapp:" + number
}

// Name identifies the provider in metrics
func (t *TwilioSender) Name() string { return "twilio" }

// SendText sends a WhatsApp message via Twilio. The SDK call does not take a
// context, so cancellation is only checked before sending.
func (t *TwilioSender) SendText(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(whatsappAddress(to))
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}
	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		msg := ""
		if resp.ErrorMessage != nil {
			msg = *resp.ErrorMessage
		}
		return fmt.Errorf("twilio error %d: %s", *resp.ErrorCode, msg)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	t.logger.Debug().Str("to", to).Str("sid", sid).Msg("✅ WhatsApp message sent")
	return nil
}
