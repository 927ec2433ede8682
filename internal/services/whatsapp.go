package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// MessageSender delivers outbound WhatsApp text messages
type MessageSender interface {
	SendText(ctx context.Context, to, body string) error
	Name() string
}

// CloudAPISender sends messages through the WhatsApp Cloud API
type CloudAPISender struct {
	endpoint    string
	accessToken string
	client      *http.Client
	logger      zerolog.Logger
}

// NewCloudAPISender creates a Cloud API sender for one business phone number
func NewCloudAPISender(baseURL, version, phoneNumberID, accessToken string, client *http.Client, logger zerolog.Logger) (*CloudAPISender, error) {
	if phoneNumberID == "" || accessToken == "" {
		return nil, fmt.Errorf("missing WhatsApp Cloud API credentials")
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &CloudAPISender{
		endpoint:    fmt.Sprintf("%s/%s/%s/messages", strings.TrimRight(baseURL, "/"), version, phoneNumberID),
		accessToken: accessToken,
		client:      client,
		logger:      logger.With().Str("component", "cloud_sender").Logger(),
	}, nil
}

type cloudTextMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

type cloudErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Name identifies the provider in metrics
func (s *CloudAPISender) Name() string { return "cloud" }

// SendText posts a text message to the Cloud API
func (s *CloudAPISender) SendText(ctx context.Context, to, body string) error {
	msg := cloudTextMessage{MessagingProduct: "whatsapp", To: to, Type: "text"}
	msg.Text.Body = body

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr cloudErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("cloud api error %d (status %d): %s", apiErr.Error.Code, resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("cloud api returned status %d", resp.StatusCode)
	}

	s.logger.Debug().Str("to", to).Msg("message sent")
	return nil
}

// LogSender only logs outbound messages. Used in development.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a log-only sender
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "log_sender").Logger()}
}

// Name identifies the provider in metrics
func (s *LogSender) Name() string { return "log" }

// SendText writes the message to the log
func (s *LogSender) SendText(ctx context.Context, to, body string) error {
	s.logger.Info().Str("to", to).Str("body", body).Msg("📤 outbound message (not sent)")
	return nil
}
