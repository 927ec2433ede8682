package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rodrigopasa/launchajato/internal/metrics"
	"github.com/rodrigopasa/launchajato/internal/services"
	"github.com/rodrigopasa/launchajato/internal/utils"
)

// MessageProcessor produces the reply for one inbound chat message
type MessageProcessor interface {
	HandleMessage(ctx context.Context, phone, text string) string
}

// WhatsAppHandler handles WhatsApp Cloud API webhook requests
type WhatsAppHandler struct {
	processor   MessageProcessor
	sender      services.MessageSender
	metrics     *metrics.Metrics
	verifyToken string
	sendTimeout time.Duration
	logger      zerolog.Logger
	inflight    sync.WaitGroup
}

// NewWhatsAppHandler creates a new WhatsApp handler
func NewWhatsAppHandler(processor MessageProcessor, sender services.MessageSender, m *metrics.Metrics,
	verifyToken string, sendTimeout time.Duration, logger zerolog.Logger) *WhatsAppHandler {
	return &WhatsAppHandler{
		processor:   processor,
		sender:      sender,
		metrics:     m,
		verifyToken: verifyToken,
		sendTimeout: sendTimeout,
		logger:      logger.With().Str("component", "webhook").Logger(),
	}
}

// WebhookPayload is the Cloud API delivery envelope
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

type WebhookValue struct {
	MessagingProduct string            `json:"messaging_product"`
	Messages         []InboundMessage  `json:"messages"`
	Statuses         []json.RawMessage `json:"statuses"`
}

type InboundMessage struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text"`
}

// Verify answers the subscription handshake
func (h *WhatsAppHandler) Verify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && h.verifyToken != "" && token == h.verifyToken {
		h.logger.Info().Msg("✅ webhook verified")
		return c.Status(fiber.StatusOK).SendString(challenge)
	}

	h.logger.Warn().Str("mode", mode).Msg("webhook verification rejected")
	return c.SendStatus(fiber.StatusForbidden)
}

// HandleWebhook processes incoming WhatsApp messages
func (h *WhatsAppHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload WebhookPayload
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		h.logger.Error().Err(err).Msg("error parsing webhook")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	if payload.Object != "whatsapp_business_account" {
		return c.SendStatus(fiber.StatusOK)
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.Type != "text" || msg.Text == nil || msg.From == "" {
					h.logger.Debug().Str("type", msg.Type).Msg("ignoring non-text message")
					continue
				}
				h.handleText(c.UserContext(), msg.From, msg.Text.Body)
			}
		}
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *WhatsAppHandler) handleText(ctx context.Context, from, body string) {
	phone := utils.NormalizePhone(from)
	h.logger.Info().Str("from", phone).Msg("📱 WhatsApp message received")

	reply := h.processor.HandleMessage(ctx, phone, body)
	if reply == "" {
		return
	}

	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		h.deliver(phone, reply)
	}()
}

func (h *WhatsAppHandler) deliver(to, body string) {
	ctx, cancel := context.WithTimeout(context.Background(), h.sendTimeout)
	defer cancel()

	if err := h.sender.SendText(ctx, to, body); err != nil {
		h.metrics.RecordReply(h.sender.Name(), "error")
		h.logger.Error().Err(err).Str("to", to).Msg("❌ failed to send WhatsApp reply")
		return
	}
	h.metrics.RecordReply(h.sender.Name(), "sent")
}

// Wait blocks until every pending reply has been delivered or has failed
func (h *WhatsAppHandler) Wait() {
	h.inflight.Wait()
}

// TestWebhookPayload drives the chatbot without a provider
type TestWebhookPayload struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// HandleTestWebhook processes test WhatsApp messages (for development)
func (h *WhatsAppHandler) HandleTestWebhook(c *fiber.Ctx) error {
	var payload TestWebhookPayload
	if err := c.BodyParser(&payload); err != nil || payload.From == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test payload",
		})
	}

	phone := utils.NormalizePhone(payload.From)
	h.logger.Debug().Str("from", phone).Msg("🧪 test webhook received")

	response := h.processor.HandleMessage(c.UserContext(), phone, payload.Message)
	return c.JSON(fiber.Map{
		"success":  true,
		"response": response,
	})
}
