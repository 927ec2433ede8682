package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigopasa/launchajato/internal/metrics"
)

type echoProcessor struct {
	mu    sync.Mutex
	calls []string
}

func (p *echoProcessor) HandleMessage(ctx context.Context, phone, text string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, phone+":"+text)
	return "eco: " + text
}

type sent struct{ to, body string }

type fakeSender struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (s *fakeSender) Name() string { return "fake" }

func (s *fakeSender) SendText(ctx context.Context, to, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sent{to, body})
	return nil
}

func (s *fakeSender) messages() []sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sent(nil), s.sent...)
}

func setup(sender *fakeSender, m *metrics.Metrics) (*fiber.App, *WhatsAppHandler, *echoProcessor) {
	proc := &echoProcessor{}
	h := NewWhatsAppHandler(proc, sender, m, "verify-me", time.Second, zerolog.Nop())
	app := fiber.New()
	app.Get("/webhook", h.Verify)
	app.Post("/webhook", h.HandleWebhook)
	app.Post("/test/whatsapp", h.HandleTestWebhook)
	return app, h, proc
}

const textDelivery = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "1",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "messages": [
          {"from": "5511988887777", "id": "wamid.1", "type": "text", "text": {"body": "ajuda"}},
          {"from": "5511988887777", "id": "wamid.2", "type": "image"}
        ]
      }
    }]
  }]
}`

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func TestVerify(t *testing.T) {
	app, _, _ := setup(&fakeSender{}, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=12345", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "12345", string(body))

	resp, err = app.Test(httptest.NewRequest("GET", "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/webhook?hub.mode=unsubscribe&hub.verify_token=verify-me", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestHandleWebhook_RepliesToTextMessages(t *testing.T) {
	sender := &fakeSender{}
	m := metrics.New()
	app, h, proc := setup(sender, m)

	status, _ := postJSON(t, app, "/webhook", textDelivery)
	assert.Equal(t, fiber.StatusOK, status)

	require.Eventually(t, func() bool { return len(sender.messages()) == 1 }, time.Second, 10*time.Millisecond)
	h.Wait()

	assert.Equal(t, []sent{{"5511988887777", "eco: ajuda"}}, sender.messages())
	assert.Equal(t, []string{"5511988887777:ajuda"}, proc.calls)
}

func TestHandleWebhook_SendFailureIsNotReported(t *testing.T) {
	sender := &fakeSender{err: errors.New("provider down")}
	app, h, proc := setup(sender, nil)

	status, _ := postJSON(t, app, "/webhook", textDelivery)
	h.Wait()

	assert.Equal(t, fiber.StatusOK, status)
	assert.Len(t, proc.calls, 1)
	assert.Empty(t, sender.messages())
}

func TestHandleWebhook_IgnoresIrrelevantPayloads(t *testing.T) {
	sender := &fakeSender{}
	app, h, proc := setup(sender, nil)

	for _, body := range []string{
		`{"object":"page","entry":[]}`,
		`{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"statuses":[{"id":"wamid.1","status":"read"}]}}]}]}`,
		`{}`,
	} {
		status, _ := postJSON(t, app, "/webhook", body)
		assert.Equal(t, fiber.StatusOK, status, body)
	}
	h.Wait()

	assert.Empty(t, proc.calls)
	assert.Empty(t, sender.messages())
}

func TestHandleWebhook_InvalidJSON(t *testing.T) {
	app, _, proc := setup(&fakeSender{}, nil)

	status, body := postJSON(t, app, "/webhook", `{"object":`)

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Contains(t, body, "Internal server error")
	assert.Empty(t, proc.calls)
}

func TestHandleTestWebhook(t *testing.T) {
	sender := &fakeSender{}
	app, h, _ := setup(sender, nil)

	status, body := postJSON(t, app, "/test/whatsapp", `{"from":"whatsapp:+55 11 98888-7777","message":"status"}`)
	require.Equal(t, fiber.StatusOK, status)

	var out struct {
		Success  bool   `json:"success"`
		Response string `json:"response"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.True(t, out.Success)
	assert.Equal(t, "eco: status", out.Response)

	h.Wait()
	assert.Empty(t, sender.messages())

	status, _ = postJSON(t, app, "/test/whatsapp", `{"message":"oi"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}
