package routes

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigopasa/launchajato/internal/config"
	"github.com/rodrigopasa/launchajato/internal/metrics"
	"github.com/rodrigopasa/launchajato/internal/middleware"
	"github.com/rodrigopasa/launchajato/internal/services"
	"github.com/rodrigopasa/launchajato/internal/storage"
)

func newTestApp(t *testing.T, cfg *config.Config) *fiber.App {
	t.Helper()
	svc, err := services.New(cfg, storage.NewMemoryStore(), metrics.New(), zerolog.Nop())
	require.NoError(t, err)

	app := fiber.New()
	h := SetupRoutes(app, svc, cfg, "memory", zerolog.Nop())
	t.Cleanup(h.Wait)
	return app
}

func baseConfig() *config.Config {
	return &config.Config{
		Environment:         "development",
		AppName:             "LaunchaJato Chatbot",
		WhatsAppProvider:    config.ProviderLog,
		WhatsAppVerifyToken: "tok",
		SessionTimeout:      services.DefaultSessionTTL,
	}
}

func TestHealthAndInfo(t *testing.T) {
	app := newTestApp(t, baseConfig())

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "OK", health["status"])
	assert.Equal(t, "memory", health["storage"])
	assert.Equal(t, float64(0), health["active_sessions"])

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, baseConfig())

	req := httptest.NewRequest("POST", "/test/whatsapp", strings.NewReader(`{"from":"5511988887777","message":"oi"}`))
	req.Header.Set("Content-Type", "application/json")
	_, err := app.Test(req, -1)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "chatbot_messages_total")
}

func TestWebhookSignatureRequiredWhenSecretSet(t *testing.T) {
	cfg := baseConfig()
	cfg.WhatsAppAppSecret = "s3cret"
	app := newTestApp(t, cfg)
	body := `{"object":"whatsapp_business_account","entry":[]}`

	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(body))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("POST", "/webhook", strings.NewReader(body))
	req.Header.Set(middleware.SignatureHeader, middleware.Sign("s3cret", []byte(body)))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// verification handshake is never signed
	resp, err = app.Test(httptest.NewRequest("GET", "/webhook?hub.mode=subscribe&hub.verify_token=tok&hub.challenge=42", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestTestWebhookOnlyInDevelopment(t *testing.T) {
	cfg := baseConfig()
	cfg.Environment = "production"
	app := newTestApp(t, cfg)

	req := httptest.NewRequest("POST", "/test/whatsapp", strings.NewReader(`{"from":"1","message":"oi"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
