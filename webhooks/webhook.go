package webhooks

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"petplus-bot/config"
	"petplus-bot/handlers"
	"petplus-bot/models"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, handler *handlers.MessageHandler) {
	webhook := app.Group("/webhook")

	// Webhook verification endpoint
	webhook.Get("/", verifyWebhook(cfg))

	// Webhook event handler
	webhook.Post("/", handleWebhookEvent(handler))
}

// verifyWebhook handles Facebook webhook verification
func verifyWebhook(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mode := c.Query("hub.mode")
		token := c.Query("hub.verify_token")
		challenge := c.Query("hub.challenge")

		if mode == "subscribe" && token == cfg.VerifyToken {
			slog.Info("Webhook verified successfully")
			return c.SendString(challenge)
		}

		slog.Warn("Webhook verification failed", "mode", mode, "token", token)
		return c.SendStatus(fiber.StatusForbidden)
	}
}

// handleWebhookEvent processes incoming webhook events
func handleWebhookEvent(handler *handlers.MessageHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body WebhookEvent
		if err := c.BodyParser(&body); err != nil {
			slog.Error("Failed to parse webhook body", "error", err)
			return c.SendStatus(fiber.StatusBadRequest)
		}

		// Only process page events
		if body.Object != "page" {
			return c.SendStatus(fiber.StatusNotFound)
		}

		// Process webhook asynchronously
		go processWebhookEvent(body, handler)

		// Return immediately to Facebook
		return c.SendString("EVENT_RECEIVED")
	}
}

// processWebhookEvent translates entries into the engine's inbound shape and
// runs each messaging event in turn.
func processWebhookEvent(body WebhookEvent, handler *handlers.MessageHandler) {
	for _, entry := range body.Entry {
		slog.Info("Processing webhook entry", "pageID", entry.ID)

		for _, messaging := range entry.Messaging {
			inbound, ok := toInbound(messaging)
			if !ok {
				continue
			}
			handler.HandleInbound(inbound)
		}
	}
}

// toInbound maps a raw messaging event to the platform-independent inbound
// shape. Echoes of the bot's own messages are dropped.
func toInbound(messaging Messaging) (models.InboundMessage, bool) {
	inbound := models.InboundMessage{UserID: messaging.Sender.ID}
	if inbound.UserID == "" {
		return inbound, false
	}

	if messaging.Postback != nil {
		inbound.PostbackPayload = messaging.Postback.Payload
		return inbound, true
	}

	if messaging.Message == nil || messaging.Message.IsEcho {
		return inbound, false
	}

	inbound.Text = messaging.Message.Text
	for _, att := range messaging.Message.Attachments {
		if att.Type == "image" {
			inbound.HasImage = true
			break
		}
	}

	if inbound.Text == "" && !inbound.HasImage {
		return inbound, false
	}
	return inbound, true
}
