package handlers

import (
	"context"
	"log/slog"
	"time"

	"petplus-bot/models"
	"petplus-bot/services"
)

// turnTimeout bounds one full turn including the generative fallback and
// outbound delivery.
const turnTimeout = 60 * time.Second

// MessageHandler glues an inbound event to the dialogue engine and delivers
// the resulting actions in order.
type MessageHandler struct {
	engine          *services.DialogueEngine
	archive         *services.ChatArchive // nil disables archiving
	pageAccessToken string
}

func NewMessageHandler(engine *services.DialogueEngine, archive *services.ChatArchive, pageAccessToken string) *MessageHandler {
	return &MessageHandler{
		engine:          engine,
		archive:         archive,
		pageAccessToken: pageAccessToken,
	}
}

// HandleInbound runs one dialogue turn for an inbound message and sends the
// emitted actions. Delivery failures are logged and skipped; the session
// state committed by the turn is not rolled back.
func (h *MessageHandler) HandleInbound(inbound models.InboundMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	slog.Info("Handling message",
		"senderID", inbound.UserID,
		"hasImage", inbound.HasImage,
		"postback", inbound.PostbackPayload,
	)

	if inbound.Text != "" {
		h.archiveAsync(func(ctx context.Context) error {
			return h.archive.SaveInbound(ctx, inbound.UserID, inbound.Text)
		})
	}

	actions := h.engine.HandleTurn(ctx, inbound)

	for _, action := range actions {
		var err error
		switch action.Kind {
		case models.ActionText:
			err = services.SendText(ctx, inbound.UserID, action.Text, h.pageAccessToken)
		case models.ActionImage:
			err = services.SendImage(ctx, inbound.UserID, action.URL, h.pageAccessToken)
		}
		if err != nil {
			slog.Error("Delivery failed",
				"senderID", inbound.UserID,
				"kind", action.Kind,
				"error", err,
			)
			continue
		}

		action := action
		h.archiveAsync(func(ctx context.Context) error {
			return h.archive.SaveOutbound(ctx, inbound.UserID, action)
		})
	}
}

func (h *MessageHandler) archiveAsync(save func(context.Context) error) {
	if h.archive == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := save(ctx); err != nil {
			slog.Warn("Failed to archive message", "error", err)
		}
	}()
}
