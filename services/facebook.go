package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const fbGraphAPI = "https://graph.facebook.com/v18.0"

var fbClient = &http.Client{Timeout: 20 * time.Second}

// SendText sends a plain text message via Messenger.
func SendText(ctx context.Context, recipientID, text, pageAccessToken string) error {
	payload := map[string]interface{}{
		"recipient": map[string]string{
			"id": recipientID,
		},
		"message": map[string]string{
			"text": text,
		},
	}
	return postMessage(ctx, payload, pageAccessToken)
}

// SendImage sends an image attachment via Messenger.
func SendImage(ctx context.Context, recipientID, imageURL, pageAccessToken string) error {
	if imageURL == "" {
		return nil
	}

	payload := map[string]interface{}{
		"recipient": map[string]string{
			"id": recipientID,
		},
		"message": map[string]interface{}{
			"attachment": map[string]interface{}{
				"type": "image",
				"payload": map[string]interface{}{
					"url":         imageURL,
					"is_reusable": true,
				},
			},
		},
	}
	return postMessage(ctx, payload, pageAccessToken)
}

func postMessage(ctx context.Context, payload map[string]interface{}, pageAccessToken string) error {
	url := fmt.Sprintf("%s/me/messages?access_token=%s", fbGraphAPI, pageAccessToken)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := fbClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		slog.Error("Failed to send messenger reply", "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("failed to send message: %s", resp.Status)
	}

	return nil
}
