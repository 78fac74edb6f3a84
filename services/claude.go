package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"petplus-bot/models"
)

const claudeAPIURL = "https://api.anthropic.com/v1/messages"

// generationTimeout bounds one fallback call; the engine degrades to a
// static reply when it elapses.
const generationTimeout = 30 * time.Second

// ErrGeneration marks any failure of the generative fallback. It is logged
// and recovered with a static reply, never surfaced to the end user.
var ErrGeneration = errors.New("generation failed")

// GenerateFunc is the generative fallback capability: prior turns plus the
// current user text produce a reply, or fail with an error wrapping
// ErrGeneration.
type GenerateFunc func(ctx context.Context, history []models.ChatTurn, userText string) (string, error)

const systemPrompt = "Eres el asistente de Pet Plus, una tienda de artículos para mascotas en Guatemala. " +
	"Responde en español, breve y amable. Solo hablas de los productos de la tienda, " +
	"sus precios y los envíos por zona o departamento. Si no sabes algo, invita al " +
	"cliente a describir el producto que busca."

// ClaudeRequest is the request body for the Claude Messages API.
type ClaudeRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system,omitempty"`
	Messages  []ClaudeTurn `json:"messages"`
}

// ClaudeTurn is one message in the API conversation.
type ClaudeTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ClaudeResponse is the subset of the API response the bot reads.
type ClaudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text,omitempty"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// ClaudeClient calls the Claude Messages API with a bounded timeout and a
// sliding-window rate limit.
type ClaudeClient struct {
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
	limiter    *RateLimiter
}

func NewClaudeClient(apiKey, model string, maxTokens int) *ClaudeClient {
	if maxTokens == 0 {
		maxTokens = 512
	}
	return &ClaudeClient{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		httpClient: &http.Client{
			Timeout: generationTimeout,
		},
		limiter: NewRateLimiter(20),
	}
}

// buildMessages shapes recorded history plus the current user text into the
// strict alternation the Messages API requires: the first message must be
// from the user, and roles may never repeat back to back. Leading assistant
// turns are dropped, consecutive same-role turns are joined with a newline.
func buildMessages(history []models.ChatTurn, userText string) []ClaudeTurn {
	messages := make([]ClaudeTurn, 0, len(history)+1)
	for _, turn := range history {
		if len(messages) == 0 && turn.Role != "user" {
			continue
		}
		if n := len(messages); n > 0 && messages[n-1].Role == turn.Role {
			messages[n-1].Content += "\n" + turn.Content
			continue
		}
		messages = append(messages, ClaudeTurn{Role: turn.Role, Content: turn.Content})
	}
	if n := len(messages); n > 0 && messages[n-1].Role == "user" {
		messages[n-1].Content += "\n" + userText
		return messages
	}
	return append(messages, ClaudeTurn{Role: "user", Content: userText})
}

// GenerateReply implements GenerateFunc against the Claude API.
func (c *ClaudeClient) GenerateReply(ctx context.Context, history []models.ChatTurn, userText string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: no API key configured", ErrGeneration)
	}

	ctx, cancel := context.WithTimeout(ctx, generationTimeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	requestBody := ClaudeRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    systemPrompt,
		Messages:  buildMessages(history, userText),
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", claudeAPIURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Claude API request failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("Claude API error", "status", resp.StatusCode, "body", string(body))
		return "", fmt.Errorf("%w: status %d", ErrGeneration, resp.StatusCode)
	}

	var claudeResp ClaudeResponse
	if err := json.Unmarshal(body, &claudeResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	for _, block := range claudeResp.Content {
		if block.Type == "text" && block.Text != "" {
			slog.Info("Generated fallback reply",
				"inputTokens", claudeResp.Usage.InputTokens,
				"outputTokens", claudeResp.Usage.OutputTokens,
			)
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("%w: empty response", ErrGeneration)
}
