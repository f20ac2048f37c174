package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/twentyq/game-server-go/internal/config"
	"github.com/twentyq/game-server-go/internal/model"
)

const questionPrompt = `The word is %q. Based on this, answer the following yes/no question with only "yes", "no", or "unknown": %s`

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client classifies yes/no questions about a secret word through a
// chat-completions endpoint.
type Client struct {
	apiURL     string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(apiURL, apiKey, model string) *Client {
	return &Client{
		apiURL:     apiURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: config.OracleTimeout},
	}
}

// Classify answers a question about the secret word. It is total:
// every transport or model fault maps to AnswerUnknown, never to an
// error. Only the exact literals "yes" and "no" (after trim and
// lowercase) map to those answers.
func (c *Client) Classify(ctx context.Context, question, secretWord string) model.Answer {
	raw, err := c.complete(ctx, question, secretWord)
	if err != nil {
		log.Warn().Err(err).Msg("oracle call failed, answering unknown")
		return model.AnswerUnknown
	}

	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes":
		return model.AnswerYes
	case "no":
		return model.AnswerNo
	default:
		return model.AnswerUnknown
	}
}

func (c *Client) complete(ctx context.Context, question, secretWord string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(questionPrompt, secretWord, question)},
		},
		Temperature: 0.1,
		MaxTokens:   10,
	})
	if err != nil {
		return "", fmt.Errorf("build oracle request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, config.OracleTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build oracle request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reach oracle: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read oracle response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("oracle request failed (%d)", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse oracle response: %w", err)
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", fmt.Errorf("oracle error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("oracle returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
