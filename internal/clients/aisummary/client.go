// Package aisummary generates short company briefs through an
// OpenAI-compatible chat-completions API.
package aisummary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/upstream"
	"github.com/mkelaidis/spyglass/internal/utils"
)

const (
	providerName   = "aisummary"
	defaultBaseURL = "https://api.openai.com"

	systemPrompt = "You are a concise financial analyst. Answer in plain text without markdown."
	userPrompt   = "Write a brief three to four sentence investor summary of the company with stock ticker %s: what it does, its market position, and notable recent developments."
)

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        zerolog.Logger

	now func() time.Time
}

// NewClient creates a summary client. An empty apiKey is allowed at
// construction time; calls fail with a configuration error instead.
func NewClient(apiKey, model string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log.With().Str("component", "aisummary").Logger(),
		now: time.Now,
	}
}

// Summary is one generated company brief.
type Summary struct {
	Symbol      string    `json:"symbol"`
	Text        string    `json:"text"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// GenerateSummary produces a company brief for one symbol.
func (c *Client) GenerateSummary(ctx context.Context, symbol string) (Summary, error) {
	if c.apiKey == "" {
		return Summary{}, upstream.NotConfigured(providerName, "OPENAI_API_KEY")
	}
	defer utils.OperationTimer("fetch_summary", c.log)()

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(userPrompt, symbol)},
		},
		MaxTokens:   240,
		Temperature: 0.3,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Summary{}, upstream.Transport(providerName, err)
	}

	c.log.Debug().Str("symbol", symbol).Str("model", c.model).Msg("Requesting company summary")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Summary{}, upstream.Transport(providerName, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Summary{}, upstream.Transport(providerName, err)
	}
	defer resp.Body.Close()

	var result chatResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&result)

	if resp.StatusCode != http.StatusOK {
		// The error body, when parseable, names the real problem.
		if decodeErr == nil && result.Error != nil {
			return Summary{}, &upstream.Error{
				Provider:   providerName,
				Kind:       upstream.KindStatus,
				StatusCode: resp.StatusCode,
				Message:    result.Error.Message,
			}
		}
		return Summary{}, upstream.Status(providerName, resp.StatusCode)
	}
	if decodeErr != nil {
		return Summary{}, upstream.Decode(providerName, decodeErr)
	}
	if result.Error != nil {
		return Summary{}, upstream.Soft(providerName, result.Error.Message)
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return Summary{}, upstream.Soft(providerName, "no completion returned")
	}

	model := result.Model
	if model == "" {
		model = c.model
	}
	return Summary{
		Symbol:      symbol,
		Text:        result.Choices[0].Message.Content,
		Model:       model,
		GeneratedAt: c.now().UTC(),
	}, nil
}
