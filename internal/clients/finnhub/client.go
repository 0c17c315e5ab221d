// Package finnhub fetches company news from the Finnhub REST API.
package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/upstream"
	"github.com/mkelaidis/spyglass/internal/utils"
)

const (
	providerName   = "finnhub"
	defaultBaseURL = "https://finnhub.io"

	// newsWindow bounds how far back company news is requested.
	newsWindow = 7 * 24 * time.Hour
)

// Client talks to the Finnhub API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger

	now func() time.Time
}

// NewClient creates a Finnhub client. An empty apiKey is allowed at
// construction time; calls fail with a configuration error instead.
func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		log: log.With().Str("component", "finnhub").Logger(),
		now: time.Now,
	}
}

// Article is one normalized news item.
type Article struct {
	ID          int64     `json:"id"`
	Headline    string    `json:"headline"`
	Summary     string    `json:"summary"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	Image       string    `json:"image,omitempty"`
	Category    string    `json:"category,omitempty"`
	Related     string    `json:"related,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

type rawArticle struct {
	ID       int64  `json:"id"`
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Source   string `json:"source"`
	URL      string `json:"url"`
	Image    string `json:"image"`
	Category string `json:"category"`
	Related  string `json:"related"`
	Datetime int64  `json:"datetime"`
}

// GetCompanyNews fetches news for a symbol from the last seven days, newest
// first as Finnhub returns them. A quiet symbol yields an empty slice, not
// an error.
func (c *Client) GetCompanyNews(ctx context.Context, symbol string) ([]Article, error) {
	if c.apiKey == "" {
		return nil, upstream.NotConfigured(providerName, "FINNHUB_API_KEY")
	}
	defer utils.OperationTimer("fetch_news", c.log)()

	to := c.now().UTC()
	from := to.Add(-newsWindow)
	reqURL := fmt.Sprintf("%s/api/v1/company-news?symbol=%s&from=%s&to=%s",
		c.baseURL, url.QueryEscape(symbol), from.Format("2006-01-02"), to.Format("2006-01-02"))

	c.log.Debug().Str("symbol", symbol).Msg("Fetching company news from Finnhub")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, upstream.Transport(providerName, err)
	}
	req.Header.Set("X-Finnhub-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, upstream.Transport(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstream.Status(providerName, resp.StatusCode)
	}

	var raw []rawArticle
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, upstream.Decode(providerName, err)
	}

	articles := make([]Article, 0, len(raw))
	for _, a := range raw {
		articles = append(articles, Article{
			ID:          a.ID,
			Headline:    a.Headline,
			Summary:     a.Summary,
			Source:      a.Source,
			URL:         a.URL,
			Image:       a.Image,
			Category:    a.Category,
			Related:     a.Related,
			PublishedAt: time.Unix(a.Datetime, 0).UTC(),
		})
	}
	return articles, nil
}
