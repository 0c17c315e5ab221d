// Package news serves recent company news from Finnhub. Articles are
// truncated to the requested limit before caching, and the limit joins the
// cache key so different page sizes do not collide.
package news

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/cache"
	"github.com/mkelaidis/spyglass/internal/clients/finnhub"
)

// DefaultLimit caps the article count when the caller does not ask for one.
const DefaultLimit = 10

// NewsClient fetches recent company news.
type NewsClient interface {
	GetCompanyNews(ctx context.Context, symbol string) ([]finnhub.Article, error)
}

var _ NewsClient = (*finnhub.Client)(nil)

// Service serves company news through the fallback cache.
type Service struct {
	client NewsClient
	store  *cache.Store[[]finnhub.Article]
	log    zerolog.Logger
}

// NewService creates a new news service
func NewService(client NewsClient, store *cache.Store[[]finnhub.Article], log zerolog.Logger) *Service {
	return &Service{
		client: client,
		store:  store,
		log:    log.With().Str("service", "news").Logger(),
	}
}

// GetNews returns up to limit articles for a symbol. A quiet week with no
// coverage is a legitimate empty result and is cached. The truncated list is
// what gets cached, so the entry for one limit never bleeds into another.
func (s *Service) GetNews(ctx context.Context, symbol string, limit int) (cache.Result[[]finnhub.Article], error) {
	key := strings.ToUpper(symbol) + "_" + strconv.Itoa(limit)

	return cache.Resolve(ctx, s.store, key, func(ctx context.Context) ([]finnhub.Article, error) {
		articles, err := s.client.GetCompanyNews(ctx, symbol)
		if err != nil {
			return nil, err
		}
		if len(articles) > limit {
			articles = articles[:limit]
		}
		return articles, nil
	})
}
