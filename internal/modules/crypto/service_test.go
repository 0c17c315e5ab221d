package crypto

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkelaidis/spyglass/internal/cache"
	"github.com/mkelaidis/spyglass/internal/clients/coingecko"
	"github.com/mkelaidis/spyglass/internal/upstream"
)

type stubCoinClient struct {
	coin   coingecko.CoinData
	err    error
	calls  int
	lastID string
}

func (s *stubCoinClient) GetCoin(ctx context.Context, id string) (coingecko.CoinData, error) {
	s.calls++
	s.lastID = id
	if s.err != nil {
		return coingecko.CoinData{}, s.err
	}
	return s.coin, nil
}

func newTestService(client *stubCoinClient, ttl time.Duration) (*Service, *cache.Store[coingecko.CoinData]) {
	log := zerolog.Nop()
	store := cache.New[coingecko.CoinData]("coins", ttl, log)
	return NewService(client, store, log), store
}

func TestGetCoin_FetchesAndCaches(t *testing.T) {
	client := &stubCoinClient{
		coin: coingecko.CoinData{ID: "bitcoin", Symbol: "btc", PriceUSD: 65000},
	}
	svc, store := newTestService(client, time.Minute)

	result, err := svc.GetCoin(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.False(t, result.Cached)
	assert.Equal(t, "bitcoin", result.Value.ID)

	result, err = svc.GetCoin(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.True(t, result.Cached)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, 1, store.Len())
}

func TestGetCoin_KeyIsLowercased(t *testing.T) {
	client := &stubCoinClient{
		coin: coingecko.CoinData{ID: "bitcoin"},
	}
	svc, store := newTestService(client, time.Minute)

	_, err := svc.GetCoin(context.Background(), "Bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "bitcoin", client.lastID)

	result, err := svc.GetCoin(context.Background(), "BITCOIN")
	require.NoError(t, err)
	assert.True(t, result.Cached)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, 1, store.Len())
}

func TestGetCoin_StaleFallback(t *testing.T) {
	client := &stubCoinClient{
		coin: coingecko.CoinData{ID: "bitcoin", PriceUSD: 65000},
	}
	svc, _ := newTestService(client, 30*time.Millisecond)

	_, err := svc.GetCoin(context.Background(), "bitcoin")
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)
	client.err = upstream.RateLimited("coingecko", "throttled")

	result, err := svc.GetCoin(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.True(t, result.Stale)
	assert.Equal(t, 65000.0, result.Value.PriceUSD)
}

func TestGetCoin_FailureWithoutCache(t *testing.T) {
	client := &stubCoinClient{err: upstream.Status("coingecko", 404)}
	svc, store := newTestService(client, time.Minute)

	_, err := svc.GetCoin(context.Background(), "nonsense")
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())
}
