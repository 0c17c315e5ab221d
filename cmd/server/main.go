// Package main is the entry point for the Spyglass market data service.
// It wires the provider clients, the per-domain fallback caches, the module
// services and their HTTP handlers, then runs the server until it receives
// an interrupt.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkelaidis/spyglass/internal/cache"
	"github.com/mkelaidis/spyglass/internal/clients/aisummary"
	"github.com/mkelaidis/spyglass/internal/clients/alphavantage"
	"github.com/mkelaidis/spyglass/internal/clients/broker"
	"github.com/mkelaidis/spyglass/internal/clients/coingecko"
	"github.com/mkelaidis/spyglass/internal/clients/exchangerate"
	"github.com/mkelaidis/spyglass/internal/clients/finnhub"
	"github.com/mkelaidis/spyglass/internal/clients/yahoo"
	"github.com/mkelaidis/spyglass/internal/config"
	"github.com/mkelaidis/spyglass/internal/events"
	"github.com/mkelaidis/spyglass/internal/modules/account"
	accounthandlers "github.com/mkelaidis/spyglass/internal/modules/account/handlers"
	"github.com/mkelaidis/spyglass/internal/modules/crypto"
	cryptohandlers "github.com/mkelaidis/spyglass/internal/modules/crypto/handlers"
	"github.com/mkelaidis/spyglass/internal/modules/fundamentals"
	fundamentalshandlers "github.com/mkelaidis/spyglass/internal/modules/fundamentals/handlers"
	"github.com/mkelaidis/spyglass/internal/modules/fx"
	fxhandlers "github.com/mkelaidis/spyglass/internal/modules/fx/handlers"
	"github.com/mkelaidis/spyglass/internal/modules/news"
	newshandlers "github.com/mkelaidis/spyglass/internal/modules/news/handlers"
	"github.com/mkelaidis/spyglass/internal/modules/quotes"
	quoteshandlers "github.com/mkelaidis/spyglass/internal/modules/quotes/handlers"
	"github.com/mkelaidis/spyglass/internal/modules/search"
	searchhandlers "github.com/mkelaidis/spyglass/internal/modules/search/handlers"
	"github.com/mkelaidis/spyglass/internal/modules/summaries"
	summarieshandlers "github.com/mkelaidis/spyglass/internal/modules/summaries/handlers"
	"github.com/mkelaidis/spyglass/internal/server"
	"github.com/mkelaidis/spyglass/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting Spyglass")

	// Provider clients. A client with a missing credential still constructs;
	// the endpoints that need it report the missing key at request time.
	yahooClient := yahoo.NewClient(log)
	alphavantageClient := alphavantage.NewClient(cfg.AlphaVantageAPIKey, log)
	finnhubClient := finnhub.NewClient(cfg.FinnhubAPIKey, log)
	coingeckoClient := coingecko.NewClient(cfg.CoinGeckoAPIKey, log)
	exchangerateClient := exchangerate.NewClient(log)
	brokerClient := broker.NewClient(cfg.BrokerBaseURL, cfg.BrokerSessionKey, log)
	summaryClient := aisummary.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, log)

	// Fallback caches, one per payload shape. Store names double as the
	// admin API identifiers and the metrics label values.
	earnings := cache.New[alphavantage.EarningsHistory]("earnings", cache.TTLEarnings, log)
	estimates := cache.New[[]alphavantage.EarningsEstimate]("estimates", cache.TTLEstimates, log)
	financials := cache.New[alphavantage.FinancialStatements]("financials", cache.TTLFinancials, log)
	profiles := cache.New[alphavantage.CompanyProfile]("profiles", cache.TTLProfile, log)
	charts := cache.New[quotes.ChartPayload]("charts", cache.TTLChart, log)
	closes := cache.New[yahoo.PreviousClose]("previous-close", cache.TTLPreviousClose, log)
	searchResults := cache.New[[]alphavantage.SearchResult]("search", cache.TTLSearch, log)
	articles := cache.New[[]finnhub.Article]("news", cache.TTLNews, log)
	coins := cache.New[coingecko.CoinData]("coins", cache.TTLCoinData, log)
	fxRates := cache.New[exchangerate.Rates]("fx-rates", cache.TTLFxRates, log)
	fxPairs := cache.New[fx.PairRate]("fx-pair", cache.TTLFxPair, log)
	balances := cache.New[[]broker.CashBalance]("balances", cache.TTLBalances, log)
	briefs := cache.New[aisummary.Summary]("summaries", cache.TTLSummary, log)

	// Module services
	quotesService := quotes.NewService(yahooClient, charts, closes, log)
	searchService := search.NewService(alphavantageClient, searchResults, log)
	fundamentalsService := fundamentals.NewService(alphavantageClient, earnings, estimates, financials, profiles, log)
	newsService := news.NewService(finnhubClient, articles, log)
	cryptoService := crypto.NewService(coingeckoClient, coins, log)
	fxService := fx.NewService(exchangerateClient, fxRates, fxPairs, log)
	accountService := account.NewService(brokerClient, balances, log)
	summariesService := summaries.NewService(summaryClient, briefs, log)

	// Event plumbing for the SSE stream and the admin endpoints
	eventBus := events.NewBus(log)
	eventManager := events.NewManager(eventBus, log)

	// Admin cache registry. Clearing earnings cascades to estimates because
	// both are derived from the same filings; every other store clears alone.
	cacheAdmin := server.NewCacheAdminHandlers(eventManager, log)
	cacheAdmin.Register("earnings", earnings, estimates)
	cacheAdmin.Register("estimates", estimates)
	cacheAdmin.Register("financials", financials)
	cacheAdmin.Register("profiles", profiles)
	cacheAdmin.Register("charts", charts)
	cacheAdmin.Register("previous-close", closes)
	cacheAdmin.Register("search", searchResults)
	cacheAdmin.Register("news", articles)
	cacheAdmin.Register("coins", coins)
	cacheAdmin.Register("fx-rates", fxRates)
	cacheAdmin.Register("fx-pair", fxPairs)
	cacheAdmin.Register("balances", balances)
	cacheAdmin.Register("summaries", briefs)

	srv := server.New(server.Config{
		Log:    log,
		Config: cfg,
		Modules: []server.RouteRegistrar{
			quoteshandlers.NewHandler(quotesService, log),
			searchhandlers.NewHandler(searchService, log),
			fundamentalshandlers.NewHandler(fundamentalsService, log),
			newshandlers.NewHandler(newsService, log),
			cryptohandlers.NewHandler(cryptoService, log),
			fxhandlers.NewHandler(fxService, log),
			accounthandlers.NewHandler(accountService, log),
			summarieshandlers.NewHandler(summariesService, log),
		},
		CacheAdmin:   cacheAdmin,
		EventBus:     eventBus,
		EventManager: eventManager,
	})

	// Start server in goroutine so the main thread can wait on signals.
	// ErrServerClosed is the normal return after a graceful shutdown.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Give in-flight requests up to 10 seconds to finish.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
