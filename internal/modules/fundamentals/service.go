// Package fundamentals serves company fundamentals from Alpha Vantage:
// earnings history, analyst estimates, financial statements and company
// profiles. Each dataset lives in its own store so the admin surface can
// clear them independently, with the one deliberate exception that clearing
// earnings also clears estimates for the same symbol.
package fundamentals

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/cache"
	"github.com/mkelaidis/spyglass/internal/clients/alphavantage"
)

// FundamentalsClient fetches company fundamentals from the upstream provider.
type FundamentalsClient interface {
	GetEarnings(ctx context.Context, symbol string) (alphavantage.EarningsHistory, error)
	GetEarningsEstimates(ctx context.Context, symbol string) ([]alphavantage.EarningsEstimate, error)
	GetFinancialStatement(ctx context.Context, symbol, statement string) (alphavantage.FinancialStatements, error)
	GetCompanyOverview(ctx context.Context, symbol string) (alphavantage.CompanyProfile, error)
}

var _ FundamentalsClient = (*alphavantage.Client)(nil)

// Service serves fundamentals data through the fallback caches.
type Service struct {
	client     FundamentalsClient
	earnings   *cache.Store[alphavantage.EarningsHistory]
	estimates  *cache.Store[[]alphavantage.EarningsEstimate]
	financials *cache.Store[alphavantage.FinancialStatements]
	profiles   *cache.Store[alphavantage.CompanyProfile]
	log        zerolog.Logger
}

// NewService creates a new fundamentals service
func NewService(
	client FundamentalsClient,
	earnings *cache.Store[alphavantage.EarningsHistory],
	estimates *cache.Store[[]alphavantage.EarningsEstimate],
	financials *cache.Store[alphavantage.FinancialStatements],
	profiles *cache.Store[alphavantage.CompanyProfile],
	log zerolog.Logger,
) *Service {
	return &Service{
		client:     client,
		earnings:   earnings,
		estimates:  estimates,
		financials: financials,
		profiles:   profiles,
		log:        log.With().Str("service", "fundamentals").Logger(),
	}
}

// GetEarnings returns annual and quarterly EPS history for a symbol. A
// symbol with no reported earnings is a legitimate empty result and is
// cached like any other payload.
func (s *Service) GetEarnings(ctx context.Context, symbol string) (cache.Result[alphavantage.EarningsHistory], error) {
	key := strings.ToUpper(symbol)

	return cache.Resolve(ctx, s.earnings, key, func(ctx context.Context) (alphavantage.EarningsHistory, error) {
		return s.client.GetEarnings(ctx, symbol)
	})
}

// GetEstimates returns forward analyst estimates for a symbol.
func (s *Service) GetEstimates(ctx context.Context, symbol string) (cache.Result[[]alphavantage.EarningsEstimate], error) {
	key := strings.ToUpper(symbol)

	return cache.Resolve(ctx, s.estimates, key, func(ctx context.Context) ([]alphavantage.EarningsEstimate, error) {
		return s.client.GetEarningsEstimates(ctx, symbol)
	})
}

// GetFinancials returns one financial statement for a symbol. The statement
// name joins the cache key so income, balance and cash statements for the
// same symbol occupy separate entries.
func (s *Service) GetFinancials(ctx context.Context, symbol, statement string) (cache.Result[alphavantage.FinancialStatements], error) {
	kind, err := statementKind(statement)
	if err != nil {
		return cache.Result[alphavantage.FinancialStatements]{}, err
	}

	key := strings.ToUpper(symbol) + "_" + statement

	return cache.Resolve(ctx, s.financials, key, func(ctx context.Context) (alphavantage.FinancialStatements, error) {
		return s.client.GetFinancialStatement(ctx, symbol, kind)
	})
}

// GetProfile returns the company overview for a symbol.
func (s *Service) GetProfile(ctx context.Context, symbol string) (cache.Result[alphavantage.CompanyProfile], error) {
	key := strings.ToUpper(symbol)

	return cache.Resolve(ctx, s.profiles, key, func(ctx context.Context) (alphavantage.CompanyProfile, error) {
		return s.client.GetCompanyOverview(ctx, symbol)
	})
}

// statementKind maps the public statement names onto the provider's
// function identifiers.
func statementKind(statement string) (string, error) {
	switch statement {
	case "income":
		return alphavantage.StatementIncome, nil
	case "balance":
		return alphavantage.StatementBalance, nil
	case "cash":
		return alphavantage.StatementCashFlow, nil
	default:
		return "", fmt.Errorf("unknown statement kind %q", statement)
	}
}
