package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkelaidis/spyglass/internal/api"
	"github.com/mkelaidis/spyglass/internal/cache"
	"github.com/mkelaidis/spyglass/internal/clients/alphavantage"
	"github.com/mkelaidis/spyglass/internal/modules/fundamentals"
	"github.com/mkelaidis/spyglass/internal/upstream"
)

type stubFundamentalsClient struct {
	earnings      alphavantage.EarningsHistory
	earningsErr   error
	estimates     []alphavantage.EarningsEstimate
	statements    alphavantage.FinancialStatements
	lastStatement string
	profile       alphavantage.CompanyProfile
}

func (s *stubFundamentalsClient) GetEarnings(ctx context.Context, symbol string) (alphavantage.EarningsHistory, error) {
	if s.earningsErr != nil {
		return alphavantage.EarningsHistory{}, s.earningsErr
	}
	return s.earnings, nil
}

func (s *stubFundamentalsClient) GetEarningsEstimates(ctx context.Context, symbol string) ([]alphavantage.EarningsEstimate, error) {
	return s.estimates, nil
}

func (s *stubFundamentalsClient) GetFinancialStatement(ctx context.Context, symbol, statement string) (alphavantage.FinancialStatements, error) {
	s.lastStatement = statement
	return s.statements, nil
}

func (s *stubFundamentalsClient) GetCompanyOverview(ctx context.Context, symbol string) (alphavantage.CompanyProfile, error) {
	return s.profile, nil
}

func setupTestHandler(client *stubFundamentalsClient) *Handler {
	log := zerolog.Nop()
	service := fundamentals.NewService(
		client,
		cache.New[alphavantage.EarningsHistory]("earnings", time.Minute, log),
		cache.New[[]alphavantage.EarningsEstimate]("estimates", time.Minute, log),
		cache.New[alphavantage.FinancialStatements]("financials", time.Minute, log),
		cache.New[alphavantage.CompanyProfile]("profiles", time.Minute, log),
		log,
	)
	return NewHandler(service, log)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) api.Response {
	t.Helper()
	var resp api.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleGetEarnings_Success(t *testing.T) {
	client := &stubFundamentalsClient{
		earnings: alphavantage.EarningsHistory{
			Symbol: "AAPL",
			Annual: []alphavantage.AnnualEarning{{FiscalDateEnding: "2024-09-30", ReportedEPS: 6.08}},
		},
	}
	handler := setupTestHandler(client)

	req := httptest.NewRequest("GET", "/api/fundamentals/earnings?symbol=AAPL", nil)
	w := httptest.NewRecorder()

	handler.HandleGetEarnings(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
}

func TestHandleGetEarnings_MissingSymbol(t *testing.T) {
	handler := setupTestHandler(&stubFundamentalsClient{})

	req := httptest.NewRequest("GET", "/api/fundamentals/earnings", nil)
	w := httptest.NewRecorder()

	handler.HandleGetEarnings(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "symbol parameter is required", resp.Error)
}

func TestHandleGetEarnings_RateLimitReflected(t *testing.T) {
	client := &stubFundamentalsClient{
		earningsErr: upstream.RateLimited("alphavantage", "rate limit exceeded"),
	}
	handler := setupTestHandler(client)

	req := httptest.NewRequest("GET", "/api/fundamentals/earnings?symbol=AAPL", nil)
	w := httptest.NewRecorder()

	handler.HandleGetEarnings(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "alphavantage")
}

func TestHandleGetEstimates_MissingSymbol(t *testing.T) {
	handler := setupTestHandler(&stubFundamentalsClient{})

	req := httptest.NewRequest("GET", "/api/fundamentals/estimates", nil)
	w := httptest.NewRecorder()

	handler.HandleGetEstimates(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetFinancials_DefaultsToIncome(t *testing.T) {
	client := &stubFundamentalsClient{
		statements: alphavantage.FinancialStatements{Symbol: "AAPL"},
	}
	handler := setupTestHandler(client)

	req := httptest.NewRequest("GET", "/api/fundamentals/financials?symbol=AAPL", nil)
	w := httptest.NewRecorder()

	handler.HandleGetFinancials(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, alphavantage.StatementIncome, client.lastStatement)
}

func TestHandleGetFinancials_InvalidStatement(t *testing.T) {
	handler := setupTestHandler(&stubFundamentalsClient{})

	req := httptest.NewRequest("GET", "/api/fundamentals/financials?symbol=AAPL&statement=proforma", nil)
	w := httptest.NewRecorder()

	handler.HandleGetFinancials(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "statement parameter must be one of income, balance, cash", resp.Error)
}

func TestHandleGetProfile_Success(t *testing.T) {
	client := &stubFundamentalsClient{
		profile: alphavantage.CompanyProfile{Symbol: "AAPL", Name: "Apple Inc"},
	}
	handler := setupTestHandler(client)

	req := httptest.NewRequest("GET", "/api/fundamentals/profile?symbol=AAPL", nil)
	w := httptest.NewRecorder()

	handler.HandleGetProfile(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
}

func TestRegisterRoutes(t *testing.T) {
	handler := setupTestHandler(&stubFundamentalsClient{})

	router := chi.NewRouter()
	require.NotPanics(t, func() {
		handler.RegisterRoutes(router)
	})

	paths := []string{
		"/fundamentals/earnings",
		"/fundamentals/estimates",
		"/fundamentals/financials",
		"/fundamentals/profile",
	}
	for _, path := range paths {
		req := httptest.NewRequest("GET", path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.NotEqual(t, http.StatusNotFound, rec.Code, path)
	}
}
