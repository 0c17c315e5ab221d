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
	"github.com/mkelaidis/spyglass/internal/clients/exchangerate"
	"github.com/mkelaidis/spyglass/internal/modules/fx"
	"github.com/mkelaidis/spyglass/internal/upstream"
)

type stubRatesClient struct {
	rates    exchangerate.Rates
	pairRate float64
	pairErr  error
}

func (s *stubRatesClient) GetRates(ctx context.Context, base string) (exchangerate.Rates, error) {
	return s.rates, nil
}

func (s *stubRatesClient) GetPairRate(ctx context.Context, from, to string) (float64, error) {
	if s.pairErr != nil {
		return 0, s.pairErr
	}
	return s.pairRate, nil
}

func setupTestHandler(client *stubRatesClient) *Handler {
	log := zerolog.Nop()
	rates := cache.New[exchangerate.Rates]("fx-rates", time.Minute, log)
	pairs := cache.New[fx.PairRate]("fx-pair", time.Minute, log)
	service := fx.NewService(client, rates, pairs, log)
	return NewHandler(service, log)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) api.Response {
	t.Helper()
	var resp api.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleGetRates_Success(t *testing.T) {
	client := &stubRatesClient{
		rates: exchangerate.Rates{
			Base:  "EUR",
			Rates: map[string]float64{"USD": 1.16, "GBP": 0.86},
		},
	}
	handler := setupTestHandler(client)

	req := httptest.NewRequest("GET", "/api/fx/rates?base=EUR", nil)
	w := httptest.NewRecorder()

	handler.HandleGetRates(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
}

func TestHandleGetRates_MissingBase(t *testing.T) {
	handler := setupTestHandler(&stubRatesClient{})

	req := httptest.NewRequest("GET", "/api/fx/rates", nil)
	w := httptest.NewRecorder()

	handler.HandleGetRates(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "base parameter is required", resp.Error)
}

func TestHandleGetRates_SymbolsFilter(t *testing.T) {
	client := &stubRatesClient{
		rates: exchangerate.Rates{
			Base:  "EUR",
			Rates: map[string]float64{"USD": 1.16, "GBP": 0.86, "JPY": 171.2},
		},
	}
	handler := setupTestHandler(client)

	req := httptest.NewRequest("GET", "/api/fx/rates?base=EUR&symbols=usd,gbp", nil)
	w := httptest.NewRecorder()

	handler.HandleGetRates(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data exchangerate.Rates `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Rates, 2)
	assert.Contains(t, resp.Data.Rates, "USD")
	assert.Contains(t, resp.Data.Rates, "GBP")
}

func TestHandleGetPairRate_Success(t *testing.T) {
	client := &stubRatesClient{pairRate: 1.16}
	handler := setupTestHandler(client)

	req := httptest.NewRequest("GET", "/api/fx/pair?from=EUR&to=USD", nil)
	w := httptest.NewRecorder()

	handler.HandleGetPairRate(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
}

func TestHandleGetPairRate_MissingParams(t *testing.T) {
	handler := setupTestHandler(&stubRatesClient{})

	req := httptest.NewRequest("GET", "/api/fx/pair?to=USD", nil)
	w := httptest.NewRecorder()
	handler.HandleGetPairRate(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "from parameter is required", decodeResponse(t, w).Error)

	req = httptest.NewRequest("GET", "/api/fx/pair?from=EUR", nil)
	w = httptest.NewRecorder()
	handler.HandleGetPairRate(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "to parameter is required", decodeResponse(t, w).Error)
}

func TestHandleGetPairRate_HardcodedFallback(t *testing.T) {
	client := &stubRatesClient{pairErr: upstream.Status("exchangerate-api", 502)}
	handler := setupTestHandler(client)

	req := httptest.NewRequest("GET", "/api/fx/pair?from=USD&to=EUR", nil)
	w := httptest.NewRecorder()

	handler.HandleGetPairRate(w, req)

	// Fallback substitutes keep the endpoint green.
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool        `json:"success"`
		Data    fx.PairRate `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Data.Fallback)
	assert.Equal(t, 0.9, resp.Data.Rate)
}

func TestRegisterRoutes(t *testing.T) {
	handler := setupTestHandler(&stubRatesClient{})

	router := chi.NewRouter()
	require.NotPanics(t, func() {
		handler.RegisterRoutes(router)
	})

	for _, path := range []string{"/fx/rates", "/fx/pair"} {
		req := httptest.NewRequest("GET", path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.NotEqual(t, http.StatusNotFound, rec.Code, path)
	}
}
