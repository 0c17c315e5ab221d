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
	"github.com/mkelaidis/spyglass/internal/clients/aisummary"
	"github.com/mkelaidis/spyglass/internal/modules/summaries"
	"github.com/mkelaidis/spyglass/internal/upstream"
)

type stubSummaryClient struct {
	summary aisummary.Summary
	err     error
}

func (s *stubSummaryClient) GenerateSummary(ctx context.Context, symbol string) (aisummary.Summary, error) {
	if s.err != nil {
		return aisummary.Summary{}, s.err
	}
	return s.summary, nil
}

func setupTestHandler(client *stubSummaryClient) *Handler {
	log := zerolog.Nop()
	store := cache.New[aisummary.Summary]("summaries", time.Minute, log)
	service := summaries.NewService(client, store, log)
	return NewHandler(service, log)
}

func TestHandleGetSummary_Success(t *testing.T) {
	client := &stubSummaryClient{
		summary: aisummary.Summary{Symbol: "AAPL", Text: "Apple designs consumer electronics."},
	}
	handler := setupTestHandler(client)

	req := httptest.NewRequest("GET", "/api/summaries?symbol=AAPL", nil)
	w := httptest.NewRecorder()

	handler.HandleGetSummary(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp api.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestHandleGetSummary_MissingSymbol(t *testing.T) {
	handler := setupTestHandler(&stubSummaryClient{})

	req := httptest.NewRequest("GET", "/api/summaries", nil)
	w := httptest.NewRecorder()

	handler.HandleGetSummary(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp api.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "symbol parameter is required", resp.Error)
}

func TestHandleGetSummary_MissingAPIKey(t *testing.T) {
	client := &stubSummaryClient{err: upstream.NotConfigured("aisummary", "OPENAI_API_KEY")}
	handler := setupTestHandler(client)

	req := httptest.NewRequest("GET", "/api/summaries?symbol=AAPL", nil)
	w := httptest.NewRecorder()

	handler.HandleGetSummary(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp api.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "OPENAI_API_KEY")
}

func TestRegisterRoutes(t *testing.T) {
	handler := setupTestHandler(&stubSummaryClient{})

	router := chi.NewRouter()
	require.NotPanics(t, func() {
		handler.RegisterRoutes(router)
	})

	req := httptest.NewRequest("GET", "/summaries?symbol=AAPL", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.NotEqual(t, http.StatusNotFound, rec.Code)
}
