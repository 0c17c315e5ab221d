package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkelaidis/spyglass/internal/upstream"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteData_Live(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteData(rec, zerolog.Nop(), map[string]string{"symbol": "AAPL"}, false, false)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "cached")
	assert.NotContains(t, body, "stale")
	assert.NotContains(t, body, "error")
}

func TestWriteData_StaleFallback(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteData(rec, zerolog.Nop(), map[string]string{"symbol": "AAPL"}, true, true)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["cached"])
	assert.Equal(t, true, body["stale"])
}

func TestWriteData_EmptyPayloadSerialized(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteData(rec, zerolog.Nop(), []string{}, false, false)

	// "no results" is a success and the empty array must survive encoding
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	data, ok := body["data"].([]interface{})
	require.True(t, ok, "empty data array should be present")
	assert.Empty(t, data)
}

func TestWriteValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteValidationError(rec, zerolog.Nop(), "symbol parameter is required")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "symbol parameter is required", body["error"])
	assert.NotContains(t, body, "data")
}

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "transport failure",
			err:        upstream.Transport("yahoo", errors.New("dial tcp: connection refused")),
			wantStatus: http.StatusBadGateway,
			wantError:  "yahoo: request failed",
		},
		{
			name:       "upstream status reflected",
			err:        upstream.Status("yahoo", http.StatusNotFound),
			wantStatus: http.StatusNotFound,
			wantError:  "yahoo: unexpected status 404",
		},
		{
			name:       "rate limited",
			err:        upstream.RateLimited("alphavantage", "rate limit exceeded"),
			wantStatus: http.StatusTooManyRequests,
			wantError:  "alphavantage: rate limit exceeded",
		},
		{
			name:       "not configured",
			err:        upstream.NotConfigured("alphavantage", "ALPHAVANTAGE_API_KEY"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "alphavantage: ALPHAVANTAGE_API_KEY is not configured",
		},
		{
			name:       "untyped error masked",
			err:        errors.New("pq: connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal server error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, zerolog.Nop(), tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.wantError, body["error"])
		})
	}
}

func TestWriteError_TransportCauseNeverSurfaced(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, zerolog.Nop(), upstream.Transport("yahoo", errors.New("dial tcp 1.2.3.4:443: i/o timeout")))

	assert.NotContains(t, rec.Body.String(), "dial tcp")
}
