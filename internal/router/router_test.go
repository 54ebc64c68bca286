package router

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-poi-discovery/app/cache"
	"github.com/FACorreiaa/go-poi-discovery/internal/api/curated"
	"github.com/FACorreiaa/go-poi-discovery/internal/api/search"
)

func newTestRouter(t *testing.T, rateLimit int) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog, err := curated.Default()
	require.NoError(t, err)
	service := search.NewService(logger, nil, nil, catalog, cache.NewMemoryStoreWith(0, 0), nil, nil, search.DefaultConfig())
	return SetupRouter(&Config{
		SearchHandler: search.NewHandler(service, logger, ""),
		RateLimit:     rateLimit,
	})
}

func TestSetupRouter_Routes(t *testing.T) {
	r := newTestRouter(t, 0)

	tests := []struct {
		method string
		path   string
		want   int
		body   string
	}{
		{http.MethodGet, "/ping", http.StatusOK, "pong"},
		{http.MethodGet, "/api/v1/search?q=Paris", http.StatusOK, `"name":"Paris"`},
		{http.MethodGet, "/api/v1/search?q=Atlantis", http.StatusOK, `"source":"generic"`},
		{http.MethodGet, "/api/v1/search", http.StatusBadRequest, "Bad Request"},
		{http.MethodGet, "/api/v1/city-info?city=japan", http.StatusOK, "Tokyo (japan)"},
		{http.MethodGet, "/api/v1/city-info?city=Atlantis", http.StatusNotFound, "City not found"},
		{http.MethodGet, "/api/v1/places?city=London&limit=2", http.StatusOK, `"places":[`},
		{http.MethodGet, "/api/v1/places/curated-london-3", http.StatusOK, "British Museum"},
		{http.MethodGet, "/api/v1/places/missing", http.StatusNotFound, "Place not found"},
		{http.MethodGet, "/api/v1/cities/suggest?q=to", http.StatusOK, "Tokyo"},
		{http.MethodPost, "/api/v1/cache/clear?city=Paris", http.StatusOK, "Cache cleared for Paris"},
		{http.MethodGet, "/api/v1/status", http.StatusOK, `"narrativeAvailable":false`},
		{http.MethodGet, "/api/v1/maps/config", http.StatusOK, `"available":false`},
		{http.MethodPost, "/api/v1/itinerary", http.StatusOK, `"source":"generic"`},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var body io.Reader
			if tt.path == "/api/v1/itinerary" {
				body = strings.NewReader(`{"city":"Paris","days":2}`)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestSetupRouter_ItineraryShape(t *testing.T) {
	r := newTestRouter(t, 0)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/itinerary", strings.NewReader(`{"city":"Tokyo","days":2}`))
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var it struct {
		ID   string `json:"id"`
		Days []struct {
			Day    int              `json:"day"`
			Points []map[string]any `json:"points"`
		} `json:"days"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &it))
	assert.NotEmpty(t, it.ID)
	require.Len(t, it.Days, 2)
	assert.Equal(t, 1, it.Days[0].Day)
	assert.Len(t, it.Days[0].Points, 2)
}

func TestSetupRouter_RateLimit(t *testing.T) {
	r := newTestRouter(t, 2)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
