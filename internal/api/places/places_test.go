package places

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-poi-discovery/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeProvider struct {
	geocodeStatus string
	nearby        []RawPlace
	nearbyStatus  string
	details       map[string]RawPlaceDetails
	failDetails   map[string]bool
	requests      atomic.Int32
}

func (f *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)
	w.Header().Set("Content-Type", "application/json")
	q := r.URL.Query()
	if q.Get("key") != "test-key" {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	switch r.URL.Path {
	case "/geocode/json":
		status := f.geocodeStatus
		if status == "" {
			status = "OK"
		}
		body := map[string]any{"status": status, "results": []any{}}
		if status == "OK" {
			body["results"] = []any{map[string]any{"geometry": map[string]any{"location": map[string]float64{"lat": 35.68, "lng": 139.69}}}}
		}
		_ = json.NewEncoder(w).Encode(body)
	case "/place/nearbysearch/json":
		status := f.nearbyStatus
		if status == "" {
			status = "OK"
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": status, "results": f.nearby})
	case "/place/details/json":
		id := q.Get("place_id")
		if f.failDetails[id] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		d, ok := f.details[id]
		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "NOT_FOUND"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "OK", "result": d})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func setupAdapter(t *testing.T, f *fakeProvider) *Adapter {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return NewAdapter(Config{APIKey: "test-key", BaseURL: srv.URL, DetailWorkers: 2}, testLogger(), nil)
}

func TestAdapter_UnavailableMakesNoRequests(t *testing.T) {
	f := &fakeProvider{}
	srv := httptest.NewServer(f)
	defer srv.Close()
	a := NewAdapter(Config{BaseURL: srv.URL}, testLogger(), nil)

	assert.False(t, a.IsAvailable())

	_, err := a.SearchNearby(context.Background(), Coordinates{Lat: 1, Lng: 2}, DefaultRadiusMeters, DefaultCategory)
	assert.True(t, errors.Is(err, types.ErrProviderUnavailable))

	_, err = a.ListPopularPlaces(context.Background(), "Tokyo", 5)
	assert.True(t, errors.Is(err, types.ErrProviderUnavailable))

	assert.Equal(t, int32(0), f.requests.Load())
}

func TestResolveCoordinates(t *testing.T) {
	a := setupAdapter(t, &fakeProvider{})
	coords, err := a.ResolveCoordinates(context.Background(), "Tokyo")
	require.NoError(t, err)
	assert.Equal(t, Coordinates{Lat: 35.68, Lng: 139.69}, coords)

	a = setupAdapter(t, &fakeProvider{geocodeStatus: "ZERO_RESULTS"})
	_, err = a.ResolveCoordinates(context.Background(), "Atlantis")
	assert.True(t, errors.Is(err, types.ErrNotFound))

	a = setupAdapter(t, &fakeProvider{geocodeStatus: "REQUEST_DENIED"})
	_, err = a.ResolveCoordinates(context.Background(), "Tokyo")
	assert.True(t, errors.Is(err, types.ErrProviderError))
}

func TestSearchNearby_ProviderErrors(t *testing.T) {
	a := setupAdapter(t, &fakeProvider{nearbyStatus: "OVER_QUERY_LIMIT"})
	_, err := a.SearchNearby(context.Background(), Coordinates{}, 100, "")
	assert.True(t, errors.Is(err, types.ErrProviderError))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	b := NewAdapter(Config{APIKey: "k", BaseURL: srv.URL}, testLogger(), nil)
	_, err = b.SearchNearby(context.Background(), Coordinates{}, 100, "")
	assert.True(t, errors.Is(err, types.ErrProviderError))

	empty := setupAdapter(t, &fakeProvider{nearbyStatus: "ZERO_RESULTS"})
	raw, err := empty.SearchNearby(context.Background(), Coordinates{}, 100, "")
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestListPopularPlaces_SortedStableAndDegraded(t *testing.T) {
	f := &fakeProvider{
		nearby: []RawPlace{
			{PlaceID: "a", Name: "Alpha", Types: []string{"park"}, Rating: types.Ptr(4.2)},
			{PlaceID: "b", Name: "Bravo", Types: []string{"museum"}, Rating: types.Ptr(4.8)},
			{PlaceID: "c", Name: "Charlie", Types: []string{"zoo"}},
			{PlaceID: "d", Name: "Delta", Types: []string{"bar"}, Rating: types.Ptr(4.2)},
			{PlaceID: "e", Name: "Echo", Types: []string{"store"}, Rating: types.Ptr(5.0)},
		},
		details: map[string]RawPlaceDetails{
			"a": {Name: "Alpha Park", Rating: types.Ptr(4.2), Website: "https://alpha.example"},
			"b": {Name: "Bravo Museum", Rating: types.Ptr(4.8)},
			"c": {Name: "Charlie Zoo"},
			"d": {Name: "Delta Bar", Rating: types.Ptr(4.2)},
		},
		failDetails: map[string]bool{"b": true},
	}
	a := setupAdapter(t, f)

	out, err := a.ListPopularPlaces(context.Background(), "Tokyo", 4)
	require.NoError(t, err)
	require.Len(t, out, 4, "only the first limit results are enriched")

	ids := []string{out[0].ID, out[1].ID, out[2].ID, out[3].ID}
	assert.Equal(t, []string{"b", "a", "d", "c"}, ids, "rating desc, ties in provider order, missing last")

	assert.Equal(t, "Bravo", out[0].Name, "failed detail fetch keeps the basic record")
	assert.Equal(t, "Bravo", out[0].Description)
	assert.Equal(t, types.DefaultPlaceImage, out[0].Image)
	assert.Equal(t, types.CategoryMuseum, out[0].Category)

	assert.Equal(t, "Alpha Park", out[1].Name)
	assert.Equal(t, "https://alpha.example", out[1].Website)
	assert.Equal(t, types.CategoryZoo, out[3].Category)
}

func TestGetPlace(t *testing.T) {
	f := &fakeProvider{details: map[string]RawPlaceDetails{
		"x": {
			Name:             "Senso-ji",
			FormattedAddress: "Asakusa, Tokyo",
			Types:            []string{"place_of_worship"},
			Photos:           []Photo{{PhotoReference: "ref-1"}},
		},
	}}
	a := setupAdapter(t, f)

	p, err := a.GetPlace(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "x", p.ID)
	assert.Equal(t, types.CategoryReligiousSite, p.Category)
	assert.Equal(t, "30-60 minutes", p.Duration)
	assert.True(t, strings.Contains(p.Image, "photoreference=ref-1"))
	assert.True(t, strings.Contains(p.Image, "maxwidth=400"))

	_, err = a.GetPlace(context.Background(), "missing")
	assert.True(t, errors.Is(err, types.ErrNotFound))
}

func TestSortByRating_Stable(t *testing.T) {
	points := []types.PointOfInterest{
		{ID: "1"},
		{ID: "2", Rating: types.Ptr(3.0)},
		{ID: "3", Rating: types.Ptr(3.0)},
		{ID: "4", Rating: types.Ptr(0.0)},
		{ID: "5", Rating: types.Ptr(4.5)},
	}
	SortByRating(points)

	got := make([]string, len(points))
	for i, p := range points {
		got[i] = p.ID
	}
	assert.Equal(t, []string{"5", "2", "3", "1", "4"}, got)
}
