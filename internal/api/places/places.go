package places

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-poi-discovery/app/observability/metrics"
	"github.com/FACorreiaa/go-poi-discovery/internal/types"
)

const (
	DefaultBaseURL      = "https://maps.googleapis.com/maps/api"
	DefaultRadiusMeters = 10000
	DefaultCategory     = "tourist_attraction"

	detailFields         = "place_id,name,formatted_address,formatted_phone_number,website,rating,user_ratings_total,reviews,photos,opening_hours,types,price_level,geometry"
	photoMaxWidth        = 400
	defaultDetailWorkers = 6
	defaultTimeout       = 15 * time.Second
	providerName         = "google_places"
)

// Config for the places adapter. Only APIKey is required for the adapter to
// report itself available.
type Config struct {
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
	DetailWorkers int
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Photo struct {
	PhotoReference string `json:"photo_reference"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
}

type OpeningHours struct {
	OpenNow     *bool    `json:"open_now"`
	WeekdayText []string `json:"weekday_text,omitempty"`
}

type Review struct {
	AuthorName string  `json:"author_name"`
	Rating     float64 `json:"rating"`
	Text       string  `json:"text"`
}

type Geometry struct {
	Location Coordinates `json:"location"`
}

// RawPlace is one nearby-search result as the provider sends it.
type RawPlace struct {
	PlaceID      string        `json:"place_id"`
	Name         string        `json:"name"`
	Vicinity     string        `json:"vicinity"`
	Types        []string      `json:"types"`
	Rating       *float64      `json:"rating"`
	PriceLevel   *int          `json:"price_level"`
	Photos       []Photo       `json:"photos"`
	OpeningHours *OpeningHours `json:"opening_hours"`
	Geometry     Geometry      `json:"geometry"`
}

// RawPlaceDetails is a place-details result as the provider sends it.
type RawPlaceDetails struct {
	PlaceID              string        `json:"place_id"`
	Name                 string        `json:"name"`
	FormattedAddress     string        `json:"formatted_address"`
	FormattedPhoneNumber string        `json:"formatted_phone_number"`
	Website              string        `json:"website"`
	Rating               *float64      `json:"rating"`
	UserRatingsTotal     int           `json:"user_ratings_total"`
	Reviews              []Review      `json:"reviews"`
	Photos               []Photo       `json:"photos"`
	OpeningHours         *OpeningHours `json:"opening_hours"`
	Types                []string      `json:"types"`
	PriceLevel           *int          `json:"price_level"`
	Geometry             Geometry      `json:"geometry"`
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry Geometry `json:"geometry"`
	} `json:"results"`
}

type nearbyResponse struct {
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message"`
	Results      []RawPlace `json:"results"`
}

type detailsResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message"`
	Result       RawPlaceDetails `json:"result"`
}

// Adapter talks to the geocoding and places endpoints. It does not cache.
type Adapter struct {
	client  *resty.Client
	apiKey  string
	baseURL string
	workers int
	logger  *slog.Logger
	metrics *metrics.AppMetrics
}

func NewAdapter(cfg Config, logger *slog.Logger, m *metrics.AppMetrics) *Adapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.DetailWorkers <= 0 {
		cfg.DetailWorkers = defaultDetailWorkers
	}
	base := strings.TrimRight(cfg.BaseURL, "/")

	client := resty.New().
		SetBaseURL(base).
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)

	return &Adapter{
		client:  client,
		apiKey:  cfg.APIKey,
		baseURL: base,
		workers: cfg.DetailWorkers,
		logger:  logger,
		metrics: m,
	}
}

func (a *Adapter) IsAvailable() bool {
	return a != nil && a.apiKey != ""
}

func (a *Adapter) photoURL(ref string) string {
	q := url.Values{}
	q.Set("maxwidth", fmt.Sprint(photoMaxWidth))
	q.Set("photoreference", ref)
	q.Set("key", a.apiKey)
	return a.baseURL + "/place/photo?" + q.Encode()
}

// get performs one provider call and decodes the JSON body into out. Non-2xx
// answers become ErrProviderError.
func (a *Adapter) get(ctx context.Context, operation, path string, params map[string]string, out any) error {
	if !a.IsAvailable() {
		return types.ErrProviderUnavailable
	}
	params["key"] = a.apiKey

	start := time.Now()
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err == nil && resp.IsError() {
		err = fmt.Errorf("%w: %s returned status %d", types.ErrProviderError, operation, resp.StatusCode())
	} else if err != nil {
		err = fmt.Errorf("%w: %s: %v", types.ErrProviderError, operation, err)
	}
	a.metrics.RecordProviderCall(ctx, providerName, operation, time.Since(start), err)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", types.ErrProviderError, operation, err)
	}
	return nil
}

func statusError(operation, status, message string) error {
	if message != "" {
		return fmt.Errorf("%w: %s status %s: %s", types.ErrProviderError, operation, status, message)
	}
	return fmt.Errorf("%w: %s status %s", types.ErrProviderError, operation, status)
}

// ResolveCoordinates geocodes placeName. Zero results is ErrNotFound.
func (a *Adapter) ResolveCoordinates(ctx context.Context, placeName string) (Coordinates, error) {
	ctx, span := otel.Tracer("PlacesAdapter").Start(ctx, "ResolveCoordinates", trace.WithAttributes(
		attribute.String("place.name", placeName),
	))
	defer span.End()

	var resp geocodeResponse
	if err := a.get(ctx, "geocode", "/geocode/json", map[string]string{"address": placeName}, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Geocoding failed")
		return Coordinates{}, err
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return Coordinates{}, fmt.Errorf("geocoding %q: %w", placeName, types.ErrNotFound)
	default:
		err := statusError("geocode", resp.Status, resp.ErrorMessage)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Geocoding failed")
		return Coordinates{}, err
	}
	if len(resp.Results) == 0 {
		return Coordinates{}, fmt.Errorf("geocoding %q: %w", placeName, types.ErrNotFound)
	}

	span.SetStatus(codes.Ok, "Coordinates resolved")
	return resp.Results[0].Geometry.Location, nil
}

// SearchNearby lists raw places around coords. Missing credentials fail with
// ErrProviderUnavailable before any request is made.
func (a *Adapter) SearchNearby(ctx context.Context, coords Coordinates, radiusMeters int, category string) ([]RawPlace, error) {
	if !a.IsAvailable() {
		return nil, types.ErrProviderUnavailable
	}
	ctx, span := otel.Tracer("PlacesAdapter").Start(ctx, "SearchNearby", trace.WithAttributes(
		attribute.Float64("latitude", coords.Lat),
		attribute.Float64("longitude", coords.Lng),
		attribute.Int("radius", radiusMeters),
	))
	defer span.End()

	params := map[string]string{
		"location": fmt.Sprintf("%f,%f", coords.Lat, coords.Lng),
		"radius":   fmt.Sprint(radiusMeters),
	}
	if category != "" {
		params["type"] = category
	}

	var resp nearbyResponse
	if err := a.get(ctx, "nearby_search", "/place/nearbysearch/json", params, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Nearby search failed")
		return nil, err
	}
	switch resp.Status {
	case "OK", "ZERO_RESULTS":
	default:
		err := statusError("nearby_search", resp.Status, resp.ErrorMessage)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Nearby search failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("results.count", len(resp.Results)))
	return resp.Results, nil
}

func (a *Adapter) FetchDetails(ctx context.Context, placeID string) (*RawPlaceDetails, error) {
	var resp detailsResponse
	params := map[string]string{"place_id": placeID, "fields": detailFields}
	if err := a.get(ctx, "place_details", "/place/details/json", params, &resp); err != nil {
		return nil, err
	}
	switch resp.Status {
	case "OK":
		return &resp.Result, nil
	case "NOT_FOUND", "ZERO_RESULTS", "INVALID_REQUEST":
		return nil, fmt.Errorf("place %s: %w", placeID, types.ErrNotFound)
	default:
		return nil, statusError("place_details", resp.Status, resp.ErrorMessage)
	}
}

// ListPopularPlaces resolves city, searches nearby attractions, enriches up to
// limit of them concurrently and returns them by rating, highest first. Equal
// ratings keep the provider's order.
func (a *Adapter) ListPopularPlaces(ctx context.Context, city string, limit int) ([]types.PointOfInterest, error) {
	ctx, span := otel.Tracer("PlacesAdapter").Start(ctx, "ListPopularPlaces", trace.WithAttributes(
		attribute.String("city.name", city),
		attribute.Int("limit", limit),
	))
	defer span.End()

	if !a.IsAvailable() {
		return nil, types.ErrProviderUnavailable
	}

	coords, err := a.ResolveCoordinates(ctx, city)
	if err != nil {
		return nil, err
	}
	raw, err := a.SearchNearby(ctx, coords, DefaultRadiusMeters, DefaultCategory)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(raw) > limit {
		raw = raw[:limit]
	}

	out := make([]types.PointOfInterest, len(raw))
	var g errgroup.Group
	g.SetLimit(a.workers)
	for i := range raw {
		g.Go(func() error {
			details, err := a.FetchDetails(ctx, raw[i].PlaceID)
			if err != nil {
				a.logger.WarnContext(ctx, "Place details unavailable, using basic record",
					slog.String("place_id", raw[i].PlaceID),
					slog.Any("error", err))
				out[i] = degraded(raw[i])
				return nil
			}
			out[i] = a.Normalize(raw[i], details)
			return nil
		})
	}
	_ = g.Wait()

	SortByRating(out)
	span.SetAttributes(attribute.Int("results.count", len(out)))
	span.SetStatus(codes.Ok, "Places listed")
	return out, nil
}

// SortByRating orders points by rating descending; a missing rating counts as 0.
func SortByRating(points []types.PointOfInterest) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].RatingOrZero() > points[j].RatingOrZero()
	})
}

// GetPlace fetches and normalizes a single place by id.
func (a *Adapter) GetPlace(ctx context.Context, placeID string) (*types.PointOfInterest, error) {
	ctx, span := otel.Tracer("PlacesAdapter").Start(ctx, "GetPlace", trace.WithAttributes(
		attribute.String("place.id", placeID),
	))
	defer span.End()

	details, err := a.FetchDetails(ctx, placeID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Place details failed")
		return nil, err
	}
	raw := RawPlace{
		PlaceID:    placeID,
		Name:       details.Name,
		Vicinity:   details.FormattedAddress,
		Types:      details.Types,
		Rating:     details.Rating,
		PriceLevel: details.PriceLevel,
		Geometry:   details.Geometry,
	}
	p := a.Normalize(raw, details)
	return &p, nil
}
