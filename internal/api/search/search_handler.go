package search

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-poi-discovery/internal/api"
	"github.com/FACorreiaa/go-poi-discovery/internal/types"
)

type HandlerImpl struct {
	service    Service
	logger     *slog.Logger
	mapsAPIKey string
}

func NewHandler(service Service, logger *slog.Logger, mapsAPIKey string) *HandlerImpl {
	return &HandlerImpl{
		service:    service,
		logger:     logger,
		mapsAPIKey: mapsAPIKey,
	}
}

func startSpan(r *http.Request, name, route string) (*http.Request, trace.Span) {
	ctx, span := otel.Tracer("SearchHandler").Start(r.Context(), name, trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(route),
	))
	return r.WithContext(ctx), span
}

func preferencesFromQuery(r *http.Request) *types.SearchPreferences {
	q := r.URL.Query()
	prefs := &types.SearchPreferences{
		Budget:      strings.TrimSpace(q.Get("budget")),
		Duration:    strings.TrimSpace(q.Get("duration")),
		TravelStyle: strings.TrimSpace(q.Get("travel_style")),
	}
	for _, raw := range q["interests"] {
		for _, i := range strings.Split(raw, ",") {
			if i = strings.TrimSpace(i); i != "" {
				prefs.Interests = append(prefs.Interests, i)
			}
		}
	}
	if prefs.IsEmpty() {
		return nil
	}
	return prefs
}

// Search runs a full destination search.
func (h *HandlerImpl) Search(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "Search", "/api/v1/search")
	defer span.End()
	ctx := r.Context()

	l := h.logger.With(slog.String("handler", "Search"))
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		l.WarnContext(ctx, "Missing search query")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	result := h.service.SearchDestination(ctx, query, preferencesFromQuery(r))
	if result.DestinationInfo == nil {
		l.InfoContext(ctx, "Search exhausted every source", slog.String("query", query))
		api.ErrorBodyResponse(w, r, http.StatusNotFound, types.ErrorBody{
			Error:       "Destination not found",
			Message:     result.Error,
			Suggestions: result.Suggestions,
		})
		return
	}

	l.DebugContext(ctx, "Search completed",
		slog.String("query", query),
		slog.String("source", result.Source),
		slog.Int("points", len(result.Points)))
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

func (h *HandlerImpl) CityInfo(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "CityInfo", "/api/v1/city-info")
	defer span.End()
	ctx := r.Context()

	l := h.logger.With(slog.String("handler", "CityInfo"))
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "City parameter is required")
		return
	}

	info, failure := h.service.GetDestinationInfo(ctx, city)
	if failure != nil {
		l.InfoContext(ctx, "City info not found", slog.String("city", city))
		api.ErrorBodyResponse(w, r, http.StatusNotFound, *failure)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{"cityInfo": info})
}

func (h *HandlerImpl) Places(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "Places", "/api/v1/places")
	defer span.End()
	ctx := r.Context()

	l := h.logger.With(slog.String("handler", "Places"))
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "City parameter is required")
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, "Limit must be a number")
			return
		}
		limit = n
	}

	points, err := h.service.GetPointsOfInterest(ctx, city, limit)
	if err != nil {
		l.ErrorContext(ctx, "Failed to get places", slog.Any("error", err))
		api.ErrorResponse(w, r, statusFor(err), "Failed to fetch places")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{"places": points})
}

func (h *HandlerImpl) Place(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "Place", "/api/v1/places/{placeID}")
	defer span.End()
	ctx := r.Context()

	l := h.logger.With(slog.String("handler", "Place"))
	placeID := chi.URLParam(r, "placeID")

	place, err := h.service.GetPlaceDetails(ctx, placeID)
	if err != nil {
		l.WarnContext(ctx, "Place lookup failed", slog.String("place_id", placeID), slog.Any("error", err))
		status := statusFor(err)
		if status == http.StatusNotFound {
			api.ErrorBodyResponse(w, r, status, types.ErrorBody{
				Error:       "Place not found",
				Message:     fmt.Sprintf("We couldn't find details for place %q.", placeID),
				Suggestions: types.DefaultSuggestions,
			})
			return
		}
		api.ErrorResponse(w, r, status, "Failed to fetch place details")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, place)
}

// SuggestCities never fails; short input yields an empty list.
func (h *HandlerImpl) SuggestCities(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "SuggestCities", "/api/v1/cities/suggest")
	defer span.End()

	names := h.service.SearchCityNames(r.Context(), r.URL.Query().Get("q"))
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{"suggestions": names})
}

func (h *HandlerImpl) ClearCache(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "ClearCache", "/api/v1/cache/clear")
	defer span.End()
	ctx := r.Context()

	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		h.service.ClearCache(ctx)
		api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{"message": "All cache cleared"})
		return
	}
	h.service.ClearCacheFor(ctx, city)
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{"message": "Cache cleared for " + city})
}

func (h *HandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, h.service.GetServiceStatus())
}

func (h *HandlerImpl) Itinerary(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "Itinerary", "/api/v1/itinerary")
	defer span.End()
	ctx := r.Context()

	l := h.logger.With(slog.String("handler", "Itinerary"))
	var req types.ItineraryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid itinerary request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	it, err := h.service.GenerateItinerary(ctx, req)
	if err != nil {
		l.ErrorContext(ctx, "Failed to generate itinerary", slog.Any("error", err))
		api.ErrorResponse(w, r, statusFor(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, it)
}

// MapsConfig hands the browser its map-rendering credential.
func (h *HandlerImpl) MapsConfig(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{
		"apiKey":    h.mapsAPIKey,
		"available": h.mapsAPIKey != "",
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrProviderUnavailable), errors.Is(err, types.ErrProviderError):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
