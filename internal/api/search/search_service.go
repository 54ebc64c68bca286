package search

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/FACorreiaa/go-poi-discovery/app/cache"
	"github.com/FACorreiaa/go-poi-discovery/app/observability/metrics"
	"github.com/FACorreiaa/go-poi-discovery/internal/api/curated"
	"github.com/FACorreiaa/go-poi-discovery/internal/types"
)

const (
	maxSuggestions   = 8
	minSuggestLen    = 2
	maxItineraryDays = 14
)

// NarrativeProvider is the part of the narrative adapter the search service uses.
type NarrativeProvider interface {
	IsAvailable() bool
	Provider() string
	GetDestinationInfo(ctx context.Context, name string) (*types.DestinationInfo, error)
	RankByPreferences(ctx context.Context, city string, points []types.PointOfInterest, prefs *types.SearchPreferences) []types.PointOfInterest
	EnhanceBatch(ctx context.Context, points []types.PointOfInterest) []types.EnhancedPointOfInterest
	GenerateItinerary(ctx context.Context, city string, points []types.PointOfInterest, days int) ([]types.ItineraryDay, error)
}

// PlacesProvider is the part of the places adapter the search service uses.
type PlacesProvider interface {
	IsAvailable() bool
	ListPopularPlaces(ctx context.Context, city string, limit int) ([]types.PointOfInterest, error)
	GetPlace(ctx context.Context, placeID string) (*types.PointOfInterest, error)
}

// SharedCache is the optional cross-replica tier behind the memory store.
type SharedCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefixes ...string) (int, error)
	Clear(ctx context.Context) error
}

var _ SharedCache = (*cache.RedisTier)(nil)

type Config struct {
	DefaultLimit   int
	MaxLimit       int
	SearchTTL      time.Duration
	InfoTTL        time.Duration
	PlacesTTL      time.Duration
	SuggestTTL     time.Duration
	InfoTimeout    time.Duration
	PointsTimeout  time.Duration
	EnhanceTimeout time.Duration
	// StrictMode drops the generic placeholder tier, so unknown destinations
	// surface as a user-facing error instead of a synthetic record.
	StrictMode    bool
	MapsAvailable bool
}

func DefaultConfig() Config {
	return Config{
		DefaultLimit:   12,
		MaxLimit:       20,
		SearchTTL:      30 * time.Minute,
		InfoTTL:        30 * time.Minute,
		PlacesTTL:      60 * time.Minute,
		SuggestTTL:     10 * time.Minute,
		InfoTimeout:    20 * time.Second,
		PointsTimeout:  20 * time.Second,
		EnhanceTimeout: 25 * time.Second,
	}
}

// Service is the query surface the HTTP layer talks to.
type Service interface {
	SearchDestination(ctx context.Context, rawQuery string, prefs *types.SearchPreferences) types.SearchResult
	GetDestinationInfo(ctx context.Context, city string) (*types.DestinationInfo, *types.ErrorBody)
	GetPointsOfInterest(ctx context.Context, city string, limit int) ([]types.PointOfInterest, error)
	SearchCityNames(ctx context.Context, partial string) []string
	ClearCache(ctx context.Context)
	ClearCacheFor(ctx context.Context, city string) int
	GetServiceStatus() types.ServiceStatus
	GenerateItinerary(ctx context.Context, req types.ItineraryRequest) (*types.Itinerary, error)
	GetPlaceDetails(ctx context.Context, placeID string) (*types.EnhancedPointOfInterest, error)
}

var _ Service = (*ServiceImpl)(nil)

type ServiceImpl struct {
	logger    *slog.Logger
	narrative NarrativeProvider
	places    PlacesProvider
	catalog   *curated.Catalog
	store     cache.Store
	shared    SharedCache
	metrics   *metrics.AppMetrics
	cfg       Config

	infoChain   []InfoStrategy
	lookupChain []InfoStrategy
	pointsChain []PointsStrategy
	flight      singleflight.Group
}

// NewService wires the orchestrator. shared and m may be nil.
func NewService(
	logger *slog.Logger,
	narrative NarrativeProvider,
	places PlacesProvider,
	catalog *curated.Catalog,
	store cache.Store,
	shared SharedCache,
	m *metrics.AppMetrics,
	cfg Config,
) *ServiceImpl {
	def := DefaultConfig()
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = def.MaxLimit
	}
	if cfg.DefaultLimit > cfg.MaxLimit {
		cfg.DefaultLimit = cfg.MaxLimit
	}
	fillDuration(&cfg.SearchTTL, def.SearchTTL)
	fillDuration(&cfg.InfoTTL, def.InfoTTL)
	fillDuration(&cfg.PlacesTTL, def.PlacesTTL)
	fillDuration(&cfg.SuggestTTL, def.SuggestTTL)
	fillDuration(&cfg.InfoTimeout, def.InfoTimeout)
	fillDuration(&cfg.PointsTimeout, def.PointsTimeout)
	fillDuration(&cfg.EnhanceTimeout, def.EnhanceTimeout)

	s := &ServiceImpl{
		logger:    logger,
		narrative: narrative,
		places:    places,
		catalog:   catalog,
		store:     store,
		shared:    shared,
		metrics:   m,
		cfg:       cfg,
	}

	s.lookupChain = []InfoStrategy{
		aiInfoStrategy{narrative: narrative, catalog: catalog, logger: logger},
		curatedInfoStrategy{catalog: catalog},
	}
	s.infoChain = s.lookupChain
	if !cfg.StrictMode {
		s.infoChain = append(append([]InfoStrategy{}, s.lookupChain...), genericInfoStrategy{})
	}
	s.pointsChain = []PointsStrategy{
		providerPointsStrategy{places: places, logger: logger},
		curatedPointsStrategy{catalog: catalog},
	}
	return s
}

func fillDuration(d *time.Duration, def time.Duration) {
	if *d <= 0 {
		*d = def
	}
}

func (s *ServiceImpl) narrativeAvailable() bool {
	return s.narrative != nil && s.narrative.IsAvailable()
}

func (s *ServiceImpl) placesAvailable() bool {
	return s.places != nil && s.places.IsAvailable()
}

// effectiveCity maps a country query onto its representative city.
func (s *ServiceImpl) effectiveCity(query string) (string, bool) {
	if city, ok := s.catalog.Alias(query); ok {
		return city, true
	}
	return strings.TrimSpace(query), false
}

func exhausted(query, message string) types.SearchResult {
	return types.SearchResult{
		Query:        query,
		Points:       []types.EnhancedPointOfInterest{},
		Source:       types.SourceNone,
		PointsSource: types.SourceNone,
		Error:        message,
		Suggestions:  append([]string(nil), types.DefaultSuggestions...),
	}
}

// SearchDestination resolves a destination and its points of interest through
// the cache tiers and both fallback chains. It never returns a raw error: an
// exhausted chain or a panic becomes a result carrying Error and Suggestions.
func (s *ServiceImpl) SearchDestination(ctx context.Context, rawQuery string, prefs *types.SearchPreferences) (result types.SearchResult) {
	ctx, span := otel.Tracer("SearchService").Start(ctx, "SearchDestination", trace.WithAttributes(
		attribute.String("search.query", rawQuery),
		attribute.Bool("search.has_preferences", !prefs.IsEmpty()),
	))
	defer span.End()

	start := time.Now()
	query := strings.TrimSpace(rawQuery)
	norm := normalizeQuery(rawQuery)

	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "Search panicked", slog.String("query", query), slog.Any("panic", r))
			span.SetStatus(codes.Error, "panic")
			result = exhausted(query, fmt.Sprintf("Something went wrong while searching for %q.", query))
		}
		source := result.Source
		if source == "" {
			source = types.SourceNone
		}
		s.metrics.RecordSearch(ctx, source, time.Since(start))
	}()

	if norm == "" {
		return exhausted(query, "Please enter a destination to search for.")
	}

	key := searchKey(norm, prefs)
	if cached, ok := s.cachedSearch(ctx, key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached
	}

	v, _, _ := s.flight.Do(key, func() (any, error) {
		// Detached so a caller leaving early does not degrade the shared result.
		dctx := context.WithoutCancel(ctx)
		res := s.resolve(dctx, query, prefs)
		// Placeholders are not kept so a recovered provider is used next time.
		if res.Error == "" && res.Source != types.SourceGeneric {
			s.storeSearch(dctx, key, res)
		}
		return res, nil
	})
	result = cloneResult(v.(types.SearchResult))

	if result.Error != "" {
		span.SetStatus(codes.Error, result.Error)
	} else {
		span.SetStatus(codes.Ok, "Search resolved")
	}
	return result
}

func (s *ServiceImpl) resolve(ctx context.Context, query string, prefs *types.SearchPreferences) types.SearchResult {
	city, aliased := s.effectiveCity(query)

	var (
		info         *types.DestinationInfo
		infoSource   string
		points       []types.EnhancedPointOfInterest
		pointsSource string
	)
	var g errgroup.Group
	g.Go(func() error {
		info, infoSource = s.lookupInfo(ctx, city, s.infoChain)
		return nil
	})
	g.Go(func() error {
		points, pointsSource = s.lookupEnhancedPoints(ctx, city, s.cfg.DefaultLimit, prefs)
		return nil
	})
	_ = g.Wait()

	result := types.SearchResult{
		Query:        query,
		ResolvedCity: city,
		Points:       points,
		Source:       infoSource,
		PointsSource: pointsSource,
	}
	if info == nil {
		failed := exhausted(query, fmt.Sprintf("We couldn't find information about %q.", query))
		failed.ResolvedCity = city
		failed.Points = points
		failed.PointsSource = pointsSource
		return failed
	}
	if aliased {
		annotated := annotateAlias(*info, query)
		info = &annotated
	}
	result.DestinationInfo = info
	return result
}

func annotateAlias(info types.DestinationInfo, query string) types.DestinationInfo {
	city := info.Name
	info.Name = fmt.Sprintf("%s (%s)", city, query)
	info.Description = fmt.Sprintf("%s Note: You searched for %s. Here's information about %s, a major city in %s.",
		info.Description, query, city, query)
	return info
}

type cachedInfo struct {
	Info   types.DestinationInfo
	Source string
}

type cachedPoints struct {
	Points []types.PointOfInterest
	Source string
}

// lookupInfo runs chain under the info timeout. Only provider-backed and curated
// records are cached, so a later search can still reach the narrative service.
func (s *ServiceImpl) lookupInfo(ctx context.Context, city string, chain []InfoStrategy) (*types.DestinationInfo, string) {
	key := infoKey(normalizeQuery(city))
	if v, ok := s.store.Get(key); ok {
		if c, ok := v.(cachedInfo); ok {
			s.metrics.RecordCache(ctx, "memory", true)
			info := c.Info.Clone()
			return &info, c.Source
		}
	}
	s.metrics.RecordCache(ctx, "memory", false)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.InfoTimeout)
	defer cancel()

	info, source := runInfoChain(ctx, s.logger, chain, city)
	s.metrics.RecordFallback(ctx, "info", source)
	if info == nil {
		return nil, source
	}
	if source == types.SourceAI || source == types.SourceCurated {
		s.store.Set(key, cachedInfo{Info: info.Clone(), Source: source}, s.cfg.InfoTTL)
	}
	return info, source
}

func (s *ServiceImpl) lookupPoints(ctx context.Context, city string, limit int) ([]types.PointOfInterest, string) {
	key := placesKey(normalizeQuery(city), limit)
	if v, ok := s.store.Get(key); ok {
		if c, ok := v.(cachedPoints); ok {
			s.metrics.RecordCache(ctx, "memory", true)
			return clonePoints(c.Points), c.Source
		}
	}
	s.metrics.RecordCache(ctx, "memory", false)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.PointsTimeout)
	defer cancel()

	points, source := runPointsChain(ctx, s.logger, s.pointsChain, city, limit)
	s.metrics.RecordFallback(ctx, "points", source)
	if len(points) > 0 {
		s.store.Set(key, cachedPoints{Points: clonePoints(points), Source: source}, s.cfg.PlacesTTL)
	}
	return points, source
}

func (s *ServiceImpl) lookupEnhancedPoints(ctx context.Context, city string, limit int, prefs *types.SearchPreferences) ([]types.EnhancedPointOfInterest, string) {
	points, source := s.lookupPoints(ctx, city, limit)
	if len(points) == 0 || !s.narrativeAvailable() {
		return types.Plain(points), source
	}
	if !prefs.IsEmpty() {
		points = s.rank(ctx, city, points, prefs)
	}
	return s.enhance(ctx, points), source
}

func (s *ServiceImpl) rank(ctx context.Context, city string, points []types.PointOfInterest, prefs *types.SearchPreferences) (out []types.PointOfInterest) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "Ranking panicked", slog.Any("panic", r))
			out = points
		}
	}()
	ctx, cancel := context.WithTimeout(ctx, s.cfg.EnhanceTimeout)
	defer cancel()

	ranked := s.narrative.RankByPreferences(ctx, city, points, prefs)
	if len(ranked) != len(points) {
		s.logger.WarnContext(ctx, "Ranking changed the point count, keeping provider order",
			slog.Int("want", len(points)), slog.Int("got", len(ranked)))
		return points
	}
	return ranked
}

func (s *ServiceImpl) enhance(ctx context.Context, points []types.PointOfInterest) (out []types.EnhancedPointOfInterest) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "Enhancement panicked", slog.Any("panic", r))
			out = types.Plain(points)
		}
	}()
	ctx, cancel := context.WithTimeout(ctx, s.cfg.EnhanceTimeout)
	defer cancel()

	enhanced := s.narrative.EnhanceBatch(ctx, points)
	if len(enhanced) != len(points) {
		return types.Plain(points)
	}
	return enhanced
}

func (s *ServiceImpl) cachedSearch(ctx context.Context, key string) (types.SearchResult, bool) {
	if v, ok := s.store.Get(key); ok {
		if res, ok := v.(types.SearchResult); ok {
			s.metrics.RecordCache(ctx, "memory", true)
			return cloneResult(res), true
		}
	}
	s.metrics.RecordCache(ctx, "memory", false)

	if s.shared == nil {
		return types.SearchResult{}, false
	}
	var res types.SearchResult
	ok, err := s.shared.Get(ctx, key, &res)
	if err != nil {
		s.logger.WarnContext(ctx, "Shared cache read failed", slog.String("key", key), slog.Any("error", err))
		return types.SearchResult{}, false
	}
	s.metrics.RecordCache(ctx, "redis", ok)
	if !ok {
		return types.SearchResult{}, false
	}
	if res.Points == nil {
		res.Points = []types.EnhancedPointOfInterest{}
	}
	s.store.Set(key, cloneResult(res), s.cfg.SearchTTL)
	return res, true
}

func (s *ServiceImpl) storeSearch(ctx context.Context, key string, res types.SearchResult) {
	s.store.Set(key, cloneResult(res), s.cfg.SearchTTL)
	if s.shared == nil {
		return
	}
	if err := s.shared.Set(ctx, key, res, s.cfg.SearchTTL); err != nil {
		s.logger.WarnContext(ctx, "Shared cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}

func (s *ServiceImpl) clampLimit(limit int) int {
	if limit <= 0 {
		return s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		return s.cfg.MaxLimit
	}
	return limit
}

// GetDestinationInfo looks a city up without the generic placeholder tier, so
// unknown names come back as a user-facing error with suggestions.
func (s *ServiceImpl) GetDestinationInfo(ctx context.Context, city string) (*types.DestinationInfo, *types.ErrorBody) {
	ctx, span := otel.Tracer("SearchService").Start(ctx, "GetDestinationInfo", trace.WithAttributes(
		attribute.String("city.name", city),
	))
	defer span.End()

	query := strings.TrimSpace(city)
	if query == "" {
		return nil, &types.ErrorBody{Error: "Invalid request", Message: "City name is required"}
	}

	resolved, aliased := s.effectiveCity(query)
	info, source := s.lookupInfo(ctx, resolved, s.lookupChain)
	if info == nil {
		span.SetStatus(codes.Error, "City not found")
		return nil, &types.ErrorBody{
			Error:       "City not found",
			Message:     fmt.Sprintf("We couldn't find information about %q.", query),
			Suggestions: append([]string(nil), types.DefaultSuggestions...),
		}
	}
	if aliased {
		annotated := annotateAlias(*info, query)
		info = &annotated
	}
	span.SetAttributes(attribute.String("source", source))
	return info, nil
}

// GetPointsOfInterest returns up to limit points, clamped to the configured
// bounds. Nothing found is an empty list, not an error.
func (s *ServiceImpl) GetPointsOfInterest(ctx context.Context, city string, limit int) ([]types.PointOfInterest, error) {
	ctx, span := otel.Tracer("SearchService").Start(ctx, "GetPointsOfInterest", trace.WithAttributes(
		attribute.String("city.name", city),
		attribute.Int("limit", limit),
	))
	defer span.End()

	if strings.TrimSpace(city) == "" {
		return nil, fmt.Errorf("%w: city name is required", types.ErrInvalidRequest)
	}
	resolved, _ := s.effectiveCity(city)
	points, _ := s.lookupPoints(ctx, resolved, s.clampLimit(limit))
	return points, nil
}

// SearchCityNames filters the popular-city list for autocomplete.
func (s *ServiceImpl) SearchCityNames(ctx context.Context, partial string) []string {
	q := normalizeQuery(partial)
	if utf8.RuneCountInString(q) < minSuggestLen {
		return []string{}
	}

	key := citySearchKey(q)
	if v, ok := s.store.Get(key); ok {
		if names, ok := v.([]string); ok {
			s.metrics.RecordCache(ctx, "memory", true)
			return append([]string{}, names...)
		}
	}
	s.metrics.RecordCache(ctx, "memory", false)

	out := make([]string, 0, maxSuggestions)
	for _, city := range s.catalog.PopularCities() {
		if strings.Contains(strings.ToLower(city), q) {
			out = append(out, city)
			if len(out) == maxSuggestions {
				break
			}
		}
	}
	s.store.Set(key, append([]string{}, out...), s.cfg.SuggestTTL)
	return out
}

func (s *ServiceImpl) ClearCache(ctx context.Context) {
	s.store.Clear()
	if s.shared != nil {
		if err := s.shared.Clear(ctx); err != nil {
			s.logger.WarnContext(ctx, "Shared cache clear failed", slog.Any("error", err))
		}
	}
	s.logger.InfoContext(ctx, "All cache cleared")
}

// ClearCacheFor drops every entry derived from city and returns how many were
// removed. Country queries also clear their representative city.
func (s *ServiceImpl) ClearCacheFor(ctx context.Context, city string) int {
	norm := normalizeQuery(city)
	if norm == "" {
		return 0
	}
	names := []string{norm}
	if alias, ok := s.catalog.Alias(norm); ok {
		names = append(names, normalizeQuery(alias))
	}

	removed := 0
	var prefixes []string
	for _, n := range names {
		if s.store.Has(infoKey(n)) {
			removed++
		}
		s.store.Delete(infoKey(n))
		prefixes = append(prefixes, placesPrefix(n), searchPrefix(n))
	}
	// Country searches cache under the country name, not the city.
	for _, country := range s.catalog.Countries() {
		alias, _ := s.catalog.Alias(country)
		if slices.Contains(names, normalizeQuery(alias)) && !slices.Contains(names, country) {
			prefixes = append(prefixes, searchPrefix(country))
		}
	}
	removed += cache.DeletePrefix(s.store, prefixes...)

	if s.shared != nil {
		n, err := s.shared.DeletePrefix(ctx, prefixes...)
		if err != nil {
			s.logger.WarnContext(ctx, "Shared cache invalidation failed", slog.String("city", city), slog.Any("error", err))
		}
		removed += n
	}
	s.logger.InfoContext(ctx, "Cache cleared for city", slog.String("city", city), slog.Int("removed", removed))
	return removed
}

func (s *ServiceImpl) GetServiceStatus() types.ServiceStatus {
	status := types.ServiceStatus{
		NarrativeAvailable: s.narrativeAvailable(),
		PointsAvailable:    s.placesAvailable(),
		MapsAvailable:      s.cfg.MapsAvailable,
		CachedEntries:      s.store.Len(),
	}
	if status.NarrativeAvailable {
		status.NarrativeProvider = s.narrative.Provider()
	}
	return status
}

// GenerateItinerary plans req.Days days over req.Points, fetching the city's
// points when none are given. Without a usable AI plan the points are spread
// evenly in their given order.
func (s *ServiceImpl) GenerateItinerary(ctx context.Context, req types.ItineraryRequest) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("SearchService").Start(ctx, "GenerateItinerary", trace.WithAttributes(
		attribute.String("city.name", req.City),
		attribute.Int("days", req.Days),
	))
	defer span.End()

	city := strings.TrimSpace(req.City)
	if city == "" {
		return nil, fmt.Errorf("%w: city name is required", types.ErrInvalidRequest)
	}
	if req.Days < 1 || req.Days > maxItineraryDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", types.ErrInvalidRequest, maxItineraryDays)
	}

	points := req.Points
	if len(points) == 0 {
		resolved, _ := s.effectiveCity(city)
		points, _ = s.lookupPoints(ctx, resolved, s.cfg.DefaultLimit)
	}

	it := &types.Itinerary{ID: uuid.NewString(), City: city}
	if s.narrativeAvailable() && len(points) > 0 {
		aiCtx, cancel := context.WithTimeout(ctx, s.cfg.EnhanceTimeout)
		days, err := s.narrative.GenerateItinerary(aiCtx, city, points, req.Days)
		cancel()
		if err == nil {
			it.Days = days
			it.Source = types.SourceAI
			return it, nil
		}
		s.logger.WarnContext(ctx, "AI itinerary failed, spreading points evenly",
			slog.String("city", city), slog.Any("error", err))
	}

	it.Days = distributeEvenly(points, req.Days)
	it.Source = types.SourceGeneric
	return it, nil
}

// distributeEvenly gives each day ceil(n/days) points in order.
func distributeEvenly(points []types.PointOfInterest, days int) []types.ItineraryDay {
	perDay := int(math.Ceil(float64(len(points)) / float64(days)))
	out := make([]types.ItineraryDay, days)
	for d := 0; d < days; d++ {
		lo := min(d*perDay, len(points))
		hi := min(lo+perDay, len(points))
		dayPoints := make([]types.PointOfInterest, hi-lo)
		copy(dayPoints, points[lo:hi])
		out[d] = types.ItineraryDay{
			Day:    d + 1,
			Theme:  fmt.Sprintf("Day %d Exploration", d+1),
			Points: dayPoints,
		}
	}
	return out
}

// GetPlaceDetails returns one place, curated ids first, then the provider,
// enhanced when the narrative service is configured.
func (s *ServiceImpl) GetPlaceDetails(ctx context.Context, placeID string) (*types.EnhancedPointOfInterest, error) {
	ctx, span := otel.Tracer("SearchService").Start(ctx, "GetPlaceDetails", trace.WithAttributes(
		attribute.String("place.id", placeID),
	))
	defer span.End()

	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, fmt.Errorf("%w: place id is required", types.ErrInvalidRequest)
	}

	key := placeKey(placeID)
	if v, ok := s.store.Get(key); ok {
		if p, ok := v.(types.EnhancedPointOfInterest); ok {
			s.metrics.RecordCache(ctx, "memory", true)
			return &p, nil
		}
	}
	s.metrics.RecordCache(ctx, "memory", false)

	var base *types.PointOfInterest
	if p, ok := s.catalog.PointByID(placeID); ok {
		base = &p
	} else if s.placesAvailable() {
		pctx, cancel := context.WithTimeout(ctx, s.cfg.PointsTimeout)
		p, err := s.places.GetPlace(pctx, placeID)
		cancel()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Place lookup failed")
			return nil, err
		}
		base = p
	} else {
		return nil, fmt.Errorf("place %s: %w", placeID, types.ErrNotFound)
	}

	enhanced := types.EnhancedPointOfInterest{PointOfInterest: *base}
	if s.narrativeAvailable() {
		if batch := s.enhance(ctx, []types.PointOfInterest{*base}); len(batch) == 1 {
			enhanced = batch[0]
		}
	}
	s.store.Set(key, enhanced, s.cfg.PlacesTTL)
	return &enhanced, nil
}

func clonePoints(in []types.PointOfInterest) []types.PointOfInterest {
	out := make([]types.PointOfInterest, len(in))
	copy(out, in)
	return out
}

func cloneResult(r types.SearchResult) types.SearchResult {
	out := r
	if r.DestinationInfo != nil {
		info := r.DestinationInfo.Clone()
		out.DestinationInfo = &info
	}
	out.Points = make([]types.EnhancedPointOfInterest, len(r.Points))
	for i, p := range r.Points {
		p.Tips = slices.Clone(p.Tips)
		p.NearbyPlaces = slices.Clone(p.NearbyPlaces)
		out.Points[i] = p
	}
	out.Suggestions = append([]string(nil), r.Suggestions...)
	return out
}
