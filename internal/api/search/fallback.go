package search

import (
	"context"
	"log/slog"

	"github.com/FACorreiaa/go-poi-discovery/internal/api/curated"
	"github.com/FACorreiaa/go-poi-discovery/internal/types"
)

// InfoStrategy is one tier of the destination-info fallback chain.
type InfoStrategy interface {
	Name() string
	TryResolve(ctx context.Context, city string) (*types.DestinationInfo, bool)
}

// PointsStrategy is one tier of the points-of-interest fallback chain.
type PointsStrategy interface {
	Name() string
	TryResolve(ctx context.Context, city string, limit int) ([]types.PointOfInterest, bool)
}

// aiInfoStrategy asks the narrative provider and fills the gaps it left from
// the curated record for the same city.
type aiInfoStrategy struct {
	narrative NarrativeProvider
	catalog   *curated.Catalog
	logger    *slog.Logger
}

func (s aiInfoStrategy) Name() string { return types.SourceAI }

func (s aiInfoStrategy) TryResolve(ctx context.Context, city string) (*types.DestinationInfo, bool) {
	if s.narrative == nil || !s.narrative.IsAvailable() {
		return nil, false
	}
	info, err := s.narrative.GetDestinationInfo(ctx, city)
	if err != nil {
		s.logger.WarnContext(ctx, "Narrative lookup failed, falling back",
			slog.String("city", city), slog.Any("error", err))
		return nil, false
	}
	if !info.IsUsable() {
		return nil, false
	}
	merged := *info
	if cur, ok := s.catalog.Destination(city); ok {
		merged = merged.MergeMissing(cur)
	}
	return &merged, true
}

type curatedInfoStrategy struct {
	catalog *curated.Catalog
}

func (s curatedInfoStrategy) Name() string { return types.SourceCurated }

func (s curatedInfoStrategy) TryResolve(_ context.Context, city string) (*types.DestinationInfo, bool) {
	d, ok := s.catalog.Destination(city)
	if !ok {
		return nil, false
	}
	return &d, true
}

// genericInfoStrategy always succeeds with the placeholder record.
type genericInfoStrategy struct{}

func (genericInfoStrategy) Name() string { return types.SourceGeneric }

func (genericInfoStrategy) TryResolve(_ context.Context, city string) (*types.DestinationInfo, bool) {
	d := curated.Generic(city)
	return &d, true
}

type providerPointsStrategy struct {
	places PlacesProvider
	logger *slog.Logger
}

func (s providerPointsStrategy) Name() string { return types.SourceProvider }

func (s providerPointsStrategy) TryResolve(ctx context.Context, city string, limit int) ([]types.PointOfInterest, bool) {
	if s.places == nil || !s.places.IsAvailable() {
		return nil, false
	}
	points, err := s.places.ListPopularPlaces(ctx, city, limit)
	if err != nil {
		s.logger.WarnContext(ctx, "Places lookup failed, falling back",
			slog.String("city", city), slog.Any("error", err))
		return nil, false
	}
	if len(points) == 0 {
		return nil, false
	}
	return points, true
}

type curatedPointsStrategy struct {
	catalog *curated.Catalog
}

func (s curatedPointsStrategy) Name() string { return types.SourceCurated }

func (s curatedPointsStrategy) TryResolve(_ context.Context, city string, limit int) ([]types.PointOfInterest, bool) {
	points := s.catalog.Points(city)
	if len(points) == 0 {
		return nil, false
	}
	if limit > 0 && len(points) > limit {
		points = points[:limit]
	}
	return points, true
}

// runInfoChain tries each strategy in order. A panicking tier counts as a miss.
func runInfoChain(ctx context.Context, logger *slog.Logger, chain []InfoStrategy, city string) (*types.DestinationInfo, string) {
	for _, s := range chain {
		if info, ok := tryInfo(ctx, logger, s, city); ok {
			return info, s.Name()
		}
	}
	return nil, types.SourceNone
}

func tryInfo(ctx context.Context, logger *slog.Logger, s InfoStrategy, city string) (info *types.DestinationInfo, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "Info strategy panicked", slog.String("strategy", s.Name()), slog.Any("panic", r))
			info, ok = nil, false
		}
	}()
	info, ok = s.TryResolve(ctx, city)
	if ok && !info.IsUsable() {
		return nil, false
	}
	return info, ok
}

func runPointsChain(ctx context.Context, logger *slog.Logger, chain []PointsStrategy, city string, limit int) ([]types.PointOfInterest, string) {
	for _, s := range chain {
		if points, ok := tryPoints(ctx, logger, s, city, limit); ok {
			return points, s.Name()
		}
	}
	return []types.PointOfInterest{}, types.SourceNone
}

func tryPoints(ctx context.Context, logger *slog.Logger, s PointsStrategy, city string, limit int) (points []types.PointOfInterest, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "Points strategy panicked", slog.String("strategy", s.Name()), slog.Any("panic", r))
			points, ok = nil, false
		}
	}()
	return s.TryResolve(ctx, city, limit)
}
