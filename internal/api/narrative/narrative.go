package narrative

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-poi-discovery/app/observability/metrics"
	generativeAI "github.com/FACorreiaa/go-poi-discovery/internal/api/generative_ai"
	"github.com/FACorreiaa/go-poi-discovery/internal/types"
)

const defaultEnhanceWorkers = 4

// Adapter turns generative-text replies into typed destination data. It has no
// caching and no fallback policy; callers decide what to do with absent results.
type Adapter struct {
	gen     generativeAI.TextGenerator
	logger  *slog.Logger
	metrics *metrics.AppMetrics
	workers int
}

// NewAdapter builds an adapter. A nil generator yields an adapter that reports
// itself unavailable.
func NewAdapter(gen generativeAI.TextGenerator, logger *slog.Logger, m *metrics.AppMetrics) *Adapter {
	return &Adapter{
		gen:     gen,
		logger:  logger,
		metrics: m,
		workers: defaultEnhanceWorkers,
	}
}

// WithWorkers bounds how many points EnhanceBatch processes at once.
func (a *Adapter) WithWorkers(n int) *Adapter {
	if n > 0 {
		a.workers = n
	}
	return a
}

func (a *Adapter) IsAvailable() bool {
	return a != nil && a.gen != nil
}

// Provider names the configured service, empty when unavailable.
func (a *Adapter) Provider() string {
	if !a.IsAvailable() {
		return ""
	}
	return a.gen.Provider()
}

func (a *Adapter) generate(ctx context.Context, operation, prompt string) (string, error) {
	if !a.IsAvailable() {
		return "", types.ErrProviderUnavailable
	}
	start := time.Now()
	text, err := a.gen.GenerateText(ctx, prompt)
	a.metrics.RecordProviderCall(ctx, a.gen.Provider(), operation, time.Since(start), err)
	if err != nil {
		return "", err
	}
	return text, nil
}

// GetDestinationInfo asks for a destination record. It returns (nil, nil) when
// the reply holds nothing usable and (nil, err) when the provider call failed.
func (a *Adapter) GetDestinationInfo(ctx context.Context, name string) (*types.DestinationInfo, error) {
	ctx, span := otel.Tracer("NarrativeAdapter").Start(ctx, "GetDestinationInfo", trace.WithAttributes(
		attribute.String("city.name", name),
	))
	defer span.End()

	reply, err := a.generate(ctx, "destination_info", getDestinationPrompt(name))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Provider call failed")
		return nil, fmt.Errorf("destination info for %s: %w", name, err)
	}

	info, err := parseDestination(reply)
	if err != nil {
		a.logger.WarnContext(ctx, "Unparseable destination reply",
			slog.String("city", name),
			slog.Int("reply_length", len(reply)),
			slog.Any("error", err))
		span.SetStatus(codes.Error, "Parse failure")
		return nil, nil
	}

	span.SetStatus(codes.Ok, "Destination info parsed")
	return info, nil
}

// EnhanceDescription never fails: the original description is returned when
// the provider errors or answers with nothing.
func (a *Adapter) EnhanceDescription(ctx context.Context, p types.PointOfInterest) string {
	desc, err := a.enhance(ctx, p)
	if err != nil {
		return p.Description
	}
	return desc
}

func (a *Adapter) enhance(ctx context.Context, p types.PointOfInterest) (string, error) {
	reply, err := a.generate(ctx, "enhance_description", getEnhancePrompt(p))
	if err != nil {
		return "", err
	}
	desc := strings.Trim(stripCodeFence(reply), "\"' \n")
	if desc == "" {
		return "", fmt.Errorf("%w: empty description", types.ErrParseFailure)
	}
	return desc, nil
}

// GetTips returns an empty, non-nil list on any failure.
func (a *Adapter) GetTips(ctx context.Context, p types.PointOfInterest) []string {
	tips, err := a.tips(ctx, p)
	if err != nil {
		return []string{}
	}
	return tips
}

func (a *Adapter) tips(ctx context.Context, p types.PointOfInterest) ([]string, error) {
	reply, err := a.generate(ctx, "tips", getTipsPrompt(p))
	if err != nil {
		return nil, err
	}
	tips, err := parseStringList(reply)
	if err != nil {
		return nil, err
	}
	if tips == nil {
		tips = []string{}
	}
	return tips, nil
}

// RankByPreferences reorders points by the provider's relevance answer. The
// result always holds every input point exactly once.
func (a *Adapter) RankByPreferences(ctx context.Context, city string, points []types.PointOfInterest, prefs *types.SearchPreferences) []types.PointOfInterest {
	out := make([]types.PointOfInterest, len(points))
	copy(out, points)
	if len(points) < 2 {
		return out
	}

	ctx, span := otel.Tracer("NarrativeAdapter").Start(ctx, "RankByPreferences", trace.WithAttributes(
		attribute.String("city.name", city),
		attribute.Int("points.count", len(points)),
	))
	defer span.End()

	reply, err := a.generate(ctx, "rank", getRankingPrompt(city, points, prefs))
	if err != nil {
		span.RecordError(err)
		a.logger.DebugContext(ctx, "Ranking skipped", slog.String("city", city), slog.Any("error", err))
		return out
	}
	return reorderByNames(points, splitNames(reply))
}

// reorderByNames places points in the order their names appear in names,
// matching case-insensitively by substring in either direction. Points nobody
// named keep their input order at the end.
func reorderByNames(points []types.PointOfInterest, names []string) []types.PointOfInterest {
	used := make([]bool, len(points))
	out := make([]types.PointOfInterest, 0, len(points))
	for _, name := range names {
		if i := matchIndex(name, points, used); i >= 0 {
			used[i] = true
			out = append(out, points[i])
		}
	}
	for i, p := range points {
		if !used[i] {
			out = append(out, p)
		}
	}
	return out
}

func matchIndex(name string, points []types.PointOfInterest, used []bool) int {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return -1
	}
	for i, p := range points {
		if used[i] {
			continue
		}
		hay := strings.ToLower(p.Name)
		if hay == "" {
			continue
		}
		if strings.Contains(hay, needle) || strings.Contains(needle, hay) {
			return i
		}
	}
	return -1
}

// EnhanceBatch annotates every point concurrently. A failure on one point
// leaves that point plain with empty tips; order is preserved.
func (a *Adapter) EnhanceBatch(ctx context.Context, points []types.PointOfInterest) []types.EnhancedPointOfInterest {
	out := types.Plain(points)
	if !a.IsAvailable() || len(points) == 0 {
		return out
	}

	ctx, span := otel.Tracer("NarrativeAdapter").Start(ctx, "EnhanceBatch", trace.WithAttributes(
		attribute.Int("points.count", len(points)),
	))
	defer span.End()

	var g errgroup.Group
	g.SetLimit(a.workers)
	for i := range points {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					a.logger.ErrorContext(ctx, "Panic enhancing point",
						slog.String("point", points[i].Name), slog.Any("panic", r))
					out[i] = types.EnhancedPointOfInterest{PointOfInterest: points[i], Tips: []string{}}
				}
			}()
			out[i] = a.enhanceOne(ctx, points[i])
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (a *Adapter) enhanceOne(ctx context.Context, p types.PointOfInterest) types.EnhancedPointOfInterest {
	var (
		desc string
		tips []string
		g    errgroup.Group
	)
	// Description and tips are independent; either may fail alone.
	g.Go(func() error {
		defer a.recoverPoint(ctx, p, "description")
		d, err := a.enhance(ctx, p)
		if err != nil {
			a.logger.DebugContext(ctx, "Description not enhanced", slog.String("point", p.Name), slog.Any("error", err))
			return nil
		}
		desc = d
		return nil
	})
	g.Go(func() error {
		defer a.recoverPoint(ctx, p, "tips")
		t, err := a.tips(ctx, p)
		if err != nil {
			a.logger.DebugContext(ctx, "Tips not fetched", slog.String("point", p.Name), slog.Any("error", err))
			return nil
		}
		tips = t
		return nil
	})
	_ = g.Wait()

	if tips == nil {
		tips = []string{}
	}
	return types.EnhancedPointOfInterest{PointOfInterest: p, AIDescription: desc, Tips: tips}
}

func (a *Adapter) recoverPoint(ctx context.Context, p types.PointOfInterest, part string) {
	if r := recover(); r != nil {
		a.logger.ErrorContext(ctx, "Panic enhancing point",
			slog.String("point", p.Name), slog.String("part", part), slog.Any("panic", r))
	}
}

// GenerateItinerary asks for a day plan over points. Every point is placed
// exactly once; points the reply omitted join the lightest day.
func (a *Adapter) GenerateItinerary(ctx context.Context, city string, points []types.PointOfInterest, days int) ([]types.ItineraryDay, error) {
	if days < 1 {
		return nil, errors.New("days must be at least 1")
	}
	ctx, span := otel.Tracer("NarrativeAdapter").Start(ctx, "GenerateItinerary", trace.WithAttributes(
		attribute.String("city.name", city),
		attribute.Int("days", days),
	))
	defer span.End()

	reply, err := a.generate(ctx, "itinerary", getItineraryPrompt(city, points, days))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Provider call failed")
		return nil, fmt.Errorf("itinerary for %s: %w", city, err)
	}
	planned, err := parseDays(reply)
	if err != nil {
		span.SetStatus(codes.Error, "Parse failure")
		return nil, err
	}
	sort.SliceStable(planned, func(i, j int) bool { return planned[i].Day < planned[j].Day })
	if len(planned) > days {
		planned = planned[:days]
	}

	used := make([]bool, len(points))
	matched := 0
	result := make([]types.ItineraryDay, len(planned))
	for d, pd := range planned {
		theme := string(pd.Theme)
		if theme == "" {
			theme = fmt.Sprintf("Day %d Exploration", d+1)
		}
		result[d] = types.ItineraryDay{Day: d + 1, Theme: theme, Points: []types.PointOfInterest{}}
		for _, name := range pd.Places {
			if i := matchIndex(name, points, used); i >= 0 {
				used[i] = true
				matched++
				result[d].Points = append(result[d].Points, points[i])
			}
		}
	}
	if matched == 0 && len(points) > 0 {
		return nil, fmt.Errorf("%w: itinerary named none of the places", types.ErrParseFailure)
	}

	for i, p := range points {
		if used[i] {
			continue
		}
		lightest := 0
		for d := range result {
			if len(result[d].Points) < len(result[lightest].Points) {
				lightest = d
			}
		}
		result[lightest].Points = append(result[lightest].Points, p)
	}

	span.SetStatus(codes.Ok, "Itinerary generated")
	return result, nil
}
