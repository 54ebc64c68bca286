package types

import "errors"

// Failure taxonomy shared by the adapters and the search service.
var (
	ErrConfigurationMissing = errors.New("provider credentials not configured")
	ErrNotFound             = errors.New("no match found")
	ErrProviderUnavailable  = errors.New("provider unavailable")
	ErrProviderError        = errors.New("provider returned an error")
	ErrParseFailure         = errors.New("could not parse provider response")
	ErrExhaustedFallback    = errors.New("no data source produced a usable result")
	ErrInvalidRequest       = errors.New("invalid request")
)

// Where a result came from.
const (
	SourceAI       = "ai"
	SourceCurated  = "curated"
	SourceGeneric  = "generic"
	SourceProvider = "provider"
	SourceNone     = "none"
)

// SearchPreferences steer the optional preference ranking.
type SearchPreferences struct {
	Interests   []string `json:"interests,omitempty"`
	Budget      string   `json:"budget,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	TravelStyle string   `json:"travelStyle,omitempty"`
}

// IsEmpty reports whether no preference field is set.
func (p *SearchPreferences) IsEmpty() bool {
	return p == nil || (len(p.Interests) == 0 && p.Budget == "" && p.Duration == "" && p.TravelStyle == "")
}

// SearchResult is the unit returned by a destination search.
type SearchResult struct {
	Query           string                    `json:"query"`
	ResolvedCity    string                    `json:"resolvedCity,omitempty"`
	DestinationInfo *DestinationInfo          `json:"destinationInfo"`
	Points          []EnhancedPointOfInterest `json:"points"`
	Source          string                    `json:"source,omitempty"`
	PointsSource    string                    `json:"pointsSource,omitempty"`
	Error           string                    `json:"error,omitempty"`
	Suggestions     []string                  `json:"suggestions,omitempty"`
}

// ErrorBody is the user-facing failure shape.
type ErrorBody struct {
	Error       string   `json:"error"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// DefaultSuggestions are the remediation hints attached to user-facing failures.
var DefaultSuggestions = []string{
	"Check the spelling of the destination",
	"Use the full city name (e.g. \"New York\" instead of \"NY\")",
	"Try a major city nearby",
	"Try again in a few minutes",
}

// ServiceStatus reports provider configuration without touching the network.
type ServiceStatus struct {
	NarrativeAvailable bool   `json:"narrativeAvailable"`
	NarrativeProvider  string `json:"narrativeProvider,omitempty"`
	PointsAvailable    bool   `json:"pointsAvailable"`
	MapsAvailable      bool   `json:"mapsAvailable"`
	CachedEntries      int    `json:"cachedEntries"`
}

// ItineraryDay is one day of a generated plan.
type ItineraryDay struct {
	Day    int               `json:"day"`
	Theme  string            `json:"theme"`
	Points []PointOfInterest `json:"points"`
}

// Itinerary is a day-segmented plan for one city.
type Itinerary struct {
	ID     string         `json:"id"`
	City   string         `json:"city"`
	Days   []ItineraryDay `json:"days"`
	Source string         `json:"source"`
}

// ItineraryRequest is the body accepted by the itinerary endpoint.
type ItineraryRequest struct {
	City   string            `json:"city"`
	Days   int               `json:"days"`
	Points []PointOfInterest `json:"points"`
}
