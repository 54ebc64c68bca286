package curated

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/FACorreiaa/go-poi-discovery/internal/types"
)

//go:embed destinations.yaml
var embeddedCatalog []byte

type catalogFile struct {
	Destinations  map[string]types.DestinationInfo   `yaml:"destinations"`
	Points        map[string][]types.PointOfInterest `yaml:"points"`
	Countries     map[string]string                  `yaml:"countries"`
	PopularCities []string                           `yaml:"popularCities"`
}

// Catalog is the hand-written fallback data: destination records, point lists,
// country aliases and the autocomplete city list. It is read-only after Load.
type Catalog struct {
	destinations  map[string]types.DestinationInfo
	points        map[string][]types.PointOfInterest
	countries     map[string]string
	popularCities []string
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default parses the embedded catalog once and returns it.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(embeddedCatalog)
	})
	return defaultCatalog, defaultErr
}

// Load parses a catalog document. Destination and country keys are normalized,
// point list keys are matched case-insensitively.
func Load(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing curated catalog: %w", err)
	}

	c := &Catalog{
		destinations:  make(map[string]types.DestinationInfo, len(f.Destinations)),
		points:        make(map[string][]types.PointOfInterest, len(f.Points)),
		countries:     make(map[string]string, len(f.Countries)),
		popularCities: f.PopularCities,
	}
	for k, d := range f.Destinations {
		if !d.IsUsable() {
			return nil, fmt.Errorf("curated destination %q is missing name or description", k)
		}
		c.destinations[Normalize(k)] = d
	}
	for k, list := range f.Points {
		seen := make(map[string]struct{}, len(list))
		for i := range list {
			if _, dup := seen[list[i].ID]; dup {
				return nil, fmt.Errorf("curated points for %q repeat id %q", k, list[i].ID)
			}
			seen[list[i].ID] = struct{}{}
			list[i].Category = types.NormalizeCategory(list[i].Category)
			if list[i].Image == "" {
				list[i].Image = types.DefaultPlaceImage
			}
		}
		c.points[Normalize(k)] = list
	}
	for k, city := range f.Countries {
		c.countries[Normalize(k)] = city
	}
	return c, nil
}

// Normalize is the lookup normalization used for every curated key.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Destination returns a copy of the curated record for city.
func (c *Catalog) Destination(city string) (types.DestinationInfo, bool) {
	d, ok := c.destinations[Normalize(city)]
	if !ok {
		return types.DestinationInfo{}, false
	}
	return d.Clone(), true
}

// Points returns a copy of the curated point list for city, nil when none exists.
func (c *Catalog) Points(city string) []types.PointOfInterest {
	list, ok := c.points[Normalize(city)]
	if !ok {
		return nil
	}
	out := make([]types.PointOfInterest, len(list))
	copy(out, list)
	return out
}

// PointByID finds a curated point across every city.
func (c *Catalog) PointByID(id string) (types.PointOfInterest, bool) {
	for _, list := range c.points {
		for _, p := range list {
			if p.ID == id {
				return p, true
			}
		}
	}
	return types.PointOfInterest{}, false
}

// Alias maps a country name onto its representative city.
func (c *Catalog) Alias(query string) (string, bool) {
	city, ok := c.countries[Normalize(query)]
	return city, ok
}

// Countries lists the alias keys in sorted order.
func (c *Catalog) Countries() []string {
	keys := make([]string, 0, len(c.countries))
	for k := range c.countries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PopularCities returns the autocomplete list in its curated order.
func (c *Catalog) PopularCities() []string {
	out := make([]string, len(c.popularCities))
	copy(out, c.popularCities)
	return out
}

// Generic synthesizes the placeholder record used when nothing else knows the
// destination. It always satisfies DestinationInfo.IsUsable.
func Generic(query string) types.DestinationInfo {
	name := strings.TrimSpace(query)
	if name == "" {
		name = "Unknown destination"
	}
	return types.DestinationInfo{
		Name:               name,
		Country:            "Unknown",
		Population:         "Data not available",
		Currency:           "Local currency",
		Language:           "Local language",
		Timezone:           "Local timezone",
		BestTimeToVisit:    "Year-round (varies by climate)",
		Description:        fmt.Sprintf("%s is a unique destination with its own character and attractions. Each city offers distinct experiences, culture, and history worth exploring.", name),
		Climate:            "Climate varies by location",
		Economy:            "Local economy information not available",
		AverageTemperature: "Varies by season",
		CostLevel:          "Medium",
		SafetyRating:       "Check current travel advisories",
		CulturalTips: []string{
			"Research local customs and etiquette before visiting",
			"Learn a few basic phrases in the local language",
			"Respect local traditions and dress codes",
			"Be mindful of local laws and regulations",
			"Try local cuisine and specialties",
		},
		Transportation: []string{
			"Public transportation options",
			"Taxi and ride-sharing services",
			"Walking in central areas",
			"Car rentals for exploring the region",
			"Check local transport apps and passes",
		},
		KeyFacts: []string{
			"Every destination has unique attractions worth discovering",
			"Local tourism offices can provide the latest information",
			"Check travel advisories before your trip",
		},
	}
}
