package types

// DefaultPlaceImage is used whenever a place has no photo of its own.
const DefaultPlaceImage = "https://images.unsplash.com/photo-1469474968028-56623f02e42e?w=400&h=300&fit=crop"

// Category labels assigned to points of interest.
const (
	CategoryMuseum        = "Museum"
	CategoryPark          = "Park"
	CategoryRestaurant    = "Restaurant"
	CategoryShopping      = "Shopping"
	CategoryReligiousSite = "Religious Site"
	CategoryEntertainment = "Entertainment"
	CategoryZoo           = "Zoo"
	CategoryAquarium      = "Aquarium"
	CategoryGallery       = "Gallery"
	CategoryNightlife     = "Nightlife"
	CategoryAttraction    = "Attraction"
	CategoryOther         = "Other"
)

var knownCategories = map[string]struct{}{
	CategoryMuseum:        {},
	CategoryPark:          {},
	CategoryRestaurant:    {},
	CategoryShopping:      {},
	CategoryReligiousSite: {},
	CategoryEntertainment: {},
	CategoryZoo:           {},
	CategoryAquarium:      {},
	CategoryGallery:       {},
	CategoryNightlife:     {},
	CategoryAttraction:    {},
	CategoryOther:         {},
}

// NormalizeCategory maps a free label onto the fixed set. Empty becomes
// Attraction, anything unknown becomes Other.
func NormalizeCategory(label string) string {
	if label == "" {
		return CategoryAttraction
	}
	if _, ok := knownCategories[label]; ok {
		return label
	}
	return CategoryOther
}

// PointOfInterest is one visitable place within a destination.
type PointOfInterest struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Image       string   `json:"image" yaml:"image"`
	Category    string   `json:"category" yaml:"category"`
	Duration    string   `json:"duration" yaml:"duration"`
	Rating      *float64 `json:"rating,omitempty" yaml:"rating"`
	Address     string   `json:"address,omitempty" yaml:"address"`
	PriceLevel  *int     `json:"priceLevel,omitempty" yaml:"priceLevel"`
	IsOpen      *bool    `json:"isOpen,omitempty" yaml:"isOpen"`
	Website     string   `json:"website,omitempty" yaml:"website"`
	Phone       string   `json:"phone,omitempty" yaml:"phone"`
	Latitude    float64  `json:"latitude,omitempty" yaml:"latitude"`
	Longitude   float64  `json:"longitude,omitempty" yaml:"longitude"`
}

// RatingOrZero treats a missing rating as 0.
func (p PointOfInterest) RatingOrZero() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// EnhancedPointOfInterest is a point plus the AI-written annotations.
type EnhancedPointOfInterest struct {
	PointOfInterest
	AIDescription   string   `json:"aiDescription,omitempty"`
	Tips            []string `json:"tips,omitempty"`
	BestTimeToVisit string   `json:"bestTimeToVisit,omitempty"`
	NearbyPlaces    []string `json:"nearbyPlaces,omitempty"`
}

// Plain wraps points without any enhancement.
func Plain(points []PointOfInterest) []EnhancedPointOfInterest {
	out := make([]EnhancedPointOfInterest, 0, len(points))
	for _, p := range points {
		out = append(out, EnhancedPointOfInterest{PointOfInterest: p})
	}
	return out
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
