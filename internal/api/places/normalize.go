package places

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/FACorreiaa/go-poi-discovery/internal/types"
)

const maxReviewRunes = 150

// categoryRules is checked top to bottom; the first rule with a matching type tag wins.
var categoryRules = []struct {
	tags     []string
	category string
}{
	{[]string{"museum"}, types.CategoryMuseum},
	{[]string{"park"}, types.CategoryPark},
	{[]string{"restaurant", "food"}, types.CategoryRestaurant},
	{[]string{"shopping_mall", "store"}, types.CategoryShopping},
	{[]string{"church", "place_of_worship"}, types.CategoryReligiousSite},
	{[]string{"amusement_park", "casino"}, types.CategoryEntertainment},
	{[]string{"zoo"}, types.CategoryZoo},
	{[]string{"aquarium"}, types.CategoryAquarium},
	{[]string{"art_gallery"}, types.CategoryGallery},
	{[]string{"night_club", "bar"}, types.CategoryNightlife},
}

var durations = map[string]string{
	types.CategoryMuseum:        "2-3 hours",
	types.CategoryGallery:       "2-3 hours",
	types.CategoryPark:          "1-2 hours",
	types.CategoryRestaurant:    "1-2 hours",
	types.CategoryShopping:      "2-4 hours",
	types.CategoryEntertainment: "4-6 hours",
	types.CategoryZoo:           "3-4 hours",
	types.CategoryAquarium:      "3-4 hours",
	types.CategoryReligiousSite: "30-60 minutes",
	types.CategoryNightlife:     "2-4 hours",
}

const defaultDuration = "1-2 hours"

// CategoryFor maps provider type tags onto a category label.
func CategoryFor(tags []string) string {
	for _, rule := range categoryRules {
		for _, want := range rule.tags {
			for _, tag := range tags {
				if tag == want {
					return rule.category
				}
			}
		}
	}
	return types.CategoryAttraction
}

func DurationFor(category string) string {
	if d, ok := durations[category]; ok {
		return d
	}
	return defaultDuration
}

func describe(tags []string, vicinity string, reviews []Review) string {
	for _, r := range reviews {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			continue
		}
		if utf8.RuneCountInString(text) > maxReviewRunes {
			return string([]rune(text)[:maxReviewRunes]) + "..."
		}
		return text
	}

	area := vicinity
	if area == "" {
		area = "the area"
	}
	switch {
	case hasTag(tags, "museum"):
		return fmt.Sprintf("A fascinating museum in %s with rich cultural exhibits.", area)
	case hasTag(tags, "park"):
		return "A beautiful park perfect for relaxation and outdoor activities."
	case hasTag(tags, "restaurant"):
		return "A popular dining destination known for its excellent cuisine."
	case hasTag(tags, "tourist_attraction"):
		return "A must-visit attraction that showcases the best of local culture and history."
	default:
		return fmt.Sprintf("An interesting place to visit in %s.", area)
	}
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}

// Normalize maps a nearby-search record and its optional details onto a
// PointOfInterest. The output depends only on the inputs and the adapter's
// credentials.
func (a *Adapter) Normalize(raw RawPlace, details *RawPlaceDetails) types.PointOfInterest {
	tags := raw.Types
	if details != nil && len(details.Types) > 0 {
		tags = details.Types
	}
	category := CategoryFor(tags)

	p := types.PointOfInterest{
		ID:         raw.PlaceID,
		Name:       raw.Name,
		Category:   category,
		Duration:   DurationFor(category),
		Rating:     raw.Rating,
		PriceLevel: raw.PriceLevel,
		Address:    raw.Vicinity,
		Latitude:   raw.Geometry.Location.Lat,
		Longitude:  raw.Geometry.Location.Lng,
		Image:      types.DefaultPlaceImage,
	}
	if raw.OpeningHours != nil {
		p.IsOpen = raw.OpeningHours.OpenNow
	}

	photos := raw.Photos
	var reviews []Review
	if details != nil {
		if details.Name != "" {
			p.Name = details.Name
		}
		if details.Rating != nil {
			p.Rating = details.Rating
		}
		if details.PriceLevel != nil {
			p.PriceLevel = details.PriceLevel
		}
		if details.FormattedAddress != "" {
			p.Address = details.FormattedAddress
		}
		if details.OpeningHours != nil && details.OpeningHours.OpenNow != nil {
			p.IsOpen = details.OpeningHours.OpenNow
		}
		if len(details.Photos) > 0 {
			photos = details.Photos
		}
		p.Website = details.Website
		p.Phone = details.FormattedPhoneNumber
		reviews = details.Reviews
	}

	if len(photos) > 0 && photos[0].PhotoReference != "" {
		p.Image = a.photoURL(photos[0].PhotoReference)
	}
	p.Description = describe(tags, raw.Vicinity, reviews)
	return p
}

// degraded is the record used when a detail fetch failed.
func degraded(raw RawPlace) types.PointOfInterest {
	category := CategoryFor(raw.Types)
	return types.PointOfInterest{
		ID:          raw.PlaceID,
		Name:        raw.Name,
		Description: raw.Name,
		Image:       types.DefaultPlaceImage,
		Category:    category,
		Duration:    DurationFor(category),
		Rating:      raw.Rating,
		Address:     raw.Vicinity,
		Latitude:    raw.Geometry.Location.Lat,
		Longitude:   raw.Geometry.Location.Lng,
	}
}
