package narrative

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-poi-discovery/internal/types"
)

func getDestinationPrompt(city string) string {
	return fmt.Sprintf(`
            Provide detailed information about %s as a travel destination.
            Return the response STRICTLY as a JSON object with:
            {
            "name": "City name",
            "country": "Country name",
            "population": "Approximate population",
            "description": "A 2-3 sentence overview of the city for travellers",
            "bestTimeToVisit": "Best months or seasons to visit",
            "currency": "Local currency with symbol",
            "language": "Primary language(s)",
            "timezone": "Timezone with UTC offset",
            "climate": "Short climate summary",
            "averageTemperature": "Yearly average temperature",
            "costLevel": "Low, Medium, High or Very High",
            "economy": "One line on the local economy",
            "safetyRating": "Safety score out of 10",
            "highlights": ["5 must-see highlights"],
            "culturalTips": ["3-4 cultural etiquette tips"],
            "transportation": ["3-4 ways to get around"],
            "keyFacts": ["3 interesting facts"]
            }
            Do not include any text outside the JSON object.`, city)
}

func getEnhancePrompt(p types.PointOfInterest) string {
	return fmt.Sprintf(`
            Rewrite the description of %s (%s) for a traveller in 1-2 engaging sentences.
            Current description: %s
            Return only the new description, no quotes and no extra text.`, p.Name, p.Category, p.Description)
}

func getTipsPrompt(p types.PointOfInterest) string {
	return fmt.Sprintf(`
            Give 3-4 short, practical visitor tips for %s (%s).
            Return the response STRICTLY as a JSON array of strings, for example:
            ["Arrive early to avoid queues", "Book tickets online"]`, p.Name, p.Category)
}

func getRankingPrompt(city string, points []types.PointOfInterest, prefs *types.SearchPreferences) string {
	names := make([]string, len(points))
	for i, p := range points {
		names[i] = p.Name
	}

	interests := "general tourism"
	budget := "medium"
	duration := "flexible"
	style := "balanced"
	if prefs != nil {
		if len(prefs.Interests) > 0 {
			interests = strings.Join(prefs.Interests, ", ")
		}
		if prefs.Budget != "" {
			budget = prefs.Budget
		}
		if prefs.Duration != "" {
			duration = prefs.Duration
		}
		if prefs.TravelStyle != "" {
			style = prefs.TravelStyle
		}
	}

	return fmt.Sprintf(`
            Rank these places in %s by relevance for a traveller.
            Interests: %s
            Budget: %s
            Trip duration: %s
            Travel style: %s
            Places: %s
            Return ONLY the place names, most relevant first, separated by commas.`,
		city, interests, budget, duration, style, strings.Join(names, ", "))
}

func getItineraryPrompt(city string, points []types.PointOfInterest, days int) string {
	lines := make([]string, len(points))
	for i, p := range points {
		lines[i] = fmt.Sprintf("- %s (%s, %s)", p.Name, p.Category, p.Duration)
	}
	return fmt.Sprintf(`
            Plan a %d-day itinerary in %s using only these places:
            %s
            Group nearby places on the same day and give each day a short theme.
            Return the response STRICTLY as a JSON array:
            [
                {"day": 1, "theme": "Theme of the day", "places": ["Exact place name"]}
            ]`, days, city, strings.Join(lines, "\n            "))
}
