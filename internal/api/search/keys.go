package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-poi-discovery/internal/types"
)

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// searchKey identifies a full search result: normalized query plus the
// preferences that shaped its ranking.
func searchKey(norm string, prefs *types.SearchPreferences) string {
	return searchPrefix(norm) + preferencesFingerprint(prefs)
}

func searchPrefix(norm string) string {
	return "search:" + norm + ":"
}

func preferencesFingerprint(prefs *types.SearchPreferences) string {
	if prefs.IsEmpty() {
		return "{}"
	}
	b, err := json.Marshal(prefs)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func infoKey(norm string) string {
	return "city_info_" + norm
}

func placesPrefix(norm string) string {
	return "places_" + norm + "_"
}

func placesKey(norm string, limit int) string {
	return fmt.Sprintf("%s%d", placesPrefix(norm), limit)
}

func citySearchKey(q string) string {
	return "city_search_" + q
}

func placeKey(id string) string {
	return "place_" + id
}
