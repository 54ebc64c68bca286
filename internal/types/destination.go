package types

// DestinationInfo is the narrative record for a city. Name and Description are
// always set on values handed to callers; every other field may be empty.
type DestinationInfo struct {
	Name               string   `json:"name" yaml:"name"`
	Country            string   `json:"country,omitempty" yaml:"country"`
	Population         string   `json:"population,omitempty" yaml:"population"`
	Currency           string   `json:"currency,omitempty" yaml:"currency"`
	Language           string   `json:"language,omitempty" yaml:"language"`
	Timezone           string   `json:"timezone,omitempty" yaml:"timezone"`
	BestTimeToVisit    string   `json:"bestTimeToVisit,omitempty" yaml:"bestTimeToVisit"`
	Description        string   `json:"description" yaml:"description"`
	Climate            string   `json:"climate,omitempty" yaml:"climate"`
	Economy            string   `json:"economy,omitempty" yaml:"economy"`
	AverageTemperature string   `json:"averageTemperature,omitempty" yaml:"averageTemperature"`
	CostLevel          string   `json:"costLevel,omitempty" yaml:"costLevel"`
	SafetyRating       string   `json:"safetyRating,omitempty" yaml:"safetyRating"`
	Highlights         []string `json:"highlights,omitempty" yaml:"highlights"`
	CulturalTips       []string `json:"culturalTips,omitempty" yaml:"culturalTips"`
	Transportation     []string `json:"transportation,omitempty" yaml:"transportation"`
	KeyFacts           []string `json:"keyFacts,omitempty" yaml:"keyFacts"`
}

// IsUsable reports whether the record carries the two mandatory fields.
func (d *DestinationInfo) IsUsable() bool {
	return d != nil && d.Name != "" && d.Description != ""
}

// MergeMissing returns a copy of d where every empty field is taken from other.
// Values already present in d are never overridden.
func (d DestinationInfo) MergeMissing(other DestinationInfo) DestinationInfo {
	out := d
	fillString(&out.Name, other.Name)
	fillString(&out.Country, other.Country)
	fillString(&out.Population, other.Population)
	fillString(&out.Currency, other.Currency)
	fillString(&out.Language, other.Language)
	fillString(&out.Timezone, other.Timezone)
	fillString(&out.BestTimeToVisit, other.BestTimeToVisit)
	fillString(&out.Description, other.Description)
	fillString(&out.Climate, other.Climate)
	fillString(&out.Economy, other.Economy)
	fillString(&out.AverageTemperature, other.AverageTemperature)
	fillString(&out.CostLevel, other.CostLevel)
	fillString(&out.SafetyRating, other.SafetyRating)
	out.Highlights = fillList(d.Highlights, other.Highlights)
	out.CulturalTips = fillList(d.CulturalTips, other.CulturalTips)
	out.Transportation = fillList(d.Transportation, other.Transportation)
	out.KeyFacts = fillList(d.KeyFacts, other.KeyFacts)
	return out
}

// Clone returns a deep copy so cached records are never shared with callers.
func (d DestinationInfo) Clone() DestinationInfo {
	out := d
	out.Highlights = cloneStrings(d.Highlights)
	out.CulturalTips = cloneStrings(d.CulturalTips)
	out.Transportation = cloneStrings(d.Transportation)
	out.KeyFacts = cloneStrings(d.KeyFacts)
	return out
}

func fillString(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}

func fillList(dst, src []string) []string {
	if len(dst) > 0 {
		return cloneStrings(dst)
	}
	return cloneStrings(src)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
