package narrative

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-poi-discovery/internal/types"
)

// stripCodeFence removes a surrounding markdown code block, if any.
func stripCodeFence(response string) string {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}

// extractBalanced returns the first substring of s that starts with open and
// ends at its matching close. Delimiters inside JSON string literals are ignored.
func extractBalanced(s string, open, close byte) (string, bool) {
	for start := strings.IndexByte(s, open); start >= 0; {
		if end, ok := matchFrom(s, start, open, close); ok {
			return s[start : end+1], true
		}
		next := strings.IndexByte(s[start+1:], open)
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

func matchFrom(s string, start int, open, close byte) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// flexString accepts a JSON string, number or bool.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	if b[0] == '{' || b[0] == '[' {
		return fmt.Errorf("expected scalar, got %s", b[:1])
	}
	*f = flexString(string(b))
	return nil
}

// flexList accepts an array of scalars or a single string.
type flexList []string

func (f *flexList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] != '[' {
		var one flexString
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		if one != "" {
			*f = flexList{string(one)}
		}
		return nil
	}
	var items []flexString
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it != "" {
			out = append(out, string(it))
		}
	}
	*f = out
	return nil
}

type destinationPayload struct {
	Name               flexString `json:"name"`
	Country            flexString `json:"country"`
	Population         flexString `json:"population"`
	Currency           flexString `json:"currency"`
	Language           flexString `json:"language"`
	Timezone           flexString `json:"timezone"`
	BestTimeToVisit    flexString `json:"bestTimeToVisit"`
	Description        flexString `json:"description"`
	Climate            flexString `json:"climate"`
	Economy            flexString `json:"economy"`
	AverageTemperature flexString `json:"averageTemperature"`
	CostLevel          flexString `json:"costLevel"`
	SafetyRating       flexString `json:"safetyRating"`
	Highlights         flexList   `json:"highlights"`
	CulturalTips       flexList   `json:"culturalTips"`
	Transportation     flexList   `json:"transportation"`
	KeyFacts           flexList   `json:"keyFacts"`
}

// parseDestination turns a free-text reply into a validated record. Any reply
// without a usable object yields an error wrapping types.ErrParseFailure.
func parseDestination(raw string) (*types.DestinationInfo, error) {
	obj, ok := extractBalanced(stripCodeFence(raw), '{', '}')
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in reply", types.ErrParseFailure)
	}
	var p destinationPayload
	if err := json.Unmarshal([]byte(obj), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrParseFailure, err)
	}
	info := &types.DestinationInfo{
		Name:               string(p.Name),
		Country:            string(p.Country),
		Population:         string(p.Population),
		Currency:           string(p.Currency),
		Language:           string(p.Language),
		Timezone:           string(p.Timezone),
		BestTimeToVisit:    string(p.BestTimeToVisit),
		Description:        string(p.Description),
		Climate:            string(p.Climate),
		Economy:            string(p.Economy),
		AverageTemperature: string(p.AverageTemperature),
		CostLevel:          string(p.CostLevel),
		SafetyRating:       string(p.SafetyRating),
		Highlights:         []string(p.Highlights),
		CulturalTips:       []string(p.CulturalTips),
		Transportation:     []string(p.Transportation),
		KeyFacts:           []string(p.KeyFacts),
	}
	if !info.IsUsable() {
		return nil, fmt.Errorf("%w: record lacks name or description", types.ErrParseFailure)
	}
	return info, nil
}

// parseStringList extracts the first JSON array of strings from raw.
func parseStringList(raw string) ([]string, error) {
	arr, ok := extractBalanced(stripCodeFence(raw), '[', ']')
	if !ok {
		return nil, fmt.Errorf("%w: no JSON array in reply", types.ErrParseFailure)
	}
	var items flexList
	if err := json.Unmarshal([]byte(arr), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrParseFailure, err)
	}
	return []string(items), nil
}

type dayPayload struct {
	Day    int        `json:"day"`
	Theme  flexString `json:"theme"`
	Places flexList   `json:"places"`
}

func parseDays(raw string) ([]dayPayload, error) {
	arr, ok := extractBalanced(stripCodeFence(raw), '[', ']')
	if !ok {
		return nil, fmt.Errorf("%w: no JSON array in reply", types.ErrParseFailure)
	}
	// The first array may be a nested "places" list when the model wraps the
	// plan in an object, so fall back to the enclosing object.
	var days []dayPayload
	if err := json.Unmarshal([]byte(arr), &days); err == nil && len(days) > 0 {
		return days, nil
	}
	obj, ok := extractBalanced(stripCodeFence(raw), '{', '}')
	if ok {
		var wrapped struct {
			Days []dayPayload `json:"days"`
		}
		if err := json.Unmarshal([]byte(obj), &wrapped); err == nil && len(wrapped.Days) > 0 {
			return wrapped.Days, nil
		}
	}
	return nil, fmt.Errorf("%w: no day plan in reply", types.ErrParseFailure)
}

// splitNames breaks a ranking reply into candidate names, tolerating
// numbering, quotes and one-per-line answers.
func splitNames(reply string) []string {
	reply = strings.NewReplacer("\n", ",", "\r", ",").Replace(reply)
	parts := strings.Split(reply, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		name = strings.TrimLeft(name, "-*• ")
		if i := strings.IndexAny(name, ".)"); i > 0 {
			if _, err := strconv.Atoi(name[:i]); err == nil {
				name = strings.TrimSpace(name[i+1:])
			}
		}
		name = strings.Trim(name, "\"'` ")
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}
