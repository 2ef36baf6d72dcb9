package resolve

import (
	"strings"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/pkg/arcgis"
)

// cityToCounty maps metro division principal cities to their county
// names. Feature names for divisions are often county based, so a county
// synonym hit is the strongest name signal after a full-name match.
var cityToCounty = map[string]string{
	"los angeles":     "los angeles",
	"long beach":      "los angeles",
	"glendale":        "los angeles",
	"anaheim":         "orange",
	"santa ana":       "orange",
	"irvine":          "orange",
	"oakland":         "alameda",
	"berkeley":        "alameda",
	"san francisco":   "san francisco",
	"san rafael":      "marin",
	"san mateo":       "san mateo",
	"new york":        "new york",
	"jersey city":     "hudson",
	"newark":          "essex",
	"white plains":    "westchester",
	"chicago":         "cook",
	"naperville":      "dupage",
	"evanston":        "cook",
	"elgin":           "kane",
	"gary":            "lake",
	"dallas":          "dallas",
	"plano":           "collin",
	"irving":          "dallas",
	"fort worth":      "tarrant",
	"arlington":       "tarrant",
	"boston":          "suffolk",
	"cambridge":       "middlesex",
	"newton":          "middlesex",
	"framingham":      "middlesex",
	"detroit":         "wayne",
	"dearborn":        "wayne",
	"livonia":         "wayne",
	"warren":          "macomb",
	"troy":            "oakland",
	"miami":           "miami-dade",
	"fort lauderdale": "broward",
	"pompano beach":   "broward",
	"west palm beach": "palm beach",
	"boca raton":      "palm beach",
	"seattle":         "king",
	"bellevue":        "king",
	"kent":            "king",
	"tacoma":          "pierce",
	"lakewood":        "pierce",
	"philadelphia":    "philadelphia",
	"camden":          "camden",
	"wilmington":      "new castle",
	"frederick":       "frederick",
	"gaithersburg":    "montgomery",
	"rockville":       "montgomery",
	"silver spring":   "montgomery",
}

// Match picks the feature backing a location, or nil when none qualifies.
func Match(loc marketarea.Location, features []arcgis.Feature, kind marketarea.Kind) *arcgis.Feature {
	if len(features) == 0 {
		return nil
	}

	if kind == marketarea.KindMD || loc.IsMetroDivisionHint {
		return matchMetroDivision(loc, features)
	}

	switch kind {
	case marketarea.KindZip:
		id := strings.TrimSpace(loc.ID)
		for i, f := range features {
			if f.Attr("ZCTA5", "ZIP", "GEOID") == id {
				return &features[i]
			}
		}
		return nil

	case marketarea.KindCounty:
		want := strings.ToLower(stripCountySuffix(loc.Name))
		for i, f := range features {
			have := strings.ToLower(stripCountySuffix(f.Attr("NAME", "BASENAME")))
			if containsEither(have, want) {
				return &features[i]
			}
		}
		return nil

	case marketarea.KindPlace:
		want := strings.ToLower(stripPlaceSuffix(loc.Name))
		for i, f := range features {
			have := strings.ToLower(stripPlaceSuffix(f.Attr("NAME", "BASENAME")))
			if containsEither(have, want) {
				return &features[i]
			}
		}
		return nil

	case marketarea.KindTract:
		id := strings.TrimSpace(loc.ID)
		for i, f := range features {
			if f.Attr("TRACT_FIPS", "FIPS", "GEOID") == id {
				return &features[i]
			}
		}
		return nil

	default:
		id := strings.TrimSpace(loc.ID)
		want := strings.ToLower(strings.TrimSpace(loc.Name))
		for i, f := range features {
			if f.Attr("GEOID", "OBJECTID", "OID") == id {
				return &features[i]
			}
			if want != "" && containsEither(strings.ToLower(f.Attr("NAME", "BASENAME")), want) {
				return &features[i]
			}
		}
		return nil
	}
}

// matchMetroDivision scores every candidate and returns the best one.
// Strictly-greater comparison keeps the first-seen feature on ties; a
// best score of 0 means no match.
func matchMetroDivision(loc marketarea.Location, features []arcgis.Feature) *arcgis.Feature {
	cleaned := cleanMDName(loc.Name)
	parts := splitMDParts(cleaned)

	best := -1
	bestScore := 0
	for i, f := range features {
		score := scoreMetroDivision(f, cleaned, parts)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 {
		return nil
	}
	return &features[best]
}

func scoreMetroDivision(f arcgis.Feature, cleaned string, parts []string) int {
	featureName := cleanMDName(f.Attr("NAME", "BASENAME"))
	score := 0

	if cleaned != "" && strings.Contains(featureName, cleaned) {
		score += 10
	}

	for _, part := range parts {
		if county, ok := cityToCounty[part]; ok && strings.Contains(featureName, county) {
			score += 8
		}
		if strings.Contains(featureName, part) {
			score += 3
			continue
		}
		for _, word := range strings.Fields(part) {
			if len(word) >= 3 && strings.Contains(featureName, word) {
				score++
			}
		}
	}

	if f.Attr("MTFCC") == metroDivisionCode {
		score += 5
	}
	return score
}

// cleanMDName lowercases a metro division name and strips the division
// suffix plus any trailing state abbreviation.
func cleanMDName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	for _, suffix := range []string{"metropolitan division", "metro division", "metrodivision"} {
		s = strings.ReplaceAll(s, suffix, "")
	}
	s = strings.TrimSpace(s)

	// "los angeles-long beach-glendale, ca" -> drop the ", ca" tail.
	if idx := strings.LastIndex(s, ","); idx >= 0 {
		tail := strings.TrimSpace(s[idx+1:])
		if len(tail) == 2 {
			s = strings.TrimSpace(s[:idx])
		}
	}
	return s
}

// splitMDParts splits a cleaned division name into its city components.
func splitMDParts(cleaned string) []string {
	var parts []string
	for _, chunk := range strings.FieldsFunc(cleaned, func(r rune) bool {
		return r == '-' || r == ','
	}) {
		chunk = strings.TrimSpace(chunk)
		if chunk != "" {
			parts = append(parts, chunk)
		}
	}
	return parts
}

func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func stripCountySuffix(name string) string {
	s := strings.TrimSpace(name)
	lower := strings.ToLower(s)
	if strings.HasSuffix(lower, " county") {
		return strings.TrimSpace(s[:len(s)-len(" county")])
	}
	return s
}

var placeSuffixes = []string{" city", " town", " village", " borough", " cdp"}

func stripPlaceSuffix(name string) string {
	s := strings.TrimSpace(name)
	lower := strings.ToLower(s)
	for _, suffix := range placeSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return strings.TrimSpace(s[:len(s)-len(suffix)])
		}
	}
	return s
}
