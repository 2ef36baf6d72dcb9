// Package normalize canonicalizes parsed drafts before resolution:
// location states are defaulted, census ids are zero padded to their
// official widths, and metro division candidates are tagged for the
// matcher.
package normalize

import (
	"strings"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
)

// Options configures draft normalization.
type Options struct {
	// DefaultState is attached to any location still missing one.
	DefaultState string
}

// Official GEOID widths. Block ids are state(2)+county(3)+tract(6)+block(4),
// block group ids stop after the single group digit.
const (
	blockIDWidth      = 15
	blockGroupIDWidth = 12
)

// mdCityNames are principal cities of known census metropolitan
// divisions. A hyphenated location name containing one of these is a
// strong md candidate even without the "Metro Division" phrase.
var mdCityNames = []string{
	"los angeles",
	"long beach",
	"glendale",
	"anaheim",
	"santa ana",
	"irvine",
	"san francisco",
	"oakland",
	"san rafael",
	"new york",
	"jersey city",
	"newark",
	"nassau",
	"white plains",
	"chicago",
	"naperville",
	"elgin",
	"gary",
	"dallas",
	"fort worth",
	"plano",
	"arlington",
	"houston",
	"boston",
	"cambridge",
	"framingham",
	"detroit",
	"dearborn",
	"warren",
	"troy",
	"miami",
	"fort lauderdale",
	"west palm beach",
	"seattle",
	"bellevue",
	"tacoma",
	"philadelphia",
	"camden",
	"wilmington",
	"montgomery county",
	"frederick",
	"gaithersburg",
	"rockville",
	"silver spring",
}

// Draft normalizes every location of d in place. Radius and drive time
// drafts carry no locations and pass through untouched.
func Draft(d *marketarea.Draft, opts Options) {
	for i := range d.Locations {
		Location(&d.Locations[i], d.Kind, opts)
	}
}

// Location normalizes a single location in place.
func Location(loc *marketarea.Location, kind marketarea.Kind, opts Options) {
	loc.ID = strings.TrimSpace(loc.ID)
	loc.Name = strings.TrimSpace(loc.Name)
	if loc.Name == "" {
		loc.Name = loc.ID
	}

	loc.State = strings.TrimSpace(loc.State)
	if loc.State == "" {
		loc.State = opts.DefaultState
	}

	switch kind {
	case marketarea.KindBlock:
		loc.ID = padNumericID(loc.ID, blockIDWidth)
	case marketarea.KindBlockGroup:
		loc.ID = padNumericID(loc.ID, blockGroupIDWidth)
	}

	loc.IsMetroDivisionHint = IsMetroDivisionName(loc.Name)
}

// padNumericID left-pads a purely numeric id with zeros to width.
// Non-numeric ids and ids already at or past width pass through.
func padNumericID(id string, width int) string {
	if id == "" || len(id) >= width || !isDigits(id) {
		return id
	}
	return strings.Repeat("0", width-len(id)) + id
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsMetroDivisionName reports whether a location name looks like a
// census metropolitan division. The explicit phrase always qualifies; a
// hyphenated name qualifies when it contains a known division city.
// Advisory only, the matcher still scores candidates.
func IsMetroDivisionName(name string) bool {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "metro division") || strings.Contains(lower, "metropolitan division") {
		return true
	}
	if !strings.Contains(lower, "-") {
		return false
	}
	for _, city := range mdCityNames {
		if strings.Contains(lower, city) {
			return true
		}
	}
	return false
}
