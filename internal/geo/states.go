// Package geo provides static US state lookup tables used when building
// feature service queries and fallback geometries.
package geo

import "strings"

// stateFIPS maps USPS state abbreviations to 2-digit state FIPS codes.
var stateFIPS = map[string]string{
	"AL": "01", "AK": "02", "AZ": "04", "AR": "05", "CA": "06",
	"CO": "08", "CT": "09", "DE": "10", "DC": "11", "FL": "12",
	"GA": "13", "HI": "15", "ID": "16", "IL": "17", "IN": "18",
	"IA": "19", "KS": "20", "KY": "21", "LA": "22", "ME": "23",
	"MD": "24", "MA": "25", "MI": "26", "MN": "27", "MS": "28",
	"MO": "29", "MT": "30", "NE": "31", "NV": "32", "NH": "33",
	"NJ": "34", "NM": "35", "NY": "36", "NC": "37", "ND": "38",
	"OH": "39", "OK": "40", "OR": "41", "PA": "42", "RI": "44",
	"SC": "45", "SD": "46", "TN": "47", "TX": "48", "UT": "49",
	"VT": "50", "VA": "51", "WA": "53", "WV": "54", "WI": "55",
	"WY": "56", "PR": "72",
}

// stateNames maps USPS abbreviations to full state names.
var stateNames = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut",
	"DE": "Delaware", "DC": "District of Columbia", "FL": "Florida",
	"GA": "Georgia", "HI": "Hawaii", "ID": "Idaho", "IL": "Illinois",
	"IN": "Indiana", "IA": "Iowa", "KS": "Kansas", "KY": "Kentucky",
	"LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota",
	"MS": "Mississippi", "MO": "Missouri", "MT": "Montana",
	"NE": "Nebraska", "NV": "Nevada", "NH": "New Hampshire",
	"NJ": "New Jersey", "NM": "New Mexico", "NY": "New York",
	"NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio",
	"OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania",
	"RI": "Rhode Island", "SC": "South Carolina", "SD": "South Dakota",
	"TN": "Tennessee", "TX": "Texas", "UT": "Utah", "VT": "Vermont",
	"VA": "Virginia", "WA": "Washington", "WV": "West Virginia",
	"WI": "Wisconsin", "WY": "Wyoming", "PR": "Puerto Rico",
}

// nameToAbbr is the lowercase full-name index, built once from stateNames.
var nameToAbbr = func() map[string]string {
	m := make(map[string]string, len(stateNames))
	for abbr, name := range stateNames {
		m[strings.ToLower(name)] = abbr
	}
	return m
}()

// StateAbbr resolves a state given as an abbreviation, full name, or FIPS
// code to its USPS abbreviation. Returns "" when unknown.
func StateAbbr(state string) string {
	s := strings.TrimSpace(state)
	if s == "" {
		return ""
	}
	upper := strings.ToUpper(s)
	if _, ok := stateFIPS[upper]; ok {
		return upper
	}
	if abbr, ok := nameToAbbr[strings.ToLower(s)]; ok {
		return abbr
	}
	// 2-digit FIPS lookup.
	if len(s) == 2 {
		for abbr, fips := range stateFIPS {
			if fips == s {
				return abbr
			}
		}
	}
	return ""
}

// StateFIPS resolves a state (abbreviation, full name, or FIPS code) to
// its 2-digit FIPS code. Returns "" when unknown.
func StateFIPS(state string) string {
	if abbr := StateAbbr(state); abbr != "" {
		return stateFIPS[abbr]
	}
	return ""
}

// StateName returns the full name for a state abbreviation, or "" when
// unknown.
func StateName(abbr string) string {
	return stateNames[strings.ToUpper(strings.TrimSpace(abbr))]
}
