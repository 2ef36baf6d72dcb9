// Package parse turns spreadsheet rows into market area drafts. It
// implements the two supported layouts and the free-text type classifier
// shared by both.
package parse

import (
	"strings"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
)

// Policy controls what happens when a definition type string matches no
// known kind. Both behaviors were observed across workbook variants, so
// the choice is configuration, not code.
type Policy string

const (
	// PolicyPermissive defaults unmatched types to tract.
	PolicyPermissive Policy = "permissive"

	// PolicyRestrictive drops rows with unmatched types.
	PolicyRestrictive Policy = "restrictive"
)

// exactKinds maps normalized type strings to kinds.
var exactKinds = map[string]marketarea.Kind{
	"ZIP":                   marketarea.KindZip,
	"ZCTA":                  marketarea.KindZip,
	"COUNTY":                marketarea.KindCounty,
	"TRACT":                 marketarea.KindTract,
	"PLACE":                 marketarea.KindPlace,
	"BLOCK":                 marketarea.KindBlock,
	"BLOCK GROUP":           marketarea.KindBlockGroup,
	"BLOCKGROUP":            marketarea.KindBlockGroup,
	"CBSA":                  marketarea.KindCBSA,
	"STATE":                 marketarea.KindState,
	"MD":                    marketarea.KindMD,
	"METRO DIVISION":        marketarea.KindMD,
	"METRODIVISION":         marketarea.KindMD,
	"METROPOLITAN DIVISION": marketarea.KindMD,
	"RADIUS":                marketarea.KindRadius,
	"DRIVE TIME":            marketarea.KindDriveTime,
	"DRIVETIME":             marketarea.KindDriveTime,
	"DRIVE-TIME":            marketarea.KindDriveTime,
}

// Classify maps a free-text definition type to a canonical kind. The
// second return is false when the type is unsupported: either it matched
// nothing under the restrictive policy, or the matched kind is excluded
// by a non-empty allow-list. Pure function; never errors.
func Classify(rawType string, policy Policy, supported map[marketarea.Kind]bool) (marketarea.Kind, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(rawType))

	kind, ok := exactKinds[normalized]
	if !ok {
		kind, ok = classifyHeuristic(normalized)
	}
	if !ok {
		if policy != PolicyPermissive {
			return "", false
		}
		kind = marketarea.KindTract
	}

	if len(supported) > 0 && !supported[kind] {
		return kind, false
	}
	return kind, true
}

// classifyHeuristic applies substring matching in priority order. Metro
// division phrases come first so "METRO" never collides with other kinds.
func classifyHeuristic(s string) (marketarea.Kind, bool) {
	has := func(sub string) bool { return strings.Contains(s, sub) }

	switch {
	case s == "":
		return "", false
	case has("METRO DIVISION"), has("METROPOLITAN DIVISION"), has("METRODIVISION"), has("METRO"):
		return marketarea.KindMD, true
	case has("ZIP"), has("ZCTA"):
		return marketarea.KindZip, true
	case has("COUNTY"):
		return marketarea.KindCounty, true
	case has("TRACT"):
		return marketarea.KindTract, true
	case has("BLOCK") && has("GROUP"):
		return marketarea.KindBlockGroup, true
	case has("BLOCK"):
		return marketarea.KindBlock, true
	case has("PLACE"):
		return marketarea.KindPlace, true
	case has("STATE"):
		return marketarea.KindState, true
	case has("CBSA"):
		return marketarea.KindCBSA, true
	case has("RADIUS"):
		return marketarea.KindRadius, true
	case has("DRIVE"), has("TIME"):
		return marketarea.KindDriveTime, true
	default:
		return "", false
	}
}
