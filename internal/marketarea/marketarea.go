// Package marketarea defines the market area domain model shared by the
// import pipeline, stores, and visualizers.
package marketarea

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Kind is the canonical geography classification of a market area.
type Kind string

// Canonical kinds. These match the ma_type choices accepted by the
// market area API.
const (
	KindZip        Kind = "zip"
	KindCounty     Kind = "county"
	KindPlace      Kind = "place"
	KindTract      Kind = "tract"
	KindBlock      Kind = "block"
	KindBlockGroup Kind = "blockgroup"
	KindCBSA       Kind = "cbsa"
	KindState      Kind = "state"
	KindMD         Kind = "md"
	KindRadius     Kind = "radius"
	KindDriveTime  Kind = "drivetime"
)

// Kinds lists every kind a spreadsheet import can produce.
var Kinds = []Kind{
	KindZip, KindCounty, KindPlace, KindTract, KindBlock, KindBlockGroup,
	KindCBSA, KindState, KindMD, KindRadius, KindDriveTime,
}

// Valid reports whether k is one of the canonical kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// UsesLocations reports whether the kind is feature based, i.e. resolved
// against the feature service rather than drawn from points.
func (k Kind) UsesLocations() bool {
	return k != KindRadius && k != KindDriveTime
}

// StyleSettings holds the rendering style carried by a market area.
type StyleSettings struct {
	FillColor   string  `json:"fillColor" yaml:"fill_color"`
	FillOpacity float64 `json:"fillOpacity" yaml:"fill_opacity"`
	NoFill      bool    `json:"noFill,omitempty" yaml:"no_fill"`
	BorderColor string  `json:"borderColor" yaml:"border_color"`
	BorderWidth float64 `json:"borderWidth" yaml:"border_width"`
	NoBorder    bool    `json:"noBorder,omitempty" yaml:"no_border"`
	ThemeName   string  `json:"themeName,omitempty" yaml:"theme_name"`
}

// DefaultStyle returns the style applied when a spreadsheet carries none.
// Values match the API's server-side default.
func DefaultStyle() StyleSettings {
	return StyleSettings{
		FillColor:   "#0078D4",
		FillOpacity: 0.3,
		BorderColor: "#0078D4",
		BorderWidth: 2,
	}
}

// Normalize enforces the explicit-flag invariants: NoFill forces opacity
// to 0 and NoBorder forces width to 0, regardless of any numeric value
// parsed before or after the flag.
func (s *StyleSettings) Normalize() {
	if s.NoFill {
		s.FillOpacity = 0
	}
	if s.NoBorder {
		s.BorderWidth = 0
	}
}

// Location is a single geography reference inside a market area. State is
// always defaulted by the normalizer, never empty past that stage.
// Geometry stays nil until the resolver attaches a matched feature.
type Location struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`

	Geometry            geom.T `json:"-"`
	IsMetroDivisionHint bool   `json:"-"`
}

// Point is a radius or drive time origin.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    float64 `json:"radius,omitempty"`  // miles, radius kind
	Minutes   float64 `json:"minutes,omitempty"` // drive time kind
}

// Draft is an in-flight, not yet persisted market area produced by a
// parser. Exactly one of Locations, RadiusPoints, DriveTimePoints is
// populated, according to Kind.
type Draft struct {
	Name            string
	ShortName       string
	Kind            Kind
	Style           StyleSettings
	Locations       []Location
	RadiusPoints    []Point
	DriveTimePoints []Point
	Description     string
	ProjectID       string

	// Extent is a stored bounding box used as a placeholder geometry
	// when every query strategy fails. Optional.
	Extent *geom.Bounds
}

// Validate checks the invariants a draft must satisfy before entering
// the pipeline.
func (d *Draft) Validate() error {
	if d.Name == "" {
		return eris.New("marketarea: draft has no name")
	}
	if !d.Kind.Valid() {
		return eris.Errorf("marketarea: unsupported kind %q", string(d.Kind))
	}
	switch d.Kind {
	case KindRadius:
		if len(d.Locations) > 0 || len(d.DriveTimePoints) > 0 {
			return eris.Errorf("marketarea: radius draft %q carries non-radius data", d.Name)
		}
		if len(d.RadiusPoints) == 0 {
			return eris.Errorf("marketarea: radius draft %q has no radius points", d.Name)
		}
	case KindDriveTime:
		if len(d.Locations) > 0 || len(d.RadiusPoints) > 0 {
			return eris.Errorf("marketarea: drive time draft %q carries non-drive-time data", d.Name)
		}
		if len(d.DriveTimePoints) == 0 {
			return eris.Errorf("marketarea: drive time draft %q has no drive time points", d.Name)
		}
	default:
		if len(d.RadiusPoints) > 0 || len(d.DriveTimePoints) > 0 {
			return eris.Errorf("marketarea: %s draft %q carries point data", string(d.Kind), d.Name)
		}
		if len(d.Locations) == 0 {
			return eris.Errorf("marketarea: %s draft %q has no locations", string(d.Kind), d.Name)
		}
	}
	return nil
}

// MarketArea is a persisted market area record returned by a store.
type MarketArea struct {
	ID              string          `json:"id"`
	ProjectID       string          `json:"project_id"`
	Name            string          `json:"name"`
	ShortName       string          `json:"short_name"`
	Kind            Kind            `json:"ma_type"`
	Style           StyleSettings   `json:"style_settings"`
	Locations       []Location      `json:"locations,omitempty"`
	RadiusPoints    []Point         `json:"radius_points,omitempty"`
	DriveTimePoints []Point         `json:"drive_time_points,omitempty"`
	Geometry        geom.T          `json:"-"`
	Order           int             `json:"order"`
	CreatedAt       time.Time       `json:"created_at"`
	LastModified    time.Time       `json:"last_modified"`
}

// ImportError records one failed draft inside a batch.
type ImportError struct {
	Draft   string `json:"draft"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// ImportResult is the terminal aggregate of one import batch.
type ImportResult struct {
	ImportedCount int           `json:"imported_count"`
	CreatedIDs    []string      `json:"created_ids"`
	Errors        []ImportError `json:"errors"`
}

// FirstError returns the first recorded error message, or "" when the
// batch had no failures. Used to report a batch with zero successes.
func (r *ImportResult) FirstError() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}
