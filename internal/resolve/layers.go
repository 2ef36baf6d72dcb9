package resolve

import (
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
)

// TIGERweb feature layers queried per kind. Some logical geographies are
// spread across several sub-layers of one map service; those are fanned
// out concurrently and merged before matching.
const (
	tigerwebBase = "https://tigerweb.geo.census.gov/arcgis/rest/services/TIGERweb"

	zctaLayer        = tigerwebBase + "/PUMA_TAD_TAZ_UGA_ZCTA/MapServer/4"
	countyLayer      = tigerwebBase + "/State_County/MapServer/13"
	placeLayer       = tigerwebBase + "/Places_CouSub_ConCity_SubMCD/MapServer/4"
	cdpLayer         = tigerwebBase + "/Places_CouSub_ConCity_SubMCD/MapServer/5"
	tractLayer       = tigerwebBase + "/Tracts_Blocks/MapServer/4"
	blockGroupLayer  = tigerwebBase + "/Tracts_Blocks/MapServer/1"
	blockLayer       = tigerwebBase + "/Tracts_Blocks/MapServer/2"
	cbsaLayer        = tigerwebBase + "/CBSA/MapServer/0"
	metroDivLayer    = tigerwebBase + "/CBSA/MapServer/1"
	stateLayer       = tigerwebBase + "/State_County/MapServer/12"
	usaLayer         = tigerwebBase + "/State_County/MapServer/0"

	// MDFallbackEndpoint is the broader query endpoint used when the
	// primary metro division query errors or comes back empty.
	MDFallbackEndpoint = metroDivLayer + "/query"
)

// metroDivisionCode is the MAF/TIGER feature class code identifying a
// metropolitan division. Used both as a query filter and as the matcher's
// scoring bonus attribute value.
const metroDivisionCode = "G3120"

// Layers maps each feature-based kind to its backing layer URLs.
type Layers map[marketarea.Kind][]string

// DefaultLayers returns the TIGERweb layer set.
func DefaultLayers() Layers {
	return Layers{
		marketarea.KindZip:        {zctaLayer},
		marketarea.KindCounty:     {countyLayer},
		marketarea.KindPlace:      {placeLayer, cdpLayer},
		marketarea.KindTract:      {tractLayer},
		marketarea.KindBlock:      {blockLayer},
		marketarea.KindBlockGroup: {blockGroupLayer},
		marketarea.KindCBSA:       {cbsaLayer},
		marketarea.KindMD:         {metroDivLayer},
		marketarea.KindState:      {stateLayer},
	}
}
