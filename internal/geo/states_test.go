package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateFIPS(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "abbreviation", input: "CA", expected: "06"},
		{name: "lowercase abbreviation", input: "ca", expected: "06"},
		{name: "full name", input: "California", expected: "06"},
		{name: "full name mixed case", input: "nEw YoRk", expected: "36"},
		{name: "fips passthrough", input: "48", expected: "48"},
		{name: "whitespace trimmed", input: "  TX  ", expected: "48"},
		{name: "unknown", input: "ZZ", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StateFIPS(tt.input))
		})
	}
}

func TestStateAbbr(t *testing.T) {
	assert.Equal(t, "CA", StateAbbr("California"))
	assert.Equal(t, "CA", StateAbbr("06"))
	assert.Equal(t, "DC", StateAbbr("district of columbia"))
	assert.Equal(t, "", StateAbbr("Atlantis"))
}

func TestStateName(t *testing.T) {
	assert.Equal(t, "California", StateName("ca"))
	assert.Equal(t, "", StateName("XX"))
}

func TestStateCentroid(t *testing.T) {
	ca := StateCentroid("CA")
	assert.InDelta(t, 37.18, ca.Latitude, 0.5)
	assert.InDelta(t, -119.47, ca.Longitude, 0.5)

	// Full names and FIPS codes resolve too.
	assert.Equal(t, StateCentroid("CA"), StateCentroid("California"))
	assert.Equal(t, StateCentroid("CA"), StateCentroid("06"))

	// Unknown states fall back to the continental default.
	assert.Equal(t, DefaultCentroid, StateCentroid("ZZ"))
	assert.Equal(t, DefaultCentroid, StateCentroid(""))
}
