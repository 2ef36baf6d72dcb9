package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_CreateAndGetMarketArea(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := st.CreateMarketArea(ctx, countyDraft())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1, created.Order)

	got, err := st.GetMarketArea(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Orange County Area", got.Name)
	assert.Equal(t, marketarea.KindCounty, got.Kind)
	assert.Equal(t, "#0078D4", got.Style.FillColor)
	require.Len(t, got.Locations, 1)
	assert.Equal(t, "CA", got.Locations[0].State)
	assert.Empty(t, got.RadiusPoints)
}

func TestSQLite_OrderIncrementsPerProject(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	first, err := st.CreateMarketArea(ctx, countyDraft())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Order)

	second := countyDraft()
	second.Name = "Second Area"
	second.Locations[0].ID = "Second Area"
	created, err := st.CreateMarketArea(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, 2, created.Order)

	// A different project starts its own sequence.
	other := countyDraft()
	other.ProjectID = "proj-2"
	created, err = st.CreateMarketArea(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 1, created.Order)
}

func TestSQLite_CreateRadiusMarketArea(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	draft := &marketarea.Draft{
		Name:         "5 Mile Ring",
		Kind:         marketarea.KindRadius,
		Style:        marketarea.DefaultStyle(),
		ProjectID:    "proj-1",
		RadiusPoints: []marketarea.Point{{Latitude: 33.5, Longitude: -117.6, Radius: 5}},
	}
	created, err := st.CreateMarketArea(ctx, draft)
	require.NoError(t, err)

	got, err := st.GetMarketArea(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.Locations)
	require.Len(t, got.RadiusPoints, 1)
	assert.InDelta(t, 5, got.RadiusPoints[0].Radius, 1e-9)
}

func TestSQLite_GetMarketArea_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.GetMarketArea(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_ListMarketAreas(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, name := range []string{"First", "Second", "Third"} {
		d := countyDraft()
		d.Name = name
		d.Locations[0].ID = name
		_, err := st.CreateMarketArea(ctx, d)
		require.NoError(t, err)
	}

	areas, err := st.ListMarketAreas(ctx, "proj-1")
	require.NoError(t, err)
	require.Len(t, areas, 3)
	assert.Equal(t, "First", areas[0].Name)
	assert.Equal(t, 3, areas[2].Order)

	areas, err = st.ListMarketAreas(ctx, "empty-project")
	require.NoError(t, err)
	assert.Empty(t, areas)
}

func TestSQLite_CreateRejectsInvalidDraft(t *testing.T) {
	st := newTestSQLiteStore(t)

	draft := &marketarea.Draft{Name: "", Kind: marketarea.KindZip, ProjectID: "proj-1"}
	_, err := st.CreateMarketArea(context.Background(), draft)
	require.Error(t, err)
}
