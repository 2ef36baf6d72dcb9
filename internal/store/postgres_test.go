package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func countyDraft() *marketarea.Draft {
	return &marketarea.Draft{
		Name:      "Orange County Area",
		ShortName: "OC",
		Kind:      marketarea.KindCounty,
		Style:     marketarea.DefaultStyle(),
		ProjectID: "proj-1",
		Locations: []marketarea.Location{
			{ID: "Orange County Area", Name: "Orange County Area", State: "CA"},
		},
	}
}

func TestPostgresStore_CreateMarketArea(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COALESCE\(MAX\(ord\), 0\) \+ 1 FROM market_areas`).
		WithArgs("proj-1").
		WillReturnRows(pgxmock.NewRows([]string{"next"}).AddRow(3))
	mock.ExpectExec(`INSERT INTO market_areas`).
		WithArgs(pgxmock.AnyArg(), "proj-1", "Orange County Area", "OC", "county",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			"", 3, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCopyFrom(pgx.Identifier{"market_area_locations"},
		[]string{"market_area_id", "location_id", "name", "state"}).
		WillReturnResult(1)

	ma, err := s.CreateMarketArea(context.Background(), countyDraft())
	require.NoError(t, err)
	assert.NotEmpty(t, ma.ID)
	assert.Equal(t, 3, ma.Order)
	assert.Equal(t, marketarea.KindCounty, ma.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateRadiusSkipsLocationCopy(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COALESCE\(MAX\(ord\), 0\) \+ 1 FROM market_areas`).
		WithArgs("proj-1").
		WillReturnRows(pgxmock.NewRows([]string{"next"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO market_areas`).
		WithArgs(pgxmock.AnyArg(), "proj-1", "5 Mile Ring", "", "radius",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			"", 1, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	draft := &marketarea.Draft{
		Name:         "5 Mile Ring",
		Kind:         marketarea.KindRadius,
		Style:        marketarea.DefaultStyle(),
		ProjectID:    "proj-1",
		RadiusPoints: []marketarea.Point{{Latitude: 33.5, Longitude: -117.6, Radius: 5}},
	}
	ma, err := s.CreateMarketArea(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, 1, ma.Order)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateRejectsInvalidDraft(t *testing.T) {
	s, _ := newMockPostgresStore(t)

	draft := &marketarea.Draft{Name: "No Locations", Kind: marketarea.KindZip, ProjectID: "proj-1"}
	_, err := s.CreateMarketArea(context.Background(), draft)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no locations")
}

func TestPostgresStore_GetMarketArea_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM market_areas WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	ma, err := s.GetMarketArea(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, ma)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListMarketAreas(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	cols := []string{"id", "project_id", "name", "short_name", "ma_type",
		"style_settings", "locations", "radius_points", "drive_time_points",
		"ord", "created_at", "last_modified"}
	locations := []byte(`[{"id":"92675","name":"92675","state":"CA"}]`)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM market_areas WHERE project_id = \$1 ORDER BY ord ASC`).
		WithArgs("proj-1").
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("ma-1", "proj-1", "South Zips", "SZ", "zip",
				[]byte(`{"fillColor":"#0078D4","fillOpacity":0.3,"borderColor":"#0078D4","borderWidth":2}`),
				&locations, (*[]byte)(nil), (*[]byte)(nil),
				1, now, now))

	areas, err := s.ListMarketAreas(context.Background(), "proj-1")
	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.Equal(t, marketarea.KindZip, areas[0].Kind)
	require.Len(t, areas[0].Locations, 1)
	assert.Equal(t, "92675", areas[0].Locations[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
