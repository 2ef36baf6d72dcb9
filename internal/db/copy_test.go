package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "market_area_locations", []string{"market_area_id", "location_id"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"market_area_id", "location_id", "name", "state"}
	mock.ExpectCopyFrom(pgx.Identifier{"market_area_locations"}, cols).WillReturnResult(2)

	rows := [][]any{
		{"ma-1", "92675", "92675", "CA"},
		{"ma-1", "92672", "92672", "CA"},
	}
	n, err := CopyFrom(context.Background(), mock, "market_area_locations", cols, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"market_area_id", "location_id"}
	mock.ExpectCopyFrom(pgx.Identifier{"market_area_locations"}, cols).
		WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyFrom(context.Background(), mock, "market_area_locations", cols, [][]any{{"ma-1", "92675"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO market_area_locations")
	assert.NoError(t, mock.ExpectationsWereMet())
}
