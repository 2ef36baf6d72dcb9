package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS market_areas (
	id                TEXT PRIMARY KEY,
	project_id        TEXT NOT NULL,
	name              TEXT NOT NULL,
	short_name        TEXT NOT NULL DEFAULT '',
	ma_type           TEXT NOT NULL,
	style_settings    TEXT NOT NULL,
	locations         TEXT,
	radius_points     TEXT,
	drive_time_points TEXT,
	description       TEXT NOT NULL DEFAULT '',
	ord               INTEGER NOT NULL,
	created_at        DATETIME NOT NULL,
	last_modified     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_market_areas_project ON market_areas(project_id);
CREATE INDEX IF NOT EXISTS idx_market_areas_project_ord ON market_areas(project_id, ord);

CREATE TABLE IF NOT EXISTS market_area_locations (
	market_area_id TEXT NOT NULL REFERENCES market_areas(id) ON DELETE CASCADE,
	location_id    TEXT NOT NULL,
	name           TEXT NOT NULL,
	state          TEXT NOT NULL,
	PRIMARY KEY (market_area_id, location_id)
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateMarketArea(ctx context.Context, draft *marketarea.Draft) (*marketarea.MarketArea, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	styleJSON, err := json.Marshal(draft.Style)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal style")
	}
	locationsJSON, radiusJSON, driveJSON, err := marshalShapes(draft)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	var order int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(ord), 0) + 1 FROM market_areas WHERE project_id = ?`,
		draft.ProjectID,
	).Scan(&order)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: next order")
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO market_areas (id, project_id, name, short_name, ma_type, style_settings, locations, radius_points, drive_time_points, description, ord, created_at, last_modified)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, draft.ProjectID, draft.Name, draft.ShortName, string(draft.Kind),
		string(styleJSON), nullable(locationsJSON), nullable(radiusJSON), nullable(driveJSON),
		draft.Description, order, now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert market area %s", draft.Name)
	}

	for _, loc := range draft.Locations {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO market_area_locations (market_area_id, location_id, name, state) VALUES (?, ?, ?, ?)`,
			id, loc.ID, loc.Name, loc.State,
		); err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert location %s", loc.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit")
	}

	return &marketarea.MarketArea{
		ID:              id,
		ProjectID:       draft.ProjectID,
		Name:            draft.Name,
		ShortName:       draft.ShortName,
		Kind:            draft.Kind,
		Style:           draft.Style,
		Locations:       draft.Locations,
		RadiusPoints:    draft.RadiusPoints,
		DriveTimePoints: draft.DriveTimePoints,
		Order:           order,
		CreatedAt:       now,
		LastModified:    now,
	}, nil
}

func (s *SQLiteStore) GetMarketArea(ctx context.Context, id string) (*marketarea.MarketArea, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, name, short_name, ma_type, style_settings, locations, radius_points, drive_time_points, ord, created_at, last_modified
		 FROM market_areas WHERE id = ?`,
		id,
	)
	ma, err := scanSQLiteMarketArea(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get market area %s", id)
	}
	return ma, nil
}

func (s *SQLiteStore) ListMarketAreas(ctx context.Context, projectID string) ([]marketarea.MarketArea, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, name, short_name, ma_type, style_settings, locations, radius_points, drive_time_points, ord, created_at, last_modified
		 FROM market_areas WHERE project_id = ? ORDER BY ord ASC`,
		projectID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list market areas")
	}
	defer rows.Close()

	var areas []marketarea.MarketArea
	for rows.Next() {
		ma, err := scanSQLiteMarketArea(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan market area")
		}
		areas = append(areas, *ma)
	}
	return areas, eris.Wrap(rows.Err(), "sqlite: list market areas iterate")
}

func scanSQLiteMarketArea(scan func(dest ...any) error) (*marketarea.MarketArea, error) {
	var ma marketarea.MarketArea
	var kind, styleJSON string
	var locationsJSON, radiusJSON, driveJSON sql.NullString

	err := scan(&ma.ID, &ma.ProjectID, &ma.Name, &ma.ShortName, &kind,
		&styleJSON, &locationsJSON, &radiusJSON, &driveJSON,
		&ma.Order, &ma.CreatedAt, &ma.LastModified)
	if err != nil {
		return nil, err
	}
	ma.Kind = marketarea.Kind(kind)

	if err := json.Unmarshal([]byte(styleJSON), &ma.Style); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal style")
	}
	if locationsJSON.Valid {
		if err := json.Unmarshal([]byte(locationsJSON.String), &ma.Locations); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal locations")
		}
	}
	if radiusJSON.Valid {
		if err := json.Unmarshal([]byte(radiusJSON.String), &ma.RadiusPoints); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal radius points")
		}
	}
	if driveJSON.Valid {
		if err := json.Unmarshal([]byte(driveJSON.String), &ma.DriveTimePoints); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal drive time points")
		}
	}
	return &ma, nil
}

// nullable maps empty JSON to NULL so unset shape columns stay NULL.
func nullable(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
