package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/db"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hot path, which is one insert per draft.
var preparedStatements = map[string]string{
	"next_order":         `SELECT COALESCE(MAX(ord), 0) + 1 FROM market_areas WHERE project_id = $1`,
	"insert_market_area": `INSERT INTO market_areas (id, project_id, name, short_name, ma_type, style_settings, locations, radius_points, drive_time_points, description, ord, created_at, last_modified) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
	"get_market_area":    `SELECT id, project_id, name, short_name, ma_type, style_settings, locations, radius_points, drive_time_points, ord, created_at, last_modified FROM market_areas WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need
// direct query access (e.g. reference table loads).
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS market_areas (
	id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	project_id        TEXT NOT NULL,
	name              TEXT NOT NULL,
	short_name        TEXT NOT NULL DEFAULT '',
	ma_type           TEXT NOT NULL,
	style_settings    JSONB NOT NULL,
	locations         JSONB,
	radius_points     JSONB,
	drive_time_points JSONB,
	description       TEXT NOT NULL DEFAULT '',
	ord               INTEGER NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_modified     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_market_areas_project ON market_areas(project_id);
CREATE INDEX IF NOT EXISTS idx_market_areas_project_ord ON market_areas(project_id, ord);
CREATE INDEX IF NOT EXISTS idx_market_areas_ma_type ON market_areas(ma_type);

CREATE TABLE IF NOT EXISTS market_area_locations (
	market_area_id TEXT NOT NULL REFERENCES market_areas(id) ON DELETE CASCADE,
	location_id    TEXT NOT NULL,
	name           TEXT NOT NULL,
	state          TEXT NOT NULL,
	PRIMARY KEY (market_area_id, location_id)
);

CREATE INDEX IF NOT EXISTS idx_ma_locations_location ON market_area_locations(location_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateMarketArea(ctx context.Context, draft *marketarea.Draft) (*marketarea.MarketArea, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	styleJSON, err := json.Marshal(draft.Style)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal style")
	}
	locationsJSON, pointsJSON, driveJSON, err := marshalShapes(draft)
	if err != nil {
		return nil, err
	}

	var order int
	err = s.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(ord), 0) + 1 FROM market_areas WHERE project_id = $1`,
		draft.ProjectID,
	).Scan(&order)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: next order")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO market_areas (id, project_id, name, short_name, ma_type, style_settings, locations, radius_points, drive_time_points, description, ord, created_at, last_modified) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		id, draft.ProjectID, draft.Name, draft.ShortName, string(draft.Kind),
		styleJSON, locationsJSON, pointsJSON, driveJSON,
		draft.Description, order, now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert market area %s", draft.Name)
	}

	if len(draft.Locations) > 0 {
		rows := make([][]any, 0, len(draft.Locations))
		for _, loc := range draft.Locations {
			rows = append(rows, []any{id, loc.ID, loc.Name, loc.State})
		}
		if _, err := db.CopyFrom(ctx, s.pool, "market_area_locations",
			[]string{"market_area_id", "location_id", "name", "state"}, rows); err != nil {
			return nil, eris.Wrapf(err, "postgres: copy locations for %s", draft.Name)
		}
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

func (s *PostgresStore) GetMarketArea(ctx context.Context, id string) (*marketarea.MarketArea, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, project_id, name, short_name, ma_type, style_settings, locations, radius_points, drive_time_points, ord, created_at, last_modified FROM market_areas WHERE id = $1`,
		id,
	)
	ma, err := scanMarketArea(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get market area %s", id)
	}
	return ma, nil
}

func (s *PostgresStore) ListMarketAreas(ctx context.Context, projectID string) ([]marketarea.MarketArea, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, project_id, name, short_name, ma_type, style_settings, locations, radius_points, drive_time_points, ord, created_at, last_modified FROM market_areas WHERE project_id = $1 ORDER BY ord ASC`,
		projectID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list market areas")
	}
	defer rows.Close()

	var areas []marketarea.MarketArea
	for rows.Next() {
		ma, err := scanMarketArea(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan market area")
		}
		areas = append(areas, *ma)
	}
	return areas, eris.Wrap(rows.Err(), "postgres: list market areas iterate")
}

// marshalShapes serializes the populated shape column of a draft; the
// other two stay NULL.
func marshalShapes(draft *marketarea.Draft) (locations, radius, drive []byte, err error) {
	if len(draft.Locations) > 0 {
		if locations, err = json.Marshal(draft.Locations); err != nil {
			return nil, nil, nil, eris.Wrap(err, "store: marshal locations")
		}
	}
	if len(draft.RadiusPoints) > 0 {
		if radius, err = json.Marshal(draft.RadiusPoints); err != nil {
			return nil, nil, nil, eris.Wrap(err, "store: marshal radius points")
		}
	}
	if len(draft.DriveTimePoints) > 0 {
		if drive, err = json.Marshal(draft.DriveTimePoints); err != nil {
			return nil, nil, nil, eris.Wrap(err, "store: marshal drive time points")
		}
	}
	return locations, radius, drive, nil
}

// scanMarketArea reads one row through any Scan-shaped function.
func scanMarketArea(scan func(dest ...any) error) (*marketarea.MarketArea, error) {
	var ma marketarea.MarketArea
	var kind string
	var styleJSON []byte
	var locationsJSON, radiusJSON, driveJSON *[]byte

	err := scan(&ma.ID, &ma.ProjectID, &ma.Name, &ma.ShortName, &kind,
		&styleJSON, &locationsJSON, &radiusJSON, &driveJSON,
		&ma.Order, &ma.CreatedAt, &ma.LastModified)
	if err != nil {
		return nil, err
	}
	ma.Kind = marketarea.Kind(kind)

	if err := json.Unmarshal(styleJSON, &ma.Style); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal style")
	}
	if locationsJSON != nil {
		if err := json.Unmarshal(*locationsJSON, &ma.Locations); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal locations")
		}
	}
	if radiusJSON != nil {
		if err := json.Unmarshal(*radiusJSON, &ma.RadiusPoints); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal radius points")
		}
	}
	if driveJSON != nil {
		if err := json.Unmarshal(*driveJSON, &ma.DriveTimePoints); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal drive time points")
		}
	}
	return &ma, nil
}
