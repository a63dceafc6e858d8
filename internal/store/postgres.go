package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/facility-atlas/internal/db"
	"github.com/sells-group/facility-atlas/internal/model"
	"github.com/sells-group/facility-atlas/internal/overlap"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

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

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests and by callers
// that manage pool lifecycle themselves.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Pool returns the underlying database pool for subsystems needing direct
// query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS facilities (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	category        TEXT NOT NULL,
	subtype         TEXT,
	latitude        DOUBLE PRECISION NOT NULL DEFAULT 0,
	longitude       DOUBLE PRECISION NOT NULL DEFAULT 0,
	address         TEXT,
	city            TEXT,
	county          TEXT,
	zip             TEXT,
	health_system   TEXT,
	source          TEXT NOT NULL,
	geocode_quality TEXT,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS analysis_runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	status     TEXT NOT NULL DEFAULT 'running',
	config     JSONB NOT NULL,
	result     JSONB,
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_facilities_category ON facilities(category);
CREATE INDEX IF NOT EXISTS idx_facilities_city ON facilities(city);
CREATE INDEX IF NOT EXISTS idx_facilities_source ON facilities(source);
CREATE INDEX IF NOT EXISTS idx_analysis_runs_status ON analysis_runs(status);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var facilityCols = []string{
	"id", "name", "category", "subtype", "latitude", "longitude",
	"address", "city", "county", "zip", "health_system", "source", "geocode_quality",
}

func (s *PostgresStore) UpsertFacilities(ctx context.Context, facilities []model.Facility) (int, error) {
	if len(facilities) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(facilities))
	for _, f := range facilities {
		rows = append(rows, []any{
			f.ID, f.Name, string(f.Category), f.Subtype, f.Latitude, f.Longitude,
			f.Address, f.City, f.County, f.ZIP, f.HealthSystem, f.Source, f.GeocodeQuality,
		})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "facilities",
		Columns:      facilityCols,
		ConflictKeys: []string{"id"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: upsert facilities")
	}
	return int(n), nil
}

func (s *PostgresStore) ListFacilities(ctx context.Context, filter FacilityFilter) ([]model.Facility, error) {
	query := `SELECT id, name, category, subtype, latitude, longitude, address, city, county, zip, health_system, source, geocode_quality FROM facilities WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Category != "" {
		query += ` AND category = ` + arg(string(filter.Category))
	}
	if filter.City != "" {
		query += ` AND city = ` + arg(filter.City)
	}
	if filter.County != "" {
		query += ` AND county = ` + arg(filter.County)
	}
	if filter.Source != "" {
		query += ` AND source = ` + arg(filter.Source)
	}
	query += ` ORDER BY id`
	if filter.Limit > 0 {
		query += ` LIMIT ` + arg(filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ` + arg(filter.Offset)
		}
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list facilities")
	}
	defer rows.Close()

	var out []model.Facility
	for rows.Next() {
		var f model.Facility
		var cat string
		var subtype, address, city, county, zip, system, quality sql.NullString
		if err := rows.Scan(&f.ID, &f.Name, &cat, &subtype, &f.Latitude, &f.Longitude,
			&address, &city, &county, &zip, &system, &f.Source, &quality); err != nil {
			return nil, eris.Wrap(err, "postgres: scan facility")
		}
		f.Category = model.Category(cat)
		f.Subtype = subtype.String
		f.Address = address.String
		f.City = city.String
		f.County = county.String
		f.ZIP = zip.String
		f.HealthSystem = system.String
		f.GeocodeQuality = quality.String
		out = append(out, f)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list facilities iterate")
}

func (s *PostgresStore) CountByCategory(ctx context.Context) (map[model.Category]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT category, COUNT(*) FROM facilities GROUP BY category`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: count by category")
	}
	defer rows.Close()

	counts := make(map[model.Category]int)
	for rows.Next() {
		var cat string
		var n int64
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, eris.Wrap(err, "postgres: scan category count")
		}
		counts[model.Category(cat)] = int(n)
	}
	return counts, eris.Wrap(rows.Err(), "postgres: count iterate")
}

func (s *PostgresStore) DeleteFacilities(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM facilities WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete facilities")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) DeleteFacilitiesBySource(ctx context.Context, source string) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM facilities WHERE source = $1`, source)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: delete facilities for source %s", source)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, cfg overlap.Config) (*AnalysisRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal run config")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO analysis_runs (id, status, config, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, string(RunStatusRunning), string(cfgJSON), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &AnalysisRun{
		ID:        id,
		Status:    RunStatusRunning,
		Config:    cfg,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, result *overlap.Result) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal run result")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE analysis_runs SET result = $1, status = $2, updated_at = $3 WHERE id = $4`,
		string(resultJSON), string(RunStatusComplete), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, message string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analysis_runs SET error = $1, status = $2, updated_at = $3 WHERE id = $4`,
		message, string(RunStatusFailed), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*AnalysisRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, status, config, result, error, created_at, updated_at FROM analysis_runs WHERE id = $1`,
		runID,
	)
	return scanPgRun(row)
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]AnalysisRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, status, config, result, error, created_at, updated_at
		 FROM analysis_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []AnalysisRun
	for rows.Next() {
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func scanPgRun(row pgx.Row) (*AnalysisRun, error) {
	var r AnalysisRun
	var status, cfgJSON string
	var resultJSON, errMsg sql.NullString

	err := row.Scan(&r.ID, &status, &cfgJSON, &resultJSON, &errMsg, &r.CreatedAt, &r.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan run")
	}

	r.Status = RunStatus(status)
	r.Error = errMsg.String
	if err := json.Unmarshal([]byte(cfgJSON), &r.Config); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal run config")
	}
	if resultJSON.Valid {
		r.Result = &overlap.Result{}
		if err := json.Unmarshal([]byte(resultJSON.String), r.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal run result")
		}
	}
	return &r, nil
}
