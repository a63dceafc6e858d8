package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/facility-atlas/internal/model"
	"github.com/sells-group/facility-atlas/internal/overlap"
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
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS facilities (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	category        TEXT NOT NULL,
	subtype         TEXT,
	latitude        REAL NOT NULL DEFAULT 0,
	longitude       REAL NOT NULL DEFAULT 0,
	address         TEXT,
	city            TEXT,
	county          TEXT,
	zip             TEXT,
	health_system   TEXT,
	source          TEXT NOT NULL,
	geocode_quality TEXT,
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS analysis_runs (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL DEFAULT 'running',
	config     TEXT NOT NULL,
	result     TEXT,
	error      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_facilities_category ON facilities(category);
CREATE INDEX IF NOT EXISTS idx_facilities_city ON facilities(city);
CREATE INDEX IF NOT EXISTS idx_facilities_source ON facilities(source);
CREATE INDEX IF NOT EXISTS idx_analysis_runs_status ON analysis_runs(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const facilityColumns = `id, name, category, subtype, latitude, longitude, address, city, county, zip, health_system, source, geocode_quality`

func (s *SQLiteStore) UpsertFacilities(ctx context.Context, facilities []model.Facility) (int, error) {
	if len(facilities) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO facilities (`+facilityColumns+`, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			subtype = excluded.subtype,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			address = excluded.address,
			city = excluded.city,
			county = excluded.county,
			zip = excluded.zip,
			health_system = excluded.health_system,
			source = excluded.source,
			geocode_quality = excluded.geocode_quality,
			updated_at = excluded.updated_at`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC()
	for _, f := range facilities {
		if _, err := stmt.ExecContext(ctx,
			f.ID, f.Name, string(f.Category), f.Subtype, f.Latitude, f.Longitude,
			f.Address, f.City, f.County, f.ZIP, f.HealthSystem, f.Source, f.GeocodeQuality, now,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert facility %s", f.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert")
	}
	return len(facilities), nil
}

func (s *SQLiteStore) ListFacilities(ctx context.Context, filter FacilityFilter) ([]model.Facility, error) {
	query := `SELECT ` + facilityColumns + ` FROM facilities WHERE 1=1`
	var args []any

	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, string(filter.Category))
	}
	if filter.City != "" {
		query += ` AND city = ?`
		args = append(args, filter.City)
	}
	if filter.County != "" {
		query += ` AND county = ?`
		args = append(args, filter.County)
	}
	if filter.Source != "" {
		query += ` AND source = ?`
		args = append(args, filter.Source)
	}
	query += ` ORDER BY id`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list facilities")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Facility
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list facilities iterate")
}

func (s *SQLiteStore) CountByCategory(ctx context.Context) (map[model.Category]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, COUNT(*) FROM facilities GROUP BY category`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: count by category")
	}
	defer rows.Close() //nolint:errcheck

	counts := make(map[model.Category]int)
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan category count")
		}
		counts[model.Category(cat)] = n
	}
	return counts, eris.Wrap(rows.Err(), "sqlite: count iterate")
}

func (s *SQLiteStore) DeleteFacilities(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM facilities WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete facilities")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) DeleteFacilitiesBySource(ctx context.Context, source string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM facilities WHERE source = ?`, source)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: delete facilities for source %s", source)
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) CreateRun(ctx context.Context, cfg overlap.Config) (*AnalysisRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal run config")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analysis_runs (id, status, config, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(RunStatusRunning), string(cfgJSON), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &AnalysisRun{
		ID:        id,
		Status:    RunStatusRunning,
		Config:    cfg,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, result *overlap.Result) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal run result")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE analysis_runs SET result = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(resultJSON), string(RunStatusComplete), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, message string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE analysis_runs SET error = ?, status = ?, updated_at = ? WHERE id = ?`,
		message, string(RunStatusFailed), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*AnalysisRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, config, result, error, created_at, updated_at FROM analysis_runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]AnalysisRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, config, result, error, created_at, updated_at
		 FROM analysis_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []AnalysisRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanFacility(row scannable) (model.Facility, error) {
	var f model.Facility
	var cat string
	var subtype, address, city, county, zip, system, quality sql.NullString

	err := row.Scan(&f.ID, &f.Name, &cat, &subtype, &f.Latitude, &f.Longitude,
		&address, &city, &county, &zip, &system, &f.Source, &quality)
	if err != nil {
		return f, eris.Wrap(err, "sqlite: scan facility")
	}

	f.Category = model.Category(cat)
	f.Subtype = subtype.String
	f.Address = address.String
	f.City = city.String
	f.County = county.String
	f.ZIP = zip.String
	f.HealthSystem = system.String
	f.GeocodeQuality = quality.String
	return f, nil
}

func scanRun(row scannable) (*AnalysisRun, error) {
	var r AnalysisRun
	var status, cfgJSON string
	var resultJSON, errMsg sql.NullString

	err := row.Scan(&r.ID, &status, &cfgJSON, &resultJSON, &errMsg, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	r.Status = RunStatus(status)
	r.Error = errMsg.String
	if err := json.Unmarshal([]byte(cfgJSON), &r.Config); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal run config")
	}
	if resultJSON.Valid {
		r.Result = &overlap.Result{}
		if err := json.Unmarshal([]byte(resultJSON.String), r.Result); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal run result")
		}
	}
	return &r, nil
}
