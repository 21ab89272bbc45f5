package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
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
CREATE TABLE IF NOT EXISTS queries (
	id               TEXT PRIMARY KEY,
	station          TEXT NOT NULL DEFAULT '',
	line             TEXT NOT NULL DEFAULT '',
	lng              REAL NOT NULL,
	lat              REAL NOT NULL,
	radius_meters    REAL NOT NULL,
	affected_areas   INTEGER NOT NULL,
	total_population REAL NOT NULL,
	within_radius    REAL NOT NULL,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_queries_station ON queries(station);
CREATE INDEX IF NOT EXISTS idx_queries_line ON queries(line);
CREATE INDEX IF NOT EXISTS idx_queries_created_at ON queries(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveQuery records one answered query and returns it with its assigned id.
func (s *SQLiteStore) SaveQuery(ctx context.Context, rec QueryRecord) (*QueryRecord, error) {
	rec.ID = uuid.New().String()
	rec.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO queries (id, station, line, lng, lat, radius_meters, affected_areas, total_population, within_radius, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Station, rec.Line, rec.Lng, rec.Lat, rec.RadiusMeters,
		rec.AffectedAreas, rec.TotalPopulation, rec.WithinRadius, rec.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert query")
	}
	return &rec, nil
}

// ListQueries returns recorded queries, most recent first.
func (s *SQLiteStore) ListQueries(ctx context.Context, filter QueryFilter) ([]QueryRecord, error) {
	query := `SELECT id, station, line, lng, lat, radius_meters, affected_areas, total_population, within_radius, created_at
		FROM queries WHERE 1=1`
	var args []any

	if filter.Station != "" {
		query += ` AND station = ?`
		args = append(args, filter.Station)
	}
	if filter.Line != "" {
		query += ` AND line = ?`
		args = append(args, filter.Line)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list queries")
	}
	defer rows.Close()

	var records []QueryRecord
	for rows.Next() {
		var rec QueryRecord
		if err := rows.Scan(
			&rec.ID, &rec.Station, &rec.Line, &rec.Lng, &rec.Lat, &rec.RadiusMeters,
			&rec.AffectedAreas, &rec.TotalPopulation, &rec.WithinRadius, &rec.CreatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan query")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list queries iterate")
}
