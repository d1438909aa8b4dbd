package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/csvclean/internal/core"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS clean_runs (
    id          TEXT PRIMARY KEY,
    file_name   TEXT NOT NULL,
    profile     TEXT,
    source      TEXT,
    client_ip   TEXT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    error       TEXT,
    report      JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS clean_runs_created_at_idx ON clean_runs (created_at DESC);
`

const runColumns = `id, file_name, profile, source, client_ip, created_at, error, report`

// PostgresStore is a core.RunStore backed by a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps pool. Call EnsureSchema once before use.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the clean_runs table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create clean_runs schema: %w", err)
	}
	return nil
}

// SaveRun upserts rec.
func (s *PostgresStore) SaveRun(ctx context.Context, rec core.RunRecord) error {
	report, err := json.Marshal(rec.Report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO clean_runs (`+runColumns+`)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()), $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			file_name = EXCLUDED.file_name,
			profile   = EXCLUDED.profile,
			source    = EXCLUDED.source,
			client_ip = EXCLUDED.client_ip,
			error     = EXCLUDED.error,
			report    = EXCLUDED.report`,
		rec.ID,
		rec.FileName,
		toPgText(rec.Profile),
		toPgText(rec.Source),
		toPgText(rec.ClientIP),
		toPgTimestamptz(rec.CreatedAt),
		toPgText(rec.Error),
		report,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", rec.ID, err)
	}
	return nil
}

// ListRuns returns up to limit records, newest first.
func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]core.RunRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+runColumns+` FROM clean_runs ORDER BY created_at DESC, id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	out := []core.RunRecord{}
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

// GetRun returns the record for id or core.ErrRunNotFound.
func (s *PostgresStore) GetRun(ctx context.Context, id string) (core.RunRecord, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM clean_runs WHERE id = $1`, id)
	rec, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.RunRecord{}, core.ErrRunNotFound
	}
	return rec, err
}

// PruneRuns deletes records created before cutoff.
func (s *PostgresStore) PruneRuns(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM clean_runs WHERE created_at < $1`, toPgTimestamptz(cutoff))
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanRun(row pgx.Row) (core.RunRecord, error) {
	var (
		rec                             core.RunRecord
		profile, source, clientIP, errs pgtype.Text
		createdAt                       pgtype.Timestamptz
		report                          []byte
	)
	if err := row.Scan(&rec.ID, &rec.FileName, &profile, &source, &clientIP, &createdAt, &errs, &report); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.RunRecord{}, err
		}
		return core.RunRecord{}, fmt.Errorf("scan run: %w", err)
	}
	rec.Profile = profile.String
	rec.Source = source.String
	rec.ClientIP = clientIP.String
	rec.Error = errs.String
	if createdAt.Valid {
		rec.CreatedAt = createdAt.Time.UTC()
	}
	if err := json.Unmarshal(report, &rec.Report); err != nil {
		return core.RunRecord{}, fmt.Errorf("decode report for run %s: %w", rec.ID, err)
	}
	return rec, nil
}

// toPgText returns an invalid (NULL) value for blank strings.
func toPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgTimestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}
