package podcast

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the SQL DDL for the podcasts table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS podcasts (
    id               TEXT PRIMARY KEY,
    title            TEXT NOT NULL,
    format           TEXT NOT NULL DEFAULT 'podcast',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    duration_seconds INTEGER NOT NULL DEFAULT 0,
    audio_url        TEXT NOT NULL DEFAULT '#',
    cover_url        TEXT NOT NULL DEFAULT '',
    listened         BOOLEAN NOT NULL DEFAULT FALSE,
    script           TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_podcasts_created_at ON podcasts(created_at DESC);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a Store backed by a PostgreSQL database.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new [PostgresStore] that uses the given database
// connection or pool. The caller is responsible for calling
// [PostgresStore.Migrate] to ensure the schema exists before issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL against the database.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("podcast: migrate: %w", err)
	}
	return nil
}

const podcastColumns = `id, title, format, created_at, duration_seconds, audio_url, cover_url, listened, script`

// Save implements Store.
func (s *PostgresStore) Save(ctx context.Context, p *Podcast) error {
	const query = `
		INSERT INTO podcasts (id, title, format, created_at, duration_seconds, audio_url, cover_url, listened, script)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err := s.db.Exec(ctx, query,
		p.ID, p.Title, p.Format, p.CreatedAt, p.Duration, p.AudioURL, p.CoverURL, p.Listened, p.Script,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("podcast: podcast with id %q already exists", p.ID)
		}
		return fmt.Errorf("podcast: save: %w", err)
	}
	return nil
}

// List implements Store, returning podcasts newest first.
func (s *PostgresStore) List(ctx context.Context) ([]Podcast, error) {
	const query = `SELECT ` + podcastColumns + ` FROM podcasts ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("podcast: list: %w", err)
	}
	defer rows.Close()

	var podcasts []Podcast
	for rows.Next() {
		var p Podcast
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Format, &p.CreatedAt, &p.Duration,
			&p.AudioURL, &p.CoverURL, &p.Listened, &p.Script,
		); err != nil {
			return nil, fmt.Errorf("podcast: list scan: %w", err)
		}
		podcasts = append(podcasts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("podcast: list: %w", err)
	}
	return podcasts, nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Podcast, error) {
	const query = `SELECT ` + podcastColumns + ` FROM podcasts WHERE id = $1`
	return s.scanOne(s.db.QueryRow(ctx, query, id), "get")
}

// Delete implements Store.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM podcasts WHERE id = $1`
	tag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("podcast: delete %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAudioURL implements Store.
func (s *PostgresStore) SetAudioURL(ctx context.Context, id, url string) (*Podcast, error) {
	const query = `UPDATE podcasts SET audio_url = $2 WHERE id = $1 RETURNING ` + podcastColumns
	return s.scanOne(s.db.QueryRow(ctx, query, id, url), "set audio url")
}

// SetCoverURL implements Store.
func (s *PostgresStore) SetCoverURL(ctx context.Context, id, url string) (*Podcast, error) {
	const query = `UPDATE podcasts SET cover_url = $2 WHERE id = $1 RETURNING ` + podcastColumns
	return s.scanOne(s.db.QueryRow(ctx, query, id, url), "set cover url")
}

// SetTitle implements Store.
func (s *PostgresStore) SetTitle(ctx context.Context, id, title string) (*Podcast, error) {
	const query = `UPDATE podcasts SET title = $2 WHERE id = $1 RETURNING ` + podcastColumns
	return s.scanOne(s.db.QueryRow(ctx, query, id, title), "set title")
}

// ToggleListened implements Store.
func (s *PostgresStore) ToggleListened(ctx context.Context, id string) (*Podcast, error) {
	const query = `UPDATE podcasts SET listened = NOT listened WHERE id = $1 RETURNING ` + podcastColumns
	return s.scanOne(s.db.QueryRow(ctx, query, id), "toggle listened")
}

// scanOne scans a single podcast row, mapping pgx.ErrNoRows to ErrNotFound.
func (s *PostgresStore) scanOne(row pgx.Row, op string) (*Podcast, error) {
	var p Podcast
	err := row.Scan(
		&p.ID, &p.Title, &p.Format, &p.CreatedAt, &p.Duration,
		&p.AudioURL, &p.CoverURL, &p.Listened, &p.Script,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("podcast: %s: %w", op, err)
	}
	return &p, nil
}

// isDuplicateKeyError checks whether a PostgreSQL error is a unique-violation
// (SQLSTATE 23505).
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
