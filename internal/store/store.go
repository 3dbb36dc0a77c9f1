package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/zeebo/xxh3"

	"github.com/JonMunkholm/cookielog/internal/activity"
	"github.com/JonMunkholm/cookielog/internal/schema"
)

// ErrDuplicateUpload is returned by SaveLog when an identical document was
// stored before. The message keeps "duplicate key" so it maps to DB001.
var ErrDuplicateUpload = errors.New("duplicate key: cookie log already stored")

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Upload is one stored cookie log document.
type Upload struct {
	ID          uuid.UUID `json:"id"`
	FileName    string    `json:"file_name"`
	Fingerprint int64     `json:"fingerprint"`
	Rows        int       `json:"rows"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Store reads and writes cookie logs.
type Store struct {
	db DBTX
}

// New creates a Store on db.
func New(db DBTX) *Store {
	return &Store{db: db}
}

const ddl = `
CREATE TABLE IF NOT EXISTS cookie_log_uploads (
	id          uuid PRIMARY KEY,
	file_name   text NOT NULL,
	fingerprint bigint NOT NULL UNIQUE,
	row_count   integer NOT NULL,
	uploaded_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS cookie_log_entries (
	upload_id   uuid NOT NULL REFERENCES cookie_log_uploads (id) ON DELETE CASCADE,
	line        integer NOT NULL,
	cookie      text NOT NULL,
	year        bigint NOT NULL,
	month       smallint NOT NULL,
	day         smallint NOT NULL,
	log_date    date,
	time_of_day text NOT NULL,
	PRIMARY KEY (upload_id, line)
);

CREATE INDEX IF NOT EXISTS cookie_log_entries_day_idx
	ON cookie_log_entries (upload_id, year, month, day);
`

// entryColumns is the COPY column order of cookie_log_entries.
var entryColumns = []string{"upload_id", "line", "cookie", "year", "month", "day", "log_date", "time_of_day"}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Fingerprint identifies a document by the xxh3 hash of its text.
func Fingerprint(text string) int64 {
	return int64(xxh3.HashString(text))
}

// FindUpload returns the upload whose document hashes to fingerprint.
// Returns false if none was stored.
func (s *Store) FindUpload(ctx context.Context, fingerprint int64) (Upload, bool, error) {
	var u Upload
	err := s.db.QueryRow(ctx,
		`SELECT id, file_name, fingerprint, row_count, uploaded_at
		 FROM cookie_log_uploads WHERE fingerprint = $1`,
		fingerprint,
	).Scan(&u.ID, &u.FileName, &u.Fingerprint, &u.Rows, &u.UploadedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return Upload{}, false, nil
	}
	if err != nil {
		return Upload{}, false, fmt.Errorf("find upload: %w", err)
	}
	return u, true, nil
}

// SaveLog stores a parsed document and its entries in one transaction.
//
// A document already stored, by fingerprint of text, is not stored again:
// the earlier upload is returned with ErrDuplicateUpload.
func (s *Store) SaveLog(ctx context.Context, fileName, text string, entries []schema.LogEntry) (Upload, error) {
	fp := Fingerprint(text)

	if existing, ok, err := s.FindUpload(ctx, fp); err != nil {
		return Upload{}, err
	} else if ok {
		return existing, ErrDuplicateUpload
	}

	u := Upload{
		ID:          uuid.New(),
		FileName:    fileName,
		Fingerprint: fp,
		Rows:        len(entries),
	}

	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO cookie_log_uploads (id, file_name, fingerprint, row_count)
			 VALUES ($1, $2, $3, $4) RETURNING uploaded_at`,
			u.ID, u.FileName, u.Fingerprint, u.Rows,
		).Scan(&u.UploadedAt)
		if err != nil {
			return fmt.Errorf("insert upload: %w", err)
		}

		n, err := tx.CopyFrom(ctx, pgx.Identifier{"cookie_log_entries"}, entryColumns,
			pgx.CopyFromSlice(len(entries), func(i int) ([]any, error) {
				return entryRow(u.ID, i, entries[i]), nil
			}))
		if err != nil {
			return fmt.Errorf("copy entries: %w", err)
		}
		if n != int64(len(entries)) {
			return fmt.Errorf("copy entries: wrote %d of %d rows", n, len(entries))
		}
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Upload{}, fmt.Errorf("%w: %s", ErrDuplicateUpload, pgErr.ConstraintName)
		}
		return Upload{}, fmt.Errorf("save log %s: %w", fileName, err)
	}

	return u, nil
}

// entryRow builds the COPY row for entries[i]. Data rows start on line 2.
func entryRow(uploadID uuid.UUID, i int, e schema.LogEntry) []any {
	d := e.Timestamp.Date
	return []any{
		uploadID,
		int32(i + 2),
		string(e.Cookie),
		int64(d.Year),
		int16(d.Month),
		int16(d.Day),
		ToPgDate(d),
		e.Timestamp.Time,
	}
}

// ToPgDate converts d to a pgtype.Date, invalid when d is not a real
// calendar day.
func ToPgDate(d schema.Date) pgtype.Date {
	t, ok := d.Time()
	if !ok {
		return pgtype.Date{Valid: false}
	}
	return pgtype.Date{Time: t, Valid: true}
}

// Counts returns per-cookie entry counts of an upload for day, in order of
// each cookie's first line.
func (s *Store) Counts(ctx context.Context, uploadID uuid.UUID, day schema.Date) ([]activity.CookieCount, error) {
	rows, err := s.db.Query(ctx,
		`SELECT cookie, count(*)
		 FROM cookie_log_entries
		 WHERE upload_id = $1 AND year = $2 AND month = $3 AND day = $4
		 GROUP BY cookie
		 ORDER BY min(line)`,
		uploadID, int64(day.Year), int16(day.Month), int16(day.Day),
	)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}

	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (activity.CookieCount, error) {
		var (
			cookie string
			n      int64
		)
		if err := row.Scan(&cookie, &n); err != nil {
			return activity.CookieCount{}, err
		}
		return activity.CookieCount{Cookie: schema.Cookie(cookie), Count: int(n)}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan counts: %w", err)
	}
	return counts, nil
}
