package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"datapost/internal/model"
	"datapost/internal/repository"
)

const uniqueViolation = "23505"

// RecordPostgres is a PostgreSQL implementation of repository.RecordRepository.
// Every statement is scoped to one collection. It uses database/sql with
// parameterized queries and contains no business logic.
type RecordPostgres struct {
	db         *sql.DB
	collection string
}

// NewRecordPostgres creates a new RecordPostgres repository bound to collection.
func NewRecordPostgres(db *sql.DB, collection string) *RecordPostgres {
	return &RecordPostgres{db: db, collection: collection}
}

var _ repository.RecordRepository = (*RecordPostgres)(nil)

// Insert inserts a new record row and returns the stored record.
func (r *RecordPostgres) Insert(ctx context.Context, rec *model.Record) (*model.Record, error) {
	const q = `
		INSERT INTO records (id, collection, title, content, type_tag, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, title, content, type_tag, status, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, q,
		rec.ID,
		r.collection,
		rec.Title,
		rec.Content,
		rec.TypeTag,
		rec.Status,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	out, err := scanRecord(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return out, nil
}

// FindByID fetches a single record by its ID.
func (r *RecordPostgres) FindByID(ctx context.Context, id string) (*model.Record, error) {
	const q = `
		SELECT id, title, content, type_tag, status, created_at, updated_at
		FROM records
		WHERE id = $1 AND collection = $2
	`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, q, id, r.collection))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// Update rewrites title and content. The type tag column is left untouched.
func (r *RecordPostgres) Update(ctx context.Context, id, title, content string) error {
	const q = `
		UPDATE records
		SET title = $3, content = $4, updated_at = $5
		WHERE id = $1 AND collection = $2
	`
	res, err := r.db.ExecContext(ctx, q, id, r.collection, title, content, time.Now().UTC())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Query matches title (LIKE or equality) and type tag, newest first.
func (r *RecordPostgres) Query(ctx context.Context, rq repository.RecordQuery) ([]model.Record, error) {
	const qSubstring = `
		SELECT id, title, content, type_tag, status, created_at, updated_at
		FROM records
		WHERE collection = $1 AND type_tag = $2 AND title LIKE $3 ESCAPE '\'
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`
	const qExact = `
		SELECT id, title, content, type_tag, status, created_at, updated_at
		FROM records
		WHERE collection = $1 AND type_tag = $2 AND title = $3
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`

	q, title := qSubstring, "%"+escapeLike(rq.Title)+"%"
	if rq.Match == repository.MatchExact {
		q, title = qExact, rq.Title
	}

	rows, err := r.db.QueryContext(ctx, q, r.collection, rq.TypeTag, title, rq.EffectiveLimit())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes a record by ID. It does not return an error if the row does not exist.
func (r *RecordPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM records WHERE id = $1 AND collection = $2`
	_, err := r.db.ExecContext(ctx, q, id, r.collection)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*model.Record, error) {
	var rec model.Record
	if err := row.Scan(
		&rec.ID,
		&rec.Title,
		&rec.Content,
		&rec.TypeTag,
		&rec.Status,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
