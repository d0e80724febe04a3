package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/MediaKeeper/internal/models"
)

const mediaColumns = `id, title, genre, type, watched, rating, comment, tmdb_id, trailer_url, created_at, updated_at, rating_date`

// PostgresMediaRepository stores media entries in PostgreSQL. Deleted rows
// are only marked; db.StartSoftDeleteCleaner purges them later.
type PostgresMediaRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresMediaRepository creates a new PostgresMediaRepository using the provided *sql.DB.
func NewPostgresMediaRepository(db *sql.DB) *PostgresMediaRepository {
	return &PostgresMediaRepository{DB: db}
}

// ListMedia returns the live entries of a user in creation order.
func (r *PostgresMediaRepository) ListMedia(ctx context.Context, userID int64) ([]models.MediaEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+mediaColumns+` FROM media
		 WHERE user_id = $1 AND deleted_at IS NULL
		 ORDER BY id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListMedia: %w", err)
	}
	defer rows.Close()

	entries := []models.MediaEntry{}
	for rows.Next() {
		e, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListMedia: %w", err)
	}
	return entries, nil
}

// GetMedia returns one live entry of a user.
func (r *PostgresMediaRepository) GetMedia(ctx context.Context, userID, id int64) (models.MediaEntry, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+mediaColumns+` FROM media
		 WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL
	`, userID, id)
	e, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MediaEntry{}, ErrNotFound
	}
	if err != nil {
		return models.MediaEntry{}, fmt.Errorf("GetMedia: %w", err)
	}
	return e, nil
}

// CreateMedia inserts e for the user and returns it with its new id.
func (r *PostgresMediaRepository) CreateMedia(ctx context.Context, userID int64, e models.MediaEntry) (models.MediaEntry, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO media (user_id, title, genre, type, watched, rating, comment, tmdb_id, trailer_url, created_at, updated_at, rating_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`, userID, e.Title, e.Genre, string(e.Type), e.Watched, e.Rating, e.Comment, e.ExternalRef, e.TrailerRef,
		e.CreatedAt, e.UpdatedAt, e.RatingDate,
	).Scan(&id)
	if err != nil {
		return models.MediaEntry{}, fmt.Errorf("CreateMedia: %w", err)
	}
	e.ID = &id
	return e, nil
}

// UpdateMedia overwrites the mutable fields of an existing live entry.
func (r *PostgresMediaRepository) UpdateMedia(ctx context.Context, userID int64, e models.MediaEntry) (models.MediaEntry, error) {
	if e.ID == nil {
		return models.MediaEntry{}, ErrNotFound
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE media SET
			title = $3, genre = $4, type = $5, watched = $6, rating = $7, comment = $8,
			tmdb_id = $9, trailer_url = $10, updated_at = $11, rating_date = $12
		 WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL
	`, userID, *e.ID, e.Title, e.Genre, string(e.Type), e.Watched, e.Rating, e.Comment,
		e.ExternalRef, e.TrailerRef, e.UpdatedAt, e.RatingDate,
	)
	if err != nil {
		return models.MediaEntry{}, fmt.Errorf("UpdateMedia: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.MediaEntry{}, ErrNotFound
	}
	return e, nil
}

// DeleteMedia soft-deletes an entry.
func (r *PostgresMediaRepository) DeleteMedia(ctx context.Context, userID, id int64) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE media SET deleted_at = now()
		 WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL
	`, userID, id)
	if err != nil {
		return fmt.Errorf("DeleteMedia: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedia(row rowScanner) (models.MediaEntry, error) {
	var (
		e          models.MediaEntry
		id         int64
		typ        string
		rating     sql.NullFloat64
		comment    sql.NullString
		tmdbID     sql.NullInt64
		trailer    sql.NullString
		createdAt  sql.NullTime
		updatedAt  sql.NullTime
		ratingDate sql.NullTime
	)
	if err := row.Scan(&id, &e.Title, &e.Genre, &typ, &e.Watched, &rating, &comment, &tmdbID, &trailer,
		&createdAt, &updatedAt, &ratingDate); err != nil {
		return models.MediaEntry{}, err
	}

	e.ID = &id
	e.Type = models.MediaType(typ)
	if rating.Valid {
		e.Rating = &rating.Float64
	}
	if comment.Valid {
		e.Comment = &comment.String
	}
	if tmdbID.Valid {
		e.ExternalRef = &tmdbID.Int64
	}
	if trailer.Valid {
		e.TrailerRef = &trailer.String
	}
	if createdAt.Valid {
		e.CreatedAt = &createdAt.Time
	}
	if updatedAt.Valid {
		e.UpdatedAt = &updatedAt.Time
	}
	if ratingDate.Valid {
		e.RatingDate = &ratingDate.Time
	}
	return e, nil
}
