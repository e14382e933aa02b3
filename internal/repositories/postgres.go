package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clipvault/backend/internal/db"
	"github.com/clipvault/backend/internal/models"
)

// PostgresAccountRepository provides PostgreSQL-backed persistence for
// accounts. Email uniqueness rides on a unique index, so two concurrent
// registrations for the same address cannot both commit.
type PostgresAccountRepository struct {
	pool db.Pool
}

// NewPostgresAccountRepository constructs an account repository backed by PostgreSQL.
func NewPostgresAccountRepository(pool db.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// Create persists a new account record. A duplicate email surfaces as
// ErrConflict regardless of which concurrent writer lost the race.
func (r *PostgresAccountRepository) Create(ctx context.Context, account models.Account) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO accounts (id, email, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
    `, account.ID, account.Email, account.Password, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// FindByEmail fetches an account by exact, case-sensitive email match.
func (r *PostgresAccountRepository) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, email, password_hash, created_at, updated_at
        FROM accounts
        WHERE email = $1
    `, email)

	var account models.Account
	if err := row.Scan(&account.ID, &account.Email, &account.Password, &account.CreatedAt, &account.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, ErrNotFound
		}
		return models.Account{}, fmt.Errorf("select account by email: %w", err)
	}

	return account, nil
}

// Update modifies an existing account record.
func (r *PostgresAccountRepository) Update(ctx context.Context, account models.Account) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE accounts
        SET email = $2, password_hash = $3, updated_at = $4
        WHERE id = $1
    `, account.ID, account.Email, account.Password, account.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("update account: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// PostgresVideoRepository provides PostgreSQL-backed persistence for video
// records. The owner snapshot is stored denormalized on the row.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (
            id, title, description, video_url, thumbnail_url, controls,
            owner_id, owner_name, owner_email,
            t_height, t_width, t_quality,
            created_at, updated_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    `, video.ID, video.Title, video.Description, video.VideoURL, video.ThumbnailURL, video.Controls,
		video.Owner.ID, video.Owner.Name, video.Owner.Email,
		video.Transformation.Height, video.Transformation.Width, video.Transformation.Quality,
		video.CreatedAt, video.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

const videoColumns = `
        id, title, description, video_url, thumbnail_url, controls,
        owner_id, owner_name, owner_email,
        t_height, t_width, t_quality,
        created_at, updated_at`

// List returns video records newest-first. A non-empty ownerEmail narrows
// the result to that owner; an empty filter returns everything. The result
// is a snapshot, not a live cursor.
func (r *PostgresVideoRepository) List(ctx context.Context, ownerEmail string) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var rows pgx.Rows
	if ownerEmail != "" {
		rows, err = conn.Query(ctx, `
        SELECT `+videoColumns+`
        FROM videos
        WHERE owner_email = $1
        ORDER BY created_at DESC
    `, ownerEmail)
	} else {
		rows, err = conn.Query(ctx, `
        SELECT `+videoColumns+`
        FROM videos
        ORDER BY created_at DESC
    `)
	}
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, nil
}

// Find fetches a single video record by id.
func (r *PostgresVideoRepository) Find(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+videoColumns+`
        FROM videos
        WHERE id = $1
    `, id)

	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, err
	}

	return video, nil
}

// Delete removes a video record. Ownership is the caller's concern; the
// repository only reports whether the row existed.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM videos
        WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var video models.Video
	if err := row.Scan(
		&video.ID, &video.Title, &video.Description, &video.VideoURL, &video.ThumbnailURL, &video.Controls,
		&video.Owner.ID, &video.Owner.Name, &video.Owner.Email,
		&video.Transformation.Height, &video.Transformation.Width, &video.Transformation.Quality,
		&video.CreatedAt, &video.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, pgx.ErrNoRows
		}
		return models.Video{}, fmt.Errorf("scan video: %w", err)
	}
	return video, nil
}

var _ AccountRepository = (*PostgresAccountRepository)(nil)
var _ VideoRepository = (*PostgresVideoRepository)(nil)
