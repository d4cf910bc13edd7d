package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splax/jot/internal/domain"
	"github.com/splax/jot/internal/repository"
)

// Repository implements persistence interfaces on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ensure Repository satisfies interfaces.
var (
	_ repository.UserRepository = (*Repository)(nil)
	_ repository.NoteRepository = (*Repository)(nil)
)

const uniqueViolation = "23505"

// CreateUser inserts a user and fills in the generated id. A duplicate email
// surfaces as repository.ErrDuplicate.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	const query = `INSERT INTO users (email, hashed_password, full_name)
		VALUES ($1, $2, $3) RETURNING id`
	row := r.pool.QueryRow(ctx, query, user.Email, user.HashedPassword, user.FullName)
	if err := row.Scan(&user.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

// GetUserByEmail fetches a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT id, email, hashed_password, full_name FROM users WHERE email = $1`
	row := r.pool.QueryRow(ctx, query, email)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.FullName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetUserByID retrieves a user by identifier.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `SELECT id, email, hashed_password, full_name FROM users WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.FullName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CreateNote inserts a note and fills in generated id and timestamps.
func (r *Repository) CreateNote(ctx context.Context, note *domain.Note) error {
	const query = `INSERT INTO notes (title, content, owner_id)
		VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`
	row := r.pool.QueryRow(ctx, query, note.Title, note.Content, note.OwnerID)
	return row.Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)
}

// GetNote fetches a note by id scoped to its owner.
func (r *Repository) GetNote(ctx context.Context, id, ownerID int64) (*domain.Note, error) {
	const query = `SELECT id, title, content, owner_id, created_at, updated_at
		FROM notes WHERE id = $1 AND owner_id = $2`
	row := r.pool.QueryRow(ctx, query, id, ownerID)
	var n domain.Note
	if err := row.Scan(&n.ID, &n.Title, &n.Content, &n.OwnerID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// ListNotes returns the owner's notes, optionally filtered by a
// case-insensitive title substring.
func (r *Repository) ListNotes(ctx context.Context, ownerID int64, titleQuery string) ([]domain.Note, error) {
	query := `SELECT id, title, content, owner_id, created_at, updated_at
		FROM notes WHERE owner_id = $1 ORDER BY id ASC`
	args := []any{ownerID}
	if titleQuery != "" {
		query = `SELECT id, title, content, owner_id, created_at, updated_at
			FROM notes WHERE owner_id = $1 AND title ILIKE '%' || $2 || '%' ORDER BY id ASC`
		args = append(args, titleQuery)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]domain.Note, 0)
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.OwnerID, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// UpdateNote rewrites title and content of an owned note and bumps
// updated_at. Missing and foreign notes both return repository.ErrNotFound.
func (r *Repository) UpdateNote(ctx context.Context, id, ownerID int64, title, content string) (*domain.Note, error) {
	const query = `UPDATE notes SET title = $1, content = $2, updated_at = now()
		WHERE id = $3 AND owner_id = $4
		RETURNING id, title, content, owner_id, created_at, updated_at`
	row := r.pool.QueryRow(ctx, query, title, content, id, ownerID)
	var n domain.Note
	if err := row.Scan(&n.ID, &n.Title, &n.Content, &n.OwnerID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// DeleteNote removes an owned note.
func (r *Repository) DeleteNote(ctx context.Context, id, ownerID int64) error {
	const query = `DELETE FROM notes WHERE id = $1 AND owner_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
