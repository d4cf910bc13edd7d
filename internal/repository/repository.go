package repository

import (
	"context"

	"github.com/splax/jot/internal/domain"
)

// UserRepository persists users.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}

// NoteRepository persists notes. Every lookup that targets a single note
// filters on (id, owner id) in one statement so that a note owned by another
// user behaves exactly like a missing one.
type NoteRepository interface {
	CreateNote(ctx context.Context, note *domain.Note) error
	GetNote(ctx context.Context, id, ownerID int64) (*domain.Note, error)
	ListNotes(ctx context.Context, ownerID int64, titleQuery string) ([]domain.Note, error)
	UpdateNote(ctx context.Context, id, ownerID int64, title, content string) (*domain.Note, error)
	DeleteNote(ctx context.Context, id, ownerID int64) error
}
