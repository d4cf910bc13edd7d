package note

import (
	"context"

	"log/slog"

	"github.com/splax/jot/internal/domain"
	"github.com/splax/jot/internal/repository"
)

// Service owns note CRUD. Every operation is scoped to the authenticated
// owner; the owner id always comes from the principal, never from input.
type Service struct {
	notes  repository.NoteRepository
	logger *slog.Logger
}

// New constructs a Service.
func New(notes repository.NoteRepository, logger *slog.Logger) Service {
	return Service{notes: notes, logger: logger}
}

// Create stores a new note owned by ownerID.
func (s Service) Create(ctx context.Context, ownerID int64, title, content string) (*domain.Note, error) {
	note := &domain.Note{Title: title, Content: content, OwnerID: ownerID}
	if err := s.notes.CreateNote(ctx, note); err != nil {
		return nil, err
	}
	s.logger.Info("note created", "note_id", note.ID, "owner_id", ownerID)
	return note, nil
}

// Get returns one of the owner's notes.
func (s Service) Get(ctx context.Context, id, ownerID int64) (*domain.Note, error) {
	return s.notes.GetNote(ctx, id, ownerID)
}

// List returns the owner's notes, optionally filtered by a case-insensitive
// title substring.
func (s Service) List(ctx context.Context, ownerID int64, titleQuery string) ([]domain.Note, error) {
	return s.notes.ListNotes(ctx, ownerID, titleQuery)
}

// Update rewrites title and content of an owned note.
func (s Service) Update(ctx context.Context, id, ownerID int64, title, content string) (*domain.Note, error) {
	note, err := s.notes.UpdateNote(ctx, id, ownerID, title, content)
	if err != nil {
		return nil, err
	}
	s.logger.Info("note updated", "note_id", id, "owner_id", ownerID)
	return note, nil
}

// Delete removes an owned note.
func (s Service) Delete(ctx context.Context, id, ownerID int64) error {
	if err := s.notes.DeleteNote(ctx, id, ownerID); err != nil {
		return err
	}
	s.logger.Info("note deleted", "note_id", id, "owner_id", ownerID)
	return nil
}
