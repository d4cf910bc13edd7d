package repository

import "errors"

var (
	// ErrNotFound indicates an entity was not located. For notes this also
	// covers rows owned by someone else; callers cannot tell the two apart.
	ErrNotFound = errors.New("repository: not found")

	// ErrDuplicate indicates a unique constraint was violated.
	ErrDuplicate = errors.New("repository: duplicate")
)
