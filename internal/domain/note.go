package domain

import "time"

// Note is a text record owned by exactly one user.
type Note struct {
	ID        int64
	Title     string
	Content   string
	OwnerID   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
