package domain

// User is an account identified by a unique email. FullName is optional and
// surfaces as null when absent.
type User struct {
	ID             int64
	Email          string
	HashedPassword string
	FullName       *string
}
