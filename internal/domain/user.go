package domain

import "time"

// User is an account that can log in to the dashboards.
type User struct {
	ID       string
	Username string
	Email    string
	Role     string
	// Password holds a bcrypt hash. Records written before hashing was
	// introduced may still carry plaintext until migrated.
	Password  string
	CreatedAt time.Time
}
