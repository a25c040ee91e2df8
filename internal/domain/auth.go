package domain

import "time"

// Well-known roles. Registration accepts any role string.
const (
	RoleAdmin    = "Admin"
	RoleTechTeam = "Tech Team"
	RoleUser     = "User"
)

// AccessToken is the metadata carried by an issued bearer token.
type AccessToken struct {
	Token     string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
