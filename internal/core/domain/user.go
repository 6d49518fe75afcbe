package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the principal's authorization level.
type Role string

const (
	RoleUser     Role = "user"
	RoleMerchant Role = "merchant"
	RoleAdmin    Role = "admin"
)

// User is an account holder: a plain user, a merchant operator, or an admin.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
