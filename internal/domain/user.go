package domain

import (
	"context"
	"time"
)

// Role codes stored on user rows.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User is an organizational member. Read-only to the scheduling core;
// account administration lives outside this service.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	DepartmentID string    `json:"department_id"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Eligible reports whether the user may appear in a participant pool.
// Admin accounts are excluded.
func (u *User) Eligible() bool {
	return u.Role != RoleAdmin
}

// UserRepository is the user directory consumed by the scheduling core.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// ListEligible returns all non-admin users, ordered by name.
	ListEligible(ctx context.Context) ([]*User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash, salt string) error
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email, role string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// AuthService is the session-management collaborator the scheduling core
// relies on for caller identity.
type AuthService interface {
	// Login authenticates by user ID or email plus password and returns a
	// signed token with the user.
	Login(ctx context.Context, identifier, password string) (token string, user *User, err error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}
