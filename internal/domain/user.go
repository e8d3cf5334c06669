package domain

import (
	"context"
	"time"
)

// User represents a registered user.
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Admin        bool      `json:"admin"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser returns a new User. ID is set by the repository on create.
func NewUser(email, name string, admin bool, createdAt time.Time) *User {
	return &User{
		Email:     email,
		Name:      name,
		Admin:     admin,
		CreatedAt: createdAt,
	}
}

// Roles returns the role codes carried in issued tokens.
func (u *User) Roles() []string {
	if u.Admin {
		return []string{"admin", "user"}
	}
	return []string{"user"}
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID and roles.
type TokenVerifier interface {
	Verify(token string) (userID string, roles []string, err error)
}

// UserRepository defines the interface for user storage. The lifecycle and
// admission engines depend on it only for existence checks and fetches.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, ids []string, p PaginationParams) ([]*User, error)
	Delete(ctx context.Context, id string) error
}

// UserService defines user administration and authentication.
type UserService interface {
	Create(ctx context.Context, email, name, password string) (*User, error)
	List(ctx context.Context, ids []string, p PaginationParams) ([]*User, error)
	Delete(ctx context.Context, id string) error
	// Login verifies credentials and returns a signed token plus the user.
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
}
