package domain

import (
	"context"
	"time"
)

// Member is an internal employee who can sign in and author meeting records.
type Member struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Position     string    `json:"position,omitempty"`
	Email        string    `json:"email"`
	SSOID        string    `json:"sso_id,omitempty"`
	DepartmentID int64     `json:"department_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// Credential holds the password hash of exactly one member.
type Credential struct {
	ID           int64
	MemberID     int64
	PasswordHash string // bcrypt, encodes its own salt and cost
	LastLogin    *time.Time
}

// MemberRepository defines data access for members
type MemberRepository interface {
	Create(ctx context.Context, member *Member) error
	GetByID(ctx context.Context, id int64) (*Member, error)
	GetByEmail(ctx context.Context, email string) (*Member, error)
	List(ctx context.Context, page Page) ([]*Member, error)
	SearchByName(ctx context.Context, keyword string, page Page) ([]*Member, int, error)
}

// CredentialRepository defines data access for credentials
type CredentialRepository interface {
	GetByMemberID(ctx context.Context, memberID int64) (*Credential, error)
	// Upsert creates the member's credential or replaces its hash.
	Upsert(ctx context.Context, memberID int64, passwordHash string) error
	TouchLastLogin(ctx context.Context, memberID int64, at time.Time) error
}
