package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lawscheduling/lawscheduling-backend/pkg/db/models"
)

// Principal is the public view of a local identity. The password hash never
// leaves this package's callers.
type Principal struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewPrincipal is what sign-up and admin bootstrap hand to Create.
type NewPrincipal struct {
	Email        string
	PasswordHash string
	// Inactive principals exist but cannot sign in.
	Inactive bool
}

// NormalizeEmail is the stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func View(u *models.User) *Principal {
	if u == nil {
		return nil
	}
	return &Principal{
		ID:          u.ID,
		Email:       u.Email,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func (n NewPrincipal) model() *models.User {
	return &models.User{
		Email:        NormalizeEmail(n.Email),
		PasswordHash: n.PasswordHash,
		IsActive:     !n.Inactive,
	}
}
