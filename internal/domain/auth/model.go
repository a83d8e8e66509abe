// Package auth provides authentication and authorization domain logic.
package auth

import (
	"context"
	"strings"

	"dispensary/internal/core/apperror"
	"dispensary/internal/core/appctx"
	"dispensary/internal/core/entity"
	"dispensary/internal/core/id"
)

// User is an account in the pharmacy. Customers shop; pharmacists and
// admins manage the catalog and the ledger.
type User struct {
	entity.BaseRecord

	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	FullName     string `db:"full_name" json:"fullName"`
	Role         string `db:"role" json:"role"`
	IsAdmin      bool   `db:"is_admin" json:"isAdmin"`
}

func NewUser(email, fullName, role string) *User {
	return &User{
		BaseRecord: entity.NewBaseRecord(),
		Email:      strings.ToLower(strings.TrimSpace(email)),
		FullName:   fullName,
		Role:       role,
	}
}

// Validate implements entity.Validatable.
func (u *User) Validate(ctx context.Context) error {
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return apperror.NewValidation("valid email is required").
			WithDetail("field", "email")
	}
	switch u.Role {
	case appctx.RoleCustomer, appctx.RolePharmacist, appctx.RoleAdmin:
	default:
		return apperror.NewValidation("unknown role").
			WithDetail("field", "role").
			WithDetail("role", u.Role)
	}
	return nil
}

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID id.ID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
