// Package appctx provides request-scoped values extraction.
package appctx

import (
	"context"
)

// Role names used across the API.
const (
	RoleCustomer   = "customer"
	RolePharmacist = "pharmacist"
	RoleAdmin      = "admin"
)

// UserContext contains authenticated user information.
type UserContext struct {
	UserID  string
	Email   string
	Role    string
	IsAdmin bool
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// IsStaff reports whether the user may access back-office endpoints.
func IsStaff(ctx context.Context) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	return u.IsAdmin || u.Role == RoleAdmin || u.Role == RolePharmacist
}
