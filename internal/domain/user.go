// Package domain contains core business types and interfaces.
//
// This file defines the User domain type. Users are provisioned once at
// startup and never deleted; the only mutation after creation is the
// last-login timestamp update.
package domain

import (
	"database/sql"
	"time"
)

// UserRole represents the role assigned to a user account.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User represents a registered user.
//
// The username is the stable identifier referenced by subscriptions and
// ledger rows; the numeric ID is only the storage row key.
type User struct {
	ID           int64
	Username     string
	PasswordHash string // Never expose this in API responses
	Name         string
	Role         UserRole
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// DisplayName returns the user's name or username if name is empty.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// ProvisionParams contains the parameters for creating a user account.
type ProvisionParams struct {
	Username string
	Password string // Raw password, will be hashed by service
	Name     string
	Role     UserRole
}

// LoginResult contains the result of a successful login: the user and a
// snapshot of their subscription (default basic when no row exists).
type LoginResult struct {
	User         *User
	Subscription *SubscriptionSnapshot
}

// =============================================================================
// Conversion helpers from storage types
// =============================================================================

// NullStringValue safely extracts a string from sql.NullString.
func NullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// NullTimeValue safely extracts a time pointer from sql.NullTime.
func NullTimeValue(nt sql.NullTime) *time.Time {
	if nt.Valid {
		return &nt.Time
	}
	return nil
}

// NullFloatValue safely extracts a float64 from sql.NullFloat64.
func NullFloatValue(nf sql.NullFloat64) float64 {
	if nf.Valid {
		return nf.Float64
	}
	return 0
}

// ToNullString converts a string to sql.NullString.
func ToNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
