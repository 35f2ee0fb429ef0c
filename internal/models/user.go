package models

import (
	"fmt"
	"strings"
	"time"
)

// Role identifies what a user is allowed to do. It is a closed set; every
// authorization switch over Role must handle all three values.
type Role string

const (
	// RoleStudent may submit coursework and view their own submissions.
	RoleStudent Role = "student"
	// RoleInstructor may manage assignment definitions they own and grade
	// submissions against them.
	RoleInstructor Role = "instructor"
	// RoleAdmin may manage the roster and the course catalog.
	RoleAdmin Role = "admin"
)

// ParseRole normalizes and validates a role string.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleInstructor:
		return RoleInstructor, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", value)
	}
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// User represents a student, instructor or admin account. The email is unique
// within a role so the same address can hold e.g. a student and an instructor
// account, matching the separate per-role collections of the legacy system.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;not null;uniqueIndex:idx_users_email_role" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         Role      `gorm:"size:32;not null;uniqueIndex:idx_users_email_role" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
