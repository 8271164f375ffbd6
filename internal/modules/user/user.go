package user

import (
	"time"

	"github.com/google/uuid"
)

// Role controls what a user may do. Every account can buy and sell; staff
// accounts additionally manage a store's drop-offs and in-store settlement.
type Role string

const (
	RoleUser  Role = "user"
	RoleStaff Role = "staff"
)

// User represents an account on the marketplace.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name,omitempty"`
	LastName     string     `json:"last_name,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Role         Role       `json:"role"`
	// StoreID links staff accounts to the store they work at.
	StoreID   *uuid.UUID `json:"store_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
