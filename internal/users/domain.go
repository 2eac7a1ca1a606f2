// Package users manages user accounts, their role assignments and
// credential records.
package users

import (
	"time"

	"github.com/praxis-crm/praxis/internal/shared"
)

// User represents a user account for management. The password hash never
// leaves the repository layer.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	IsActive     bool      `json:"isActive"`
	DataScope    int       `json:"dataScope"`
	DepartmentID int64     `json:"departmentId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Credentials is the slice of the user row the login flow needs.
type Credentials struct {
	ID           int64
	Username     string
	PasswordHash string
	IsActive     bool
}

// CreateUserRequest is the payload for creating a user.
type CreateUserRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=64"`
	Email        string `json:"email" validate:"required,email"`
	Name         string `json:"name" validate:"required,min=1,max=128"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	DataScope    int    `json:"dataScope" validate:"omitempty,oneof=1 2 3"`
	DepartmentID int64  `json:"departmentId"`
}

// UpdateUserRequest is the payload for updating a user.
type UpdateUserRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Name         string `json:"name" validate:"required,min=1,max=128"`
	DataScope    int    `json:"dataScope" validate:"omitempty,oneof=1 2 3"`
	DepartmentID int64  `json:"departmentId"`
}

// AssignRolesRequest replaces a user's role set.
type AssignRolesRequest struct {
	RoleIDs []int64 `json:"roleIds" validate:"required"`
}

// UserPage is one page of users with listing metadata.
type UserPage struct {
	Items      []User            `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
}
