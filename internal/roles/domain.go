// Package roles manages role records and their permission grants.
package roles

import (
	"time"

	"github.com/praxis-crm/praxis/internal/shared"
)

// Role represents a role for management.
type Role struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	DataScope   int       `json:"dataScope"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateRoleRequest is the payload for creating a role.
type CreateRoleRequest struct {
	Code        string `json:"code" validate:"required,min=2,max=64"`
	Name        string `json:"name" validate:"required,min=2,max=128"`
	Description string `json:"description" validate:"max=512"`
	DataScope   int    `json:"dataScope" validate:"omitempty,oneof=1 2 3"`
}

// UpdateRoleRequest is the payload for updating a role.
type UpdateRoleRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=128"`
	Description string `json:"description" validate:"max=512"`
	DataScope   int    `json:"dataScope" validate:"omitempty,oneof=1 2 3"`
}

// GrantPermissionsRequest replaces a role's permission set.
type GrantPermissionsRequest struct {
	PermissionIDs []int64 `json:"permissionIds" validate:"required"`
}

// RolePage is one page of roles with listing metadata.
type RolePage struct {
	Items      []Role            `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
}
