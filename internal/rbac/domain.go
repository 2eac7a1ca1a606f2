// Package rbac owns the permission model: the catalog of resources and
// actions, the resource-to-actions matrix per identity, and the live
// principal assembly the token layer relies on.
package rbac

import "time"

// Action codes granted on resources.
const (
	ActionView    = "VIEW"
	ActionAdd     = "ADD"
	ActionUpdate  = "UPDATE"
	ActionDelete  = "DELETE"
	ActionExport  = "EXPORT"
	ActionImport  = "IMPORT"
	ActionApprove = "APPROVE"
)

// Resource codes permissions attach to.
const (
	ResourceUser       = "USER"
	ResourceRole       = "ROLE"
	ResourcePermission = "PERMISSION"
	ResourceStudent    = "STUDENT"
	ResourceTeacher    = "TEACHER"
	ResourceEnterprise = "ENTERPRISE"
	ResourceWallet     = "WALLET"
	ResourceTuition    = "TUITION"
)

// Permission is one grantable resource/action pair.
type Permission struct {
	ID          int64     `json:"id"`
	Resource    string    `json:"resource"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// identity is the user row slice rbac needs to assemble a principal.
type identity struct {
	ID           int64
	Username     string
	Email        string
	Name         string
	IsActive     bool
	DataScope    int
	DepartmentID int64
}
