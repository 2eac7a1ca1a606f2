// Package students manages student records. Its listing is the data-scope
// showcase: the authorization layer propagates the principal's scope and
// this module narrows the query accordingly.
package students

import (
	"time"

	"github.com/praxis-crm/praxis/internal/shared"
)

// Student represents an enrolled student.
type Student struct {
	ID           int64     `json:"id"`
	StudentNo    string    `json:"studentNo"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	DepartmentID int64     `json:"departmentId"`
	OwnerID      int64     `json:"ownerId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateStudentRequest is the payload for enrolling a student.
type CreateStudentRequest struct {
	StudentNo    string `json:"studentNo" validate:"required,min=4,max=32"`
	Name         string `json:"name" validate:"required,min=1,max=128"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"max=32"`
	DepartmentID int64  `json:"departmentId" validate:"required"`
}

// UpdateStudentRequest is the payload for updating a student.
type UpdateStudentRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=128"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"max=32"`
	DepartmentID int64  `json:"departmentId" validate:"required"`
}

// StudentPage is one page of students with listing metadata.
type StudentPage struct {
	Items      []Student         `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
}
