package students

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/praxis-crm/praxis/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const studentColumns = `id, student_no, name, email, phone, department_id, owner_id, created_at, updated_at`

var studentSortColumns = map[string]string{
	"studentNo": "student_no",
	"name":      "name",
	"createdAt": "created_at",
}

func scanStudent(row pgx.Row) (Student, error) {
	var s Student
	err := row.Scan(&s.ID, &s.StudentNo, &s.Name, &s.Email, &s.Phone,
		&s.DepartmentID, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// ListStudents returns one scoped page of students and the scoped total.
// The scope filter narrows both queries the same way.
func (r *Repository) ListStudents(ctx context.Context, page shared.PageRequest, scope shared.ScopeFilter) ([]Student, int, error) {
	where := ``
	args := []any{}
	switch scope.Scope {
	case shared.ScopeDepartment:
		where = `WHERE department_id = $1`
		args = append(args, scope.DepartmentID)
	case shared.ScopeOwn:
		where = `WHERE owner_id = $1`
		args = append(args, scope.PrincipalID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM students `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitPos := strconv.Itoa(len(args) + 1)
	offsetPos := strconv.Itoa(len(args) + 2)
	args = append(args, page.Size, page.Offset())
	rows, err := r.pool.Query(ctx, `
		SELECT `+studentColumns+`
		FROM students `+where+`
		ORDER BY `+page.OrderBy(studentSortColumns, "id")+`
		LIMIT $`+limitPos+` OFFSET $`+offsetPos, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// FindStudent loads one student, (nil, nil) when absent.
func (r *Repository) FindStudent(ctx context.Context, id int64) (*Student, error) {
	s, err := scanStudent(r.pool.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateStudent enrolls a student owned by the creating principal.
func (r *Repository) CreateStudent(ctx context.Context, req CreateStudentRequest, ownerID int64) (Student, error) {
	return scanStudent(r.pool.QueryRow(ctx, `
		INSERT INTO students (student_no, name, email, phone, department_id, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+studentColumns,
		req.StudentNo, req.Name, req.Email, req.Phone, req.DepartmentID, ownerID))
}

// UpdateStudent updates mutable fields.
func (r *Repository) UpdateStudent(ctx context.Context, id int64, req UpdateStudentRequest) (Student, error) {
	return scanStudent(r.pool.QueryRow(ctx, `
		UPDATE students
		SET name = $2, email = $3, phone = $4, department_id = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+studentColumns, id, req.Name, req.Email, req.Phone, req.DepartmentID))
}

// DeleteStudent removes a student.
func (r *Repository) DeleteStudent(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
