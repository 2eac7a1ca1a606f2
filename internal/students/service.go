package students

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/praxis-crm/praxis/internal/apperr"
	"github.com/praxis-crm/praxis/internal/shared"
)

// RepositoryPort defines data access methods for students.
type RepositoryPort interface {
	ListStudents(ctx context.Context, page shared.PageRequest, scope shared.ScopeFilter) ([]Student, int, error)
	FindStudent(ctx context.Context, id int64) (*Student, error)
	CreateStudent(ctx context.Context, req CreateStudentRequest, ownerID int64) (Student, error)
	UpdateStudent(ctx context.Context, id int64, req UpdateStudentRequest) (Student, error)
	DeleteStudent(ctx context.Context, id int64) (bool, error)
}

// Service handles student business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

var errStudentNotFound = apperr.New(apperr.KindNotFound, apperr.CodeNotFound, "Student not found")

// ListStudents returns one page narrowed to the propagated data scope.
// Absent scope (route declared without filtering) lists everything.
func (s *Service) ListStudents(ctx context.Context, page shared.PageRequest) (*StudentPage, error) {
	page = page.Normalize()
	scope, _ := shared.ScopeFromContext(ctx)
	items, total, err := s.repo.ListStudents(ctx, page, scope)
	if err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	if items == nil {
		items = []Student{}
	}
	return &StudentPage{Items: items, Pagination: shared.NewPagination(page.Page, page.Size, total)}, nil
}

// GetStudent loads one student.
func (s *Service) GetStudent(ctx context.Context, id int64) (*Student, error) {
	student, err := s.repo.FindStudent(ctx, id)
	if err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	if student == nil {
		return nil, errStudentNotFound
	}
	return student, nil
}

// CreateStudent enrolls a student owned by the calling principal.
func (s *Service) CreateStudent(ctx context.Context, req CreateStudentRequest, owner *shared.Principal) (*Student, error) {
	var ownerID int64
	if owner != nil {
		ownerID = owner.ID
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	student, err := s.repo.CreateStudent(ctx, req, ownerID)
	if err != nil {
		return nil, mapStudentError(err)
	}
	return &student, nil
}

// UpdateStudent updates a student record.
func (s *Service) UpdateStudent(ctx context.Context, id int64, req UpdateStudentRequest) (*Student, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	student, err := s.repo.UpdateStudent(ctx, id, req)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errStudentNotFound
	}
	if err != nil {
		return nil, mapStudentError(err)
	}
	return &student, nil
}

// DeleteStudent removes a student.
func (s *Service) DeleteStudent(ctx context.Context, id int64) error {
	deleted, err := s.repo.DeleteStudent(ctx, id)
	if err != nil {
		return apperr.ErrInternal.Wrap(err)
	}
	if !deleted {
		return errStudentNotFound
	}
	return nil
}

func mapStudentError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.New(apperr.KindConflict, apperr.CodeConflict, "Student number already enrolled")
	}
	return apperr.ErrInternal.Wrap(err)
}
