package rbac

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// MatrixForUser builds the resource-to-actions matrix from the identity's
// role grants.
func (r *Repository) MatrixForUser(ctx context.Context, userID int64) (map[string][]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT p.resource, p.action
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		JOIN user_roles ur ON ur.role_id = rp.role_id
		WHERE ur.user_id = $1
		ORDER BY p.resource, p.action`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	matrix := make(map[string][]string)
	for rows.Next() {
		var resource, action string
		if err := rows.Scan(&resource, &action); err != nil {
			return nil, err
		}
		matrix[resource] = append(matrix[resource], action)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return matrix, nil
}

// RoleCodesForUser returns the role codes granted to the identity.
func (r *Repository) RoleCodesForUser(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.code
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.code`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return codes, nil
}

// FindIdentity loads the user row needed to assemble a principal. Missing
// rows return (nil, nil).
func (r *Repository) FindIdentity(ctx context.Context, userID int64) (*identity, error) {
	var id identity
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, email, name, is_active, data_scope, COALESCE(department_id, 0)
		FROM users
		WHERE id = $1`, userID).
		Scan(&id.ID, &id.Username, &id.Email, &id.Name, &id.IsActive, &id.DataScope, &id.DepartmentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ListPermissions returns the full permission catalog.
func (r *Repository) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, resource, action, description, created_at
		FROM permissions
		ORDER BY resource, action`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Resource, &p.Action, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return perms, nil
}

// UserIDsForRole returns the identities holding a role, used to invalidate
// their cached matrices after a grant change.
func (r *Repository) UserIDsForRole(ctx context.Context, roleID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id FROM user_roles WHERE role_id = $1`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// ActiveUserIDs returns identities eligible for cache warming.
func (r *Repository) ActiveUserIDs(ctx context.Context, limit int) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM users WHERE is_active ORDER BY last_login_at DESC NULLS LAST LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
