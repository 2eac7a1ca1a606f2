package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/praxis-crm/praxis/internal/platform/db"
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

const roleColumns = `id, code, name, description, data_scope, created_at, updated_at`

var roleSortColumns = map[string]string{
	"code":      "code",
	"name":      "name",
	"createdAt": "created_at",
}

func scanRole(row pgx.Row) (Role, error) {
	var role Role
	err := row.Scan(&role.ID, &role.Code, &role.Name, &role.Description, &role.DataScope, &role.CreatedAt, &role.UpdatedAt)
	return role, err
}

// ListRoles returns one page of roles and the total count.
func (r *Repository) ListRoles(ctx context.Context, page shared.PageRequest) ([]Role, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM roles`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+roleColumns+`
		FROM roles
		ORDER BY `+page.OrderBy(roleSortColumns, "id")+`
		LIMIT $1 OFFSET $2`, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, 0, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return roles, total, nil
}

// FindRole loads one role, (nil, nil) when absent.
func (r *Repository) FindRole(ctx context.Context, id int64) (*Role, error) {
	role, err := scanRole(r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// CreateRole inserts a new role.
func (r *Repository) CreateRole(ctx context.Context, req CreateRoleRequest) (Role, error) {
	return scanRole(r.pool.QueryRow(ctx, `
		INSERT INTO roles (code, name, description, data_scope)
		VALUES ($1, $2, $3, $4)
		RETURNING `+roleColumns, req.Code, req.Name, req.Description, req.DataScope))
}

// UpdateRole updates mutable role fields.
func (r *Repository) UpdateRole(ctx context.Context, id int64, req UpdateRoleRequest) (Role, error) {
	return scanRole(r.pool.QueryRow(ctx, `
		UPDATE roles
		SET name = $2, description = $3, data_scope = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+roleColumns, id, req.Name, req.Description, req.DataScope))
}

// DeleteRole removes a role and its grants.
func (r *Repository) DeleteRole(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ReplacePermissions swaps the role's permission set atomically.
func (r *Repository) ReplacePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
			return err
		}
		for _, permissionID := range permissionIDs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO role_permissions (role_id, permission_id)
				VALUES ($1, $2)`, roleID, permissionID); err != nil {
				return err
			}
		}
		return nil
	})
}
