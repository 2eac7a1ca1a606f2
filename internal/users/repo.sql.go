package users

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

const userColumns = `id, username, email, name, is_active, data_scope, COALESCE(department_id, 0), created_at, updated_at`

var userSortColumns = map[string]string{
	"username":  "username",
	"email":     "email",
	"name":      "name",
	"createdAt": "created_at",
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Name, &user.IsActive,
		&user.DataScope, &user.DepartmentID, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

// ListUsers returns one page of users and the total count.
func (r *Repository) ListUsers(ctx context.Context, page shared.PageRequest) ([]User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY `+page.OrderBy(userSortColumns, "id")+`
		LIMIT $1 OFFSET $2`, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// FindUser loads one user, (nil, nil) when absent.
func (r *Repository) FindUser(ctx context.Context, id int64) (*User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindCredentials loads the login slice by username, (nil, nil) when absent.
func (r *Repository) FindCredentials(ctx context.Context, username string) (*Credentials, error) {
	var creds Credentials
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, is_active
		FROM users
		WHERE username = $1`, username).
		Scan(&creds.ID, &creds.Username, &creds.PasswordHash, &creds.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &creds, nil
}

// CreateUser inserts a new user with an already-hashed password.
func (r *Repository) CreateUser(ctx context.Context, req CreateUserRequest, passwordHash string) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, name, password_hash, is_active, data_scope, department_id)
		VALUES ($1, $2, $3, $4, true, $5, NULLIF($6, 0))
		RETURNING `+userColumns,
		req.Username, req.Email, req.Name, passwordHash, req.DataScope, req.DepartmentID))
}

// UpdateUser updates mutable user fields.
func (r *Repository) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		UPDATE users
		SET email = $2, name = $3, data_scope = $4, department_id = NULLIF($5, 0), updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id, req.Email, req.Name, req.DataScope, req.DepartmentID))
}

// SetActive toggles the account flag.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ReplaceRoles swaps the user's role set atomically.
func (r *Repository) ReplaceRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
			return err
		}
		for _, roleID := range roleIDs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO user_roles (user_id, role_id)
				VALUES ($1, $2)`, userID, roleID); err != nil {
				return err
			}
		}
		return nil
	})
}

// TouchLastLogin stamps a successful login.
func (r *Repository) TouchLastLogin(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login_at = now() WHERE id = $1`, userID)
	return err
}
