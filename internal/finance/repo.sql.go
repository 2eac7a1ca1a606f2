package finance

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

const walletColumns = `id, student_id, balance, currency, updated_at`

var walletSortColumns = map[string]string{
	"studentId": "student_id",
	"balance":   "balance",
	"updatedAt": "updated_at",
}

func scanWallet(row pgx.Row) (Wallet, error) {
	var w Wallet
	err := row.Scan(&w.ID, &w.StudentID, &w.Balance, &w.Currency, &w.UpdatedAt)
	return w, err
}

// ListWallets returns one page of wallets and the total count.
func (r *Repository) ListWallets(ctx context.Context, page shared.PageRequest) ([]Wallet, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM wallets`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+walletColumns+`
		FROM wallets
		ORDER BY `+page.OrderBy(walletSortColumns, "id")+`
		LIMIT $1 OFFSET $2`, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// FindWalletByStudent loads a student's wallet, (nil, nil) when absent.
func (r *Repository) FindWalletByStudent(ctx context.Context, studentID int64) (*Wallet, error) {
	w, err := scanWallet(r.pool.QueryRow(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE student_id = $1`, studentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Credit applies a movement to a wallet inside one transaction. A negative
// amount that would overdraw fails the balance check constraint and rolls
// back.
func (r *Repository) Credit(ctx context.Context, walletID, amount int64, memo string) (Wallet, error) {
	var w Wallet
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		w, err = scanWallet(tx.QueryRow(ctx, `
			UPDATE wallets
			SET balance = balance + $2, updated_at = now()
			WHERE id = $1
			RETURNING `+walletColumns, walletID, amount))
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO wallet_transactions (wallet_id, amount, memo)
			VALUES ($1, $2, $3)`, walletID, amount, memo)
		return err
	})
	if err != nil {
		return Wallet{}, err
	}
	return w, nil
}

const paymentColumns = `id, student_id, amount, status, memo, created_at, approved_at`

func scanPayment(row pgx.Row) (TuitionPayment, error) {
	var p TuitionPayment
	err := row.Scan(&p.ID, &p.StudentID, &p.Amount, &p.Status, &p.Memo, &p.CreatedAt, &p.ApprovedAt)
	return p, err
}

// CreatePayment opens a pending tuition charge.
func (r *Repository) CreatePayment(ctx context.Context, req CreatePaymentRequest) (TuitionPayment, error) {
	return scanPayment(r.pool.QueryRow(ctx, `
		INSERT INTO tuition_payments (student_id, amount, status, memo)
		VALUES ($1, $2, $3, $4)
		RETURNING `+paymentColumns, req.StudentID, req.Amount, PaymentPending, req.Memo))
}

// FindPayment loads one payment, (nil, nil) when absent.
func (r *Repository) FindPayment(ctx context.Context, id int64) (*TuitionPayment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM tuition_payments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ApprovePayment settles a pending payment. Returns pgx.ErrNoRows through
// the scan when the payment is missing or already settled.
func (r *Repository) ApprovePayment(ctx context.Context, id int64) (TuitionPayment, error) {
	return scanPayment(r.pool.QueryRow(ctx, `
		UPDATE tuition_payments
		SET status = $2, approved_at = now()
		WHERE id = $1 AND status = $3
		RETURNING `+paymentColumns, id, PaymentApproved, PaymentPending))
}

// AllWallets streams every wallet for the CSV export.
func (r *Repository) AllWallets(ctx context.Context) ([]Wallet, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+walletColumns+` FROM wallets ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
