package finance

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/praxis-crm/praxis/internal/apperr"
	"github.com/praxis-crm/praxis/internal/shared"
)

// RepositoryPort defines data access methods for wallets and payments.
type RepositoryPort interface {
	ListWallets(ctx context.Context, page shared.PageRequest) ([]Wallet, int, error)
	FindWalletByStudent(ctx context.Context, studentID int64) (*Wallet, error)
	Credit(ctx context.Context, walletID, amount int64, memo string) (Wallet, error)
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (TuitionPayment, error)
	FindPayment(ctx context.Context, id int64) (*TuitionPayment, error)
	ApprovePayment(ctx context.Context, id int64) (TuitionPayment, error)
	AllWallets(ctx context.Context) ([]Wallet, error)
}

// Service handles wallet and tuition business logic.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

var (
	errWalletNotFound  = apperr.New(apperr.KindNotFound, apperr.CodeNotFound, "Wallet not found")
	errPaymentNotFound = apperr.New(apperr.KindNotFound, apperr.CodeNotFound, "Payment not found")
)

// ListWallets returns one page of wallets.
func (s *Service) ListWallets(ctx context.Context, page shared.PageRequest) (*WalletPage, error) {
	page = page.Normalize()
	items, total, err := s.repo.ListWallets(ctx, page)
	if err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	if items == nil {
		items = []Wallet{}
	}
	return &WalletPage{Items: items, Pagination: shared.NewPagination(page.Page, page.Size, total)}, nil
}

// GetWallet loads a student's wallet.
func (s *Service) GetWallet(ctx context.Context, studentID int64) (*Wallet, error) {
	wallet, err := s.repo.FindWalletByStudent(ctx, studentID)
	if err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	if wallet == nil {
		return nil, errWalletNotFound
	}
	return wallet, nil
}

// Deposit credits a student's wallet.
func (s *Service) Deposit(ctx context.Context, studentID int64, req DepositRequest) (*Wallet, error) {
	wallet, err := s.GetWallet(ctx, studentID)
	if err != nil {
		return nil, err
	}
	credited, err := s.repo.Credit(ctx, wallet.ID, req.Amount, req.Memo)
	if err != nil {
		return nil, mapFinanceError(err)
	}
	return &credited, nil
}

// CreatePayment opens a pending tuition charge for later approval.
func (s *Service) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*TuitionPayment, error) {
	payment, err := s.repo.CreatePayment(ctx, req)
	if err != nil {
		return nil, mapFinanceError(err)
	}
	return &payment, nil
}

// ApprovePayment settles a pending payment by debiting the student's
// wallet. Approving a missing or already-settled payment is a CONFLICT, not
// a silent success.
func (s *Service) ApprovePayment(ctx context.Context, id int64) (*TuitionPayment, error) {
	existing, err := s.repo.FindPayment(ctx, id)
	if err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	if existing == nil {
		return nil, errPaymentNotFound
	}
	if existing.Status != PaymentPending {
		return nil, apperr.New(apperr.KindConflict, apperr.CodeConflict, "Payment already settled")
	}
	wallet, err := s.GetWallet(ctx, existing.StudentID)
	if err != nil {
		return nil, err
	}
	if wallet.Balance < existing.Amount {
		return nil, apperr.New(apperr.KindConflict, apperr.CodeConflict, "Insufficient wallet balance")
	}
	if _, err := s.repo.Credit(ctx, wallet.ID, -existing.Amount, fmt.Sprintf("tuition payment %d", id)); err != nil {
		return nil, mapFinanceError(err)
	}
	payment, err := s.repo.ApprovePayment(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.KindConflict, apperr.CodeConflict, "Payment already settled")
	}
	if err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	return &payment, nil
}

// ExportWallets renders the full wallet table as CSV. This is the io-pool
// workload: slow but bounded, and abandoned past the pool ceiling.
func (s *Service) ExportWallets(ctx context.Context) (*ExportResult, error) {
	wallets, err := s.repo.AllWallets(ctx)
	if err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "student_id", "balance", "currency", "updated_at"}); err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	for _, wallet := range wallets {
		record := []string{
			strconv.FormatInt(wallet.ID, 10),
			strconv.FormatInt(wallet.StudentID, 10),
			strconv.FormatInt(wallet.Balance, 10),
			wallet.Currency,
			wallet.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, apperr.ErrInternal.Wrap(err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	return &ExportResult{
		FileName: fmt.Sprintf("wallets-%s.csv", s.now().UTC().Format("20060102-150405")),
		Rows:     len(wallets),
		CSV:      buf.String(),
	}, nil
}

func mapFinanceError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return apperr.New(apperr.KindConflict, apperr.CodeConflict, "Duplicate record")
		case "23503":
			return apperr.New(apperr.KindBadRequest, apperr.CodeBadRequest, "Unknown student id")
		case "23514":
			return apperr.New(apperr.KindConflict, apperr.CodeConflict, "Insufficient wallet balance")
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errWalletNotFound
	}
	return apperr.ErrInternal.Wrap(err)
}
