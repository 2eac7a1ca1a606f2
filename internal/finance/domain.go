// Package finance manages student wallets and tuition payments. The wallet
// export exercises the io pool; tuition approval exercises the APPROVE
// action.
package finance

import (
	"time"

	"github.com/praxis-crm/praxis/internal/shared"
)

// Wallet is a student's balance, stored in minor units.
type Wallet struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"studentId"`
	Balance   int64     `json:"balance"`
	Currency  string    `json:"currency"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Transaction is one wallet movement. Amount is positive for deposits and
// negative for charges.
type Transaction struct {
	ID        int64     `json:"id"`
	WalletID  int64     `json:"walletId"`
	Amount    int64     `json:"amount"`
	Memo      string    `json:"memo"`
	CreatedAt time.Time `json:"createdAt"`
}

// Tuition payment states.
const (
	PaymentPending  = "PENDING"
	PaymentApproved = "APPROVED"
)

// TuitionPayment is a pending or settled tuition charge against a wallet.
type TuitionPayment struct {
	ID         int64      `json:"id"`
	StudentID  int64      `json:"studentId"`
	Amount     int64      `json:"amount"`
	Status     string     `json:"status"`
	Memo       string     `json:"memo"`
	CreatedAt  time.Time  `json:"createdAt"`
	ApprovedAt *time.Time `json:"approvedAt,omitempty"`
}

// DepositRequest credits a wallet.
type DepositRequest struct {
	Amount int64  `json:"amount" validate:"required,gt=0"`
	Memo   string `json:"memo" validate:"max=256"`
}

// CreatePaymentRequest opens a tuition charge.
type CreatePaymentRequest struct {
	StudentID int64  `json:"studentId" validate:"required"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	Memo      string `json:"memo" validate:"max=256"`
}

// WalletPage is one page of wallets with listing metadata.
type WalletPage struct {
	Items      []Wallet          `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
}

// ExportResult is the wallet CSV export, returned inline in the envelope.
type ExportResult struct {
	FileName string `json:"fileName"`
	Rows     int    `json:"rows"`
	CSV      string `json:"csv"`
}
