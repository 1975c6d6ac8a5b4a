package repayment

import (
	"errors"
	"time"

	"peer-lending-ledger/pkg/money"
)

var (
	ErrNotFound = errors.New("repayment not found")
	// A request id names exactly one repayment command.
	ErrRequestIDReused   = errors.New("request id already used for a different repayment")
	ErrRequestInProgress = errors.New("repayment with this request id is still in progress")
)

// Table: repayments. One row per committed Pay call.
type Repayment struct {
	ID            uint64       `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	RepaymentID   string       `gorm:"column:repayment_id;size:32;not null;uniqueIndex:ux_repayments_public_id" json:"repayment_id"`
	LoanRequestID uint64       `gorm:"column:loan_request_id;not null;index:idx_repayments_loan_request" json:"-"`
	BorrowerID    string       `gorm:"column:borrower_id;size:32;not null" json:"borrower_id"`
	Amount        money.Amount `gorm:"column:amount;not null" json:"amount"`
	// Caller supplied idempotency key, if any.
	RequestID *string   `gorm:"column:request_id;size:64;uniqueIndex:ux_repayments_request_id" json:"request_id,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	Payouts   []Payout  `gorm:"foreignKey:RepaymentID;references:ID" json:"payouts"`
}

func (Repayment) TableName() string { return "repayments" }

// Table: repayment_payouts
type Payout struct {
	ID          uint64       `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	RepaymentID uint64       `gorm:"column:repayment_id;not null;index:idx_payouts_repayment" json:"-"`
	UserID      string       `gorm:"column:user_id;size:32;not null" json:"user_id"`
	Amount      money.Amount `gorm:"column:amount;not null" json:"amount"`
}

func (Payout) TableName() string { return "repayment_payouts" }
