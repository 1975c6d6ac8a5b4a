package loanrequest

import (
	"math/big"
	"time"

	"peer-lending-ledger/pkg/money"
)

type Status string

const (
	StatusActive Status = "active"
	StatusFunded Status = "funded"
)

type RepaymentRate string

const (
	RateWeekly  RepaymentRate = "weekly"
	RateMonthly RepaymentRate = "monthly"
)

// Valid reports whether r is a supported cadence.
func (r RepaymentRate) Valid() bool { return r == RateWeekly || r == RateMonthly }

// Table: loan_requests
type LoanRequest struct {
	ID                 uint64        `gorm:"primaryKey;column:id" json:"-"`
	LoanRequestID      string        `gorm:"size:32;uniqueIndex:ux_loan_requests_public_id" json:"loan_request_id"`
	BorrowerID         string        `gorm:"size:32;index:idx_loan_requests_borrower" json:"borrower_id"`
	Title              string        `gorm:"size:255;not null" json:"title"`
	Description        string        `gorm:"type:text;not null" json:"description"`
	RequestedAmount    money.Amount  `gorm:"not null" json:"requested_amount"`
	ContributedAmount  money.Amount  `gorm:"not null;default:0;index:idx_loan_requests_contributed" json:"contributed_amount"`
	RepaidAmount       money.Amount  `gorm:"not null;default:0" json:"repaid_amount"`
	RequestedByDate    time.Time     `gorm:"type:date;not null" json:"requested_by_date"`
	RepaymentBeginDate time.Time     `gorm:"type:date;not null" json:"repayment_begin_date"`
	RepaymentRate      RepaymentRate `gorm:"type:enum('monthly','weekly');not null" json:"repayment_rate"`
	Status             Status        `gorm:"type:enum('active','funded');default:'active'" json:"status"`
	StatusUpdatedAt    time.Time     `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt          time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LoanRequest) TableName() string { return "loan_requests" }

// FundingRemaining is the gap between the requested and contributed amounts.
func (l *LoanRequest) FundingRemaining() money.Amount {
	if rem := l.RequestedAmount - l.ContributedAmount; rem > 0 {
		return rem
	}
	return 0
}

// Outstanding is what the borrower still owes the pool.
func (l *LoanRequest) Outstanding() money.Amount {
	if out := l.ContributedAmount - l.RepaidAmount; out > 0 {
		return out
	}
	return 0
}

// ProgressPercentage is the funded share of the request, truncated to a
// whole percent. It only reports 100 once the request is fully funded.
func (l *LoanRequest) ProgressPercentage() (int, error) {
	if l.RequestedAmount <= 0 {
		return 0, ErrInvalidConfiguration
	}
	funded := big.NewInt(int64(l.RequestedAmount - l.FundingRemaining()))
	funded.Mul(funded, big.NewInt(100))
	// truncating division; exact for any int64 amount
	return int(funded.Quo(funded, big.NewInt(int64(l.RequestedAmount))).Int64()), nil
}

// MarkFundedIfComplete moves an active request to funded once contributions
// cover the requested amount. It reports whether the status changed.
func (l *LoanRequest) MarkFundedIfComplete(now time.Time) bool {
	if l.Status == StatusFunded || l.ContributedAmount < l.RequestedAmount {
		return false
	}
	l.Status = StatusFunded
	l.StatusUpdatedAt = now
	return true
}

// RepaymentDueDate is twelve weeks after repayment begins, whatever the cadence.
func (l *LoanRequest) RepaymentDueDate() time.Time {
	return l.RepaymentBeginDate.AddDate(0, 0, 7*dueDateWeeks)
}

const dueDateWeeks = 12
