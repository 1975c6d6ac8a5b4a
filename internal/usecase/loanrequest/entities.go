package loanrequest

import (
	"time"

	domain "peer-lending-ledger/internal/domain/loanrequest"
	"peer-lending-ledger/pkg/money"
)

type CreateInput struct {
	BorrowerID         string       `json:"borrower_id" validate:"required,hex32"`
	Title              string       `json:"title" validate:"required,max=255"`
	Description        string       `json:"description" validate:"required"`
	RequestedAmount    money.Amount `json:"requested_amount" validate:"gt=0"`
	RequestedByDate    time.Time    `json:"requested_by_date" validate:"required"`
	RepaymentBeginDate time.Time    `json:"repayment_begin_date" validate:"required,gtefield=RequestedByDate"`
	RepaymentRate      string       `json:"repayment_rate" validate:"required,rate"`
}

type LoanRequestDTO struct {
	LoanRequestID      string       `json:"loan_request_id"`
	BorrowerID         string       `json:"borrower_id"`
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	RequestedAmount    money.Amount `json:"requested_amount"`
	ContributedAmount  money.Amount `json:"contributed_amount"`
	RepaidAmount       money.Amount `json:"repaid_amount"`
	RequestedByDate    time.Time    `json:"requested_by_date"`
	RepaymentBeginDate time.Time    `json:"repayment_begin_date"`
	RepaymentRate      string       `json:"repayment_rate"`
	Status             string       `json:"status"`
	CreatedAt          time.Time    `json:"created_at"`
}

// SummaryDTO is the read model: stored totals plus every derived figure.
type SummaryDTO struct {
	LoanRequestDTO
	FundingRemaining   money.Amount `json:"funding_remaining"`
	ProgressPercentage int          `json:"progress_percentage"`
	Outstanding        money.Amount `json:"outstanding"`
	// Zero once nothing is outstanding.
	MinimumPayment    money.Amount `json:"minimum_payment"`
	RemainingPayments int64        `json:"remaining_payments"`
	RepaymentDueDate  time.Time    `json:"repayment_due_date"`
}

func toDTO(l *domain.LoanRequest) *LoanRequestDTO {
	return &LoanRequestDTO{
		LoanRequestID:      l.LoanRequestID,
		BorrowerID:         l.BorrowerID,
		Title:              l.Title,
		Description:        l.Description,
		RequestedAmount:    l.RequestedAmount,
		ContributedAmount:  l.ContributedAmount,
		RepaidAmount:       l.RepaidAmount,
		RequestedByDate:    l.RequestedByDate,
		RepaymentBeginDate: l.RepaymentBeginDate,
		RepaymentRate:      string(l.RepaymentRate),
		Status:             string(l.Status),
		CreatedAt:          l.CreatedAt,
	}
}
