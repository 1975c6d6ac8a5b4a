package repayment

import "context"

type Repository interface {
	// Create inserts the repayment together with its payouts.
	Create(ctx context.Context, r *Repayment) error
	GetByRequestID(ctx context.Context, requestID string) (*Repayment, error)
	ListByLoanRequestID(ctx context.Context, loanRequestNumericID uint64) ([]Repayment, error)
	DeleteByLoanRequestID(ctx context.Context, loanRequestNumericID uint64) error
}
