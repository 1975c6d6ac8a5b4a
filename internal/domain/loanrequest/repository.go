package loanrequest

import (
	"context"

	"peer-lending-ledger/pkg/money"
)

type Repository interface {
	Create(ctx context.Context, l *LoanRequest) error
	GetByLoanRequestID(ctx context.Context, loanRequestID string) (*LoanRequest, error)
	// Locks the row until the surrounding transaction ends.
	GetByLoanRequestIDForUpdate(ctx context.Context, loanRequestID string) (*LoanRequest, error)
	UpdateStatus(ctx context.Context, l *LoanRequest) error
	// Totals are adjusted relative to the stored value.
	AddContributed(ctx context.Context, id uint64, amount money.Amount) error
	AddRepaid(ctx context.Context, id uint64, amount money.Amount) error
	ListWithContributions(ctx context.Context, limit int) ([]LoanRequest, error)
	Delete(ctx context.Context, id uint64) error
}
