package repaymentmock

import (
	"context"
	"errors"

	domain "peer-lending-ledger/internal/domain/repayment"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("repaymentmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn                func(ctx context.Context, r *domain.Repayment) error
	GetByRequestIDFn        func(ctx context.Context, requestID string) (*domain.Repayment, error)
	ListByLoanRequestIDFn   func(ctx context.Context, loanRequestID uint64) ([]domain.Repayment, error)
	DeleteByLoanRequestIDFn func(ctx context.Context, loanRequestID uint64) error
}

func (m *Repo) Create(ctx context.Context, r *domain.Repayment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetByRequestID(ctx context.Context, requestID string) (*domain.Repayment, error) {
	if m.GetByRequestIDFn != nil {
		return m.GetByRequestIDFn(ctx, requestID)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListByLoanRequestID(ctx context.Context, loanRequestID uint64) ([]domain.Repayment, error) {
	if m.ListByLoanRequestIDFn != nil {
		return m.ListByLoanRequestIDFn(ctx, loanRequestID)
	}
	return nil, errUnimplemented
}

func (m *Repo) DeleteByLoanRequestID(ctx context.Context, loanRequestID uint64) error {
	if m.DeleteByLoanRequestIDFn != nil {
		return m.DeleteByLoanRequestIDFn(ctx, loanRequestID)
	}
	return nil
}
