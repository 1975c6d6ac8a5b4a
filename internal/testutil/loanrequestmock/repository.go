package loanrequestmock

import (
	"context"
	"errors"

	domain "peer-lending-ledger/internal/domain/loanrequest"
	"peer-lending-ledger/pkg/money"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("loanrequestmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset writers succeed; unset readers return errUnimplemented.
type Repo struct {
	CreateFn                      func(ctx context.Context, l *domain.LoanRequest) error
	GetByLoanRequestIDFn          func(ctx context.Context, loanRequestID string) (*domain.LoanRequest, error)
	GetByLoanRequestIDForUpdateFn func(ctx context.Context, loanRequestID string) (*domain.LoanRequest, error)
	UpdateStatusFn                func(ctx context.Context, l *domain.LoanRequest) error
	AddContributedFn              func(ctx context.Context, id uint64, amount money.Amount) error
	AddRepaidFn                   func(ctx context.Context, id uint64, amount money.Amount) error
	ListWithContributionsFn       func(ctx context.Context, limit int) ([]domain.LoanRequest, error)
	DeleteFn                      func(ctx context.Context, id uint64) error
}

func (m *Repo) Create(ctx context.Context, l *domain.LoanRequest) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanRequestID(ctx context.Context, loanRequestID string) (*domain.LoanRequest, error) {
	if m.GetByLoanRequestIDFn != nil {
		return m.GetByLoanRequestIDFn(ctx, loanRequestID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByLoanRequestIDForUpdate(ctx context.Context, loanRequestID string) (*domain.LoanRequest, error) {
	if m.GetByLoanRequestIDForUpdateFn != nil {
		return m.GetByLoanRequestIDForUpdateFn(ctx, loanRequestID)
	}
	return nil, errUnimplemented
}

func (m *Repo) UpdateStatus(ctx context.Context, l *domain.LoanRequest) error {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, l)
	}
	return nil
}

func (m *Repo) AddContributed(ctx context.Context, id uint64, amount money.Amount) error {
	if m.AddContributedFn != nil {
		return m.AddContributedFn(ctx, id, amount)
	}
	return nil
}

func (m *Repo) AddRepaid(ctx context.Context, id uint64, amount money.Amount) error {
	if m.AddRepaidFn != nil {
		return m.AddRepaidFn(ctx, id, amount)
	}
	return nil
}

func (m *Repo) ListWithContributions(ctx context.Context, limit int) ([]domain.LoanRequest, error) {
	if m.ListWithContributionsFn != nil {
		return m.ListWithContributionsFn(ctx, limit)
	}
	return nil, errUnimplemented
}

func (m *Repo) Delete(ctx context.Context, id uint64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}
