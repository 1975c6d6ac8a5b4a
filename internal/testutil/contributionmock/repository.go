package contributionmock

import (
	"context"
	"errors"

	domain "peer-lending-ledger/internal/domain/contribution"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("contributionmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn                  func(ctx context.Context, c *domain.Contribution) error
	ListByLoanRequestIDFn     func(ctx context.Context, loanRequestID uint64) ([]domain.Contribution, error)
	GetByLoanRequestAndUserFn func(ctx context.Context, loanRequestID uint64, userID string) (*domain.Contribution, error)
	DeleteByLoanRequestIDFn   func(ctx context.Context, loanRequestID uint64) error
}

func (m *Repo) Create(ctx context.Context, c *domain.Contribution) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, c)
	}
	return nil
}

func (m *Repo) ListByLoanRequestID(ctx context.Context, loanRequestID uint64) ([]domain.Contribution, error) {
	if m.ListByLoanRequestIDFn != nil {
		return m.ListByLoanRequestIDFn(ctx, loanRequestID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByLoanRequestAndUser(ctx context.Context, loanRequestID uint64, userID string) (*domain.Contribution, error) {
	if m.GetByLoanRequestAndUserFn != nil {
		return m.GetByLoanRequestAndUserFn(ctx, loanRequestID, userID)
	}
	return nil, errUnimplemented
}

func (m *Repo) DeleteByLoanRequestID(ctx context.Context, loanRequestID uint64) error {
	if m.DeleteByLoanRequestIDFn != nil {
		return m.DeleteByLoanRequestIDFn(ctx, loanRequestID)
	}
	return nil
}
