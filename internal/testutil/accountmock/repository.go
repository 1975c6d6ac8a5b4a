package accountmock

import (
	"context"
	"errors"

	domain "peer-lending-ledger/internal/domain/account"
	"peer-lending-ledger/pkg/money"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("accountmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn      func(ctx context.Context, a *domain.Account) error
	GetByUserIDFn func(ctx context.Context, userID string) (*domain.Account, error)
	CreditFn      func(ctx context.Context, userID string, amount money.Amount) error
	DebitFn       func(ctx context.Context, userID string, amount money.Amount, allowOverdraft bool) error
}

func (m *Repo) Create(ctx context.Context, a *domain.Account) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, errUnimplemented
}

func (m *Repo) Credit(ctx context.Context, userID string, amount money.Amount) error {
	if m.CreditFn != nil {
		return m.CreditFn(ctx, userID, amount)
	}
	return nil
}

func (m *Repo) Debit(ctx context.Context, userID string, amount money.Amount, allowOverdraft bool) error {
	if m.DebitFn != nil {
		return m.DebitFn(ctx, userID, amount, allowOverdraft)
	}
	return nil
}
