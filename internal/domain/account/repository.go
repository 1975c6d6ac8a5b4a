package account

import (
	"context"

	"peer-lending-ledger/pkg/money"
)

type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByUserID(ctx context.Context, userID string) (*Account, error)

	// Credit and Debit change the stored balance in a single statement so
	// they compose inside one transaction without lost updates.
	Credit(ctx context.Context, userID string, amount money.Amount) error
	// Debit returns ErrInsufficientFunds when the balance would go negative
	// and overdraft is not allowed.
	Debit(ctx context.Context, userID string, amount money.Amount, allowOverdraft bool) error
}
