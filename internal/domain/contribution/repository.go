package contribution

import "context"

type Repository interface {
	// DB uniqueness ensures at most one contribution per user and loan request
	Create(ctx context.Context, c *Contribution) error

	// Ordered by creation (id ascending)
	ListByLoanRequestID(ctx context.Context, loanRequestNumericID uint64) ([]Contribution, error)

	GetByLoanRequestAndUser(ctx context.Context, loanRequestNumericID uint64, userID string) (*Contribution, error)

	DeleteByLoanRequestID(ctx context.Context, loanRequestNumericID uint64) error
}
