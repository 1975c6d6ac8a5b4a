package uowmock

import (
	"context"
	"errors"

	"peer-lending-ledger/internal/domain/loanrequest"
	"peer-lending-ledger/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn            func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinLoanRequestTxFn func(ctx context.Context, loanRequestID string, fn func(r uow.Repos, l *loanrequest.LoanRequest) error) error
}

// Convenience fluent setters
func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinLoanRequestTx(fn func(context.Context, string, func(uow.Repos, *loanrequest.LoanRequest) error) error) *UoW {
	m.WithinLoanRequestTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

// Passthrough runs callbacks directly against repos, with no transaction.
// The loan request handed to WithinLoanRequestTx comes from
// repos.LoanRequests.GetByLoanRequestIDForUpdate.
func Passthrough(repos uow.Repos) *UoW {
	return New().
		WithWithinTx(func(_ context.Context, fn func(uow.Repos) error) error {
			return fn(repos)
		}).
		WithWithinLoanRequestTx(func(ctx context.Context, id string, fn func(uow.Repos, *loanrequest.LoanRequest) error) error {
			l, err := repos.LoanRequests.GetByLoanRequestIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			return fn(repos, l)
		})
}

// Methods implementing UnitOfWork
func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinLoanRequestTx(ctx context.Context, loanRequestID string, fn func(r uow.Repos, l *loanrequest.LoanRequest) error) error {
	if m.WithinLoanRequestTxFn != nil {
		return m.WithinLoanRequestTxFn(ctx, loanRequestID, fn)
	}
	return errUnimplemented
}
