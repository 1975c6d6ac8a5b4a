package uow

import (
	"context"
	"errors"
	"fmt"

	"peer-lending-ledger/internal/domain/account"
	"peer-lending-ledger/internal/domain/contribution"
	"peer-lending-ledger/internal/domain/loanrequest"
	"peer-lending-ledger/internal/domain/repayment"
)

// ErrTransactionAborted marks a command rolled back by a storage failure.
// Nothing it touched was committed, so the whole command may be retried.
var ErrTransactionAborted = errors.New("transaction aborted")

// Abort wraps a storage failure so both ErrTransactionAborted and the cause
// match with errors.Is.
func Abort(err error) error {
	if err == nil || errors.Is(err, ErrTransactionAborted) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransactionAborted, err)
}

type Repos struct {
	LoanRequests  loanrequest.Repository
	Contributions contribution.Repository
	Accounts      account.Repository
	Repayments    repayment.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the loan request row first, then pass it in; every writer of a
	// loan request's totals goes through here
	WithinLoanRequestTx(ctx context.Context, loanRequestID string, fn func(r Repos, l *loanrequest.LoanRequest) error) error
}

// Classify passes rejections (validation and business-rule errors) through
// untouched and marks anything else as an aborted transaction.
func Classify(err error, rejections ...error) error {
	if err == nil {
		return nil
	}
	for _, r := range rejections {
		if errors.Is(err, r) {
			return err
		}
	}
	return Abort(err)
}
