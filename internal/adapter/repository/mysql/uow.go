package mysql

import (
	"context"

	"peer-lending-ledger/internal/domain/loanrequest"
	"peer-lending-ledger/internal/domain/uow"

	"gorm.io/gorm"
)

var _ uow.UnitOfWork = (*GormUoW)(nil)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		LoanRequests:  &LoanRequestRepository{db: tx},
		Contributions: &ContributionRepository{db: tx},
		Accounts:      &AccountRepository{db: tx},
		Repayments:    &RepaymentRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

func (u *GormUoW) WithinLoanRequestTx(ctx context.Context, loanRequestID string, fn func(r uow.Repos, l *loanrequest.LoanRequest) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the loan request row up-front to serialise writers
		l, err := r.LoanRequests.GetByLoanRequestIDForUpdate(ctx, loanRequestID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
