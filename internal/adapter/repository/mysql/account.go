package mysql

import (
	"context"
	"errors"

	accountDomain "peer-lending-ledger/internal/domain/account"
	"peer-lending-ledger/pkg/money"

	"gorm.io/gorm"
)

type AccountRepository struct{ db *gorm.DB }

func NewAccountRepository(db *gorm.DB) *AccountRepository { return &AccountRepository{db: db} }

func (r *AccountRepository) Create(ctx context.Context, a *accountDomain.Account) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AccountRepository) GetByUserID(ctx context.Context, userID string) (*accountDomain.Account, error) {
	var out accountDomain.Account
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out)
	return &out, res.Error
}

func (r *AccountRepository) Credit(ctx context.Context, userID string, amount money.Amount) error {
	res := r.db.WithContext(ctx).
		Model(&accountDomain.Account{}).
		Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return accountDomain.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) Debit(ctx context.Context, userID string, amount money.Amount, allowOverdraft bool) error {
	q := r.db.WithContext(ctx).
		Model(&accountDomain.Account{}).
		Where("user_id = ?", userID)
	if !allowOverdraft {
		q = q.Where("balance >= ?", amount)
	}
	res := q.Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// tell a missing row apart from a short balance
	if _, err := r.GetByUserID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return accountDomain.ErrNotFound
		}
		return err
	}
	return accountDomain.ErrInsufficientFunds
}
