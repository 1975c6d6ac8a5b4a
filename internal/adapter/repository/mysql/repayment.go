package mysql

import (
	"context"

	repaymentDomain "peer-lending-ledger/internal/domain/repayment"

	"gorm.io/gorm"
)

type RepaymentRepository struct{ db *gorm.DB }

func NewRepaymentRepository(db *gorm.DB) *RepaymentRepository {
	return &RepaymentRepository{db: db}
}

func (r *RepaymentRepository) Create(ctx context.Context, rp *repaymentDomain.Repayment) error {
	return r.db.WithContext(ctx).Create(rp).Error
}

func (r *RepaymentRepository) GetByRequestID(ctx context.Context, requestID string) (*repaymentDomain.Repayment, error) {
	var out repaymentDomain.Repayment
	res := r.db.WithContext(ctx).
		Preload("Payouts", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("request_id = ?", requestID).
		First(&out)
	return &out, res.Error
}

func (r *RepaymentRepository) ListByLoanRequestID(ctx context.Context, loanRequestNumericID uint64) ([]repaymentDomain.Repayment, error) {
	var out []repaymentDomain.Repayment
	res := r.db.WithContext(ctx).
		Preload("Payouts", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("loan_request_id = ?", loanRequestNumericID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *RepaymentRepository) DeleteByLoanRequestID(ctx context.Context, loanRequestNumericID uint64) error {
	db := r.db.WithContext(ctx)
	ids := db.Model(&repaymentDomain.Repayment{}).
		Select("id").
		Where("loan_request_id = ?", loanRequestNumericID)
	if err := db.Where("repayment_id IN (?)", ids).Delete(&repaymentDomain.Payout{}).Error; err != nil {
		return err
	}
	return db.Where("loan_request_id = ?", loanRequestNumericID).Delete(&repaymentDomain.Repayment{}).Error
}
