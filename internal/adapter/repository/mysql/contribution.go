package mysql

import (
	"context"

	contributionDomain "peer-lending-ledger/internal/domain/contribution"

	"gorm.io/gorm"
)

type ContributionRepository struct{ db *gorm.DB }

func NewContributionRepository(db *gorm.DB) *ContributionRepository {
	return &ContributionRepository{db: db}
}

func (r *ContributionRepository) Create(ctx context.Context, c *contributionDomain.Contribution) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ContributionRepository) ListByLoanRequestID(ctx context.Context, loanRequestNumericID uint64) ([]contributionDomain.Contribution, error) {
	var out []contributionDomain.Contribution
	res := r.db.WithContext(ctx).
		Where("loan_request_id = ?", loanRequestNumericID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *ContributionRepository) GetByLoanRequestAndUser(ctx context.Context, loanRequestNumericID uint64, userID string) (*contributionDomain.Contribution, error) {
	var out contributionDomain.Contribution
	res := r.db.WithContext(ctx).
		Where("loan_request_id = ? AND user_id = ?", loanRequestNumericID, userID).
		First(&out)
	return &out, res.Error
}

func (r *ContributionRepository) DeleteByLoanRequestID(ctx context.Context, loanRequestNumericID uint64) error {
	return r.db.WithContext(ctx).
		Where("loan_request_id = ?", loanRequestNumericID).
		Delete(&contributionDomain.Contribution{}).Error
}
