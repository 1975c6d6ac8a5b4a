package mysql

import (
	"context"

	loanRequestDomain "peer-lending-ledger/internal/domain/loanrequest"
	"peer-lending-ledger/pkg/money"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRequestRepository struct{ db *gorm.DB }

func NewLoanRequestRepository(db *gorm.DB) *LoanRequestRepository {
	return &LoanRequestRepository{db: db}
}

func (r *LoanRequestRepository) Create(ctx context.Context, l *loanRequestDomain.LoanRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRequestRepository) GetByLoanRequestID(ctx context.Context, loanRequestID string) (*loanRequestDomain.LoanRequest, error) {
	var out loanRequestDomain.LoanRequest
	res := r.db.WithContext(ctx).Where("loan_request_id = ?", loanRequestID).First(&out)
	return &out, res.Error
}

// SELECT ... FOR UPDATE; sqlite drops the locking clause and relies on its
// database-level write lock instead.
func (r *LoanRequestRepository) GetByLoanRequestIDForUpdate(ctx context.Context, loanRequestID string) (*loanRequestDomain.LoanRequest, error) {
	var out loanRequestDomain.LoanRequest
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_request_id = ?", loanRequestID).
		First(&out)
	return &out, res.Error
}

func (r *LoanRequestRepository) UpdateStatus(ctx context.Context, l *loanRequestDomain.LoanRequest) error {
	return r.db.WithContext(ctx).
		Model(&loanRequestDomain.LoanRequest{}).
		Where("id = ?", l.ID).
		Updates(map[string]any{
			"status":            l.Status,
			"status_updated_at": l.StatusUpdatedAt,
		}).Error
}

func (r *LoanRequestRepository) AddContributed(ctx context.Context, id uint64, amount money.Amount) error {
	return r.addTo(ctx, id, "contributed_amount", amount)
}

func (r *LoanRequestRepository) AddRepaid(ctx context.Context, id uint64, amount money.Amount) error {
	return r.addTo(ctx, id, "repaid_amount", amount)
}

func (r *LoanRequestRepository) addTo(ctx context.Context, id uint64, column string, amount money.Amount) error {
	res := r.db.WithContext(ctx).
		Model(&loanRequestDomain.LoanRequest{}).
		Where("id = ?", id).
		Update(column, gorm.Expr(column+" + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *LoanRequestRepository) ListWithContributions(ctx context.Context, limit int) ([]loanRequestDomain.LoanRequest, error) {
	var out []loanRequestDomain.LoanRequest
	q := r.db.WithContext(ctx).
		Where("contributed_amount > ?", 0).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return out, q.Find(&out).Error
}

func (r *LoanRequestRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&loanRequestDomain.LoanRequest{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
