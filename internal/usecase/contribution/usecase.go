package contribution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domain "peer-lending-ledger/internal/domain/contribution"
	"peer-lending-ledger/internal/domain/loanrequest"
	"peer-lending-ledger/internal/domain/uow"
	"peer-lending-ledger/internal/observability"
	"peer-lending-ledger/internal/usecase/validate"
	"peer-lending-ledger/pkg/money"

	"gorm.io/gorm"
)

// Invalidator drops cached read models of a loan request.
type Invalidator interface {
	Invalidate(ctx context.Context, loanRequestID string) error
}

const command = "add_contribution"

// business rejections; anything else aborts
var rejections = []error{
	money.ErrInvalidAmount,
	validate.ErrInvalidInput,
	domain.ErrDuplicateContribution,
	loanrequest.ErrNotFound,
	loanrequest.ErrExceedsFundingRemaining,
}

type Usecase struct {
	loans         loanrequest.Repository
	contributions domain.Repository
	uow           uow.UnitOfWork
	cache         Invalidator
	v             *validate.Validator
	log           *slog.Logger
	metrics       *observability.Metrics
	now           func() time.Time
}

func NewUsecase(loans loanrequest.Repository, contributions domain.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{
		loans:         loans,
		contributions: contributions,
		uow:           tx,
		v:             validate.New(),
		log:           observability.Discard(),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (u *Usecase) WithCache(c Invalidator) *Usecase {
	u.cache = c
	return u
}

func (u *Usecase) WithLogger(l *slog.Logger) *Usecase {
	u.log = l
	return u
}

func (u *Usecase) WithMetrics(m *observability.Metrics) *Usecase {
	u.metrics = m
	return u
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// AddContribution records one contributor's stake and raises the loan
// request's contributed total in the same transaction, then marks the
// request funded once it is fully covered.
func (u *Usecase) AddContribution(ctx context.Context, in AddInput) (*ContributionDTO, error) {
	if err := money.RequirePositive(in.Amount); err != nil {
		u.metrics.Rejected(command)
		return nil, err
	}
	if err := u.v.Struct(in); err != nil {
		u.metrics.Rejected(command)
		return nil, err
	}

	var (
		dto    *ContributionDTO
		funded bool
	)
	err := u.uow.WithinLoanRequestTx(ctx, in.LoanRequestID, func(r uow.Repos, l *loanrequest.LoanRequest) error {
		_, err := r.Contributions.GetByLoanRequestAndUser(ctx, l.ID, in.UserID)
		switch {
		case err == nil:
			return domain.ErrDuplicateContribution
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if rem := l.FundingRemaining(); in.Amount > rem {
			return fmt.Errorf("%w: %s left, %s offered", loanrequest.ErrExceedsFundingRemaining, rem, in.Amount)
		}

		c := &domain.Contribution{
			LoanRequestID: l.ID,
			UserID:        in.UserID,
			Amount:        in.Amount,
		}
		if err := r.Contributions.Create(ctx, c); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrDuplicateContribution
			}
			return err
		}
		if err := r.LoanRequests.AddContributed(ctx, l.ID, in.Amount); err != nil {
			return err
		}
		l.ContributedAmount += in.Amount

		if funded = l.MarkFundedIfComplete(u.now()); funded {
			if err := r.LoanRequests.UpdateStatus(ctx, l); err != nil {
				return err
			}
		}

		dto = &ContributionDTO{
			LoanRequestID:     l.LoanRequestID,
			UserID:            c.UserID,
			Amount:            c.Amount,
			ContributedAmount: l.ContributedAmount,
			FundingRemaining:  l.FundingRemaining(),
			Status:            string(l.Status),
			CreatedAt:         c.CreatedAt,
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = loanrequest.ErrNotFound
	}
	if err != nil {
		return nil, u.fail(ctx, err)
	}

	u.metrics.Contribution(int64(in.Amount))
	if funded {
		u.metrics.Funded()
	}
	if u.cache != nil {
		if err := u.cache.Invalidate(ctx, in.LoanRequestID); err != nil {
			u.log.WarnContext(ctx, "summary cache invalidation failed",
				slog.String("loan_request_id", in.LoanRequestID), slog.Any("err", err))
		}
	}
	u.log.InfoContext(ctx, "contribution recorded",
		slog.String("loan_request_id", in.LoanRequestID),
		slog.String("user_id", in.UserID),
		slog.String("amount", in.Amount.String()),
		slog.Bool("funded", funded))
	return dto, nil
}

// ShareRatios lists each contribution with its share of the total.
func (u *Usecase) ShareRatios(ctx context.Context, loanRequestID string) ([]ShareDTO, error) {
	l, err := u.loans.GetByLoanRequestID(ctx, loanRequestID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loanrequest.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	cs, err := u.contributions.ListByLoanRequestID(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	shares, err := domain.Shares(cs)
	if err != nil {
		return nil, err
	}

	out := make([]ShareDTO, len(shares))
	for i, s := range shares {
		out[i] = ShareDTO{UserID: s.UserID, Amount: s.Amount, Ratio: s.Ratio}
	}
	return out, nil
}

func (u *Usecase) fail(ctx context.Context, err error) error {
	err = uow.Classify(err, rejections...)
	if errors.Is(err, uow.ErrTransactionAborted) {
		u.metrics.Aborted(command)
		u.log.ErrorContext(ctx, "contribution aborted", slog.Any("err", err))
	} else {
		u.metrics.Rejected(command)
	}
	return err
}
