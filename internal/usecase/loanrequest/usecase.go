package loanrequest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"peer-lending-ledger/internal/domain/contribution"
	domain "peer-lending-ledger/internal/domain/loanrequest"
	"peer-lending-ledger/internal/domain/uow"
	"peer-lending-ledger/internal/observability"
	"peer-lending-ledger/internal/usecase/validate"
	"peer-lending-ledger/pkg/id"

	"gorm.io/gorm"
)

// SummaryCache holds derived read models keyed by public loan request id.
// Get reports the generation a miss should be stored under; Invalidate
// advances it so results of reads that raced a write are never served.
type SummaryCache interface {
	Get(ctx context.Context, loanRequestID string) (*SummaryDTO, int64, bool, error)
	Set(ctx context.Context, loanRequestID string, gen int64, s *SummaryDTO) error
	Invalidate(ctx context.Context, loanRequestID string) error
}

const defaultListLimit = 50

type Usecase struct {
	repo    domain.Repository
	uow     uow.UnitOfWork
	cache   SummaryCache
	v       *validate.Validator
	log     *slog.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewUsecase: repo serves reads, tx runs every write.
func NewUsecase(repo domain.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{
		repo: repo,
		uow:  tx,
		v:    validate.New(),
		log:  observability.Discard(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (u *Usecase) WithCache(c SummaryCache) *Usecase {
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

func (u *Usecase) Create(ctx context.Context, in CreateInput) (*LoanRequestDTO, error) {
	if err := u.v.Struct(in); err != nil {
		u.metrics.Rejected("create_loan_request")
		return nil, err
	}

	now := u.now()
	l := &domain.LoanRequest{
		LoanRequestID:      id.NewID32(),
		BorrowerID:         in.BorrowerID,
		Title:              in.Title,
		Description:        in.Description,
		RequestedAmount:    in.RequestedAmount,
		RequestedByDate:    in.RequestedByDate.UTC(),
		RepaymentBeginDate: in.RepaymentBeginDate.UTC(),
		RepaymentRate:      domain.RepaymentRate(in.RepaymentRate),
		Status:             domain.StatusActive,
		StatusUpdatedAt:    now,
	}
	if err := u.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	u.log.InfoContext(ctx, "loan request created",
		slog.String("loan_request_id", l.LoanRequestID),
		slog.String("borrower_id", l.BorrowerID),
		slog.String("requested_amount", l.RequestedAmount.String()))
	return toDTO(l), nil
}

func (u *Usecase) Get(ctx context.Context, loanRequestID string) (*LoanRequestDTO, error) {
	l, err := u.load(ctx, loanRequestID)
	if err != nil {
		return nil, err
	}
	return toDTO(l), nil
}

// Summary answers the query surface. Cache failures fall back to storage.
func (u *Usecase) Summary(ctx context.Context, loanRequestID string) (*SummaryDTO, error) {
	var gen int64
	cacheable := false
	if u.cache != nil {
		s, g, ok, err := u.cache.Get(ctx, loanRequestID)
		switch {
		case err != nil:
			u.log.WarnContext(ctx, "summary cache read failed",
				slog.String("loan_request_id", loanRequestID), slog.Any("err", err))
		case ok:
			return s, nil
		default:
			gen, cacheable = g, true
		}
	}

	l, err := u.load(ctx, loanRequestID)
	if err != nil {
		return nil, err
	}
	s, err := Summarize(l)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := u.cache.Set(ctx, loanRequestID, gen, s); err != nil {
			u.log.WarnContext(ctx, "summary cache write failed",
				slog.String("loan_request_id", loanRequestID), slog.Any("err", err))
		}
	}
	return s, nil
}

// Summarize computes the derived figures of l.
func Summarize(l *domain.LoanRequest) (*SummaryDTO, error) {
	progress, err := l.ProgressPercentage()
	if err != nil {
		return nil, err
	}
	// nothing outstanding leaves both at zero
	minimum, err := l.MinimumPayment()
	if err != nil && !errors.Is(err, domain.ErrAlreadyRepaid) {
		return nil, err
	}
	remaining, err := l.RemainingPayments()
	if err != nil {
		return nil, err
	}
	return &SummaryDTO{
		LoanRequestDTO:     *toDTO(l),
		FundingRemaining:   l.FundingRemaining(),
		ProgressPercentage: progress,
		Outstanding:        l.Outstanding(),
		MinimumPayment:     minimum,
		RemainingPayments:  remaining,
		RepaymentDueDate:   l.RepaymentDueDate(),
	}, nil
}

// MarkFundedIfComplete re-checks the funded transition under the row lock.
func (u *Usecase) MarkFundedIfComplete(ctx context.Context, loanRequestID string) (*LoanRequestDTO, error) {
	var (
		dto     *LoanRequestDTO
		changed bool
	)
	err := u.uow.WithinLoanRequestTx(ctx, loanRequestID, func(r uow.Repos, l *domain.LoanRequest) error {
		if changed = l.MarkFundedIfComplete(u.now()); changed {
			if err := r.LoanRequests.UpdateStatus(ctx, l); err != nil {
				return err
			}
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, u.fail(ctx, "mark_funded", notFound(err))
	}

	if changed {
		u.metrics.Funded()
		u.invalidate(ctx, loanRequestID)
		u.log.InfoContext(ctx, "loan request funded", slog.String("loan_request_id", loanRequestID))
	}
	return dto, nil
}

// Delete removes the loan request with its contributions, repayments and payouts.
func (u *Usecase) Delete(ctx context.Context, loanRequestID string) error {
	err := u.uow.WithinLoanRequestTx(ctx, loanRequestID, func(r uow.Repos, l *domain.LoanRequest) error {
		if err := r.Repayments.DeleteByLoanRequestID(ctx, l.ID); err != nil {
			return err
		}
		if err := r.Contributions.DeleteByLoanRequestID(ctx, l.ID); err != nil {
			return err
		}
		return r.LoanRequests.Delete(ctx, l.ID)
	})
	if err != nil {
		return u.fail(ctx, "delete_loan_request", notFound(err))
	}

	u.invalidate(ctx, loanRequestID)
	u.log.InfoContext(ctx, "loan request deleted", slog.String("loan_request_id", loanRequestID))
	return nil
}

// ListWithContributions lists loan requests that received any money,
// newest first. limit <= 0 uses the default page size.
func (u *Usecase) ListWithContributions(ctx context.Context, limit int) ([]LoanRequestDTO, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	ls, err := u.repo.ListWithContributions(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]LoanRequestDTO, 0, len(ls))
	for i := range ls {
		out = append(out, *toDTO(&ls[i]))
	}
	return out, nil
}

func (u *Usecase) load(ctx context.Context, loanRequestID string) (*domain.LoanRequest, error) {
	l, err := u.repo.GetByLoanRequestID(ctx, loanRequestID)
	if err != nil {
		return nil, notFound(err)
	}
	return l, nil
}

func (u *Usecase) invalidate(ctx context.Context, loanRequestID string) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Invalidate(ctx, loanRequestID); err != nil {
		u.log.WarnContext(ctx, "summary cache invalidation failed",
			slog.String("loan_request_id", loanRequestID), slog.Any("err", err))
	}
}

func (u *Usecase) fail(ctx context.Context, command string, err error) error {
	err = uow.Classify(err, domain.ErrNotFound, contribution.ErrNoContributions)
	if errors.Is(err, uow.ErrTransactionAborted) {
		u.metrics.Aborted(command)
		u.log.ErrorContext(ctx, "command aborted", slog.String("command", command), slog.Any("err", err))
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}
