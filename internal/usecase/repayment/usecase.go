package repayment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"peer-lending-ledger/internal/adapter/idempotency"
	"peer-lending-ledger/internal/domain/account"
	"peer-lending-ledger/internal/domain/contribution"
	"peer-lending-ledger/internal/domain/loanrequest"
	domain "peer-lending-ledger/internal/domain/repayment"
	"peer-lending-ledger/internal/domain/uow"
	"peer-lending-ledger/internal/observability"
	"peer-lending-ledger/internal/usecase/validate"
	"peer-lending-ledger/pkg/id"
	"peer-lending-ledger/pkg/money"

	"gorm.io/gorm"
)

// IdempotencyStore remembers finished commands by request id.
type IdempotencyStore interface {
	Begin(ctx context.Context, scope, requestID, fingerprint string) ([]byte, error)
	Complete(ctx context.Context, scope, requestID, fingerprint string, result []byte) error
	Release(ctx context.Context, scope, requestID string) error
}

// Invalidator drops cached read models of a loan request.
type Invalidator interface {
	Invalidate(ctx context.Context, loanRequestID string) error
}

const (
	command = "pay"
	scope   = "repayment"
)

// business rejections; anything else aborts
var rejections = []error{
	money.ErrInvalidAmount,
	validate.ErrInvalidInput,
	loanrequest.ErrNotFound,
	loanrequest.ErrOverpaymentRejected,
	contribution.ErrNoContributions,
	account.ErrNotFound,
	account.ErrInsufficientFunds,
	domain.ErrRequestIDReused,
	domain.ErrRequestInProgress,
}

type Usecase struct {
	loans          loanrequest.Repository
	repayments     domain.Repository
	uow            uow.UnitOfWork
	idem           IdempotencyStore
	cache          Invalidator
	allowOverdraft bool
	v              *validate.Validator
	log            *slog.Logger
	metrics        *observability.Metrics
}

func NewUsecase(loans loanrequest.Repository, repayments domain.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{
		loans:      loans,
		repayments: repayments,
		uow:        tx,
		v:          validate.New(),
		log:        observability.Discard(),
	}
}

func (u *Usecase) WithIdempotency(s IdempotencyStore) *Usecase {
	u.idem = s
	return u
}

func (u *Usecase) WithCache(c Invalidator) *Usecase {
	u.cache = c
	return u
}

// WithOverdraft lets the borrower's balance go negative.
func (u *Usecase) WithOverdraft(allow bool) *Usecase {
	u.allowOverdraft = allow
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

// Pay takes amount from the borrower's account and splits it across the
// loan request's contributors by stake. Either every balance, the loan's
// repaid total and the audit rows change together, or nothing does.
func (u *Usecase) Pay(ctx context.Context, in PayInput) (*RepaymentDTO, error) {
	if err := money.RequirePositive(in.Amount); err != nil {
		u.metrics.Rejected(command)
		return nil, err
	}
	if err := u.v.Struct(in); err != nil {
		u.metrics.Rejected(command)
		return nil, err
	}

	fp := idempotency.Fingerprint(in.LoanRequestID, in.BorrowerAccountID, strconv.FormatInt(int64(in.Amount), 10))
	claimed := false
	if in.RequestID != "" && u.idem != nil {
		replay, err := u.idem.Begin(ctx, scope, in.RequestID, fp)
		switch {
		case errors.Is(err, idempotency.ErrFingerprintMismatch):
			return nil, u.fail(ctx, domain.ErrRequestIDReused)
		case errors.Is(err, idempotency.ErrInProgress):
			return nil, u.fail(ctx, domain.ErrRequestInProgress)
		case err != nil:
			// the request_id column still rejects a double payment
			u.log.WarnContext(ctx, "idempotency store unavailable",
				slog.String("request_id", in.RequestID), slog.Any("err", err))
		case replay != nil:
			var dto RepaymentDTO
			if err := json.Unmarshal(replay, &dto); err == nil {
				dto.Replayed = true
				u.metrics.Replayed()
				return &dto, nil
			}
			u.log.WarnContext(ctx, "stored repayment result unreadable", slog.String("request_id", in.RequestID))
		default:
			claimed = true
		}
	}

	dto, overdrawn, err := u.pay(ctx, in)
	if err != nil {
		if claimed {
			if rerr := u.idem.Release(ctx, scope, in.RequestID); rerr != nil {
				u.log.WarnContext(ctx, "idempotency release failed",
					slog.String("request_id", in.RequestID), slog.Any("err", rerr))
			}
		}
		return nil, u.fail(ctx, err)
	}

	if claimed {
		b, _ := json.Marshal(dto)
		if err := u.idem.Complete(ctx, scope, in.RequestID, fp, b); err != nil {
			u.log.WarnContext(ctx, "idempotency complete failed",
				slog.String("request_id", in.RequestID), slog.Any("err", err))
		}
	}
	if dto.Replayed {
		u.metrics.Replayed()
		return dto, nil
	}

	u.metrics.Repayment(int64(in.Amount))
	if u.cache != nil {
		if err := u.cache.Invalidate(ctx, in.LoanRequestID); err != nil {
			u.log.WarnContext(ctx, "summary cache invalidation failed",
				slog.String("loan_request_id", in.LoanRequestID), slog.Any("err", err))
		}
	}
	if overdrawn {
		u.log.WarnContext(ctx, "borrower account overdrawn",
			slog.String("user_id", in.BorrowerAccountID),
			slog.String("loan_request_id", in.LoanRequestID))
	}
	u.log.InfoContext(ctx, "repayment distributed",
		slog.String("repayment_id", dto.RepaymentID),
		slog.String("loan_request_id", in.LoanRequestID),
		slog.String("amount", in.Amount.String()),
		slog.Int("payouts", len(dto.Payouts)))
	return dto, nil
}

type balanceChange struct {
	userID string
	amount money.Amount
	debit  bool
}

func (u *Usecase) pay(ctx context.Context, in PayInput) (dto *RepaymentDTO, overdrawn bool, err error) {
	err = u.uow.WithinLoanRequestTx(ctx, in.LoanRequestID, func(r uow.Repos, l *loanrequest.LoanRequest) error {
		if in.RequestID != "" {
			prev, err := r.Repayments.GetByRequestID(ctx, in.RequestID)
			switch {
			case err == nil:
				if prev.LoanRequestID != l.ID || prev.Amount != in.Amount || prev.BorrowerID != in.BorrowerAccountID {
					return domain.ErrRequestIDReused
				}
				dto = toDTO(l.LoanRequestID, prev)
				dto.Replayed = true
				return nil
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}

		if out := l.Outstanding(); in.Amount > out {
			return fmt.Errorf("%w: %s outstanding, %s offered", loanrequest.ErrOverpaymentRejected, out, in.Amount)
		}

		cs, err := r.Contributions.ListByLoanRequestID(ctx, l.ID)
		if err != nil {
			return err
		}
		if len(cs) == 0 {
			return contribution.ErrNoContributions
		}
		if total := contribution.Total(cs); total != l.ContributedAmount {
			return fmt.Errorf("%w: contributions sum to %s, loan request records %s",
				contribution.ErrLedgerMismatch, total, l.ContributedAmount)
		}

		payouts, err := money.Allocate(in.Amount, contribution.Amounts(cs))
		if err != nil {
			return err
		}

		// every account must exist before any balance moves
		borrower, err := r.Accounts.GetByUserID(ctx, in.BorrowerAccountID)
		if err != nil {
			return accountErr(err, in.BorrowerAccountID)
		}
		if borrower.Balance < in.Amount {
			if !u.allowOverdraft {
				return fmt.Errorf("%w: balance %s, repayment %s", account.ErrInsufficientFunds, borrower.Balance, in.Amount)
			}
			overdrawn = true
		}
		for _, c := range cs {
			if _, err := r.Accounts.GetByUserID(ctx, c.UserID); err != nil {
				return accountErr(err, c.UserID)
			}
		}

		changes := []balanceChange{{userID: in.BorrowerAccountID, amount: in.Amount, debit: true}}
		for i, c := range cs {
			if payouts[i] > 0 {
				changes = append(changes, balanceChange{userID: c.UserID, amount: payouts[i]})
			}
		}
		// fixed row order across concurrent transactions
		sort.SliceStable(changes, func(i, j int) bool { return changes[i].userID < changes[j].userID })
		for _, ch := range changes {
			if ch.debit {
				err = r.Accounts.Debit(ctx, ch.userID, ch.amount, u.allowOverdraft)
			} else {
				err = r.Accounts.Credit(ctx, ch.userID, ch.amount)
			}
			if err != nil {
				return accountErr(err, ch.userID)
			}
		}

		if err := r.LoanRequests.AddRepaid(ctx, l.ID, in.Amount); err != nil {
			return err
		}

		rp := &domain.Repayment{
			RepaymentID:   id.NewID32(),
			LoanRequestID: l.ID,
			BorrowerID:    in.BorrowerAccountID,
			Amount:        in.Amount,
			Payouts:       make([]domain.Payout, len(cs)),
		}
		if in.RequestID != "" {
			reqID := in.RequestID
			rp.RequestID = &reqID
		}
		for i, c := range cs {
			rp.Payouts[i] = domain.Payout{UserID: c.UserID, Amount: payouts[i]}
		}
		if err := r.Repayments.Create(ctx, rp); err != nil {
			return err
		}

		l.RepaidAmount += in.Amount
		dto = toDTO(l.LoanRequestID, rp)
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = loanrequest.ErrNotFound
	}
	if err != nil {
		return nil, false, err
	}
	return dto, overdrawn, nil
}

// Repayments lists the audit trail of a loan request, oldest first.
func (u *Usecase) Repayments(ctx context.Context, loanRequestID string) ([]RepaymentDTO, error) {
	l, err := u.loans.GetByLoanRequestID(ctx, loanRequestID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loanrequest.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rs, err := u.repayments.ListByLoanRequestID(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	out := make([]RepaymentDTO, 0, len(rs))
	for i := range rs {
		out = append(out, *toDTO(l.LoanRequestID, &rs[i]))
	}
	return out, nil
}

func (u *Usecase) fail(ctx context.Context, err error) error {
	err = uow.Classify(err, rejections...)
	if errors.Is(err, uow.ErrTransactionAborted) {
		u.metrics.Aborted(command)
		u.log.ErrorContext(ctx, "repayment aborted", slog.Any("err", err))
	} else {
		u.metrics.Rejected(command)
	}
	return err
}

func accountErr(err error, userID string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, account.ErrNotFound) {
		return fmt.Errorf("%w: %s", account.ErrNotFound, userID)
	}
	return err
}
