package repayment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"peer-lending-ledger/internal/adapter/idempotency"
	"peer-lending-ledger/internal/domain/account"
	"peer-lending-ledger/internal/domain/contribution"
	"peer-lending-ledger/internal/domain/loanrequest"
	domain "peer-lending-ledger/internal/domain/repayment"
	"peer-lending-ledger/internal/domain/uow"
	"peer-lending-ledger/internal/testutil/accountmock"
	"peer-lending-ledger/internal/testutil/contributionmock"
	"peer-lending-ledger/internal/testutil/loanrequestmock"
	"peer-lending-ledger/internal/testutil/repaymentmock"
	"peer-lending-ledger/internal/testutil/uowmock"
	"peer-lending-ledger/internal/usecase/validate"
	"peer-lending-ledger/pkg/money"

	"gorm.io/gorm"
)

type fakeIdem struct {
	beginResult []byte
	beginErr    error
	completed   []byte
	released    bool
}

func (f *fakeIdem) Begin(context.Context, string, string, string) ([]byte, error) {
	return f.beginResult, f.beginErr
}
func (f *fakeIdem) Complete(_ context.Context, _, _, _ string, result []byte) error {
	f.completed = result
	return nil
}
func (f *fakeIdem) Release(context.Context, string, string) error {
	f.released = true
	return nil
}

// ledger wires mocks around one loan request with the given stakes.
type ledger struct {
	loan     *loanrequest.LoanRequest
	stakes   []contribution.Contribution
	balances map[string]money.Amount
	touched  []string
	repaid   money.Amount
	created  *domain.Repayment
}

func newLedger(contributed, repaid money.Amount, stakes ...contribution.Contribution) *ledger {
	lg := &ledger{
		loan: &loanrequest.LoanRequest{
			ID: 5, LoanRequestID: lrID, RequestedAmount: contributed,
			ContributedAmount: contributed, RepaidAmount: repaid,
		},
		stakes:   stakes,
		balances: map[string]money.Amount{borrower: 100000},
	}
	for _, s := range stakes {
		lg.balances[s.UserID] = 0
	}
	return lg
}

func (lg *ledger) usecase() *Usecase {
	loans := &loanrequestmock.Repo{
		GetByLoanRequestIDForUpdateFn: func(context.Context, string) (*loanrequest.LoanRequest, error) { return lg.loan, nil },
		AddRepaidFn: func(_ context.Context, _ uint64, a money.Amount) error {
			lg.repaid += a
			return nil
		},
	}
	contribs := &contributionmock.Repo{
		ListByLoanRequestIDFn: func(context.Context, uint64) ([]contribution.Contribution, error) { return lg.stakes, nil },
	}
	accounts := &accountmock.Repo{
		GetByUserIDFn: func(_ context.Context, user string) (*account.Account, error) {
			b, ok := lg.balances[user]
			if !ok {
				return nil, gorm.ErrRecordNotFound
			}
			return &account.Account{UserID: user, Balance: b}, nil
		},
		CreditFn: func(_ context.Context, user string, a money.Amount) error {
			lg.touched = append(lg.touched, user)
			lg.balances[user] += a
			return nil
		},
		DebitFn: func(_ context.Context, user string, a money.Amount, _ bool) error {
			lg.touched = append(lg.touched, user)
			lg.balances[user] -= a
			return nil
		},
	}
	repays := &repaymentmock.Repo{
		GetByRequestIDFn: func(context.Context, string) (*domain.Repayment, error) { return nil, gorm.ErrRecordNotFound },
		CreateFn: func(_ context.Context, r *domain.Repayment) error {
			lg.created = r
			return nil
		},
	}
	tx := uowmock.Passthrough(uow.Repos{LoanRequests: loans, Contributions: contribs, Accounts: accounts, Repayments: repays})
	return NewUsecase(loans, repays, tx)
}

func TestUsecase_Pay(t *testing.T) {
	stakes := []contribution.Contribution{
		{UserID: bob, Amount: 40000},
		{UserID: alice, Amount: 60000},
	}

	tests := []struct {
		name    string
		ledger  *ledger
		in      PayInput
		wantErr error
		check   func(t *testing.T, lg *ledger, dto *RepaymentDTO)
	}{
		{
			name:   "happy path",
			ledger: newLedger(100000, 0, stakes...),
			in:     PayInput{LoanRequestID: lrID, Amount: 10000, BorrowerAccountID: borrower},
			check: func(t *testing.T, lg *ledger, dto *RepaymentDTO) {
				if lg.balances[alice] != 6000 || lg.balances[bob] != 4000 || lg.balances[borrower] != 90000 {
					t.Fatalf("balances = %v", lg.balances)
				}
				if lg.repaid != 10000 || lg.created == nil || lg.created.Amount != 10000 {
					t.Fatalf("repaid=%d created=%+v", lg.repaid, lg.created)
				}
				// accounts are written in user id order
				want := []string{alice, bob, borrower}
				for i, u := range want {
					if lg.touched[i] != u {
						t.Fatalf("write order = %v, want %v", lg.touched, want)
					}
				}
				// payouts keep contribution order
				if dto.Payouts[0].UserID != bob || dto.Payouts[1].UserID != alice {
					t.Fatalf("payout order = %+v", dto.Payouts)
				}
			},
		},
		{
			name:    "zero amount",
			ledger:  newLedger(100000, 0, stakes...),
			in:      PayInput{LoanRequestID: lrID, Amount: 0, BorrowerAccountID: borrower},
			wantErr: money.ErrInvalidAmount,
		},
		{
			name:    "malformed borrower",
			ledger:  newLedger(100000, 0, stakes...),
			in:      PayInput{LoanRequestID: lrID, Amount: 10, BorrowerAccountID: "acct-1"},
			wantErr: validate.ErrInvalidInput,
		},
		{
			name:    "overpayment by one cent",
			ledger:  newLedger(100000, 40000, stakes...),
			in:      PayInput{LoanRequestID: lrID, Amount: 60001, BorrowerAccountID: borrower},
			wantErr: loanrequest.ErrOverpaymentRejected,
		},
		{
			name: "no contributions",
			ledger: func() *ledger {
				lg := newLedger(100000, 0)
				return lg
			}(),
			in:      PayInput{LoanRequestID: lrID, Amount: 10, BorrowerAccountID: borrower},
			wantErr: contribution.ErrNoContributions,
		},
		{
			name:    "unknown borrower account",
			ledger:  newLedger(100000, 0, stakes...),
			in:      PayInput{LoanRequestID: lrID, Amount: 10, BorrowerAccountID: carol},
			wantErr: account.ErrNotFound,
		},
		{
			name: "borrower short of funds",
			ledger: func() *ledger {
				lg := newLedger(100000, 0, stakes...)
				lg.balances[borrower] = 9
				return lg
			}(),
			in:      PayInput{LoanRequestID: lrID, Amount: 10, BorrowerAccountID: borrower},
			wantErr: account.ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dto, err := tt.ledger.usecase().Pay(context.Background(), tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
				if errors.Is(err, uow.ErrTransactionAborted) {
					t.Fatalf("rejection reported as abort: %v", err)
				}
				if len(tt.ledger.touched) != 0 || tt.ledger.repaid != 0 || tt.ledger.created != nil {
					t.Fatalf("state changed on rejection")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if tt.check != nil {
				tt.check(t, tt.ledger, dto)
			}
		})
	}
}

func TestUsecase_Pay_Idempotency(t *testing.T) {
	in := PayInput{LoanRequestID: lrID, Amount: 100, BorrowerAccountID: borrower, RequestID: "req-9"}
	stake := contribution.Contribution{UserID: alice, Amount: 1000}

	t.Run("in progress", func(t *testing.T) {
		lg := newLedger(1000, 0, stake)
		_, err := lg.usecase().WithIdempotency(&fakeIdem{beginErr: idempotency.ErrInProgress}).Pay(context.Background(), in)
		if !errors.Is(err, domain.ErrRequestInProgress) {
			t.Fatalf("want ErrRequestInProgress, got %v", err)
		}
	})

	t.Run("fingerprint mismatch", func(t *testing.T) {
		lg := newLedger(1000, 0, stake)
		_, err := lg.usecase().WithIdempotency(&fakeIdem{beginErr: idempotency.ErrFingerprintMismatch}).Pay(context.Background(), in)
		if !errors.Is(err, domain.ErrRequestIDReused) {
			t.Fatalf("want ErrRequestIDReused, got %v", err)
		}
	})

	t.Run("stored result replayed without touching the ledger", func(t *testing.T) {
		lg := newLedger(1000, 0, stake)
		stored, _ := json.Marshal(RepaymentDTO{RepaymentID: "r-1", Amount: 100})
		dto, err := lg.usecase().WithIdempotency(&fakeIdem{beginResult: stored}).Pay(context.Background(), in)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if !dto.Replayed || dto.RepaymentID != "r-1" || len(lg.touched) != 0 {
			t.Fatalf("replay = %+v touched=%v", dto, lg.touched)
		}
	})

	t.Run("claim completed on success", func(t *testing.T) {
		lg := newLedger(1000, 0, stake)
		idem := &fakeIdem{}
		dto, err := lg.usecase().WithIdempotency(idem).Pay(context.Background(), in)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		var saved RepaymentDTO
		if err := json.Unmarshal(idem.completed, &saved); err != nil || saved.RepaymentID != dto.RepaymentID {
			t.Fatalf("completed result = %s (%v)", idem.completed, err)
		}
	})

	t.Run("claim released on rejection", func(t *testing.T) {
		lg := newLedger(1000, 950, stake)
		idem := &fakeIdem{}
		_, err := lg.usecase().WithIdempotency(idem).Pay(context.Background(), in)
		if !errors.Is(err, loanrequest.ErrOverpaymentRejected) {
			t.Fatalf("want ErrOverpaymentRejected, got %v", err)
		}
		if !idem.released || idem.completed != nil {
			t.Fatalf("released=%v completed=%s", idem.released, idem.completed)
		}
	})

	t.Run("store outage falls through", func(t *testing.T) {
		lg := newLedger(1000, 0, stake)
		idem := &fakeIdem{beginErr: errors.New("dial tcp: connection refused")}
		if _, err := lg.usecase().WithIdempotency(idem).Pay(context.Background(), in); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if lg.repaid != 100 || idem.completed != nil {
			t.Fatalf("repaid=%d completed=%s", lg.repaid, idem.completed)
		}
	})
}

func TestUsecase_Repayments_NotFound(t *testing.T) {
	loans := &loanrequestmock.Repo{
		GetByLoanRequestIDFn: func(context.Context, string) (*loanrequest.LoanRequest, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	_, err := NewUsecase(loans, &repaymentmock.Repo{}, uowmock.New()).Repayments(context.Background(), lrID)
	if !errors.Is(err, loanrequest.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
