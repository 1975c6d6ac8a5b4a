package loanrequestmock

import (
	"context"
	"errors"
	"testing"

	domain "peer-lending-ledger/internal/domain/loanrequest"
	"peer-lending-ledger/pkg/money"
)

func TestRepo_Create(t *testing.T) {
	ctx := context.Background()
	l := &domain.LoanRequest{LoanRequestID: "LR-1"}

	called := false
	wantErr := errors.New("boom")
	m := &Repo{
		CreateFn: func(gotCtx context.Context, got *domain.LoanRequest) error {
			called = true
			if gotCtx != ctx || got != l {
				t.Fatalf("Create args not forwarded")
			}
			return wantErr
		},
	}
	if err := m.Create(ctx, l); !errors.Is(err, wantErr) {
		t.Fatalf("Create: want %v, got %v", wantErr, err)
	}
	if !called {
		t.Fatalf("CreateFn not called")
	}

	// Default (nil func) → no-op
	if err := (&Repo{}).Create(ctx, l); err != nil {
		t.Fatalf("Create default: want nil, got %v", err)
	}
}

func TestRepo_Readers(t *testing.T) {
	ctx := context.Background()
	want := &domain.LoanRequest{LoanRequestID: "LR-2"}

	m := &Repo{
		GetByLoanRequestIDFn: func(_ context.Context, id string) (*domain.LoanRequest, error) {
			if id != "LR-2" {
				t.Fatalf("GetByLoanRequestID id mismatch: %s", id)
			}
			return want, nil
		},
		GetByLoanRequestIDForUpdateFn: func(_ context.Context, id string) (*domain.LoanRequest, error) {
			return want, nil
		},
		ListWithContributionsFn: func(_ context.Context, limit int) ([]domain.LoanRequest, error) {
			if limit != 5 {
				t.Fatalf("limit mismatch: %d", limit)
			}
			return []domain.LoanRequest{*want}, nil
		},
	}
	if got, err := m.GetByLoanRequestID(ctx, "LR-2"); err != nil || got != want {
		t.Fatalf("GetByLoanRequestID: got %v, %v", got, err)
	}
	if got, err := m.GetByLoanRequestIDForUpdate(ctx, "LR-2"); err != nil || got != want {
		t.Fatalf("GetByLoanRequestIDForUpdate: got %v, %v", got, err)
	}
	if got, err := m.ListWithContributions(ctx, 5); err != nil || len(got) != 1 {
		t.Fatalf("ListWithContributions: got %v, %v", got, err)
	}

	empty := &Repo{}
	if _, err := empty.GetByLoanRequestID(ctx, "x"); !errors.Is(err, errUnimplemented) {
		t.Fatalf("GetByLoanRequestID default: got %v", err)
	}
	if _, err := empty.GetByLoanRequestIDForUpdate(ctx, "x"); !errors.Is(err, errUnimplemented) {
		t.Fatalf("GetByLoanRequestIDForUpdate default: got %v", err)
	}
	if _, err := empty.ListWithContributions(ctx, 1); !errors.Is(err, errUnimplemented) {
		t.Fatalf("ListWithContributions default: got %v", err)
	}
}

func TestRepo_Writers(t *testing.T) {
	ctx := context.Background()
	var contributed, repaid money.Amount
	var deleted uint64
	m := &Repo{
		AddContributedFn: func(_ context.Context, id uint64, a money.Amount) error { contributed = a; return nil },
		AddRepaidFn:      func(_ context.Context, id uint64, a money.Amount) error { repaid = a; return nil },
		DeleteFn:         func(_ context.Context, id uint64) error { deleted = id; return nil },
		UpdateStatusFn: func(_ context.Context, l *domain.LoanRequest) error {
			if l.Status != domain.StatusFunded {
				t.Fatalf("UpdateStatus got %s", l.Status)
			}
			return nil
		},
	}
	_ = m.AddContributed(ctx, 1, 100)
	_ = m.AddRepaid(ctx, 1, 40)
	_ = m.Delete(ctx, 9)
	_ = m.UpdateStatus(ctx, &domain.LoanRequest{Status: domain.StatusFunded})
	if contributed != 100 || repaid != 40 || deleted != 9 {
		t.Fatalf("writers not forwarded: %d %d %d", contributed, repaid, deleted)
	}

	empty := &Repo{}
	for name, err := range map[string]error{
		"AddContributed": empty.AddContributed(ctx, 1, 1),
		"AddRepaid":      empty.AddRepaid(ctx, 1, 1),
		"Delete":         empty.Delete(ctx, 1),
		"UpdateStatus":   empty.UpdateStatus(ctx, &domain.LoanRequest{}),
	} {
		if err != nil {
			t.Fatalf("%s default: want nil, got %v", name, err)
		}
	}
}
