package repaymentmock

import (
	"context"
	"errors"
	"testing"

	domain "peer-lending-ledger/internal/domain/repayment"
)

func TestRepo_ForwardsToFuncs(t *testing.T) {
	ctx := context.Background()
	r := &domain.Repayment{RepaymentID: "R1", Amount: 100}
	var created *domain.Repayment
	m := &Repo{
		CreateFn: func(_ context.Context, got *domain.Repayment) error { created = got; return nil },
		GetByRequestIDFn: func(_ context.Context, req string) (*domain.Repayment, error) {
			if req != "req-1" {
				t.Fatalf("GetByRequestID arg: %s", req)
			}
			return r, nil
		},
		ListByLoanRequestIDFn: func(_ context.Context, id uint64) ([]domain.Repayment, error) {
			return []domain.Repayment{*r}, nil
		},
	}
	if err := m.Create(ctx, r); err != nil || created != r {
		t.Fatalf("Create not forwarded")
	}
	if got, err := m.GetByRequestID(ctx, "req-1"); err != nil || got != r {
		t.Fatalf("GetByRequestID: %v, %v", got, err)
	}
	if got, err := m.ListByLoanRequestID(ctx, 1); err != nil || len(got) != 1 {
		t.Fatalf("ListByLoanRequestID: %v, %v", got, err)
	}
}

func TestRepo_Defaults(t *testing.T) {
	ctx := context.Background()
	m := &Repo{}
	if err := m.Create(ctx, &domain.Repayment{}); err != nil {
		t.Fatalf("Create default: %v", err)
	}
	if err := m.DeleteByLoanRequestID(ctx, 1); err != nil {
		t.Fatalf("DeleteByLoanRequestID default: %v", err)
	}
	if _, err := m.GetByRequestID(ctx, "x"); !errors.Is(err, errUnimplemented) {
		t.Fatalf("GetByRequestID default: %v", err)
	}
	if _, err := m.ListByLoanRequestID(ctx, 1); !errors.Is(err, errUnimplemented) {
		t.Fatalf("ListByLoanRequestID default: %v", err)
	}
}
