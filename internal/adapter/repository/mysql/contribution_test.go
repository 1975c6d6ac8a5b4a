package mysql

import (
	"context"
	"errors"
	"testing"

	domain "peer-lending-ledger/internal/domain/contribution"

	"gorm.io/gorm"
)

func TestContribution_CreateAndList(t *testing.T) {
	db := openTestDB(t)
	repo := NewContributionRepository(db)
	ctx := context.Background()

	for _, c := range []*domain.Contribution{
		{LoanRequestID: 7, UserID: "u2", Amount: 400},
		{LoanRequestID: 7, UserID: "u1", Amount: 600},
		{LoanRequestID: 8, UserID: "u1", Amount: 50},
	} {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := repo.ListByLoanRequestID(ctx, 7)
	if err != nil {
		t.Fatalf("ListByLoanRequestID: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// creation order, not user order
	if got[0].UserID != "u2" || got[1].UserID != "u1" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if domain.Total(got) != 1000 {
		t.Fatalf("total = %d, want 1000", domain.Total(got))
	}
}

func TestContribution_UniquePerUserAndRequest(t *testing.T) {
	db := openTestDB(t)
	repo := NewContributionRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &domain.Contribution{LoanRequestID: 1, UserID: "u1", Amount: 10}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, &domain.Contribution{LoanRequestID: 1, UserID: "u1", Amount: 20}); err == nil {
		t.Fatalf("expected unique index violation for duplicate contribution")
	}
	// same user, other request is fine
	if err := repo.Create(ctx, &domain.Contribution{LoanRequestID: 2, UserID: "u1", Amount: 20}); err != nil {
		t.Fatalf("Create other request: %v", err)
	}
}

func TestContribution_GetByLoanRequestAndUser(t *testing.T) {
	db := openTestDB(t)
	repo := NewContributionRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &domain.Contribution{LoanRequestID: 3, UserID: "u1", Amount: 99}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByLoanRequestAndUser(ctx, 3, "u1")
	if err != nil {
		t.Fatalf("GetByLoanRequestAndUser: %v", err)
	}
	if got.Amount != 99 {
		t.Fatalf("amount = %d, want 99", got.Amount)
	}

	if _, err := repo.GetByLoanRequestAndUser(ctx, 3, "u2"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestContribution_DeleteByLoanRequestID(t *testing.T) {
	db := openTestDB(t)
	repo := NewContributionRepository(db)
	ctx := context.Background()

	_ = repo.Create(ctx, &domain.Contribution{LoanRequestID: 4, UserID: "u1", Amount: 1})
	_ = repo.Create(ctx, &domain.Contribution{LoanRequestID: 4, UserID: "u2", Amount: 2})
	_ = repo.Create(ctx, &domain.Contribution{LoanRequestID: 5, UserID: "u1", Amount: 3})

	if err := repo.DeleteByLoanRequestID(ctx, 4); err != nil {
		t.Fatalf("DeleteByLoanRequestID: %v", err)
	}
	if got, _ := repo.ListByLoanRequestID(ctx, 4); len(got) != 0 {
		t.Fatalf("contributions left: %+v", got)
	}
	if got, _ := repo.ListByLoanRequestID(ctx, 5); len(got) != 1 {
		t.Fatalf("other request's contributions touched: %+v", got)
	}
}
