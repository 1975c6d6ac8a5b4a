// Package sqlitetest opens in-memory SQLite databases carrying the ledger
// schema, for tests that need real transactions.
package sqlitetest

import (
	"testing"
	"time"

	"peer-lending-ledger/internal/domain/account"
	"peer-lending-ledger/internal/domain/contribution"
	"peer-lending-ledger/internal/domain/loanrequest"
	"peer-lending-ledger/internal/domain/repayment"
	"peer-lending-ledger/pkg/money"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// --- SQLite-friendly schema only for tests (no ENUM) ---

type loanRequestSQLite struct {
	ID                 uint64    `gorm:"primaryKey;column:id"`
	LoanRequestID      string    `gorm:"size:32;uniqueIndex;column:loan_request_id"`
	BorrowerID         string    `gorm:"size:32;column:borrower_id"`
	Title              string    `gorm:"column:title"`
	Description        string    `gorm:"column:description"`
	RequestedAmount    int64     `gorm:"column:requested_amount"`
	ContributedAmount  int64     `gorm:"column:contributed_amount;not null;default:0"`
	RepaidAmount       int64     `gorm:"column:repaid_amount;not null;default:0"`
	RequestedByDate    time.Time `gorm:"column:requested_by_date"`
	RepaymentBeginDate time.Time `gorm:"column:repayment_begin_date"`
	RepaymentRate      string    `gorm:"type:text;column:repayment_rate"` // ← no enum
	Status             string    `gorm:"type:text;column:status;default:'active'"`
	StatusUpdatedAt    time.Time `gorm:"column:status_updated_at"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (loanRequestSQLite) TableName() string { return "loan_requests" }

// Open creates an in-memory sqlite DB with the whole ledger schema. It is
// closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard, TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// every pooled connection to ":memory:" would be a fresh empty database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	// IMPORTANT: migrate the sqlite-safe loan request model, NOT the domain model.
	if err := db.AutoMigrate(
		&loanRequestSQLite{},
		&contribution.Contribution{},
		&account.Account{},
		&repayment.Repayment{},
		&repayment.Payout{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

// LoanRequest builds an active monthly loan request ready to insert.
func LoanRequest(loanRequestID, borrowerID string, requested money.Amount) *loanrequest.LoanRequest {
	return &loanrequest.LoanRequest{
		LoanRequestID:      loanRequestID,
		BorrowerID:         borrowerID,
		Title:              "Bakery oven",
		Description:        "A second oven for the morning rush",
		RequestedAmount:    requested,
		RequestedByDate:    time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		RepaymentBeginDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		RepaymentRate:      loanrequest.RateMonthly,
		Status:             loanrequest.StatusActive,
		StatusUpdatedAt:    time.Now().UTC(),
	}
}

func SeedAccount(t testing.TB, db *gorm.DB, userID string, balance money.Amount) {
	t.Helper()
	if err := db.Create(&account.Account{UserID: userID, Balance: balance}).Error; err != nil {
		t.Fatalf("seed account %s: %v", userID, err)
	}
}

// Balance reads a stored balance directly.
func Balance(t testing.TB, db *gorm.DB, userID string) money.Amount {
	t.Helper()
	var a account.Account
	if err := db.Where("user_id = ?", userID).Take(&a).Error; err != nil {
		t.Fatalf("read account %s: %v", userID, err)
	}
	return a.Balance
}
