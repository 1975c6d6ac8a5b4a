package mysql

import (
	"testing"

	loanRequestDomain "peer-lending-ledger/internal/domain/loanrequest"
	"peer-lending-ledger/internal/testutil/sqlitetest"
	"peer-lending-ledger/pkg/money"

	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB { return sqlitetest.Open(t) }

func makeLoanRequest(loanRequestID, borrowerID string, requested money.Amount) *loanRequestDomain.LoanRequest {
	return sqlitetest.LoanRequest(loanRequestID, borrowerID, requested)
}

func seedAccount(t *testing.T, db *gorm.DB, userID string, balance money.Amount) {
	t.Helper()
	sqlitetest.SeedAccount(t, db, userID, balance)
}

func moneyOf(minor int64) money.Amount { return money.Amount(minor) }
