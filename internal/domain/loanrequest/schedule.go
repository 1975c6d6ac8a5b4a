package loanrequest

import (
	"errors"

	"peer-lending-ledger/pkg/money"
)

// Installment divisors per cadence. These are business constants, not a
// count of periods per cycle.
const (
	weeklyInstallments  = 12
	monthlyInstallments = 3
)

func (l *LoanRequest) installments() int64 {
	if l.RepaymentRate == RateWeekly {
		return weeklyInstallments
	}
	return monthlyInstallments
}

// MinimumPayment is the outstanding balance divided by the cadence divisor,
// rounded up to the next cent so the installments cover the balance.
func (l *LoanRequest) MinimumPayment() (money.Amount, error) {
	out := l.Outstanding()
	if out == 0 {
		return 0, ErrAlreadyRepaid
	}
	return money.Amount(ceilDiv(int64(out), l.installments())), nil
}

// RemainingPayments is how many minimum payments settle the balance.
// A fully repaid request has none left.
func (l *LoanRequest) RemainingPayments() (int64, error) {
	min, err := l.MinimumPayment()
	if errors.Is(err, ErrAlreadyRepaid) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return ceilDiv(int64(l.Outstanding()), int64(min)), nil
}

func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}
