package contribution

import (
	"time"

	"peer-lending-ledger/pkg/money"

	"github.com/shopspring/decimal"
)

type AddInput struct {
	LoanRequestID string       `json:"loan_request_id" validate:"required,hex32"`
	UserID        string       `json:"user_id" validate:"required,hex32"`
	Amount        money.Amount `json:"amount"`
}

type ContributionDTO struct {
	LoanRequestID     string       `json:"loan_request_id"`
	UserID            string       `json:"user_id"`
	Amount            money.Amount `json:"amount"`
	ContributedAmount money.Amount `json:"contributed_amount"`
	FundingRemaining  money.Amount `json:"funding_remaining"`
	Status            string       `json:"status"`
	CreatedAt         time.Time    `json:"created_at"`
}

type ShareDTO struct {
	UserID string          `json:"user_id"`
	Amount money.Amount    `json:"amount"`
	Ratio  decimal.Decimal `json:"ratio"`
}
