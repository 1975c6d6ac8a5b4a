package repayment

import (
	"time"

	domain "peer-lending-ledger/internal/domain/repayment"
	"peer-lending-ledger/pkg/money"
)

type PayInput struct {
	LoanRequestID     string       `json:"loan_request_id" validate:"required,hex32"`
	Amount            money.Amount `json:"amount"`
	BorrowerAccountID string       `json:"borrower_account_id" validate:"required,hex32"`
	// Optional; a retry with the same id returns the first result.
	RequestID string `json:"request_id,omitempty" validate:"omitempty,max=64"`
}

type PayoutDTO struct {
	UserID string       `json:"user_id"`
	Amount money.Amount `json:"amount"`
}

type RepaymentDTO struct {
	RepaymentID   string       `json:"repayment_id"`
	LoanRequestID string       `json:"loan_request_id"`
	BorrowerID    string       `json:"borrower_id"`
	Amount        money.Amount `json:"amount"`
	RequestID     string       `json:"request_id,omitempty"`
	Payouts       []PayoutDTO  `json:"payouts"`
	CreatedAt     time.Time    `json:"created_at"`
	// Set when the result was answered from an earlier identical request.
	Replayed bool `json:"replayed,omitempty"`
}

func toDTO(loanRequestID string, r *domain.Repayment) *RepaymentDTO {
	dto := &RepaymentDTO{
		RepaymentID:   r.RepaymentID,
		LoanRequestID: loanRequestID,
		BorrowerID:    r.BorrowerID,
		Amount:        r.Amount,
		Payouts:       make([]PayoutDTO, len(r.Payouts)),
		CreatedAt:     r.CreatedAt,
	}
	if r.RequestID != nil {
		dto.RequestID = *r.RequestID
	}
	for i, p := range r.Payouts {
		dto.Payouts[i] = PayoutDTO{UserID: p.UserID, Amount: p.Amount}
	}
	return dto
}
