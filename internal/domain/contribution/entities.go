package contribution

import (
	"errors"
	"time"

	"peer-lending-ledger/pkg/money"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound              = errors.New("contribution not found")
	ErrDuplicateContribution = errors.New("user already contributed to this loan request")
	ErrNoContributions       = errors.New("loan request has no contributions")
	// ErrLedgerMismatch means the stored contributions do not add up to the
	// loan request's contributed total.
	ErrLedgerMismatch = errors.New("contributions do not match contributed amount")
)

// Table: loan_request_contributions
type Contribution struct {
	ID uint64 `gorm:"primaryKey;column:id" json:"-"`
	// FK to loan_requests.id (numeric)
	LoanRequestID uint64       `gorm:"column:loan_request_id;not null;uniqueIndex:ux_contributions_request_user,priority:1" json:"-"`
	UserID        string       `gorm:"column:user_id;size:32;not null;uniqueIndex:ux_contributions_request_user,priority:2;index:idx_contributions_user" json:"user_id"`
	Amount        money.Amount `gorm:"column:amount;not null" json:"amount"`
	CreatedAt     time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Contribution) TableName() string { return "loan_request_contributions" }

// Share is one contributor's stake in a loan request.
type Share struct {
	UserID string          `json:"user_id"`
	Amount money.Amount    `json:"amount"`
	Ratio  decimal.Decimal `json:"ratio"`
}

const ratioPlaces = 10

// Shares derives share ratios from a loan request's contributions, in the
// order given. Ratios sum to exactly one.
func Shares(cs []Contribution) ([]Share, error) {
	if len(cs) == 0 {
		return nil, ErrNoContributions
	}
	ratios, err := money.Ratios(Amounts(cs), ratioPlaces)
	if errors.Is(err, money.ErrNoWeights) {
		return nil, ErrNoContributions
	}
	if err != nil {
		return nil, err
	}
	out := make([]Share, len(cs))
	for i, c := range cs {
		out[i] = Share{UserID: c.UserID, Amount: c.Amount, Ratio: ratios[i]}
	}
	return out, nil
}

// Amounts lists the contributed amounts in order.
func Amounts(cs []Contribution) []money.Amount {
	out := make([]money.Amount, len(cs))
	for i, c := range cs {
		out[i] = c.Amount
	}
	return out
}

// Total sums the contributed amounts.
func Total(cs []Contribution) money.Amount {
	var sum money.Amount
	for _, c := range cs {
		sum += c.Amount
	}
	return sum
}
