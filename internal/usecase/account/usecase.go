package account

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domain "peer-lending-ledger/internal/domain/account"
	"peer-lending-ledger/internal/observability"
	"peer-lending-ledger/internal/usecase/validate"
	"peer-lending-ledger/pkg/money"

	"gorm.io/gorm"
)

type OpenInput struct {
	UserID         string       `json:"user_id" validate:"required,hex32"`
	OpeningBalance money.Amount `json:"opening_balance" validate:"gte=0"`
}

type AccountDTO struct {
	UserID    string       `json:"user_id"`
	Balance   money.Amount `json:"balance"`
	CreatedAt time.Time    `json:"created_at"`
}

type Usecase struct {
	repo domain.Repository
	v    *validate.Validator
	log  *slog.Logger
}

func NewUsecase(repo domain.Repository) *Usecase {
	return &Usecase{repo: repo, v: validate.New(), log: observability.Discard()}
}

func (u *Usecase) WithLogger(l *slog.Logger) *Usecase {
	u.log = l
	return u
}

// Open creates the purse of a user. Each user has at most one.
func (u *Usecase) Open(ctx context.Context, in OpenInput) (*AccountDTO, error) {
	if err := u.v.Struct(in); err != nil {
		return nil, err
	}

	_, err := u.repo.GetByUserID(ctx, in.UserID)
	switch {
	case err == nil:
		return nil, domain.ErrAlreadyExists
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	a := &domain.Account{UserID: in.UserID, Balance: in.OpeningBalance}
	if err := u.repo.Create(ctx, a); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}

	u.log.InfoContext(ctx, "account opened",
		slog.String("user_id", a.UserID),
		slog.String("opening_balance", a.Balance.String()))
	return &AccountDTO{UserID: a.UserID, Balance: a.Balance, CreatedAt: a.CreatedAt}, nil
}

func (u *Usecase) Balance(ctx context.Context, userID string) (*AccountDTO, error) {
	a, err := u.repo.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &AccountDTO{UserID: a.UserID, Balance: a.Balance, CreatedAt: a.CreatedAt}, nil
}
