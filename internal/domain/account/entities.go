package account

import (
	"errors"
	"time"

	"peer-lending-ledger/pkg/money"
)

var (
	ErrNotFound          = errors.New("account not found")
	ErrAlreadyExists     = errors.New("account already exists")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Table: accounts (one purse per user)
type Account struct {
	ID        uint64       `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	UserID    string       `gorm:"column:user_id;size:32;not null;uniqueIndex:ux_accounts_user" json:"user_id"`
	Balance   money.Amount `gorm:"column:balance;not null;default:0" json:"balance"`
	CreatedAt time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string { return "accounts" }
