package db

import (
	"log/slog"
	"time"

	"peer-lending-ledger/internal/domain/account"
	"peer-lending-ledger/internal/domain/contribution"
	"peer-lending-ledger/internal/domain/loanrequest"
	"peer-lending-ledger/internal/domain/repayment"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func OpenGorm(dsn string, level logger.LogLevel, log *slog.Logger) (*gorm.DB, error) {
	db, err := OpenGormWithDialector(mysql.Open(dsn), level)
	if err != nil {
		return nil, err
	}
	log.Info("gorm: connected")
	return db, nil
}

// OpenGormWithDialector opens, tunes the pool, and pings.
func OpenGormWithDialector(dial gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(level),
		// duplicate keys surface as gorm.ErrDuplicatedKey
		TranslateError: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the ledger tables (MySQL dialect).
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&loanrequest.LoanRequest{},
		&contribution.Contribution{},
		&account.Account{},
		&repayment.Repayment{},
		&repayment.Payout{},
	)
}

// LogLevel maps a config string onto gorm's logger levels.
func LogLevel(s string) logger.LogLevel {
	switch s {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info", "debug":
		return logger.Info
	default:
		return logger.Warn
	}
}
