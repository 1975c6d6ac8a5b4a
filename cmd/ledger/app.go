package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"peer-lending-ledger/internal/adapter/idempotency"
	"peer-lending-ledger/internal/adapter/repository/mysql"
	"peer-lending-ledger/internal/adapter/summarycache"
	"peer-lending-ledger/internal/config"
	"peer-lending-ledger/internal/infrastructure/db"
	"peer-lending-ledger/internal/observability"
	accountUC "peer-lending-ledger/internal/usecase/account"
	contributionUC "peer-lending-ledger/internal/usecase/contribution"
	loanRequestUC "peer-lending-ledger/internal/usecase/loanrequest"
	repaymentUC "peer-lending-ledger/internal/usecase/repayment"
	"peer-lending-ledger/pkg/money"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

var errUsage = errors.New("bad usage")

func isUsage(err error) bool { return errors.Is(err, errUsage) }

type command struct {
	name string
	args string
	min  int
	run  func(a *app, ctx context.Context, args []string) (any, error)
}

var commands = []command{
	{"migrate", "", 0, (*app).migrate},
	{"open-account", "<user_id> [opening_balance]", 1, (*app).openAccount},
	{"balance", "<user_id>", 1, (*app).balance},
	{"create-loan", "<borrower_id> <title> <description> <amount> <requested_by> <repayment_begin> <weekly|monthly>", 7, (*app).createLoan},
	{"contribute", "<loan_request_id> <user_id> <amount>", 3, (*app).contribute},
	{"pay", "<loan_request_id> <borrower_account_id> <amount> [request_id]", 3, (*app).pay},
	{"mark-funded", "<loan_request_id>", 1, (*app).markFunded},
	{"show", "<loan_request_id>", 1, (*app).show},
	{"shares", "<loan_request_id>", 1, (*app).shares},
	{"repayments", "<loan_request_id>", 1, (*app).repaymentTrail},
	{"list", "[limit]", 0, (*app).list},
	{"delete", "<loan_request_id>", 1, (*app).deleteLoan},
}

type app struct {
	db            *gorm.DB
	accounts      *accountUC.Usecase
	loans         *loanRequestUC.Usecase
	contributions *contributionUC.Usecase
	repayments    *repaymentUC.Usecase
}

// newApp wires repositories, caches and usecases. rdb may be nil.
func newApp(gdb *gorm.DB, rdb *redis.Client, cfg *config.Config, log *slog.Logger, m *observability.Metrics) *app {
	loanRepo := mysql.NewLoanRequestRepository(gdb)
	contribRepo := mysql.NewContributionRepository(gdb)
	repayRepo := mysql.NewRepaymentRepository(gdb)
	tx := mysql.NewGormUoW(gdb)

	a := &app{
		db:            gdb,
		accounts:      accountUC.NewUsecase(mysql.NewAccountRepository(gdb)).WithLogger(log),
		loans:         loanRequestUC.NewUsecase(loanRepo, tx).WithLogger(log).WithMetrics(m),
		contributions: contributionUC.NewUsecase(loanRepo, contribRepo, tx).WithLogger(log).WithMetrics(m),
		repayments: repaymentUC.NewUsecase(loanRepo, repayRepo, tx).
			WithOverdraft(cfg.AllowOverdraft).
			WithLogger(log).
			WithMetrics(m),
	}
	if rdb != nil {
		summaries := summarycache.New[loanRequestUC.SummaryDTO](rdb, cfg.SummaryCacheTTL)
		a.loans.WithCache(summaries)
		a.contributions.WithCache(summaries)
		a.repayments.WithCache(summaries).WithIdempotency(idempotency.NewStore(rdb, cfg.IdempotencyTTL))
	}
	return a
}

// run executes one command and writes its result to out as JSON.
func (a *app) run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	for _, c := range commands {
		if c.name != args[0] {
			continue
		}
		rest := args[1:]
		if len(rest) < c.min {
			return fmt.Errorf("%w: %s %s", errUsage, c.name, c.args)
		}
		res, err := c.run(a, ctx, rest)
		if err != nil {
			return err
		}
		if res == nil {
			return nil
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
}

func (a *app) migrate(ctx context.Context, _ []string) (any, error) {
	if err := db.Migrate(a.db.WithContext(ctx)); err != nil {
		return nil, err
	}
	return map[string]string{"status": "migrated"}, nil
}

func (a *app) openAccount(ctx context.Context, args []string) (any, error) {
	var opening money.Amount
	if len(args) > 1 {
		v, err := money.Parse(args[1])
		if err != nil {
			return nil, fmt.Errorf("opening_balance: %w", err)
		}
		opening = v
	}
	return a.accounts.Open(ctx, accountUC.OpenInput{UserID: args[0], OpeningBalance: opening})
}

func (a *app) balance(ctx context.Context, args []string) (any, error) {
	return a.accounts.Balance(ctx, args[0])
}

func (a *app) createLoan(ctx context.Context, args []string) (any, error) {
	amount, err := money.Parse(args[3])
	if err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	requestedBy, err := time.Parse(dateLayout, args[4])
	if err != nil {
		return nil, fmt.Errorf("requested_by: %w", err)
	}
	begin, err := time.Parse(dateLayout, args[5])
	if err != nil {
		return nil, fmt.Errorf("repayment_begin: %w", err)
	}
	return a.loans.Create(ctx, loanRequestUC.CreateInput{
		BorrowerID:         args[0],
		Title:              args[1],
		Description:        args[2],
		RequestedAmount:    amount,
		RequestedByDate:    requestedBy,
		RepaymentBeginDate: begin,
		RepaymentRate:      args[6],
	})
}

func (a *app) contribute(ctx context.Context, args []string) (any, error) {
	amount, err := money.Parse(args[2])
	if err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	return a.contributions.AddContribution(ctx, contributionUC.AddInput{
		LoanRequestID: args[0],
		UserID:        args[1],
		Amount:        amount,
	})
}

func (a *app) pay(ctx context.Context, args []string) (any, error) {
	amount, err := money.Parse(args[2])
	if err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	in := repaymentUC.PayInput{LoanRequestID: args[0], BorrowerAccountID: args[1], Amount: amount}
	if len(args) > 3 {
		in.RequestID = args[3]
	}
	return a.repayments.Pay(ctx, in)
}

func (a *app) markFunded(ctx context.Context, args []string) (any, error) {
	return a.loans.MarkFundedIfComplete(ctx, args[0])
}

func (a *app) show(ctx context.Context, args []string) (any, error) {
	return a.loans.Summary(ctx, args[0])
}

func (a *app) shares(ctx context.Context, args []string) (any, error) {
	return a.contributions.ShareRatios(ctx, args[0])
}

func (a *app) repaymentTrail(ctx context.Context, args []string) (any, error) {
	return a.repayments.Repayments(ctx, args[0])
}

func (a *app) list(ctx context.Context, args []string) (any, error) {
	limit := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("%w: limit must be a number", errUsage)
		}
		limit = n
	}
	return a.loans.ListWithContributions(ctx, limit)
}

func (a *app) deleteLoan(ctx context.Context, args []string) (any, error) {
	if err := a.loans.Delete(ctx, args[0]); err != nil {
		return nil, err
	}
	return map[string]string{"deleted": args[0]}, nil
}
