package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simonkvalheim/hm9-ledger/internal/model"
	"github.com/simonkvalheim/hm9-ledger/internal/storage"
)

func runAddAccount(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("add-account", a.out)
	var name string
	fs.StringVar(&name, "name", "", "account owner")
	fs.StringVar(&name, "n", "", "account owner (shorthand)")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := exactArgs("add-account", pos, 0, 2); err != nil {
		return err
	}

	kind := model.AccountKindSavings
	if len(pos) > 0 {
		if kind, err = model.ParseAccountKind(pos[0]); err != nil {
			return err
		}
	}
	balance := decimal.Zero
	if len(pos) > 1 {
		if balance, err = model.ParseMoney(pos[1]); err != nil {
			return err
		}
	}
	if name, err = a.valueOrPrompt(name, "Customer name"); err != nil {
		return err
	}

	account, err := a.svc.CreateAccount(ctx, name, kind, balance)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	a.logger.Info("account created", zap.String("account", account.Number()))
	printAccount(a.out, account)
	return nil
}

func runSetLimits(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("set-limits", a.out)
	var minRaw, maxRaw string
	fs.StringVar(&minRaw, "min-limit", "", "lowest allowed balance")
	fs.StringVar(&minRaw, "min_limit", "", "alias of --min-limit")
	fs.StringVar(&maxRaw, "max-limit", "", "highest allowed balance")
	fs.StringVar(&maxRaw, "max_limit", "", "alias of --max-limit")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := exactArgs("set-limits", pos, 1, 1); err != nil {
		return err
	}
	number := pos[0]

	minLimit, err := a.amountOrPrompt(minRaw, "Minimum balance")
	if err != nil {
		return err
	}
	maxLimit, err := a.amountOrPrompt(maxRaw, "Maximum balance")
	if err != nil {
		return err
	}

	account, err := a.svc.SetLimits(ctx, number, minLimit, maxLimit)
	if err != nil {
		return fmt.Errorf("failed to set limits on account %s: %w", number, err)
	}

	a.logger.Info("limits set", zap.String("account", number))
	printAccount(a.out, account)
	return nil
}

func runDeposit(ctx context.Context, a *App, args []string) error {
	return runPosting(ctx, a, "deposit", model.TransactionTypeDeposit, args)
}

func runWithdraw(ctx context.Context, a *App, args []string) error {
	return runPosting(ctx, a, "withdraw", model.TransactionTypeWithdraw, args)
}

func runPosting(ctx context.Context, a *App, name string, txnType model.TransactionType, args []string) error {
	fs := newFlagSet(name, a.out)
	var raw string
	fs.StringVar(&raw, "amount", "", "amount")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := exactArgs(name, pos, 1, 1); err != nil {
		return err
	}
	number := pos[0]

	label := "Deposit amount"
	if txnType == model.TransactionTypeWithdraw {
		label = "Withdrawal amount"
	}
	amount, err := a.amountOrPrompt(raw, label)
	if err != nil {
		return err
	}

	if _, err := a.svc.Post(ctx, number, txnType, amount); err != nil {
		return fmt.Errorf("failed to post %s to account %s: %w", txnType.Name(), number, err)
	}
	a.logger.Info("posting applied",
		zap.String("account", number),
		zap.String("type", txnType.Name()),
		zap.String("amount", amount.String()),
	)

	account, err := a.svc.Account(number)
	if err != nil {
		return err
	}
	printAccount(a.out, account)
	return nil
}

func runDetails(ctx context.Context, a *App, args []string) error {
	pos, err := parseArgs(newFlagSet("details", a.out), args)
	if err != nil {
		return err
	}
	if err := exactArgs("details", pos, 1, 1); err != nil {
		return err
	}

	statement, err := a.svc.Statement(pos[0])
	if err != nil {
		return fmt.Errorf("failed to build statement for account %s: %w", pos[0], err)
	}
	printStatement(a.out, statement)
	return nil
}

func runExportAccounts(ctx context.Context, a *App, args []string) error {
	return runExport(a, "export-accounts", "accounts", a.svc.ExportAccounts, args)
}

func runExportTransactions(ctx context.Context, a *App, args []string) error {
	return runExport(a, "export-transactions", "transactions", a.svc.ExportTransactions, args)
}

func runExport(a *App, name, what string, export func(io.Writer) error, args []string) error {
	pos, err := parseArgs(newFlagSet(name, a.out), args)
	if err != nil {
		return err
	}
	if err := exactArgs(name, pos, 1, 1); err != nil {
		return err
	}

	if err := storage.WriteFile(pos[0], export); err != nil {
		return fmt.Errorf("failed to export %s: %w", what, err)
	}
	a.logger.Info("exported "+what, zap.String("file", pos[0]))
	return nil
}

func runImport(ctx context.Context, a *App, args []string) error {
	pos, err := parseArgs(newFlagSet("import", a.out), args)
	if err != nil {
		return err
	}
	if err := exactArgs("import", pos, 2, 2); err != nil {
		return err
	}

	accounts, err := storage.OpenFile(pos[0])
	if err != nil {
		return err
	}
	defer accounts.Close()
	transactions, err := storage.OpenFile(pos[1])
	if err != nil {
		return err
	}
	defer transactions.Close()

	if err := a.svc.Import(ctx, accounts, transactions); err != nil {
		return fmt.Errorf("failed to import: %w", err)
	}

	a.logger.Warn("ledger replaced by import",
		zap.String("accounts_file", pos[0]),
		zap.String("transactions_file", pos[1]),
		zap.Int("accounts", len(a.svc.Accounts())),
		zap.Int("transactions", len(a.svc.Transactions(""))),
	)
	return nil
}

func runAllAccounts(ctx context.Context, a *App, args []string) error {
	pos, err := parseArgs(newFlagSet("all-accounts", a.out), args)
	if err != nil {
		return err
	}
	if err := exactArgs("all-accounts", pos, 0, 0); err != nil {
		return err
	}

	printAccountTable(a.out, a.svc.Accounts())
	return nil
}

func runAllTransactions(ctx context.Context, a *App, args []string) error {
	pos, err := parseArgs(newFlagSet("all-transactions", a.out), args)
	if err != nil {
		return err
	}
	if err := exactArgs("all-transactions", pos, 0, 1); err != nil {
		return err
	}

	number := ""
	if len(pos) == 1 {
		number = pos[0]
		account, err := a.svc.Account(number)
		if err != nil {
			return err
		}
		printAccount(a.out, account)
		fmt.Fprintln(a.out)
	}

	printTransactionTable(a.out, a.svc.Transactions(number))
	return nil
}

// amountOrPrompt parses raw, prompting for it when it was not given
func (a *App) amountOrPrompt(raw, label string) (decimal.Decimal, error) {
	raw, err := a.valueOrPrompt(raw, label)
	if err != nil {
		return decimal.Zero, err
	}
	return model.ParseMoney(raw)
}
