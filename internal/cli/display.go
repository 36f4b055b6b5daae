package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/simonkvalheim/hm9-ledger/internal/ledger"
	"github.com/simonkvalheim/hm9-ledger/internal/model"
)

// printAccount prints the account card. Limits appear only when they were
// changed from the defaults.
func printAccount(w io.Writer, a *model.Account) {
	printAccountCard(w, a, a.Balance())
}

func printAccountCard(w io.Writer, a *model.Account, balance decimal.Decimal) {
	fmt.Fprintf(w, "Account number: %s\n", a.Number())
	fmt.Fprintf(w, "Customer: %s\n", a.CustomerName())
	fmt.Fprintf(w, "Balance: %s\n", model.FormatMoney(balance))
	if !a.HasDefaultMinLimit() {
		fmt.Fprintf(w, "Minimum limit: %s\n", model.FormatMoney(a.MinLimit()))
	}
	if !a.HasDefaultMaxLimit() {
		fmt.Fprintf(w, "Maximum limit: %s\n", model.FormatMoney(a.MaxLimit()))
	}
}

func printStatement(w io.Writer, s *ledger.Statement) {
	switch s.Account.Kind() {
	case model.AccountKindSavings:
		fmt.Fprintln(w, "Monthly statement for savings account")
		fmt.Fprintf(w, "Interest accrued: %s\n", model.FormatMoney(s.Interest))
	default:
		fmt.Fprintln(w, "Monthly report for current account")
	}
	printAccountCard(w, s.Account, s.Balance)
}

func printAccountTable(w io.Writer, accounts []*model.Account) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tType\tCustomer\tBalance\tMin limit\tMax limit\t")
	for _, a := range accounts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			a.Number(),
			a.Kind().Name(),
			a.CustomerName(),
			model.FormatMoney(a.Balance()),
			optionalLimit(a.MinLimit(), a.HasDefaultMinLimit()),
			optionalLimit(a.MaxLimit(), a.HasDefaultMaxLimit()),
		)
	}
	tw.Flush()
}

func printTransactionTable(w io.Writer, txns []*model.Transaction) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Date\tAccount\tDeposit\tWithdrawal\t")
	for _, t := range txns {
		var deposit, withdrawal string
		if t.Type() == model.TransactionTypeDeposit {
			deposit = model.FormatMoney(t.Amount())
		} else {
			withdrawal = model.FormatMoney(t.Amount())
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", t.Date().Format("2006-01-02"), t.Account(), deposit, withdrawal)
	}
	tw.Flush()
}

func optionalLimit(limit decimal.Decimal, isDefault bool) string {
	if isDefault {
		return ""
	}
	return model.FormatMoney(limit)
}
