// Package cli implements the ledger command line: one subcommand per ledger
// operation, prompting for missing values and rendering plain-text tables.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/simonkvalheim/hm9-ledger/internal/ledger"
)

// ErrUsage is returned for unknown commands and bad arguments
var ErrUsage = errors.New("usage error")

// command is one subcommand of the CLI
type command struct {
	help string
	run  func(ctx context.Context, app *App, args []string) error
}

// usages holds the synopsis of every command
var usages = map[string]string{
	"add-account":         "add-account [S|C] [BALANCE] --name NAME",
	"set-limits":          "set-limits ACCOUNT --min-limit N --max-limit N",
	"deposit":             "deposit ACCOUNT --amount N",
	"withdraw":            "withdraw ACCOUNT --amount N",
	"details":             "details ACCOUNT",
	"export-accounts":     "export-accounts FILE",
	"export-transactions": "export-transactions FILE",
	"import":              "import ACCOUNTS_FILE TRANSACTIONS_FILE",
	"all-accounts":        "all-accounts",
	"all-transactions":    "all-transactions [ACCOUNT]",
}

var commands = map[string]command{
	"add-account":         {help: "Open a new account", run: runAddAccount},
	"set-limits":          {help: "Set the balance limits of an account", run: runSetLimits},
	"deposit":             {help: "Deposit an amount into an account", run: runDeposit},
	"withdraw":            {help: "Withdraw an amount from an account", run: runWithdraw},
	"details":             {help: "Print the monthly statement of an account", run: runDetails},
	"export-accounts":     {help: "Write the account registry to FILE", run: runExportAccounts},
	"export-transactions": {help: "Write the transaction history to FILE", run: runExportTransactions},
	"import":              {help: "Replace the ledger with the given files", run: runImport},
	"all-accounts":        {help: "List all accounts", run: runAllAccounts},
	"all-transactions":    {help: "List all transactions, or those of one account", run: runAllTransactions},
}

// App runs CLI commands against a loaded ledger
type App struct {
	svc    *ledger.Service
	in     *bufio.Reader
	out    io.Writer
	logger *zap.Logger
}

// NewApp creates an App reading prompts from in and printing to out
func NewApp(svc *ledger.Service, in io.Reader, out io.Writer, logger *zap.Logger) *App {
	return &App{
		svc:    svc,
		in:     bufio.NewReader(in),
		out:    out,
		logger: logger,
	}
}

// Run executes the command named by args[0]
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		a.printUsage()
		if len(args) == 0 {
			return fmt.Errorf("%w: no command given", ErrUsage)
		}
		return nil
	}

	name := args[0]
	if name == "import-data" {
		name = "import"
	}
	cmd, ok := commands[name]
	if !ok {
		a.printUsage()
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}

	a.logger.Debug("running command", zap.String("command", name), zap.Strings("args", args[1:]))
	return cmd.run(ctx, a, args[1:])
}

func (a *App) printUsage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(a.out, "Usage: ledger COMMAND [ARGS]")
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Commands:")
	for _, name := range names {
		fmt.Fprintf(a.out, "  %-48s %s\n", usages[name], commands[name].help)
	}
}

// prompt asks for a value on the input until a non-empty line is given
func (a *App) prompt(label string) (string, error) {
	for {
		fmt.Fprintf(a.out, "%s: ", label)
		line, err := a.in.ReadString('\n')
		if value := strings.TrimSpace(line); value != "" {
			return value, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("%w: no value for %s", ErrUsage, label)
			}
			return "", err
		}
	}
}

// valueOrPrompt returns value, prompting for it when it was not given
func (a *App) valueOrPrompt(value, label string) (string, error) {
	if strings.TrimSpace(value) != "" {
		return value, nil
	}
	return a.prompt(label)
}

// parseArgs parses flags that may appear before, between or after the
// positional arguments and returns the positionals
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUsage, err)
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: ledger %s\n", usages[name])
		fs.PrintDefaults()
	}
	return fs
}

// exactArgs checks the number of positional arguments
func exactArgs(name string, args []string, min, max int) error {
	if len(args) < min || len(args) > max {
		return fmt.Errorf("%w: %s", ErrUsage, usages[name])
	}
	return nil
}
