package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

type accountsCmd struct{}

func (*accountsCmd) Name() string             { return "accounts" }
func (*accountsCmd) Synopsis() string         { return "list all accounts" }
func (*accountsCmd) Usage() string            { return "accounts\n" }
func (*accountsCmd) SetFlags(f *flag.FlagSet) {}

func (c *accountsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	accounts, err := api().Accounts()
	if err != nil {
		return fail(err)
	}
	fmt.Printf("%-12s %-20s %-28s %12s %12s\n", "ID", "NAME", "EMAIL", "CAPITAL", "PROFIT")
	for _, a := range accounts {
		fmt.Printf("%-12s %-20s %-28s %12.2f %12.2f\n", a.UserID, a.Name, a.Email, a.Capital, a.Profit)
	}
	return subcommands.ExitSuccess
}

type addAccountCmd struct {
	id      string
	name    string
	email   string
	capital float64
}

func (*addAccountCmd) Name() string     { return "add-account" }
func (*addAccountCmd) Synopsis() string { return "register a new account with initial capital" }
func (*addAccountCmd) Usage() string {
	return "add-account -id <id> -name <name> -email <email> [-capital <amount>]\n"
}

func (c *addAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "account id (required)")
	f.StringVar(&c.name, "name", "", "display name (required)")
	f.StringVar(&c.email, "email", "", "email address (required)")
	f.Float64Var(&c.capital, "capital", 0, "initial capital")
}

func (c *addAccountCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	account, err := api().CreateAccount(c.id, c.name, c.email, c.capital)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Account %s created with capital %.2f\n", account.UserID, account.Capital)
	return subcommands.ExitSuccess
}

type depositCmd struct {
	id     string
	amount float64
}

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "add capital to an account" }
func (*depositCmd) Usage() string    { return "deposit -id <id> -amount <amount>\n" }

func (c *depositCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "account id (required)")
	f.Float64Var(&c.amount, "amount", 0, "amount to deposit (required)")
}

func (c *depositCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	account, err := api().Deposit(c.id, c.amount)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Account %s capital is now %.2f\n", account.UserID, account.Capital)
	return subcommands.ExitSuccess
}

type withdrawCmd struct {
	id     string
	amount float64
}

func (*withdrawCmd) Name() string     { return "withdraw" }
func (*withdrawCmd) Synopsis() string { return "withdraw capital from an account" }
func (*withdrawCmd) Usage() string    { return "withdraw -id <id> -amount <amount>\n" }

func (c *withdrawCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "account id (required)")
	f.Float64Var(&c.amount, "amount", 0, "amount to withdraw (required)")
}

func (c *withdrawCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	account, err := api().Withdraw(c.id, c.amount)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Account %s capital is now %.2f\n", account.UserID, account.Capital)
	return subcommands.ExitSuccess
}

type deleteAccountCmd struct {
	id string
}

func (*deleteAccountCmd) Name() string     { return "delete-account" }
func (*deleteAccountCmd) Synopsis() string { return "delete an account with no trade references" }
func (*deleteAccountCmd) Usage() string    { return "delete-account -id <id>\n" }

func (c *deleteAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "account id (required)")
}

func (c *deleteAccountCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := api().DeleteAccount(c.id); err != nil {
		return fail(err)
	}
	fmt.Printf("Account %s deleted\n", c.id)
	return subcommands.ExitSuccess
}
