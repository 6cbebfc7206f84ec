package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"
)

type historyCmd struct{}

func (*historyCmd) Name() string             { return "history" }
func (*historyCmd) Synopsis() string         { return "list all exit records" }
func (*historyCmd) Usage() string            { return "history\n" }
func (*historyCmd) SetFlags(f *flag.FlagSet) {}

func (c *historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	records, err := api().History()
	if err != nil {
		return fail(err)
	}
	fmt.Printf("%-6s %-14s %-10s %8s %12s %12s %12s %-12s %s\n",
		"SEQ", "TRADE", "SYMBOL", "QTY", "ENTRY", "EXIT", "NET P&L", "DATE", "ACCOUNTS")
	for _, r := range records {
		fmt.Printf("%-6d %-14s %-10s %8d %12.2f %12.2f %12.2f %-12s %s\n",
			r.ID, r.TradeID, r.Symbol, r.ExitQty, r.EntryPrice, r.ExitPrice, r.NetPnL,
			r.Date.Format("2006-01-02"), strings.Join(r.Accounts, ","))
	}
	return subcommands.ExitSuccess
}

type summaryCmd struct{}

func (*summaryCmd) Name() string             { return "summary" }
func (*summaryCmd) Synopsis() string         { return "show aggregate statistics over the trade history" }
func (*summaryCmd) Usage() string            { return "summary\n" }
func (*summaryCmd) SetFlags(f *flag.FlagSet) {}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := api().Summary()
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Total exits:       %d\n", s.TotalExits)
	fmt.Printf("Profitable:        %d\n", s.Profitable)
	fmt.Printf("Losing:            %d\n", s.Losing)
	fmt.Printf("Total net P&L:     %.2f\n", s.TotalPnL)
	fmt.Printf("Max profit:        %.2f\n", s.MaxProfit)
	fmt.Printf("Max loss:          %.2f\n", s.MaxLoss)
	return subcommands.ExitSuccess
}

type purgeHistoryCmd struct {
	confirm string
}

func (*purgeHistoryCmd) Name() string     { return "purge-history" }
func (*purgeHistoryCmd) Synopsis() string { return "bulk-delete all exit records" }
func (*purgeHistoryCmd) Usage() string {
	return "purge-history -confirm \"DELETE ALL\"\n"
}

func (c *purgeHistoryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.confirm, "confirm", "", "confirmation phrase, exactly \"DELETE ALL\" (required)")
}

func (c *purgeHistoryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	deleted, err := api().PurgeHistory(c.confirm)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Deleted %d history records\n", deleted)
	return subcommands.ExitSuccess
}
