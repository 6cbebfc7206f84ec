package main

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/google/subcommands"

	"tradepool/internal/trading"
)

type tradesCmd struct{}

func (*tradesCmd) Name() string             { return "trades" }
func (*tradesCmd) Synopsis() string         { return "list all trades" }
func (*tradesCmd) Usage() string            { return "trades\n" }
func (*tradesCmd) SetFlags(f *flag.FlagSet) {}

func (c *tradesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	trades, err := api().Trades()
	if err != nil {
		return fail(err)
	}
	fmt.Printf("%-14s %-10s %8s %12s %10s %-8s %s\n", "ID", "SYMBOL", "QTY", "AVG PRICE", "FEES", "STATUS", "ACCOUNTS")
	for _, t := range trades {
		fmt.Printf("%-14s %-10s %8d %12.2f %10.2f %-8s %s\n",
			t.ID, t.Symbol, t.Quantity, t.AvgPrice, t.TotalFees, t.Status, strings.Join(t.Accounts, ","))
	}
	return subcommands.ExitSuccess
}

type openCmd struct {
	symbol   string
	quantity int
	price    float64
	fees     float64
	strategy string
	accounts string
}

func (*openCmd) Name() string     { return "open" }
func (*openCmd) Synopsis() string { return "open a new trade funded by the given accounts" }
func (*openCmd) Usage() string {
	return "open -symbol <sym> -qty <n> -price <p> -strategy <name> -accounts <id,id,...> [-fees <f>]\n"
}

func (c *openCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "instrument symbol (required)")
	f.IntVar(&c.quantity, "qty", 0, "quantity (required)")
	f.Float64Var(&c.price, "price", 0, "price per unit (required)")
	f.Float64Var(&c.fees, "fees", 0, "entry fees")
	f.StringVar(&c.strategy, "strategy", "", "strategy name (required)")
	f.StringVar(&c.accounts, "accounts", "", "comma-separated linked account ids (required)")
}

func (c *openCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var accounts []string
	for _, id := range strings.Split(c.accounts, ",") {
		if id = strings.TrimSpace(id); id != "" {
			accounts = append(accounts, id)
		}
	}
	trade, err := api().OpenTrade(c.symbol, c.quantity, c.price, c.fees, c.strategy, accounts)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Trade %s opened: %d %s @ %.2f\n", trade.ID, trade.Quantity, trade.Symbol, trade.AvgPrice)
	return subcommands.ExitSuccess
}

type addPositionCmd struct {
	trade    string
	quantity int
	price    float64
	fees     float64
}

func (*addPositionCmd) Name() string     { return "add" }
func (*addPositionCmd) Synopsis() string { return "add a fill to an active trade" }
func (*addPositionCmd) Usage() string {
	return "add -trade <id> -qty <n> -price <p> [-fees <f>]\n"
}

func (c *addPositionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.trade, "trade", "", "trade id (required)")
	f.IntVar(&c.quantity, "qty", 0, "additional quantity (required)")
	f.Float64Var(&c.price, "price", 0, "price per unit (required)")
	f.Float64Var(&c.fees, "fees", 0, "additional fees")
}

func (c *addPositionCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	trade, err := api().AddPosition(c.trade, c.quantity, c.price, c.fees)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Position added: %d @ %.2f (fees %.2f)\n", trade.Quantity, trade.AvgPrice, trade.TotalFees)
	return subcommands.ExitSuccess
}

func printPreview(p *trading.ExitPreview) {
	fmt.Printf("Trade %s (%s): exit %d @ %.2f, cost basis %.2f\n",
		p.TradeID, p.Symbol, p.ExitQty, p.ExitPrice, p.EntryPrice)
	fmt.Printf("Gross P&L: %.2f\n", p.GrossPnL)
	fmt.Printf("Net P&L:   %.2f\n", p.NetPnL)
	fmt.Println("Distribution:")

	ids := make([]string, 0, len(p.Distribution))
	for id := range p.Distribution {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Printf("  %-12s %10.2f (%.2f%%)\n", id, p.Distribution[id], p.Shares[id]*100)
	}
}

type previewCmd struct {
	trade string
	qty   int
	price float64
	fees  float64
}

func (*previewCmd) Name() string     { return "preview" }
func (*previewCmd) Synopsis() string { return "preview exit P&L and distribution without applying it" }
func (*previewCmd) Usage() string {
	return "preview -trade <id> -qty <n> -price <p> [-fees <f>]\n"
}

func (c *previewCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.trade, "trade", "", "trade id (required)")
	f.IntVar(&c.qty, "qty", 0, "exit quantity (required)")
	f.Float64Var(&c.price, "price", 0, "exit price per unit (required)")
	f.Float64Var(&c.fees, "fees", 0, "exit fees")
}

func (c *previewCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	preview, err := api().PreviewExit(c.trade, c.qty, c.price, c.fees)
	if err != nil {
		return fail(err)
	}
	printPreview(preview)
	return subcommands.ExitSuccess
}

type exitCmd struct {
	trade string
	qty   int
	price float64
	fees  float64
}

func (*exitCmd) Name() string     { return "exit" }
func (*exitCmd) Synopsis() string { return "exit a trade fully or partially and distribute P&L" }
func (*exitCmd) Usage() string {
	return "exit -trade <id> -qty <n> -price <p> [-fees <f>]\n"
}

func (c *exitCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.trade, "trade", "", "trade id (required)")
	f.IntVar(&c.qty, "qty", 0, "exit quantity (required)")
	f.Float64Var(&c.price, "price", 0, "exit price per unit (required)")
	f.Float64Var(&c.fees, "fees", 0, "exit fees")
}

func (c *exitCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	preview, err := api().ApplyExit(c.trade, c.qty, c.price, c.fees)
	if err != nil {
		return fail(err)
	}
	printPreview(preview)
	return subcommands.ExitSuccess
}

type deleteTradeCmd struct {
	trade   string
	confirm string
}

func (*deleteTradeCmd) Name() string     { return "delete-trade" }
func (*deleteTradeCmd) Synopsis() string { return "permanently delete a trade and its history" }
func (*deleteTradeCmd) Usage() string {
	return "delete-trade -trade <id> -confirm \"DELETE <id>\"\n\n" +
		"  Distributed profit is not reversed; deletion only removes the records.\n"
}

func (c *deleteTradeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.trade, "trade", "", "trade id (required)")
	f.StringVar(&c.confirm, "confirm", "", "confirmation phrase, exactly \"DELETE <trade id>\" (required)")
}

func (c *deleteTradeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := api().DeleteTrade(c.trade, c.confirm); err != nil {
		return fail(err)
	}
	fmt.Printf("Trade %s deleted\n", c.trade)
	return subcommands.ExitSuccess
}
