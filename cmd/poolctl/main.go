// poolctl is a command-line client for a running tradepool server.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"tradepool/internal/client"
)

var serverURL string

func api() *client.Client {
	return client.New(serverURL)
}

func main() {
	flag.StringVar(&serverURL, "server", envOr("TRADEPOOL_URL", "http://localhost:8080"), "tradepool server base URL")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), "")
	commander.Register(&accountsCmd{}, "accounts")
	commander.Register(&addAccountCmd{}, "accounts")
	commander.Register(&depositCmd{}, "accounts")
	commander.Register(&withdrawCmd{}, "accounts")
	commander.Register(&deleteAccountCmd{}, "accounts")
	commander.Register(&tradesCmd{}, "trades")
	commander.Register(&openCmd{}, "trades")
	commander.Register(&addPositionCmd{}, "trades")
	commander.Register(&previewCmd{}, "trades")
	commander.Register(&exitCmd{}, "trades")
	commander.Register(&deleteTradeCmd{}, "trades")
	commander.Register(&historyCmd{}, "history")
	commander.Register(&summaryCmd{}, "history")
	commander.Register(&purgeHistoryCmd{}, "history")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
