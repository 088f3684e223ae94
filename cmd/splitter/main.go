package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
	"go.uber.org/zap"
)

func main() {
	app := newApp()

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "splitter"
	app.Usage = "Manage Splitter contract: deploy it, split GAS deposits, withdraw balances"
	app.HideVersion = true
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "Path to the YAML configuration file",
		},
		cli.StringFlag{
			Name:  "rpc, r",
			Usage: "Neo RPC server endpoint",
		},
		cli.StringFlag{
			Name:  "wallet, w",
			Usage: "Path to the NEP-6 wallet",
		},
		cli.StringFlag{
			Name:  "account, a",
			Usage: "Wallet account address (first account by default)",
		},
		cli.StringFlag{
			Name:  "contract",
			Usage: "Splitter contract address or LE script hash",
		},
		cli.BoolFlag{
			Name:  "debug, d",
			Usage: "Enable debug logging",
		},
	}
	app.Commands = append(append(append(
		ledgerCommands(),
		deployCommands()...),
		relayCommands()...),
		dumpCommands()...)

	return app
}

// newLogger returns production logger, or development one when --debug is
// set.
func newLogger(ctx *cli.Context) (*zap.Logger, error) {
	if ctx.GlobalBool("debug") {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
