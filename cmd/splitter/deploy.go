package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-splitter/contracts"
	"github.com/nspcc-dev/neo-splitter/deploy"
	"github.com/nspcc-dev/neo-splitter/rpc/splitter"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

func deployCommands() []cli.Command {
	return []cli.Command{
		{
			Name:  "build",
			Usage: "Compile the contract and write its NEF and manifest next to the source code",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "in, i",
					Usage: "Contract source directory",
					Value: contracts.SplitterDir,
				},
			},
			Action: build,
		},
		{
			Name:  "deploy",
			Usage: "Deploy the contract from the wallet account or update the deployed one",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "in, i",
					Usage: "Contract directory with prebuilt artifacts or source code",
					Value: contracts.SplitterDir,
				},
				cli.StringFlag{
					Name:  "owner",
					Usage: "Ledger owner (wallet account by default)",
				},
				cli.StringFlag{
					Name:  "pauser",
					Usage: "Ledger pauser (owner by default)",
				},
			},
			Action: deployContract,
		},
	}
}

func build(ctx *cli.Context) error {
	dir := ctx.String("in")

	c, err := contracts.Compile(dir)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	err = contracts.Write(dir, c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	fmt.Fprintf(ctx.App.Writer, "Contract %q is written to %s\n", c.Manifest.Name, dir)

	return nil
}

// loadContract reads prebuilt contract from dir or compiles its sources if
// there are no artifacts.
func loadContract(dir string) (contracts.Contract, error) {
	_, err := os.Stat(filepath.Join(dir, "contract.nef"))
	if err == nil {
		return contracts.Read(os.DirFS(dir), ".")
	}

	if !os.IsNotExist(err) {
		return contracts.Contract{}, err
	}

	return contracts.Compile(dir)
}

func optionalAccount(s string) (util.Uint160, error) {
	if s == "" {
		return util.Uint160{}, nil
	}
	return splitter.ParseHash(s)
}

func deployContract(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	var prm deploy.Prm

	prm.Owner, err = optionalAccount(ctx.String("owner"))
	if err != nil {
		return cli.NewExitError(fmt.Errorf("owner: %w", err), 1)
	}

	prm.Pauser, err = optionalAccount(ctx.String("pauser"))
	if err != nil {
		return cli.NewExitError(fmt.Errorf("pauser: %w", err), 1)
	}

	prm.Contract, err = loadContract(ctx.String("in"))
	if err != nil {
		return cli.NewExitError(fmt.Errorf("load contract: %w", err), 1)
	}

	prm.LocalAccount, err = openAccount(cfg)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	prm.Logger, err = newLogger(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() { _ = prm.Logger.Sync() }()

	sigCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c, err := dial(sigCtx, cfg)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer c.Close()

	prm.Blockchain = c

	addr, err := deploy.Deploy(sigCtx, prm)
	if err != nil {
		prm.Logger.Error("deployment failed", zap.Error(err))
		return cli.NewExitError(err, 1)
	}

	fmt.Fprintf(ctx.App.Writer, "Splitter contract: %s (%s)\n", addr.StringLE(), address.Uint160ToString(addr))

	return nil
}
