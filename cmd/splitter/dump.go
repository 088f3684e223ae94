package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nspcc-dev/neo-splitter/internal/dump"
	"github.com/urfave/cli"
)

func dumpCommands() []cli.Command {
	return []cli.Command{
		{
			Name:  "dump",
			Usage: "Save contract state and storage at the latest state root (requires state service)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "label, l",
					Usage: "Label of the blockchain environment (e.g. 'testnet')",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "Output directory",
					Value: "testdata",
				},
			},
			Action: dumpContract,
		},
	}
}

func dumpContract(ctx *cli.Context) error {
	label := ctx.String("label")
	if label == "" {
		return cli.NewExitError("missing blockchain label", 1)
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	contract, err := cfg.contractHash()
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	rootDir := ctx.String("out")

	err = os.MkdirAll(rootDir, 0700)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("create root dir: %w", err), 1)
	}

	c, err := dial(context.Background(), cfg)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer c.Close()

	ctr, err := c.GetContractStateByHash(contract)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("get contract state: %w", err), 1)
	}

	nBlocks, err := c.GetBlockCount()
	if err != nil {
		return cli.NewExitError(fmt.Errorf("get number of the latest block: %w", err), 1)
	}

	// the latest block may not have its state root yet
	height := nBlocks - 1
	if height > 0 {
		height--
	}

	id := dump.ID{Label: label, Block: height}

	d, err := dump.NewCreator(rootDir, id, *ctr)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("init local dumper: %w", err), 1)
	}
	defer d.Close()

	err = iterateContractStorage(c, height, contract, d.Write)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("iterate contract storage: %w", err), 1)
	}

	err = d.Flush()
	if err != nil {
		return cli.NewExitError(fmt.Errorf("flush dump: %w", err), 1)
	}

	fmt.Fprintf(ctx.App.Writer, "Splitter contract is successfully dumped to '%s/' as %s\n", rootDir, id)

	return nil
}
