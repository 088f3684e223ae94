package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/nspcc-dev/neo-splitter/custody"
	"github.com/nspcc-dev/neo-splitter/rpc/splitter"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

func ledgerCommands() []cli.Command {
	return []cli.Command{
		{
			Name:      "split",
			Usage:     "Deposit GAS from the wallet account and split it between two recipients",
			ArgsUsage: "<recipientA> <recipientB> <amount>",
			Action:    split,
		},
		{
			Name:      "withdraw",
			Usage:     "Withdraw the whole balance of the account (wallet account by default)",
			ArgsUsage: "[account]",
			Action:    withdraw,
		},
		{
			Name:      "balance",
			Usage:     "Print balance of the account held by the ledger",
			ArgsUsage: "[account]",
			Action:    balance,
		},
		{
			Name:   "balances",
			Usage:  "Print all non-zero balances held by the ledger",
			Action: balances,
		},
		{
			Name:   "state",
			Usage:  "Print lifecycle state of the ledger",
			Action: printState,
		},
		{
			Name:   "suspend",
			Usage:  "Suspend the ledger (owner or pauser)",
			Action: suspend,
		},
		{
			Name:   "resume",
			Usage:  "Resume the suspended ledger (owner or pauser)",
			Action: resume,
		},
		{
			Name:   "destroy",
			Usage:  "Destroy the suspended ledger and sweep all held GAS to the owner",
			Action: destroy,
		},
		{
			Name:      "set-pauser",
			Usage:     "Assign the account allowed to suspend and resume the ledger (owner only)",
			ArgsUsage: "<account>",
			Action:    setPauser,
		},
	}
}

// session groups resources shared by the ledger commands.
type session struct {
	log      *zap.Logger
	cfg      config
	rpc      *rpcclient.Client
	contract util.Uint160
	// nil for read-only sessions
	acc *wallet.Account
}

func openSession(ctx *cli.Context, signed bool) (*session, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	contract, err := cfg.contractHash()
	if err != nil {
		return nil, err
	}

	log, err := newLogger(ctx)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	s := &session{
		log:      log,
		cfg:      cfg,
		contract: contract,
	}

	if signed {
		s.acc, err = openAccount(cfg)
		if err != nil {
			return nil, err
		}
	}

	s.rpc, err = dial(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	err = splitter.CheckDeployed(s.rpc, contract)
	if err != nil {
		s.close()
		return nil, err
	}

	return s, nil
}

func (s *session) close() {
	s.rpc.Close()
	_ = s.log.Sync()
}

// client returns custody client signing with the session account. Witness
// scope is extended to the given contracts.
func (s *session) client(contracts ...util.Uint160) (*custody.Client, error) {
	var prm custody.Prm
	var err error

	if s.acc != nil {
		prm.Actor, err = newActor(s.rpc, s.acc, contracts...)
	} else {
		prm.Actor, err = newReadActor(s.rpc)
	}
	if err != nil {
		return nil, err
	}

	prm.Logger = s.log
	prm.Contract = s.contract

	return custody.New(prm), nil
}

// account returns the command argument at index i as an account or, if it is
// missing, the session or configured account.
func (s *session) account(ctx *cli.Context, i int) (util.Uint160, error) {
	if arg := ctx.Args().Get(i); arg != "" {
		return splitter.ParseHash(arg)
	}

	if s.acc != nil {
		return s.acc.ScriptHash(), nil
	}

	if s.cfg.Account != "" {
		return address.StringToUint160(s.cfg.Account)
	}

	return util.Uint160{}, errors.New("missing account")
}

func run(ctx *cli.Context, signed bool, f func(*session) error) error {
	s, err := openSession(ctx, signed)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer s.close()

	err = f(s)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func split(ctx *cli.Context) error {
	if ctx.NArg() != 3 {
		return cli.NewExitError("expected recipients and amount", 1)
	}

	return run(ctx, true, func(s *session) error {
		a, err := splitter.ParseHash(ctx.Args().Get(0))
		if err != nil {
			return fmt.Errorf("recipient A: %w", err)
		}

		b, err := splitter.ParseHash(ctx.Args().Get(1))
		if err != nil {
			return fmt.Errorf("recipient B: %w", err)
		}

		amount, err := parseGAS(ctx.Args().Get(2))
		if err != nil {
			return err
		}

		c, err := s.client(s.contract, gas.Hash)
		if err != nil {
			return err
		}

		rcpt, err := c.Split(s.acc.ScriptHash(), a, b, amount)
		if err != nil {
			return err
		}

		w := ctx.App.Writer
		fmt.Fprintf(w, "Transaction: %s\n", rcpt.Tx.StringLE())
		fmt.Fprintf(w, "%s: %s GAS\n", address.Uint160ToString(rcpt.RecipientA), formatGAS(rcpt.Share))
		fmt.Fprintf(w, "%s: %s GAS\n", address.Uint160ToString(rcpt.RecipientB), formatGAS(rcpt.Share))
		if rcpt.Remainder > 0 {
			fmt.Fprintf(w, "%s: %s GAS (remainder)\n", address.Uint160ToString(rcpt.Depositor), formatGAS(rcpt.Remainder))
		}

		return nil
	})
}

func withdraw(ctx *cli.Context) error {
	return run(ctx, true, func(s *session) error {
		acc, err := s.account(ctx, 0)
		if err != nil {
			return err
		}

		c, err := s.client()
		if err != nil {
			return err
		}

		rcpt, err := c.Withdraw(acc)
		if err != nil {
			return err
		}

		fmt.Fprintf(ctx.App.Writer, "Transaction: %s\nWithdrawn: %s GAS\n", rcpt.Tx.StringLE(), formatGAS(rcpt.Amount))

		return nil
	})
}

func balance(ctx *cli.Context) error {
	return run(ctx, false, func(s *session) error {
		acc, err := s.account(ctx, 0)
		if err != nil {
			return err
		}

		c, err := s.client()
		if err != nil {
			return err
		}

		v, err := c.Balance(acc)
		if err != nil {
			return err
		}

		fmt.Fprintln(ctx.App.Writer, formatGAS(v))

		return nil
	})
}

func balances(ctx *cli.Context) error {
	return run(ctx, false, func(s *session) error {
		c, err := s.client()
		if err != nil {
			return err
		}

		m, err := c.Balances()
		if err != nil {
			return err
		}

		printBalances(ctx.App.Writer, m)

		return nil
	})
}

// printBalances writes balances ordered by address.
func printBalances(w io.Writer, m map[util.Uint160]int64) {
	addrs := make([]string, 0, len(m))
	vals := make(map[string]int64, len(m))

	for acc, v := range m {
		a := address.Uint160ToString(acc)
		addrs = append(addrs, a)
		vals[a] = v
	}

	sort.Strings(addrs)

	for i := range addrs {
		fmt.Fprintf(w, "%s\t%s\n", addrs[i], formatGAS(vals[addrs[i]]))
	}
}

func printState(ctx *cli.Context) error {
	return run(ctx, false, func(s *session) error {
		c, err := s.client()
		if err != nil {
			return err
		}

		st, err := c.State()
		if err != nil {
			return err
		}

		fmt.Fprintln(ctx.App.Writer, st)

		return nil
	})
}

func suspend(ctx *cli.Context) error {
	return transition(ctx, (*custody.Client).Suspend)
}

func resume(ctx *cli.Context) error {
	return transition(ctx, (*custody.Client).Resume)
}

func transition(ctx *cli.Context, f func(*custody.Client) (custody.StateReceipt, error)) error {
	return run(ctx, true, func(s *session) error {
		c, err := s.client()
		if err != nil {
			return err
		}

		rcpt, err := f(c)
		if err != nil {
			return err
		}

		fmt.Fprintf(ctx.App.Writer, "Transaction: %s\nState: %s\n", rcpt.Tx.StringLE(), rcpt.State)

		return nil
	})
}

func destroy(ctx *cli.Context) error {
	return run(ctx, true, func(s *session) error {
		c, err := s.client()
		if err != nil {
			return err
		}

		rcpt, err := c.DestroyAndSweep()
		if err != nil {
			return err
		}

		fmt.Fprintf(ctx.App.Writer, "Transaction: %s\nSwept: %s GAS\n", rcpt.Tx.StringLE(), formatGAS(rcpt.Amount))

		return nil
	})
}

func setPauser(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("expected pauser account", 1)
	}

	return run(ctx, true, func(s *session) error {
		pauser, err := splitter.ParseHash(ctx.Args().Get(0))
		if err != nil {
			return err
		}

		c, err := s.client()
		if err != nil {
			return err
		}

		h, err := c.SetPauser(pauser)
		if err != nil {
			return err
		}

		fmt.Fprintf(ctx.App.Writer, "Transaction: %s\n", h.StringLE())

		return nil
	})
}
